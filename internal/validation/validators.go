package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/mirrorday/mirrorday/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("background_color", validateBackgroundColor); err != nil {
		panic(fmt.Sprintf("failed to register background_color validator: %v", err))
	}
}

// validateBackgroundColor validates that a string is a known color name
func validateBackgroundColor(fl validator.FieldLevel) bool {
	return models.BackgroundColor(fl.Field().String()).Valid()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateBackgroundColor validates a color name string
func ValidateBackgroundColor(value string) error {
	if !models.BackgroundColor(value).Valid() {
		return fmt.Errorf("invalid backgroundColor: %s", value)
	}
	return nil
}
