package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/request"
)

// Auth creates authentication middleware that validates device tokens.
// Tokens are HMAC-signed JWTs minted by the admin tool and installed on each
// device; the subject claim carries the device id.
func Auth(secret []byte, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			token, err := jwt.Parse([]byte(parts[1]),
				jwt.WithKey(jwa.HS256, secret),
				jwt.WithValidate(true),
			)
			if err != nil {
				logger.Warn("device_token_rejected",
					zap.String("client_ip", request.ClientIP(r)),
					zap.Error(err),
				)
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			device := &request.Device{ID: token.Subject()}
			if name, ok := token.Get("device_name"); ok {
				if nameStr, ok := name.(string); ok {
					device.Name = nameStr
				}
			}
			if device.ID == "" {
				respondError(w, http.StatusUnauthorized, "Token missing device subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithDevice(r.Context(), device)))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}
