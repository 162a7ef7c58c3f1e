package models

import (
	"time"

	"github.com/google/uuid"
)

// BackgroundColor is a named pastel color tag for a reminder tile
type BackgroundColor string

const (
	ColorPastelBlue   BackgroundColor = "Pastel Blue"
	ColorPastelGreen  BackgroundColor = "Pastel Green"
	ColorPastelPink   BackgroundColor = "Pastel Pink"
	ColorPastelPurple BackgroundColor = "Pastel Purple"
	ColorPastelYellow BackgroundColor = "Pastel Yellow"
	ColorPastelOrange BackgroundColor = "Pastel Orange"
	ColorPastelRed    BackgroundColor = "Pastel Red"
	ColorPastelGray   BackgroundColor = "Pastel Gray"
)

// BackgroundColors lists every valid color tag
var BackgroundColors = []BackgroundColor{
	ColorPastelBlue,
	ColorPastelGreen,
	ColorPastelPink,
	ColorPastelPurple,
	ColorPastelYellow,
	ColorPastelOrange,
	ColorPastelRed,
	ColorPastelGray,
}

// Valid reports whether the color is one of the named constants
func (c BackgroundColor) Valid() bool {
	for _, v := range BackgroundColors {
		if c == v {
			return true
		}
	}
	return false
}

// Reminder is a named countdown tied to a target date.
//
// RemoteRef is the remote backend's record reference. It is populated only
// after the reminder has round-tripped through the remote backend at least
// once and is never written to the local file.
type Reminder struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Date            time.Time        `json:"date"`
	Description     *string          `json:"description,omitempty"`
	BackgroundColor *BackgroundColor `json:"backgroundColor,omitempty"`
	ModifiedAt      time.Time        `json:"modifiedAt"`
	RemoteRef       string           `json:"-"`
}

// NewReminder creates a reminder with a fresh id and modification stamp
func NewReminder(title string, date time.Time) Reminder {
	return Reminder{
		ID:         uuid.New(),
		Title:      title,
		Date:       date,
		ModifiedAt: time.Now(),
	}
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the whole calendar days from a's day to b's day.
// Rounding absorbs DST transitions so the count is calendar arithmetic,
// not elapsed-seconds arithmetic.
func DaysBetween(a, b time.Time) int {
	diff := StartOfDay(b).Sub(StartOfDay(a))
	return int(diff.Round(24*time.Hour) / (24 * time.Hour))
}

// DaysRemaining is the whole-day count from now's start-of-day to the
// target date's start-of-day. Negative for past reminders, zero for today.
// Computed fresh on every read so the value shifts as midnight passes.
func (r Reminder) DaysRemaining(now time.Time) int {
	return DaysBetween(now, r.Date)
}

// ReflectionDate mirrors the target date around today: as many days in the
// past as the target is in the future (and vice versa for past reminders).
func (r Reminder) ReflectionDate(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, -r.DaysRemaining(now))
}
