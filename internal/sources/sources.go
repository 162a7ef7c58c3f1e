// Package sources defines the pluggable reflection-data collaborators and
// their production implementations. Each source is independent,
// permission-gated, and allowed to fail without affecting the others.
package sources

import (
	"context"
	"time"

	"github.com/mirrorday/mirrorday/internal/models"
)

// PhotoSource serves photos taken on a given day
type PhotoSource interface {
	// RequestAuthorization verifies the library is accessible; returns a
	// PermissionDenied error when it is not.
	RequestAuthorization(ctx context.Context) error

	// FetchPhotos returns up to maxCount photos taken on the given day
	FetchPhotos(ctx context.Context, date time.Time, maxCount int) ([]models.Photo, error)
}

// CalendarSource serves the user's calendars and their events
type CalendarSource interface {
	RequestAuthorization(ctx context.Context) error

	// FetchCalendars lists every available calendar
	FetchCalendars(ctx context.Context) ([]models.CalendarRef, error)

	// FetchEvents returns the events on the given day across the given
	// calendars
	FetchEvents(ctx context.Context, date time.Time, calendars []models.CalendarRef) ([]models.Event, error)
}

// LocationSource records movement and serves the per-day location trail
type LocationSource interface {
	RequestAuthorization(ctx context.Context) error

	// StartTracking begins accepting movement reports
	StartTracking()

	// StopTracking stops accepting movement reports
	StopTracking()

	// FetchLocations returns up to maxCount points recorded on the given
	// day, sorted by timestamp.
	FetchLocations(ctx context.Context, date time.Time, maxCount int) ([]models.LocationPoint, error)
}

// EnrichmentSource serves external contextual content for a date: either
// historical "on this day" facts or dated news headlines, depending on the
// configured provider.
type EnrichmentSource interface {
	// FetchItems returns up to maxCount items for the given date
	FetchItems(ctx context.Context, date time.Time, maxCount int) ([]models.EnrichmentItem, error)

	// EnhanceWithSummary attaches best-effort summaries. Where
	// summarization is unavailable or failing it must act as an identity
	// pass-through, never an error.
	EnhanceWithSummary(ctx context.Context, items []models.EnrichmentItem) []models.EnrichmentItem
}
