// Package aggregator drives the per-reminder reflection view: given one
// reminder it derives the reflection date and runs four independent,
// cacheable, partially-failable fetches against the source collaborators.
package aggregator

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/sources"
	"github.com/mirrorday/mirrorday/internal/store"
)

const (
	// MaxPhotos caps the photos shown per reflection date
	MaxPhotos = 4
	// MaxLocations caps the location trail points per reflection date
	MaxLocations = 50
	// MaxEnrichmentItems caps the enrichment items per reflection date
	MaxEnrichmentItems = 10
)

// Snapshot is the render-ready view of one reminder's reflection data. Each
// source section settles independently; consumers render sections as their
// loading flags clear.
type Snapshot struct {
	Reminder       models.Reminder        `json:"reminder"`
	ReflectionDate time.Time              `json:"reflectionDate"`
	Photos         []models.Photo         `json:"photos"`
	Events         []models.Event         `json:"events"`
	Locations      []models.LocationPoint `json:"locations"`
	Enrichment     []models.EnrichmentItem `json:"enrichment"`

	LoadingPhotos     bool `json:"loadingPhotos"`
	LoadingEvents     bool `json:"loadingEvents"`
	LoadingLocations  bool `json:"loadingLocations"`
	LoadingEnrichment bool `json:"loadingEnrichment"`

	// Error carries the first pending photo or calendar failure, the two
	// classes a user can act on. Empty when none is pending.
	Error string `json:"error,omitempty"`
	// ErrorSettingsLink is set when the pending error is remediable through
	// a permission change.
	ErrorSettingsLink bool `json:"errorSettingsLink,omitempty"`
}

// Aggregator owns the reflection state for one reminder. All state mutations
// are serialized through its lock; fetch goroutines marshal their results
// back through it and discard stale arrivals.
type Aggregator struct {
	mu       sync.Mutex
	store    *store.Store
	reminder models.Reminder

	photos     sources.PhotoSource
	calendar   sources.CalendarSource
	location   sources.LocationSource
	enrichment sources.EnrichmentSource
	logger     *zap.Logger
	now        func() time.Time

	enabledCalendars map[string]bool

	photoList      []models.Photo
	eventList      []models.Event
	locationList   []models.LocationPoint
	enrichmentList []models.EnrichmentItem

	loadingPhotos     bool
	loadingEvents     bool
	loadingLocations  bool
	loadingEnrichment bool

	// Cache keys from the previous invocation. A source refetches only when
	// its key moved, so unrelated re-renders stay free.
	cachedDate        time.Time
	cachedCalendarKey string

	err error

	pending sync.WaitGroup
}

// New creates an aggregator for the given reminder
func New(st *store.Store, reminder models.Reminder, photos sources.PhotoSource, calendar sources.CalendarSource, location sources.LocationSource, enrichment sources.EnrichmentSource, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:            st,
		reminder:         reminder,
		photos:           photos,
		calendar:         calendar,
		location:         location,
		enrichment:       enrichment,
		logger:           logger,
		now:              time.Now,
		enabledCalendars: map[string]bool{},
	}
}

// SetEnabledCalendars replaces the enabled-calendar set. The set is part of
// the calendar cache key, so the next Refresh refetches events.
func (a *Aggregator) SetEnabledCalendars(ids []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabledCalendars = make(map[string]bool, len(ids))
	for _, id := range ids {
		a.enabledCalendars[id] = true
	}
}

// Refresh recomputes the reflection date and re-triggers every fetch whose
// cache key changed since the last invocation. Eligible fetches run
// concurrently and settle independently.
func (a *Aggregator) Refresh(ctx context.Context) {
	a.mu.Lock()

	date := a.reminder.ReflectionDate(a.now())
	dateMoved := !date.Equal(a.cachedDate)
	calendarKey := a.calendarKeyLocked(date)
	calendarMoved := calendarKey != a.cachedCalendarKey

	a.cachedDate = date
	a.cachedCalendarKey = calendarKey

	if dateMoved {
		a.loadingPhotos = true
		a.loadingLocations = true
		a.loadingEnrichment = true
	}
	if calendarMoved {
		a.loadingEvents = true
	}
	a.mu.Unlock()

	// Fetches outlive the caller: a request context closing after the
	// handler returns must not cancel them, or a settled cache key would
	// pin the canceled result forever. Sources carry their own timeouts.
	fetchCtx := context.WithoutCancel(ctx)

	if dateMoved {
		a.dispatch(func() { a.fetchPhotos(fetchCtx, date) })
		a.dispatch(func() { a.fetchLocations(fetchCtx, date) })
		a.dispatch(func() { a.fetchEnrichment(fetchCtx, date) })
	}
	if calendarMoved {
		a.dispatch(func() { a.fetchEvents(fetchCtx, date, calendarKey) })
	}
}

func (a *Aggregator) dispatch(fn func()) {
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		fn()
	}()
}

// calendarKeyLocked builds the calendar cache key from the reflection date
// and the sorted enabled-calendar set
func (a *Aggregator) calendarKeyLocked(date time.Time) string {
	ids := make([]string, 0, len(a.enabledCalendars))
	for id := range a.enabledCalendars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return date.Format("2006-01-02") + "|" + strings.Join(ids, ",")
}

func (a *Aggregator) fetchPhotos(ctx context.Context, date time.Time) {
	photos, err := a.photos.FetchPhotos(ctx, date, MaxPhotos)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !date.Equal(a.cachedDate) {
		// Superseded while in flight
		return
	}
	a.loadingPhotos = false
	if err != nil {
		a.setErrorLocked(err)
		a.logger.Warn("photo_fetch_failed", zap.Error(err))
		return
	}
	a.photoList = photos
}

func (a *Aggregator) fetchEvents(ctx context.Context, date time.Time, key string) {
	var events []models.Event
	var err error

	a.mu.Lock()
	enabled := make(map[string]bool, len(a.enabledCalendars))
	for id := range a.enabledCalendars {
		enabled[id] = true
	}
	a.mu.Unlock()

	// An empty enabled set short-circuits to an empty list without touching
	// the events query
	if len(enabled) > 0 {
		var calendars []models.CalendarRef
		calendars, err = a.calendar.FetchCalendars(ctx)
		if err == nil {
			selected := calendars[:0:0]
			for _, c := range calendars {
				if enabled[c.ID] {
					selected = append(selected, c)
				}
			}
			events, err = a.calendar.FetchEvents(ctx, date, selected)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if key != a.cachedCalendarKey {
		return
	}
	a.loadingEvents = false
	if err != nil {
		a.setErrorLocked(err)
		a.logger.Warn("calendar_fetch_failed", zap.Error(err))
		return
	}
	a.eventList = events
}

func (a *Aggregator) fetchLocations(ctx context.Context, date time.Time) {
	points, err := a.location.FetchLocations(ctx, date, MaxLocations)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !date.Equal(a.cachedDate) {
		return
	}
	a.loadingLocations = false
	if err != nil {
		// Absence of a location trail is an expected steady state, log only
		a.logger.Debug("location_fetch_failed", zap.Error(err))
		return
	}
	a.locationList = points
}

func (a *Aggregator) fetchEnrichment(ctx context.Context, date time.Time) {
	var items []models.EnrichmentItem
	var err error
	if a.enrichment != nil {
		items, err = a.enrichment.FetchItems(ctx, date, MaxEnrichmentItems)
		if err == nil {
			items = a.enrichment.EnhanceWithSummary(ctx, items)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !date.Equal(a.cachedDate) {
		return
	}
	a.loadingEnrichment = false
	if err != nil {
		// Unconfigured or unreachable enrichment never alerts the user
		a.logger.Debug("enrichment_fetch_failed", zap.Error(err))
		return
	}
	a.enrichmentList = items
}

// setErrorLocked fills the user-visible error slot. First error wins; a
// pending error is never overwritten.
func (a *Aggregator) setErrorLocked(err error) {
	if a.err == nil {
		a.err = err
	}
}

// ClearError dismisses the pending user-visible error
func (a *Aggregator) ClearError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = nil
}

// setReminder replaces the held reminder with the store's current copy so
// the next Refresh derives the reflection date from the edited target date
func (a *Aggregator) setReminder(r models.Reminder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reminder = r
}

// Update delegates the edit to the store and refreshes the local snapshot
// immediately so the view reflects it without waiting for the change
// notification round-trip.
func (a *Aggregator) Update(r models.Reminder) {
	a.mu.Lock()
	a.reminder = r
	a.mu.Unlock()
	a.store.Update(r)
}

// Delete removes the reminder through the store
func (a *Aggregator) Delete() {
	a.mu.Lock()
	id := a.reminder.ID
	a.mu.Unlock()
	a.store.Delete(id)
}

// ReminderID returns the owned reminder's id
func (a *Aggregator) ReminderID() uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reminder.ID
}

// Snapshot returns the current render-ready view
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		Reminder:          a.reminder,
		ReflectionDate:    a.cachedDate,
		Photos:            append([]models.Photo(nil), a.photoList...),
		Events:            append([]models.Event(nil), a.eventList...),
		Locations:         append([]models.LocationPoint(nil), a.locationList...),
		Enrichment:        append([]models.EnrichmentItem(nil), a.enrichmentList...),
		LoadingPhotos:     a.loadingPhotos,
		LoadingEvents:     a.loadingEvents,
		LoadingLocations:  a.loadingLocations,
		LoadingEnrichment: a.loadingEnrichment,
	}
	if a.err != nil {
		snap.Error = a.err.Error()
		snap.ErrorSettingsLink = apperr.ShowsSettingsLink(a.err)
	}
	return snap
}

// wait blocks until in-flight fetches settle; test hook
func (a *Aggregator) wait() {
	a.pending.Wait()
}
