package aggregator

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/sources"
	"github.com/mirrorday/mirrorday/internal/store"
)

// Manager hands out one aggregator per reminder and tears them down when the
// reminder disappears. Aggregators are created lazily on first request so
// only viewed reminders pay for fetches.
type Manager struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*Aggregator
	store  *store.Store
	photos sources.PhotoSource
	cal    sources.CalendarSource
	loc    sources.LocationSource
	enrich sources.EnrichmentSource
	logger *zap.Logger
}

// NewManager creates the aggregator registry over the shared collaborators
func NewManager(st *store.Store, photos sources.PhotoSource, cal sources.CalendarSource, loc sources.LocationSource, enrich sources.EnrichmentSource, logger *zap.Logger) *Manager {
	return &Manager{
		byID:   make(map[uuid.UUID]*Aggregator),
		store:  st,
		photos: photos,
		cal:    cal,
		loc:    loc,
		enrich: enrich,
		logger: logger,
	}
}

// For returns the aggregator for the given reminder, creating it on first
// use. A cached aggregator takes over the caller's copy of the reminder, so
// edits made through the store land before the next Refresh.
func (m *Manager) For(reminder models.Reminder) *Aggregator {
	m.mu.Lock()
	defer m.mu.Unlock()
	if agg, ok := m.byID[reminder.ID]; ok {
		agg.setReminder(reminder)
		return agg
	}
	agg := New(m.store, reminder, m.photos, m.cal, m.loc, m.enrich, m.logger)
	m.byID[reminder.ID] = agg
	return agg
}

// Drop discards the aggregator for a deleted reminder
func (m *Manager) Drop(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}
