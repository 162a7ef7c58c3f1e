// Package views holds the thin derived projections over the store
package views

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/store"
)

// ListView partitions the store's collection into upcoming and past
// reminders. It re-derives on every store change signal; days-remaining is
// computed against the time of each read so it stays fresh across midnight
// even with no data change.
type ListView struct {
	mu            sync.Mutex
	store         *store.Store
	lastRefreshed time.Time
	now           func() time.Time
}

// ListEntry pairs a reminder with its derived day counts
type ListEntry struct {
	Reminder       models.Reminder `json:"reminder"`
	DaysRemaining  int             `json:"daysRemaining"`
	ReflectionDate time.Time       `json:"reflectionDate"`
}

// NewListView creates the projection over the given store
func NewListView(st *store.Store) *ListView {
	return &ListView{store: st, now: time.Now}
}

// Upcoming returns reminders with daysRemaining >= 0, soonest first
func (v *ListView) Upcoming() []ListEntry {
	now := v.now()
	var out []ListEntry
	for _, r := range v.store.Reminders() {
		if days := r.DaysRemaining(now); days >= 0 {
			out = append(out, ListEntry{Reminder: r, DaysRemaining: days, ReflectionDate: r.ReflectionDate(now)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Reminder.Date.Equal(out[j].Reminder.Date) {
			return out[i].Reminder.Date.Before(out[j].Reminder.Date)
		}
		return out[i].Reminder.ID.String() < out[j].Reminder.ID.String()
	})
	return out
}

// Past returns reminders with daysRemaining < 0, most recent first
func (v *ListView) Past() []ListEntry {
	now := v.now()
	var out []ListEntry
	for _, r := range v.store.Reminders() {
		if days := r.DaysRemaining(now); days < 0 {
			out = append(out, ListEntry{Reminder: r, DaysRemaining: days, ReflectionDate: r.ReflectionDate(now)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Reminder.Date.Equal(out[j].Reminder.Date) {
			return out[i].Reminder.Date.After(out[j].Reminder.Date)
		}
		return out[i].Reminder.ID.String() < out[j].Reminder.ID.String()
	})
	return out
}

// Refresh delegates to the store's remote fetch-and-merge, then stamps the
// refresh time
func (v *ListView) Refresh(ctx context.Context) error {
	err := v.store.Refresh(ctx)
	v.mu.Lock()
	v.lastRefreshed = v.now()
	v.mu.Unlock()
	return err
}

// LastRefreshed returns the time of the most recent Refresh call
func (v *ListView) LastRefreshed() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastRefreshed
}
