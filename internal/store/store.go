// Package store owns the canonical reminder collection. It bridges the local
// durable file and the remote synchronization backend: every local mutation
// is persisted and published immediately, then propagated to the remote as a
// best-effort background task that never blocks or fails the caller.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/logger"
	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/remote"
)

// Store is the sole owner of the reminder collection. All mutations are
// serialized through its lock; consumers hold read-only snapshots refreshed
// on change notification.
type Store struct {
	mu        sync.Mutex
	reminders []models.Reminder
	state     models.SyncState

	file    *FileStore
	backend remote.Backend
	logger  *zap.Logger
	now     func() time.Time

	subsMu sync.Mutex
	subs   []chan struct{}

	// pending tracks in-flight remote side effects so tests can drain them
	pending sync.WaitGroup
}

// New creates a store and synchronously loads the local file so reminders
// are available before first render. Read failures mean "empty collection",
// never a fatal startup error.
func New(file *FileStore, backend remote.Backend, logger *zap.Logger) *Store {
	s := &Store{
		file:    file,
		backend: backend,
		logger:  logger,
		now:     time.Now,
		state:   models.SyncState{Status: models.SyncStatusSyncing},
	}

	reminders, err := file.Load()
	if err != nil {
		logger.Error("failed_to_load_local_reminders",
			zap.String("path", file.Path()),
			zap.Error(err),
		)
	}
	s.reminders = reminders
	return s
}

// Start kicks off the initial remote fetch-and-merge and consumes the remote
// change-notification stream until ctx is done. A notification only ever
// triggers a Refresh, preserving single-writer discipline.
func (s *Store) Start(ctx context.Context, notifier remote.Notifier) {
	go func() {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("initial_sync_failed", zap.Error(err))
		}
	}()

	if notifier == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-notifier.Changes():
				if !ok {
					return
				}
				s.logger.Debug("remote_change_notification_received")
				if err := s.Refresh(ctx); err != nil {
					s.logger.Warn("notification_triggered_refresh_failed", zap.Error(err))
				}
			}
		}
	}()
}

// Reminders returns a snapshot of the current collection. No order is
// enforced beyond the merge's date-ascending publish; consumers sort per
// their own needs.
func (s *Store) Reminders() []models.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out
}

// SyncState returns the current remote-sync state
func (s *Store) SyncState() models.SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel receiving one signal per state replacement.
// The channel is buffered and coalescing: consumers re-pull a fresh snapshot
// on every signal rather than receiving deltas.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Add appends the reminder, persists, notifies, then asynchronously creates
// the remote record. Remote failure is logged, never surfaced: the reminder
// stays valid locally regardless of remote outcome.
func (s *Store) Add(r models.Reminder) {
	s.mu.Lock()
	s.reminders = append(s.reminders, r)
	s.persistLocked()
	s.mu.Unlock()
	s.notify()

	s.pushAsync(r)
}

// Update replaces the reminder with a fresh modification stamp. Unknown ids
// are a no-op.
func (s *Store) Update(r models.Reminder) {
	s.mu.Lock()
	idx := s.indexOfLocked(r.ID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	r.ModifiedAt = s.now()
	if r.RemoteRef == "" {
		r.RemoteRef = s.reminders[idx].RemoteRef
	}
	s.reminders[idx] = r
	s.persistLocked()
	s.mu.Unlock()
	s.notify()

	s.pushAsync(r)
}

// Delete removes the reminder by id, persists, notifies, then asynchronously
// deletes the remote record if one exists. A never-synced reminder is a pure
// local delete.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	ref := s.reminders[idx].RemoteRef
	s.reminders = append(s.reminders[:idx], s.reminders[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()
	s.notify()

	if ref == "" {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteOpTimeout)
		defer cancel()
		if err := s.backend.Delete(ctx, ref); err != nil {
			s.logger.Warn("remote_delete_failed",
				zap.String("reminder_id", id.String()),
				zap.Error(err),
			)
		}
	}()
}

// Refresh fetches the remote collection and merges it into the local one,
// publishing the result atomically. Drives the sync-state transitions:
// Syncing while in flight, Synced on success, Offline on network-class
// failure, Error otherwise. There is no retry loop here; callers wanting
// resilience schedule their own Refresh calls.
func (s *Store) Refresh(ctx context.Context) error {
	s.setState(models.SyncState{Status: models.SyncStatusSyncing})

	fetched, err := s.backend.FetchAll(ctx)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNetworkUnavailable {
			s.setState(models.SyncState{Status: models.SyncStatusOffline})
		} else {
			s.setState(models.SyncState{
				Status: models.SyncStatusError,
				Detail: logger.SanitizeError(err),
			})
		}
		s.logger.Warn("remote_fetch_failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	merged, uploads := merge(s.reminders, fetched)
	s.reminders = merged
	s.state = models.SyncState{Status: models.SyncStatusSynced}
	s.persistLocked()
	s.mu.Unlock()
	s.notify()

	s.logger.Info("remote_merge_complete",
		zap.Int("reminders", len(merged)),
		zap.Int("scheduled_uploads", len(uploads)),
	)
	for _, r := range uploads {
		s.pushAsync(r)
	}
	return nil
}

const remoteOpTimeout = 30 * time.Second

// pushAsync propagates one reminder to the remote backend as a
// fire-and-forget task. On success the remote reference is re-attached to
// the in-memory copy (never persisted).
func (s *Store) pushAsync(r models.Reminder) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteOpTimeout)
		defer cancel()

		ref, err := s.backend.Save(ctx, r)
		if err != nil {
			s.logger.Warn("remote_save_failed",
				zap.String("reminder_id", r.ID.String()),
				zap.Error(err),
			)
			return
		}

		s.mu.Lock()
		if idx := s.indexOfLocked(r.ID); idx >= 0 {
			s.reminders[idx].RemoteRef = ref
		}
		s.mu.Unlock()
	}()
}

// drainRemote waits for in-flight remote side effects; test hook
func (s *Store) drainRemote() {
	s.pending.Wait()
}

func (s *Store) setState(state models.SyncState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// persistLocked writes the collection to disk. Write failures leave the
// in-memory state authoritative for this session; the next launch may miss
// the latest data, so the failure is logged at error level for operators.
func (s *Store) persistLocked() {
	if err := s.file.Save(s.reminders); err != nil {
		s.logger.Error("failed_to_persist_reminders",
			zap.String("path", s.file.Path()),
			zap.Error(err),
		)
	}
}

func (s *Store) indexOfLocked(id uuid.UUID) int {
	for i, r := range s.reminders {
		if r.ID == id {
			return i
		}
	}
	return -1
}
