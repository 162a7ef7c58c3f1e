package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/models"
)

// FileLocationTracker accepts movement reports from devices and keeps a
// rolling file-backed history. Points older than the retention window are
// pruned on every write.
type FileLocationTracker struct {
	mu          sync.Mutex
	points      []models.LocationPoint
	tracking    bool
	file        string
	retention   time.Duration
	accuracyMax float64
	logger      *zap.Logger
	now         func() time.Time
}

// NewFileLocationTracker loads any existing history from file. Unreadable
// history is treated as empty rather than fatal, the trail regrows.
func NewFileLocationTracker(file string, retentionDays int, accuracyMax float64, logger *zap.Logger) *FileLocationTracker {
	t := &FileLocationTracker{
		file:        file,
		retention:   time.Duration(retentionDays) * 24 * time.Hour,
		accuracyMax: accuracyMax,
		logger:      logger,
		now:         time.Now,
	}

	data, err := os.ReadFile(file)
	if err == nil {
		if err := json.Unmarshal(data, &t.points); err != nil {
			logger.Warn("location_history_unreadable_starting_empty",
				zap.String("file", file),
				zap.Error(err))
			t.points = nil
		}
	}
	return t
}

// RequestAuthorization verifies the history file's directory is writable
func (t *FileLocationTracker) RequestAuthorization(ctx context.Context) error {
	dir := filepath.Dir(t.file)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return apperr.PermissionDenied("Location")
	}
	return nil
}

// StartTracking begins accepting movement reports
func (t *FileLocationTracker) StartTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracking = true
}

// StopTracking stops accepting movement reports
func (t *FileLocationTracker) StopTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracking = false
}

// Tracking reports whether movement reports are currently accepted
func (t *FileLocationTracker) Tracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracking
}

// Record stores a movement report. Points are dropped silently when tracking
// is off, and dropped with a debug log when their accuracy is too poor to be
// a meaningful trail point.
func (t *FileLocationTracker) Record(point models.LocationPoint) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracking {
		return nil
	}
	if point.HorizontalAccuracy < 0 || point.HorizontalAccuracy >= t.accuracyMax {
		t.logger.Debug("location_point_dropped_poor_accuracy",
			zap.Float64("accuracy", point.HorizontalAccuracy))
		return nil
	}

	t.points = append(t.points, point)
	t.pruneLocked()
	return t.persistLocked()
}

// FetchLocations returns up to maxCount points recorded on the given day,
// sorted by timestamp
func (t *FileLocationTracker) FetchLocations(ctx context.Context, date time.Time, maxCount int) ([]models.LocationPoint, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dayStart := models.StartOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var points []models.LocationPoint
	for _, p := range t.points {
		if !p.Timestamp.Before(dayStart) && p.Timestamp.Before(dayEnd) {
			points = append(points, p)
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	if maxCount > 0 && len(points) > maxCount {
		points = points[:maxCount]
	}
	return points, nil
}

// pruneLocked drops points older than the retention window
func (t *FileLocationTracker) pruneLocked() {
	cutoff := t.now().Add(-t.retention)
	kept := t.points[:0]
	for _, p := range t.points {
		if p.Timestamp.After(cutoff) {
			kept = append(kept, p)
		}
	}
	t.points = kept
}

func (t *FileLocationTracker) persistLocked() error {
	data, err := json.MarshalIndent(t.points, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode location history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.file), 0o700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(t.file), ".locations-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write location history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.file); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace location history: %w", err)
	}
	return nil
}
