// Package widget renders the home-screen widget view: a read-only consumer
// of the locally persisted reminder file that surfaces the single soonest
// upcoming reminder.
package widget

import (
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/models"
)

// StalenessWarning is the file age past which the widget logs that it is
// rendering stale data. Stale data is still rendered; there is no hard
// cutoff.
const StalenessWarning = time.Hour

// Entry is what the widget shows for the chosen reminder
type Entry struct {
	Reminder      models.Reminder `json:"reminder"`
	DaysRemaining int             `json:"daysRemaining"`
	Stale         bool            `json:"stale"`
}

// Widget reads the reminder file independently of the store
type Widget struct {
	file   string
	logger *zap.Logger
	now    func() time.Time
}

// New creates a widget over the given reminder file
func New(file string, logger *zap.Logger) *Widget {
	return &Widget{file: file, logger: logger, now: time.Now}
}

// Next returns the soonest reminder with daysRemaining >= 0, or nil when
// there is nothing to show. A missing or unparseable file means "nothing to
// show", never an error.
func (w *Widget) Next() *Entry {
	data, err := os.ReadFile(w.file)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("widget_file_unreadable", zap.Error(err))
		}
		return nil
	}

	var reminders []models.Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		w.logger.Warn("widget_file_unparseable", zap.Error(err))
		return nil
	}

	now := w.now()
	var best *models.Reminder
	for i := range reminders {
		if reminders[i].DaysRemaining(now) < 0 {
			continue
		}
		if best == nil || reminders[i].Date.Before(best.Date) {
			best = &reminders[i]
		}
	}
	if best == nil {
		return nil
	}

	stale := false
	if info, err := os.Stat(w.file); err == nil && now.Sub(info.ModTime()) > StalenessWarning {
		stale = true
		w.logger.Info("widget_rendering_stale_data",
			zap.Duration("age", now.Sub(info.ModTime())))
	}

	return &Entry{
		Reminder:      *best,
		DaysRemaining: best.DaysRemaining(now),
		Stale:         stale,
	}
}
