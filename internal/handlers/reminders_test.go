package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/store"
	"github.com/mirrorday/mirrorday/internal/views"
)

type stubBackend struct{}

func (stubBackend) FetchAll(ctx context.Context) ([]models.Reminder, error) { return nil, nil }
func (stubBackend) Save(ctx context.Context, r models.Reminder) (string, error) {
	return r.ID.String(), nil
}
func (stubBackend) Delete(ctx context.Context, ref string) error { return nil }

func newTestRouter(t *testing.T) (*mux.Router, *store.Store) {
	t.Helper()
	file := store.NewFileStore(filepath.Join(t.TempDir(), "reminders.json"))
	st := store.New(file, stubBackend{}, zap.NewNop())
	list := views.NewListView(st)

	router := mux.NewRouter()
	handler := NewReminderHandler(st, list)
	handler.RegisterRoutes(router.PathPrefix("/reminders").Subrouter())
	return router, st
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newTestRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data, _ := envelope["data"].(map[string]any)
	return data
}

func TestCreateReminder(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t)
	w := doJSON(t, router, "POST", "/reminders", map[string]any{
		"title":           "Holiday",
		"date":            "2026-12-24",
		"backgroundColor": "Pastel Blue",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["title"] != "Holiday" {
		t.Errorf("title = %v", data["title"])
	}

	reminders := st.Reminders()
	if len(reminders) != 1 {
		t.Fatalf("expected 1 reminder in store, got %d", len(reminders))
	}
	if reminders[0].BackgroundColor == nil || *reminders[0].BackgroundColor != models.ColorPastelBlue {
		t.Error("color not stored")
	}
}

func TestCreateReminderRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"date": "2026-12-24"}},
		{"missing date", map[string]any{"title": "x"}},
		{"bad date", map[string]any{"title": "x", "date": "tomorrow"}},
		{"unknown color", map[string]any{"title": "x", "date": "2026-12-24", "backgroundColor": "Neon Green"}},
		{"whitespace title", map[string]any{"title": "   ", "date": "2026-12-24"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			router, st := newTestRouter(t)
			w := doJSON(t, router, "POST", "/reminders", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if len(st.Reminders()) != 0 {
				t.Error("invalid reminder reached the store")
			}
		})
	}
}

func TestListRemindersPartitions(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t)
	today := models.StartOfDay(time.Now())
	st.Add(models.NewReminder("Up", today.AddDate(0, 0, 3)))
	st.Add(models.NewReminder("Gone", today.AddDate(0, 0, -3)))

	w := doJSON(t, router, "GET", "/reminders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	data := decodeData(t, w)
	upcoming, _ := data["upcoming"].([]any)
	past, _ := data["past"].([]any)
	if len(upcoming) != 1 || len(past) != 1 {
		t.Errorf("partition sizes wrong: upcoming=%d past=%d", len(upcoming), len(past))
	}
	if _, ok := data["syncState"]; !ok {
		t.Error("sync state missing from list response")
	}
}

func TestUpdateReminderPartial(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t)
	reminder := models.NewReminder("Original", models.StartOfDay(time.Now()).AddDate(0, 0, 10))
	st.Add(reminder)

	w := doJSON(t, router, "PATCH", "/reminders/"+reminder.ID.String(), map[string]any{
		"title": "Renamed",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got := st.Reminders()[0]
	if got.Title != "Renamed" {
		t.Errorf("title not updated: %q", got.Title)
	}
	if !got.Date.Equal(reminder.Date) {
		t.Error("untouched field changed")
	}
	if !got.ModifiedAt.After(reminder.ModifiedAt) {
		t.Error("modification stamp not advanced")
	}
}

func TestUpdateUnknownReminder(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	w := doJSON(t, router, "PATCH", "/reminders/1b671a64-40d5-491e-99b0-da01ff1f3341", map[string]any{
		"title": "x",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDeleteReminder(t *testing.T) {
	t.Parallel()

	router, st := newTestRouter(t)
	reminder := models.NewReminder("Gone", time.Now().AddDate(0, 0, 5))
	st.Add(reminder)

	w := doJSON(t, router, "DELETE", "/reminders/"+reminder.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(st.Reminders()) != 0 {
		t.Error("reminder not deleted")
	}
}

func TestRefreshReportsSyncState(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	w := doJSON(t, router, "POST", "/reminders/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	data := decodeData(t, w)
	state, _ := data["syncState"].(map[string]any)
	if state["status"] != string(models.SyncStatusSynced) {
		t.Errorf("expected synced state, got %v", state["status"])
	}
}
