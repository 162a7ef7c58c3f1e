package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/aggregator"
	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/store"
)

type fixedPhotoSource struct {
	photos []models.Photo
	err    error
}

func (f fixedPhotoSource) RequestAuthorization(ctx context.Context) error { return f.err }
func (f fixedPhotoSource) FetchPhotos(ctx context.Context, date time.Time, maxCount int) ([]models.Photo, error) {
	return f.photos, f.err
}

type fixedCalendarSource struct{}

func (fixedCalendarSource) RequestAuthorization(ctx context.Context) error { return nil }
func (fixedCalendarSource) FetchCalendars(ctx context.Context) ([]models.CalendarRef, error) {
	return []models.CalendarRef{{ID: "home", Title: "Home"}}, nil
}
func (fixedCalendarSource) FetchEvents(ctx context.Context, date time.Time, calendars []models.CalendarRef) ([]models.Event, error) {
	return []models.Event{{ID: "e1", Title: "Dinner"}}, nil
}

type emptyLocationSource struct{}

func (emptyLocationSource) RequestAuthorization(ctx context.Context) error { return nil }
func (emptyLocationSource) StartTracking()                                 {}
func (emptyLocationSource) StopTracking()                                  {}
func (emptyLocationSource) FetchLocations(ctx context.Context, date time.Time, maxCount int) ([]models.LocationPoint, error) {
	return nil, nil
}

type emptyEnrichmentSource struct{}

func (emptyEnrichmentSource) FetchItems(ctx context.Context, date time.Time, maxCount int) ([]models.EnrichmentItem, error) {
	return nil, nil
}
func (emptyEnrichmentSource) EnhanceWithSummary(ctx context.Context, items []models.EnrichmentItem) []models.EnrichmentItem {
	return items
}

func newReflectionRouter(t *testing.T, photos fixedPhotoSource) (*mux.Router, *store.Store) {
	t.Helper()
	file := store.NewFileStore(filepath.Join(t.TempDir(), "reminders.json"))
	st := store.New(file, stubBackend{}, zap.NewNop())
	manager := aggregator.NewManager(st, photos, fixedCalendarSource{}, emptyLocationSource{}, emptyEnrichmentSource{}, zap.NewNop())

	router := mux.NewRouter()
	NewReflectionHandler(st, manager).RegisterRoutes(router.PathPrefix("/reminders").Subrouter())
	return router, st
}

func TestGetReflectionSnapshot(t *testing.T) {
	t.Parallel()

	router, st := newReflectionRouter(t, fixedPhotoSource{photos: []models.Photo{{Path: "/p/a.jpg"}}})
	reminder := models.NewReminder("Trip", models.StartOfDay(time.Now()).AddDate(0, 0, 12))
	st.Add(reminder)

	// Poll until the concurrent fetches settle
	deadline := time.Now().Add(2 * time.Second)
	var data map[string]any
	for {
		w := doJSON(t, router, "GET", "/reminders/"+reminder.ID.String()+"/reflection", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		data = decodeData(t, w)
		if data["loadingPhotos"] == false {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("photos never settled")
		}
		time.Sleep(10 * time.Millisecond)
	}

	photos, _ := data["photos"].([]any)
	if len(photos) != 1 {
		t.Errorf("expected 1 photo, got %d", len(photos))
	}
	if _, ok := data["reflectionDate"]; !ok {
		t.Error("reflection date missing")
	}
}

func TestGetReflectionUnknownReminder(t *testing.T) {
	t.Parallel()

	router, _ := newReflectionRouter(t, fixedPhotoSource{})
	w := doJSON(t, router, "GET", "/reminders/1b671a64-40d5-491e-99b0-da01ff1f3341/reflection", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSetCalendarsAndDismissError(t *testing.T) {
	t.Parallel()

	router, st := newReflectionRouter(t, fixedPhotoSource{err: apperr.PermissionDenied("Photos")})
	reminder := models.NewReminder("Trip", models.StartOfDay(time.Now()).AddDate(0, 0, 5))
	st.Add(reminder)

	base := "/reminders/" + reminder.ID.String() + "/reflection"

	w := doJSON(t, router, "PUT", base+"/calendars", map[string]any{
		"calendarIds": []string{"home"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Wait for the failing photo fetch to land in the error slot
	deadline := time.Now().Add(2 * time.Second)
	for {
		w = doJSON(t, router, "GET", base, nil)
		data := decodeData(t, w)
		if errStr, _ := data["error"].(string); errStr != "" {
			if link, _ := data["errorSettingsLink"].(bool); !link {
				t.Error("permission error should carry a settings link")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("photo failure never surfaced")
		}
		time.Sleep(10 * time.Millisecond)
	}

	w = doJSON(t, router, "DELETE", base+"/error", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := decodeData(t, w)
	if errStr, _ := data["error"].(string); errStr != "" {
		t.Errorf("error slot not cleared: %q", errStr)
	}
}
