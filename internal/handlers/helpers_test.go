package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mirrorday/mirrorday/internal/apperr"
)

func TestRespondJSONEnvelope(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusCreated, map[string]string{"title": "Trip"})

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if success, ok := body["success"].(bool); !ok || !success {
		t.Error("Expected success to be true")
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data object")
	}
	if data["title"] != "Trip" {
		t.Errorf("Expected title 'Trip', got %v", data["title"])
	}
	ts, ok := body["timestamp"].(string)
	if !ok {
		t.Fatal("Expected timestamp to be present")
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("Timestamp '%s' is not valid RFC3339: %v", ts, err)
	}
}

func TestRespondJSONErrorEnvelope(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid input")

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || success {
		t.Error("Expected success to be false")
	}
	if body["error"] != "Bad Request" {
		t.Errorf("Expected error 'Bad Request', got %v", body["error"])
	}
	if body["message"] != "Invalid input" {
		t.Errorf("Expected message 'Invalid input', got %v", body["message"])
	}
}

func TestSanitizeErrorMessageTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 500)
	got := sanitizeErrorMessage(long)
	if len(got) != 203 {
		t.Errorf("Expected truncation to 200 chars plus ellipsis, got length %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected truncated message to end with ellipsis")
	}
	if short := sanitizeErrorMessage("fine"); short != "fine" {
		t.Errorf("Expected short message unchanged, got %q", short)
	}
}

func TestRespondAppError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		err              error
		wantStatus       int
		wantError        string
		wantSettingsLink bool
	}{
		{
			name:             "permission denied maps to 403 with settings link",
			err:              apperr.PermissionDenied("Photos"),
			wantStatus:       http.StatusForbidden,
			wantError:        "Permission Denied",
			wantSettingsLink: true,
		},
		{
			name:       "network unavailable maps to 503",
			err:        apperr.NetworkUnavailable(errors.New("dial tcp: connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Network Unavailable",
		},
		{
			name:       "backend maps to 502",
			err:        apperr.Backend("gateway returned 500", nil),
			wantStatus: http.StatusBadGateway,
			wantError:  "Backend Error",
		},
		{
			name:       "data corruption maps to 422",
			err:        apperr.DataCorruption(errors.New("truncated payload")),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Data Corruption",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondAppError(w, tt.err)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}

			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body["error"] != tt.wantError {
				t.Errorf("Expected error %q, got %v", tt.wantError, body["error"])
			}
			if link, _ := body["settingsLink"].(bool); link != tt.wantSettingsLink {
				t.Errorf("Expected settingsLink %v, got %v", tt.wantSettingsLink, body["settingsLink"])
			}
		})
	}
}

// newTestRequest builds a request with an optional JSON body
func newTestRequest(method, path string, body any) *http.Request {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader(nil)
	}
	return httptest.NewRequest(method, path, bodyReader)
}
