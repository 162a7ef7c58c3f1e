package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/models"
)

type stubSummarizer struct {
	summary string
	err     error
	calls   int
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.calls++
	return s.summary, s.err
}

func TestHistorySourceFetchItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/03/14" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"events": [
				{"year": 1879, "text": "Albert Einstein is born.", "pages": [{"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Albert_Einstein"}}, "thumbnail": {"source": "https://img/einstein.jpg"}}]},
				{"year": 2015, "text": "Pi Day of the century."}
			],
			"holidays": [
				{"text": "White Day."}
			]
		}`))
	}))
	defer server.Close()

	source := NewHistorySource(server.URL, nil, zap.NewNop())
	items, err := source.FetchItems(context.Background(), time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatalf("FetchItems failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	// Most recent year first
	if items[0].Year != 2015 || items[1].Year != 1879 {
		t.Errorf("items not sorted by year desc: %d, %d", items[0].Year, items[1].Year)
	}
	if items[1].URL != "https://en.wikipedia.org/wiki/Albert_Einstein" {
		t.Errorf("page url not carried: %q", items[1].URL)
	}
	if items[1].ImageURL != "https://img/einstein.jpg" {
		t.Errorf("thumbnail not carried: %q", items[1].ImageURL)
	}
}

func TestHistorySourceCapsAtMaxCount(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events": [
			{"year": 1900, "text": "a"}, {"year": 1910, "text": "b"},
			{"year": 1920, "text": "c"}, {"year": 1930, "text": "d"}
		]}`))
	}))
	defer server.Close()

	source := NewHistorySource(server.URL, nil, zap.NewNop())
	items, err := source.FetchItems(context.Background(), time.Now(), 2)
	if err != nil {
		t.Fatalf("FetchItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestHistorySourceErrorClassification(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewHistorySource(server.URL, nil, zap.NewNop())
	_, err := source.FetchItems(context.Background(), time.Now(), 10)
	if apperr.KindOf(err) != apperr.KindBackend {
		t.Errorf("expected backend error, got %v", err)
	}

	unreachable := NewHistorySource("http://127.0.0.1:1", nil, zap.NewNop())
	_, err = unreachable.FetchItems(context.Background(), time.Now(), 10)
	if apperr.KindOf(err) != apperr.KindNetworkUnavailable {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestNewsSourceFetchItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("api key not sent, got %q", got)
		}
		if got := r.URL.Query().Get("from"); got != "2025-06-01" {
			t.Errorf("wrong from date %q", got)
		}
		_, _ = w.Write([]byte(`{"status": "ok", "articles": [
			{"source": {"name": "Example Times"}, "title": "Headline one", "description": "Something happened.", "url": "https://example.com/1", "publishedAt": "2025-06-01T08:00:00Z"},
			{"source": {"name": "Example Times"}, "title": "Headline two", "publishedAt": "2025-06-01T09:00:00Z"}
		]}`))
	}))
	defer server.Close()

	source := NewNewsSource(server.URL, "secret", nil, zap.NewNop())
	items, err := source.FetchItems(context.Background(), time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC), 4)
	if err != nil {
		t.Fatalf("FetchItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Kind != models.EnrichmentKindNews {
		t.Errorf("expected news kind, got %s", items[0].Kind)
	}
	if items[0].Source != "Example Times" {
		t.Errorf("source not carried: %q", items[0].Source)
	}
	if items[0].PublishedAt == nil {
		t.Error("publishedAt not carried")
	}
}

func TestEnhanceWithSummaryAttaches(t *testing.T) {
	t.Parallel()

	summarizer := &stubSummarizer{summary: "Short version."}
	items := []models.EnrichmentItem{
		{ID: uuid.New(), Title: "a", Text: "A long fact about a thing."},
		{ID: uuid.New(), Title: "b", Text: "Another fact.", Summary: "already set"},
	}

	out := enhanceWithSummary(context.Background(), summarizer, zap.NewNop(), items)
	if out[0].Summary != "Short version." {
		t.Errorf("summary not attached: %q", out[0].Summary)
	}
	if out[1].Summary != "already set" {
		t.Errorf("existing summary overwritten: %q", out[1].Summary)
	}
	if summarizer.calls != 1 {
		t.Errorf("expected 1 summarizer call, got %d", summarizer.calls)
	}
	// Input slice untouched
	if items[0].Summary != "" {
		t.Error("input slice mutated")
	}
}

func TestEnhanceWithSummaryIsIdentityOnFailure(t *testing.T) {
	t.Parallel()

	items := []models.EnrichmentItem{{ID: uuid.New(), Title: "a", Text: "A fact."}}

	out := enhanceWithSummary(context.Background(), nil, zap.NewNop(), items)
	if len(out) != 1 || out[0].Summary != "" {
		t.Errorf("nil summarizer should pass through, got %+v", out)
	}

	failing := &stubSummarizer{err: errors.New("quota exceeded")}
	out = enhanceWithSummary(context.Background(), failing, zap.NewNop(), items)
	if len(out) != 1 || out[0].Summary != "" {
		t.Errorf("failing summarizer should pass through, got %+v", out)
	}
}
