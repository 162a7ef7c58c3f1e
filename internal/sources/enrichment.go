package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/ai"
	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/models"
)

// DefaultHistoryBaseURL is the Wikimedia "on this day" feed endpoint
const DefaultHistoryBaseURL = "https://api.wikimedia.org/feed/v1/wikipedia/en/onthisday/all"

// summaryTimeout bounds the whole enhancement pass for one item batch
const summaryTimeout = 45 * time.Second

// HistorySource serves "on this day" facts from the Wikimedia feed
type HistorySource struct {
	baseURL    string
	client     *http.Client
	summarizer ai.Summarizer
	logger     *zap.Logger
}

// NewHistorySource creates a history source. Empty baseURL falls back to the
// public Wikimedia feed; nil summarizer disables summaries.
func NewHistorySource(baseURL string, summarizer ai.Summarizer, logger *zap.Logger) *HistorySource {
	if baseURL == "" {
		baseURL = DefaultHistoryBaseURL
	}
	return &HistorySource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: 15 * time.Second},
		summarizer: summarizer,
		logger:     logger,
	}
}

// onThisDayResponse mirrors the Wikimedia feed shape, one list per category
type onThisDayResponse struct {
	Selected []onThisDayEntry `json:"selected"`
	Events   []onThisDayEntry `json:"events"`
	Births   []onThisDayEntry `json:"births"`
	Deaths   []onThisDayEntry `json:"deaths"`
	Holidays []onThisDayEntry `json:"holidays"`
}

type onThisDayEntry struct {
	Text  string `json:"text"`
	Year  int    `json:"year"`
	Pages []struct {
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
		Thumbnail struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
	} `json:"pages"`
}

// FetchItems returns up to maxCount facts for the given date's month and day,
// most recent year first.
func (s *HistorySource) FetchItems(ctx context.Context, date time.Time, maxCount int) ([]models.EnrichmentItem, error) {
	u := fmt.Sprintf("%s/%02d/%02d", s.baseURL, int(date.Month()), date.Day())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperr.Unknown(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.NetworkUnavailable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Backend(fmt.Sprintf("history feed returned %d", resp.StatusCode), nil)
	}

	var feed onThisDayResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, apperr.DataCorruption(err)
	}

	var events []models.HistoricalEvent
	appendEntries := func(entries []onThisDayEntry, kind models.EnrichmentKind) {
		for _, entry := range entries {
			ev := models.HistoricalEvent{
				ID:   uuid.New(),
				Year: entry.Year,
				Text: entry.Text,
				Kind: kind,
			}
			if len(entry.Pages) > 0 {
				ev.URL = entry.Pages[0].ContentURLs.Desktop.Page
				ev.ImageURL = entry.Pages[0].Thumbnail.Source
			}
			events = append(events, ev)
		}
	}
	appendEntries(feed.Selected, models.EnrichmentKindFeatured)
	appendEntries(feed.Events, models.EnrichmentKindEvent)
	appendEntries(feed.Births, models.EnrichmentKindBirth)
	appendEntries(feed.Deaths, models.EnrichmentKindDeath)
	appendEntries(feed.Holidays, models.EnrichmentKindHoliday)

	sort.SliceStable(events, func(i, j int) bool { return events[i].Year > events[j].Year })
	if maxCount > 0 && len(events) > maxCount {
		events = events[:maxCount]
	}

	items := make([]models.EnrichmentItem, len(events))
	for i, ev := range events {
		items[i] = ev.Item()
	}
	return items, nil
}

// EnhanceWithSummary implements EnrichmentSource
func (s *HistorySource) EnhanceWithSummary(ctx context.Context, items []models.EnrichmentItem) []models.EnrichmentItem {
	return enhanceWithSummary(ctx, s.summarizer, s.logger, items)
}

// NewsSource serves dated headlines from a NewsAPI-compatible endpoint
type NewsSource struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	summarizer ai.Summarizer
	logger     *zap.Logger
}

// NewNewsSource creates a news source; nil summarizer disables summaries
func NewNewsSource(baseURL, apiKey string, summarizer ai.Summarizer, logger *zap.Logger) *NewsSource {
	return &NewsSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 15 * time.Second},
		summarizer: summarizer,
		logger:     logger,
	}
}

type newsResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		URLToImage  string    `json:"urlToImage"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// FetchItems returns up to maxCount headlines published on the given date
func (s *NewsSource) FetchItems(ctx context.Context, date time.Time, maxCount int) ([]models.EnrichmentItem, error) {
	day := date.Format("2006-01-02")
	query := url.Values{
		"from":   {day},
		"to":     {day},
		"sortBy": {"popularity"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/everything?"+query.Encode(), nil)
	if err != nil {
		return nil, apperr.Unknown(err)
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.NetworkUnavailable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperr.Backend("news api key rejected", nil)
	case resp.StatusCode != http.StatusOK:
		return nil, apperr.Backend(fmt.Sprintf("news api returned %d", resp.StatusCode), nil)
	}

	var feed newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, apperr.DataCorruption(err)
	}

	var items []models.EnrichmentItem
	for _, article := range feed.Articles {
		if maxCount > 0 && len(items) >= maxCount {
			break
		}
		headline := models.NewsHeadline{
			ID:          uuid.New(),
			Title:       article.Title,
			Description: article.Description,
			Source:      article.Source.Name,
			PublishedAt: article.PublishedAt,
			URL:         article.URL,
			ImageURL:    article.URLToImage,
		}
		items = append(items, headline.Item())
	}
	return items, nil
}

// EnhanceWithSummary implements EnrichmentSource
func (s *NewsSource) EnhanceWithSummary(ctx context.Context, items []models.EnrichmentItem) []models.EnrichmentItem {
	return enhanceWithSummary(ctx, s.summarizer, s.logger, items)
}

// enhanceWithSummary attaches best-effort summaries to each item. A nil
// summarizer or a failing call leaves the item untouched, never errors.
func enhanceWithSummary(ctx context.Context, summarizer ai.Summarizer, logger *zap.Logger, items []models.EnrichmentItem) []models.EnrichmentItem {
	if summarizer == nil || len(items) == 0 {
		return items
	}

	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	out := make([]models.EnrichmentItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Summary != "" || out[i].Text == "" {
			continue
		}
		summary, err := summarizer.Summarize(ctx, out[i].Text)
		if err != nil {
			logger.Debug("enrichment_summary_skipped",
				zap.String("item_id", out[i].ID.String()),
				zap.Error(err))
			continue
		}
		out[i].Summary = summary
	}
	return out
}
