package models

import (
	"time"

	"github.com/google/uuid"
)

// EnrichmentKind classifies an enrichment item
type EnrichmentKind string

const (
	EnrichmentKindEvent    EnrichmentKind = "event"
	EnrichmentKindBirth    EnrichmentKind = "birth"
	EnrichmentKindDeath    EnrichmentKind = "death"
	EnrichmentKindHoliday  EnrichmentKind = "holiday"
	EnrichmentKindFeatured EnrichmentKind = "featured"
	EnrichmentKindNews     EnrichmentKind = "news"
)

// HistoricalEvent is an "on this day" fact returned by the history provider
type HistoricalEvent struct {
	ID       uuid.UUID      `json:"id"`
	Year     int            `json:"year"`
	Text     string         `json:"text"`
	Kind     EnrichmentKind `json:"kind"`
	URL      string         `json:"url,omitempty"`
	ImageURL string         `json:"imageUrl,omitempty"`
	Summary  string         `json:"summary,omitempty"`
}

// NewsHeadline is a dated headline returned by the news provider
type NewsHeadline struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	URL         string    `json:"url,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Summary     string    `json:"summary,omitempty"`
}

// EnrichmentItem is the provider-neutral record the reflection aggregator
// holds. History and news providers are mutually exclusive per deployment, so
// a single slot carries whichever one is configured. Items are ephemeral:
// they live only in the aggregator's current reflection-date cache.
type EnrichmentItem struct {
	ID          uuid.UUID      `json:"id"`
	Kind        EnrichmentKind `json:"kind"`
	Title       string         `json:"title"`
	Text        string         `json:"text,omitempty"`
	Year        int            `json:"year,omitempty"`
	Source      string         `json:"source,omitempty"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
	URL         string         `json:"url,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Summary     string         `json:"summary,omitempty"`
}

// Item converts a historical event into the aggregator record
func (e HistoricalEvent) Item() EnrichmentItem {
	return EnrichmentItem{
		ID:       e.ID,
		Kind:     e.Kind,
		Title:    e.Text,
		Text:     e.Text,
		Year:     e.Year,
		URL:      e.URL,
		ImageURL: e.ImageURL,
		Summary:  e.Summary,
	}
}

// Item converts a news headline into the aggregator record
func (h NewsHeadline) Item() EnrichmentItem {
	published := h.PublishedAt
	return EnrichmentItem{
		ID:          h.ID,
		Kind:        EnrichmentKindNews,
		Title:       h.Title,
		Text:        h.Description,
		Source:      h.Source,
		PublishedAt: &published,
		URL:         h.URL,
		ImageURL:    h.ImageURL,
		Summary:     h.Summary,
	}
}
