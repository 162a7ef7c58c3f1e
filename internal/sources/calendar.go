package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mirrorday/mirrorday/internal/apperr"
	"github.com/mirrorday/mirrorday/internal/models"
)

// GatewayCalendarSource queries an HTTP calendar gateway (a thin bridge in
// front of the user's CalDAV or provider account) for calendars and events.
type GatewayCalendarSource struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewGatewayCalendarSource creates a calendar source against the gateway at
// baseURL, authenticating with the given bearer token.
func NewGatewayCalendarSource(baseURL, token string) *GatewayCalendarSource {
	return &GatewayCalendarSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// RequestAuthorization probes the gateway's calendar listing to surface
// permission problems early
func (s *GatewayCalendarSource) RequestAuthorization(ctx context.Context) error {
	if s.baseURL == "" {
		return apperr.PermissionDenied("Calendar")
	}
	_, err := s.FetchCalendars(ctx)
	return err
}

// FetchCalendars lists every calendar the gateway account can see
func (s *GatewayCalendarSource) FetchCalendars(ctx context.Context) ([]models.CalendarRef, error) {
	var calendars []models.CalendarRef
	if err := s.get(ctx, "/calendars", nil, &calendars); err != nil {
		return nil, err
	}
	return calendars, nil
}

// FetchEvents returns the given day's events across the given calendars
func (s *GatewayCalendarSource) FetchEvents(ctx context.Context, date time.Time, calendars []models.CalendarRef) ([]models.Event, error) {
	if len(calendars) == 0 {
		return nil, nil
	}
	ids := make([]string, len(calendars))
	for i, c := range calendars {
		ids[i] = c.ID
	}

	query := url.Values{
		"date":      {date.Format("2006-01-02")},
		"calendars": {strings.Join(ids, ",")},
	}
	var events []models.Event
	if err := s.get(ctx, "/events", query, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *GatewayCalendarSource) get(ctx context.Context, path string, query url.Values, out any) error {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return apperr.Unknown(err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperr.NetworkUnavailable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperr.PermissionDenied("Calendar")
	case resp.StatusCode != http.StatusOK:
		return apperr.Backend(fmt.Sprintf("calendar gateway returned %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.DataCorruption(err)
	}
	return nil
}
