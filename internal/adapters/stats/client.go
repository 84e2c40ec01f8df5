package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventboard/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

type hitRequest struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

type httpStatsClient struct {
	client  *http.Client
	baseURL string
	app     string
}

// NewHTTPClient returns a StatsService that talks to the statistics collector
// over HTTP. app identifies this service in the recorded hits.
func NewHTTPClient(client *http.Client, baseURL, app string) domain.StatsService {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpStatsClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		app:     app,
	}
}

func (c *httpStatsClient) RecordHit(ctx context.Context, uri, clientIP string) error {
	body, err := json.Marshal(hitRequest{
		App:       c.app,
		URI:       uri,
		IP:        clientIP,
		Timestamp: time.Now().Format(timeLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to encode hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats collector returned status: %d", resp.StatusCode)
	}
	return nil
}

// ViewCounts queries unique hits for the events' detail pages. The window
// starts at the earliest publication timestamp among the events, so hits
// before any event existed are never counted.
func (c *httpStatsClient) ViewCounts(ctx context.Context, events []*domain.Event) (map[int64]int64, error) {
	result := make(map[int64]int64, len(events))
	uris := make([]string, 0, len(events))
	var start *time.Time
	for _, ev := range events {
		if ev.PublishedOn == nil {
			continue
		}
		uris = append(uris, fmt.Sprintf("/events/%d", ev.ID))
		if start == nil || ev.PublishedOn.Before(*start) {
			start = ev.PublishedOn
		}
	}
	if start == nil {
		return result, nil
	}

	q := url.Values{}
	q.Set("start", start.Format(timeLayout))
	q.Set("end", time.Now().Format(timeLayout))
	q.Set("unique", "true")
	for _, u := range uris {
		q.Add("uris", u)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats collector returned status: %d", resp.StatusCode)
	}
	var stats []viewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}

	for _, s := range stats {
		id, err := eventIDFromURI(s.URI)
		if err != nil {
			continue
		}
		result[id] = s.Hits
	}
	return result, nil
}

func eventIDFromURI(uri string) (int64, error) {
	raw, ok := strings.CutPrefix(uri, "/events/")
	if !ok {
		return 0, fmt.Errorf("unexpected uri %q", uri)
	}
	return strconv.ParseInt(raw, 10, 64)
}
