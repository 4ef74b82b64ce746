// Package cloudbet is a thin read-only client for the Cloudbet public sports
// odds API.
package cloudbet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const maxResponseBytes = 8 << 20

// SupportedSports maps the provider sport keys we surface to their short
// display names.
var SupportedSports = map[string]string{
	"american-football": "NFL",
	"basketball":        "NBA",
	"baseball":          "MLB",
	"soccer":            "Soccer",
	"ice-hockey":        "NHL",
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cloudbet: status %d: %s", e.StatusCode, e.Body)
}

var ErrNotConfigured = errors.New("cloudbet: api key not configured")

type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL *url.URL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Sports returns the provider's sport entries that are supported and
// currently have events.
func (c *Client) Sports(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.get(ctx, "odds", "sports")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("cloudbet: invalid json in sports response")
	}

	out := []json.RawMessage{}
	gjson.GetBytes(body, "sports").ForEach(func(_, sport gjson.Result) bool {
		if _, ok := SupportedSports[sport.Get("key").String()]; ok && sport.Get("eventCount").Int() > 0 {
			out = append(out, json.RawMessage(sport.Raw))
		}
		return true
	})
	return out, nil
}

// Events returns the provider payload for one sport unchanged.
func (c *Client) Events(ctx context.Context, sport string) (json.RawMessage, error) {
	body, err := c.get(ctx, "odds", "sports", sport)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("cloudbet: invalid json in events response")
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, segments ...string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	u := c.baseURL.JoinPath(segments...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("cloudbet: build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudbet: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("cloudbet: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
