// Package scenario is the HTTP client for the remote scenario service,
// which picks hand pairs matched to the player's current streak.
package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/equityguesser/gameserver/internal/poker"
)

type Client struct {
	http    *http.Client
	baseURL *url.URL
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("scenario: base URL required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("scenario: parse base URL: %w", err)
	}
	c := &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: u,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Get fetches one scenario for the given streak. The service scales
// difficulty from the streak, so the streak is the only parameter.
func (c *Client) Get(ctx context.Context, streak int) (*poker.Scenario, error) {
	u := *c.baseURL
	u.Path = u.Path + "/scenario"
	q := u.Query()
	q.Set("streak", strconv.Itoa(streak))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scenario request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("GET /scenario streak=%d: %s: %s", streak, resp.Status, string(b))
	}

	var s poker.Scenario
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("malformed scenario: %w", err)
	}
	return &s, nil
}

// Health pings the service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	u := *c.baseURL
	u.Path = u.Path + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scenario health: %s", resp.Status)
	}
	return nil
}
