// Package equity is the HTTP client for the remote hand-evaluation engine.
// It is only consulted when a scenario arrives without precomputed equities,
// and for naming made hands on the answer reveal.
package equity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
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
		return nil, errors.New("equity: base URL required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("equity: parse base URL: %w", err)
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

// CalcRequest is the engine's equity request. Hands and Board use compact
// card codes ("AhKh", "2c4c5h"). Dead cards and the EnumerateAll override
// are passed through when set; the engine picks enumeration vs sampling
// from the board size otherwise.
type CalcRequest struct {
	Hands        []string `json:"hands"`
	Board        string   `json:"board,omitempty"`
	Dead         string   `json:"dead,omitempty"`
	EnumerateAll *bool    `json:"enumerate_all,omitempty"`
}

// Calculate runs an equity computation on the remote engine.
func (c *Client) Calculate(ctx context.Context, calc CalcRequest) (*poker.EquityResult, error) {
	if len(calc.Hands) < 2 {
		return nil, errors.New("equity: at least two hands required")
	}
	var res poker.EquityResult
	if err := c.postJSON(ctx, "/equity", calc, &res); err != nil {
		return nil, err
	}
	if len(res.Equities) < len(calc.Hands) {
		return nil, fmt.Errorf("equity: got %d equities for %d hands", len(res.Equities), len(calc.Hands))
	}
	return &res, nil
}

// HandEquities is the common two-hand case used by the scenario cache.
func (c *Client) HandEquities(ctx context.Context, hands []string, board string) (*poker.EquityResult, error) {
	return c.Calculate(ctx, CalcRequest{Hands: hands, Board: board})
}

// Evaluation is the engine's ranking of a concrete set of cards.
type Evaluation struct {
	Ranking  int    `json:"ranking"`
	Category string `json:"category"`
	NumCards int    `json:"num_cards"`
}

// Evaluate ranks a hand (hole cards plus any board cards, compact codes).
func (c *Client) Evaluate(ctx context.Context, hand string) (*Evaluation, error) {
	if hand == "" {
		return nil, errors.New("equity: hand required")
	}
	var ev Evaluation
	if err := c.postJSON(ctx, "/evaluate", map[string]string{"hand": hand}, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Health pings the engine's health endpoint.
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
		return fmt.Errorf("equity health: %s", resp.Status)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, p string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	u := *c.baseURL
	u.Path = u.Path + p

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("equity request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: %s: %s", p, resp.Status, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", p, err)
	}
	return nil
}
