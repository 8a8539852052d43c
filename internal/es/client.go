package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Operation names for error context.
const (
	OpSearch = "_search"
	OpPing   = "ping"
)

// Error wraps an engine failure with the operation name for diagnostics.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Config holds connection parameters for the search engine.
type Config struct {
	BaseURL string
	Index   string
	Timeout time.Duration
}

// Client talks to an Elasticsearch-compatible engine over HTTP.
// It owns no retry policy: every call is issued fresh and aborts as
// soon as the caller's context is cancelled.
type Client struct {
	base  string
	index string
	http  *http.Client
}

// NewClient creates an engine client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		index: cfg.Index,
		http:  &http.Client{Timeout: timeout},
	}, nil
}

// Search POSTs a search body to the index's _search endpoint.
func (c *Client) Search(ctx context.Context, body *SearchBody) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/_search", c.base, c.index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: OpSearch, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Op: OpSearch, Status: resp.StatusCode, Err: readEngineError(resp.Body)}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Op: OpSearch, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// Ping checks engine connectivity.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: OpPing, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return &Error{Op: OpPing, Status: resp.StatusCode, Err: fmt.Errorf("engine unavailable")}
	}
	return nil
}

// WaitForReady polls Ping until the engine responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for engine: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// readEngineError extracts the engine's error reason from a failure body.
func readEngineError(r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return fmt.Errorf("engine error")
	}

	var envelope struct {
		Error struct {
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Error.Reason != "" {
		return fmt.Errorf("%s", envelope.Error.Reason)
	}
	return fmt.Errorf("%s", strings.TrimSpace(string(data)))
}
