// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upstream calls the conversational business-search API that
// answers FeastFit's search, refine, and coach prompts.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/feastfit/internal/httputil"
	"github.com/pdiddy/feastfit/pkg/types"
)

// chatPath is appended to the configured base URL. Package-level var for
// test substitution.
var chatPath = "/ai/chat/v2"

// maxResponseBytes bounds how much of a reply body is read.
const maxResponseBytes = 4 << 20

// excerptBytes bounds the body excerpt carried in a StatusError.
const excerptBytes = 512

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("upstream API key is not configured")

// StatusError reports a non-2xx reply from the upstream.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d: %s", e.Code, e.Body)
}

// Client sends prompts to the chat endpoint. A Client is safe for
// concurrent use.
type Client struct {
	cfg     types.UpstreamConfig
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a Client from cfg. When cfg.RequestsPerSecond is positive,
// every outbound call waits on a process-wide token bucket.
func New(cfg types.UpstreamConfig) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// chatRequest is the request body for the chat endpoint.
type chatRequest struct {
	Query       string           `json:"query"`
	UserContext types.GeoContext `json:"user_context"`
}

// Chat posts query with geo and returns the raw JSON reply.
func (c *Client) Chat(ctx context.Context, query string, geo types.GeoContext) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for upstream throttle: %w", err)
		}
	}

	body, err := json.Marshal(chatRequest{Query: query, UserContext: geo})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + chatPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling upstream: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: excerpt(data)}
	}
	return data, nil
}

func excerpt(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > excerptBytes {
		return s[:excerptBytes] + "..."
	}
	return s
}
