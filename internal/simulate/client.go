package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Client talks to the voting HTTP API.
type Client struct {
	client  *http.Client
	baseURL string
	runID   string
}

// NewClient creates a client with a per-request timeout. runID prefixes
// every X-Request-ID so server logs can be traced back to one run.
func NewClient(baseURL, runID string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		runID:   runID,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", c.runID+"-"+uuid.NewString()[:8])

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

// Pair fetches a pair to vote on.
func (c *Client) Pair(ctx context.Context) (Pair, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/vote", nil)
	if err != nil {
		return Pair{}, err
	}
	if status != http.StatusOK {
		return Pair{}, fmt.Errorf("HTTP %d: %s", status, body)
	}
	var p Pair
	if err := json.Unmarshal(body, &p); err != nil {
		return Pair{}, fmt.Errorf("failed to parse pair: %w", err)
	}
	return p, nil
}

// Vote submits a vote and returns the HTTP status.
func (c *Client) Vote(ctx context.Context, v VoteRequest) (int, error) {
	status, _, err := c.do(ctx, http.MethodPost, "/vote", v)
	return status, err
}

// Leaderboard fetches the leaderboard; limit 0 fetches everything.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	path := "/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", status, body)
	}
	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard: %w", err)
	}
	return entries, nil
}
