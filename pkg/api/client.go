// Package api is the authenticated JSON client for the BlackRoad API.
//
// Every call is a single attempt: no retries and no timeout beyond what the
// underlying transport applies.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
)

// Client issues authenticated requests against a base URL.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	base      *http.Client
	userAgent string
}

// WithHTTPClient sets the client whose transport carries the requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) { cfg.base = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) { cfg.userAgent = ua }
}

// NewClient returns a client that authenticates with apiKey as a bearer token.
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	cfg := clientConfig{base: http.DefaultClient}
	for _, o := range opts {
		o(&cfg)
	}

	transport := cfg.base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	httpClient := *cfg.base
	httpClient.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"}),
		Base:   transport,
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  cfg.userAgent,
		httpClient: &httpClient,
	}
}

// BaseURL returns the URL paths are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends method to path (relative to the base URL). A non-nil body is sent
// as JSON; on a 2xx answer the response is decoded into out when out is
// non-nil. Non-2xx answers yield *APIError and transport failures *NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.Do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// UrgentTasks lists tasks filtered server-side to priority=urgent, status=pending.
func (c *Client) UrgentTasks(ctx context.Context) ([]Task, error) {
	q := url.Values{}
	q.Set("priority", string(PriorityUrgent))
	q.Set("status", string(StatusPending))

	var list TaskList
	if err := c.Do(ctx, http.MethodGet, "/tasks?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	if list.Tasks == nil {
		list.Tasks = []Task{}
	}
	return list.Tasks, nil
}

func (c *Client) TaskStats(ctx context.Context) (*Stats, error) {
	return c.stats(ctx, "/tasks/stats")
}

func (c *Client) AgentStats(ctx context.Context) (*Stats, error) {
	return c.stats(ctx, "/agents/stats")
}

func (c *Client) MemoryStats(ctx context.Context) (*Stats, error) {
	return c.stats(ctx, "/memory/stats")
}

func (c *Client) stats(ctx context.Context, path string) (*Stats, error) {
	var s Stats
	if err := c.Do(ctx, http.MethodGet, path, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecentActivity lists the newest limit memory entries.
func (c *Client) RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	var list ActivityList
	if err := c.Do(ctx, http.MethodGet, "/memory?limit="+strconv.Itoa(limit), nil, &list); err != nil {
		return nil, err
	}
	if list.Entries == nil {
		list.Entries = []ActivityEntry{}
	}
	return list.Entries, nil
}

// CreateTask calls POST /tasks.
func (c *Client) CreateTask(ctx context.Context, params CreateTaskParams) (*Task, error) {
	var t Task
	if err := c.Do(ctx, http.MethodPost, "/tasks", params, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateLog calls POST /memory.
func (c *Client) CreateLog(ctx context.Context, params CreateLogParams) (*ActivityEntry, error) {
	var e ActivityEntry
	if err := c.Do(ctx, http.MethodPost, "/memory", params, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
