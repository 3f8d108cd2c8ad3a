// Package searchapi is the HTTP client of the remote search service.
package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolens/internal/domain"
	"github.com/kailas-cloud/geolens/internal/domain/search/query"
	"github.com/kailas-cloud/geolens/internal/domain/search/result"
	"github.com/kailas-cloud/geolens/internal/metrics"
)

// DefaultEndpoint is the search endpoint of a local deployment.
const DefaultEndpoint = "http://localhost:8000/search"

const maxErrorBody = 4 << 10

// Client posts queries to the search service.
type Client struct {
	http      *http.Client
	endpoint  string
	healthURL string
	userAgent string
	logger    *zap.Logger
}

// Config holds the search client settings.
type Config struct {
	Endpoint string
	// HealthURL defaults to /openapi.json on the endpoint host.
	HealthURL  string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New creates a search client.
func New(cfg *Config) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid search endpoint %q", endpoint)
	}

	healthURL := cfg.HealthURL
	if healthURL == "" {
		healthURL = (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/openapi.json"}).String()
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{http: hc, endpoint: endpoint, healthURL: healthURL, userAgent: cfg.UserAgent, logger: logger}, nil
}

// Search implements search.Searcher. Every failure wraps domain.ErrTransport;
// a non-2xx reply is a *domain.UpstreamStatusError.
func (c *Client) Search(ctx context.Context, q query.Query) ([]result.Result, error) {
	body, err := json.Marshal(toRequest(q))
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w: %w", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.SearchUpstreamRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("post search: %w: %w", domain.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.SearchUpstreamRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	metrics.SearchUpstreamDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var results []result.Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode search response: %w: %w", domain.ErrTransport, err)
	}

	c.logger.Debug("Search request completed",
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// HealthCheck reports whether the search service answers HTTP requests.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("search health: %w: %w", domain.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode >= http.StatusInternalServerError {
		return statusErrorNoBody(resp)
	}
	return nil
}

// statusError builds an UpstreamStatusError, extracting the "detail" field of the body when present.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &domain.UpstreamStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Detail:     extractDetail(raw),
	}
}

func statusErrorNoBody(resp *http.Response) error {
	return domain.NewUpstreamStatus(resp.StatusCode, resp.Status)
}

func extractDetail(body []byte) string {
	var parsed errorBody
	if json.Unmarshal(body, &parsed) != nil || parsed.Detail == nil {
		return ""
	}
	if s, ok := parsed.Detail.(string); ok {
		return s
	}
	// Validation errors carry a list of objects.
	b, err := json.Marshal(parsed.Detail)
	if err != nil {
		return ""
	}
	return string(b)
}
