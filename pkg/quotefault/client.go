// Package quotefault is a client for the quotefault quote API. It fetches
// raw quote strings for training a markov.Chain.
package quotefault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the proactive throttle applied when no
// WithRateLimit option is given.
const DefaultRequestsPerSecond = 2.0

// Filter narrows the quotes returned by Fetch. Empty fields are not sent.
type Filter struct {
	Speaker   string `json:"speaker"`
	Submitter string `json:"submitter"`
}

// Key returns a stable string identifying the filter, e.g. for cache lookups.
// Both fields are query-escaped so distinct filters never share a key.
func (f Filter) Key() string {
	return url.Values{
		"speaker":   {f.Speaker},
		"submitter": {f.Submitter},
	}.Encode()
}

// Quote is a single entry of the /all response. Only the text is used for
// training; the remaining fields are kept for callers that want them.
type Quote struct {
	ID        int    `json:"id"`
	Quote     string `json:"quote"`
	Speaker   string `json:"speaker"`
	Submitter string `json:"submitter"`
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("quotefault: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit limits requests to rps per second. A value of 0 or less
// disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger. By default, all logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client fetches quotes from a quotefault server. The API key is part of the
// request path, so requests look like {baseURL}{apiKey}/all.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL Fetch requests for the given filter. Speaker is
// sent before submitter.
func (c *Client) Endpoint(filter Filter) string {
	var args []string
	if filter.Speaker != "" {
		args = append(args, "speaker="+url.QueryEscape(filter.Speaker))
	}
	if filter.Submitter != "" {
		args = append(args, "submitter="+url.QueryEscape(filter.Submitter))
	}
	endpoint := c.baseURL + c.apiKey + "/all"
	if len(args) > 0 {
		endpoint += "?" + strings.Join(args, "&")
	}
	return endpoint
}

// FetchQuotes returns every quote matching filter, in the order the API
// lists them.
func (c *Client) FetchQuotes(ctx context.Context, filter Filter) ([]Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("quotefault: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("quotefault: could not build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quotefault: request failed: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var quotes []Quote
	if err = json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("quotefault: failed to decode response: %w", err)
	}

	c.logger.InfoContext(ctx, "Quotes fetched",
		slog.String("speaker", filter.Speaker),
		slog.String("submitter", filter.Submitter),
		slog.Int("quotes", len(quotes)),
	)
	return quotes, nil
}

// Fetch is like FetchQuotes but returns only the quote text.
func (c *Client) Fetch(ctx context.Context, filter Filter) ([]string, error) {
	quotes, err := c.FetchQuotes(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, q.Quote)
	}
	return out, nil
}
