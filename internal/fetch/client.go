// Package fetch downloads the curated Google Sheets as xlsx workbooks.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mentalhealthdb/mhdb/internal/config"
	"github.com/mentalhealthdb/mhdb/internal/fsutil"
	"github.com/mentalhealthdb/mhdb/internal/metrics"
)

const (
	// DefaultUserAgent identifies this client
	DefaultUserAgent = "mhdb/1.0"
	// DefaultTimeout for one HTTP request
	DefaultTimeout = 60 * time.Second
	// DefaultRateLimit is 1 request per second
	DefaultRateLimit = rate.Limit(1.0)
	// DefaultRetries for transient errors
	DefaultRetries = 3
	// DefaultRetryDelay is the initial backoff delay
	DefaultRetryDelay = 1 * time.Second
)

// ErrNotWorkbook is returned when the export endpoint answers with
// something other than an xlsx file, typically a sign-in page for a
// sheet that is not shared publicly
var ErrNotWorkbook = errors.New("response is not an xlsx workbook")

// xlsx files are zip archives
var zipMagic = []byte("PK\x03\x04")

// StatusError is an unexpected HTTP status
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// Target is one workbook to download
type Target struct {
	Name string
	URL  string
	Path string
}

// Targets returns a target for every configured workbook with a sheet id
func Targets(cfg *config.Config) []Target {
	var out []Target
	for _, wb := range cfg.Workbooks {
		if wb.SheetID == "" {
			continue
		}
		out = append(out, Target{Name: wb.Name, URL: cfg.SheetURL(wb.SheetID), Path: wb.Path})
	}
	return out
}

// Client downloads workbooks with retries and a shared rate limit
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	retries    uint64
	retryDelay time.Duration
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRateLimit sets a custom rate limit (requests per second). Zero
// disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetries sets how often a transient failure is retried
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = uint64(n)
		}
	}
}

// WithRetryDelay sets the first backoff delay
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a download client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		limiter:    rate.NewLimiter(DefaultRateLimit, 1),
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FromConfig creates a client from the fetch section of the config
func FromConfig(cfg config.FetchConfig, logger zerolog.Logger, m *metrics.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewClient(
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithRateLimit(cfg.Rate),
		WithRetries(cfg.Retries),
		WithLogger(logger),
		WithMetrics(m),
	)
}

// Fetch downloads one workbook and replaces t.Path atomically. It returns
// the number of bytes written.
func (c *Client) Fetch(ctx context.Context, t Target) (int64, error) {
	logger := c.logger.With().Str("workbook", t.Name).Logger()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryDelay
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.retries), ctx)

	var body []byte
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}
		data, err := c.get(ctx, t.URL)
		if err != nil {
			return err
		}
		body = data
		return nil
	}
	notify := func(err error, next time.Duration) {
		c.record(t.Name, "retry")
		logger.Warn().Err(err).Dur("backoff", next).Msg("download failed, retrying")
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		c.record(t.Name, "error")
		return 0, fmt.Errorf("workbook %s: %w", t.Name, err)
	}
	if err := fsutil.WriteFileAtomic(t.Path, body); err != nil {
		c.record(t.Name, "error")
		return 0, fmt.Errorf("workbook %s: %w", t.Name, err)
	}
	c.record(t.Name, "ok")
	logger.Info().Str("path", t.Path).Int("bytes", len(body)).Msg("workbook downloaded")
	return int64(len(body)), nil
}

// FetchAll downloads targets with at most concurrency requests in flight.
// The first failure cancels the remaining downloads.
func (c *Client) FetchAll(ctx context.Context, targets []Target, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, t := range targets {
		g.Go(func() error {
			_, err := c.Fetch(ctx, t)
			return err
		})
	}
	return g.Wait()
}

// get performs one request. Errors that retrying cannot fix are wrapped
// with backoff.Permanent.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, &StatusError{Code: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(&StatusError{Code: resp.StatusCode})
	case !bytes.HasPrefix(data, zipMagic):
		return nil, backoff.Permanent(ErrNotWorkbook)
	}
	return data, nil
}

func (c *Client) record(workbook, outcome string) {
	if c.metrics != nil {
		c.metrics.FetchRequests.WithLabelValues(workbook, outcome).Inc()
	}
}
