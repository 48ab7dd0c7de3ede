// ABOUTME: HTTP fetcher with browser-like headers, timeout, and bounded retries
// ABOUTME: Timeouts fail fast; other failures back off exponentially
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"applebridge/internal/util"
)

// ErrTimeout marks a fetch attempt that exceeded its deadline. Timed-out
// attempts are never retried so callers can tell "too slow" from
// "unreachable".
var ErrTimeout = errors.New("request timed out")

// FetchOptions controls a single Fetch call.
type FetchOptions struct {
	Method     string            // defaults to GET
	Headers    map[string]string // merged over the browser defaults
	Timeout    time.Duration     // per attempt, defaults to 10s
	Retries    int               // extra attempts after the first, defaults to 2
	RetryDelay time.Duration     // backoff base, defaults to 1s
	MaxBytes   int64             // response body cap, defaults to 2MiB
	UserAgent  string            // overrides the default browser identity
	Client     *http.Client      // overrides http.DefaultClient (tests)
}

const (
	defaultFetchTimeout = 10 * time.Second
	defaultFetchRetries = 2
	defaultMaxBytes     = 2 << 20
)

var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetch performs an HTTP request and returns the response body as text.
// Non-2xx responses and transport errors are retried with exponential
// backoff up to opts.Retries extra attempts; timeouts are surfaced
// immediately. The last encountered error is returned when the retry
// budget is exhausted.
func Fetch(ctx context.Context, rawURL string, opts FetchOptions) (string, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = defaultFetchRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			case <-time.After(util.CalculateBackoff(opts.RetryDelay, attempt-1)):
			}
		}

		body, err := fetchOnce(ctx, client, rawURL, opts)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, ErrTimeout) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func fetchOnce(ctx context.Context, client *http.Client, rawURL string, opts FetchOptions) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, opts.Method, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(attemptCtx, err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBytes))
	if err != nil {
		if isTimeout(attemptCtx, err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

// isTimeout reports whether err represents an exceeded deadline or an
// explicit abort rather than an ordinary transport failure.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if ctx.Err() != nil {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "context deadline exceeded")
}
