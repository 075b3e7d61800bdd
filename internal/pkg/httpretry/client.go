// Package httpretry wraps an HTTP client with bounded retries for outbound calls.
package httpretry

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/ignite/subscribebox/internal/pkg/logger"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *RetryClient satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient retries transient failures with capped exponential backoff.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	log        *logger.Logger
}

// NewRetryClient wraps client, or a 30s-timeout http.Client when nil.
// maxRetries counts attempts after the first; zero or less disables retrying.
func NewRetryClient(client HTTPDoer, maxRetries int) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RetryClient{
		client:     client,
		maxRetries: max(maxRetries, 0),
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
		log:        logger.Default(),
	}
}

// WithBackoff overrides the base and maximum backoff delays.
func (rc *RetryClient) WithBackoff(base, maxDelay time.Duration) *RetryClient {
	rc.baseDelay = base
	rc.maxDelay = maxDelay
	return rc
}

// WithLogger sets the logger used for retry notices.
func (rc *RetryClient) WithLogger(l *logger.Logger) *RetryClient {
	if l != nil {
		rc.log = l
	}
	return rc
}

// MaxRetries returns the configured number of retries.
func (rc *RetryClient) MaxRetries() int { return rc.maxRetries }

// Do sends req, retrying on 429/5xx gateway-class statuses and transport
// errors. Context cancellation is never retried. When retries run out on a
// retryable status the last response is returned untouched.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	resp, err := rc.client.Do(req)
	for attempt := 1; attempt <= rc.maxRetries; attempt++ {
		if !rc.shouldRetry(ctx, resp, err) {
			break
		}
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			err = fmt.Errorf("httpretry: server returned retryable status %d", resp.StatusCode)
			resp = nil
		}

		delay := rc.backoff(attempt)
		rc.log.Warn("httpretry: retrying request",
			"attempt", attempt,
			"max_retries", rc.maxRetries,
			"method", req.Method,
			"host", req.URL.Host,
			"wait", delay,
			"error", err)
		if werr := sleep(ctx, delay); werr != nil {
			return nil, err
		}
		if rerr := rewind(req); rerr != nil {
			return nil, rerr
		}

		resp, err = rc.client.Do(req)
	}
	return resp, err
}

func (rc *RetryClient) shouldRetry(ctx context.Context, resp *http.Response, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		return true
	}
	return isRetryableStatus(resp.StatusCode)
}

// backoff is full jitter over min(maxDelay, baseDelay*2^(attempt-1)),
// floored at min(100ms, baseDelay).
func (rc *RetryClient) backoff(attempt int) time.Duration {
	ceiling := rc.baseDelay << (attempt - 1)
	if ceiling <= 0 || ceiling > rc.maxDelay {
		ceiling = rc.maxDelay
	}
	d := time.Duration(rand.Int64N(int64(ceiling) + 1))
	return max(d, min(100*time.Millisecond, rc.baseDelay))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rewind restores the request body for another attempt.
func rewind(req *http.Request) error {
	if req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("httpretry: reset request body: %w", err)
	}
	req.Body = body
	return nil
}

// isRetryableStatus reports whether status signals a transient upstream failure.
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
