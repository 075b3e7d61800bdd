package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/subscribebox/internal/config"
	"github.com/ignite/subscribebox/internal/domain"
	"github.com/ignite/subscribebox/internal/pkg/httpretry"
	"github.com/ignite/subscribebox/internal/pkg/logger"
	"github.com/sony/gobreaker/v2"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Recorder receives one observation per wire exchange.
// result is "accepted", "rejected" or "failed".
type Recorder interface {
	ObserveUpstream(result string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveUpstream(string, time.Duration) {}

// Client posts subscription requests to the configured endpoint
type Client struct {
	endpoint   string
	httpClient httpretry.HTTPDoer
	breaker    *gobreaker.CircuitBreaker[domain.SubscriptionResponse]
	log        *logger.Logger
	recorder   Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPDoer replaces the HTTP transport (tests, custom retry policy).
func WithHTTPDoer(d httpretry.HTTPDoer) Option {
	return func(c *Client) { c.httpClient = d }
}

// WithLogger sets the developer log.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewClient creates a new subscription endpoint client
func NewClient(cfg config.NewsletterConfig, opts ...Option) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}

	c := &Client{
		endpoint: endpoint,
		log:      logger.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, cfg.MaxRetries).WithLogger(c.log)
	}

	if cfg.Breaker.Enabled {
		c.breaker = gobreaker.NewCircuitBreaker[domain.SubscriptionResponse](gobreaker.Settings{
			Name:        "newsletter",
			MaxRequests: 1,
			Timeout:     cfg.Breaker.OpenTimeout(),
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.Breaker.FailureThreshold
			},
			// an unmounted form canceling its request says nothing about the endpoint
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.log.Warn("circuit breaker state changed",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		})
	}

	return c
}

// Endpoint returns the URL requests are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// BreakerState returns the breaker state name, or "disabled".
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Subscribe posts {"email": email} and decodes the endpoint's answer.
// Any returned error wraps ErrRequest.
func (c *Client) Subscribe(ctx context.Context, email string) (domain.SubscriptionResponse, error) {
	start := time.Now()

	var (
		resp domain.SubscriptionResponse
		err  error
	)
	if c.breaker != nil {
		resp, err = c.breaker.Execute(func() (domain.SubscriptionResponse, error) {
			return c.post(ctx, email)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %w", ErrRequest, ErrCircuitOpen)
		}
	} else {
		resp, err = c.post(ctx, email)
	}

	elapsed := time.Since(start)
	switch {
	case err != nil:
		c.recorder.ObserveUpstream("failed", elapsed)
	case resp.Success:
		c.recorder.ObserveUpstream("accepted", elapsed)
	default:
		c.recorder.ObserveUpstream("rejected", elapsed)
	}

	return resp, err
}

func (c *Client) post(ctx context.Context, email string) (domain.SubscriptionResponse, error) {
	var out domain.SubscriptionResponse

	body, err := json.Marshal(domain.SubscriptionRequest{Email: email})
	if err != nil {
		return out, fmt.Errorf("%w: marshaling request body: %w", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("%w: creating request: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("%w: executing request: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return out, fmt.Errorf("%w: %w: reading response: %w", ErrRequest, domain.ErrUnreadableResponse, err)
	}

	c.log.Debug("subscription endpoint responded",
		"status", resp.StatusCode,
		"body", string(respBody),
	)

	if err := json.Unmarshal(respBody, &out); err != nil {
		return out, fmt.Errorf("%w: %w: parsing response (status %d): %w", ErrRequest, domain.ErrUnreadableResponse, resp.StatusCode, err)
	}

	return out, nil
}
