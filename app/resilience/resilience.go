package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-city-forecast/app/observability/metrics"
	"github.com/FACorreiaa/go-city-forecast/config"
)

var (
	ErrRateLimited  = errors.New("rate limited")
	ErrServerError  = errors.New("server error")
	ErrCircuitOpen  = errors.New("circuit breaker open")
	ErrNoHTTPClient = errors.New("http client not configured")
)

// StatusError is a non-2xx response that is not worth retrying.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Backoff controls exponential backoff between attempts.
type Backoff struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client runs outbound requests through a circuit breaker and retries
// transient failures with jittered exponential backoff.
type Client struct {
	name    string
	http    *http.Client
	backoff Backoff
	cb      *gobreaker.CircuitBreaker
	logger  *slog.Logger
	retries metric.Int64Counter
	jitter  func(d time.Duration) time.Duration
}

// NewClient builds a Client named after the upstream it talks to.
func NewClient(name string, httpClient *http.Client, cfg config.RetryConfig, logger *slog.Logger) *Client {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	l := logger.With(slog.String("upstream", name))

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("Circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
		// client errors say nothing about upstream health
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || errors.As(err, &se) || errors.Is(err, context.Canceled)
		},
	})

	initial := cfg.InitialInterval
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}

	return &Client{
		name: name,
		http: httpClient,
		backoff: Backoff{
			MaxRetries:      max(cfg.MaxRetries, 0),
			InitialInterval: initial,
			MaxInterval:     cfg.MaxInterval,
		},
		cb:      cb,
		logger:  l,
		retries: metrics.Get().UpstreamRetriesTotal,
		jitter: func(d time.Duration) time.Duration {
			if d <= 0 {
				return 0
			}
			return time.Duration(rand.Int64N(int64(d)))
		},
	}
}

// State reports the breaker state, mostly for readiness output.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

// Do sends the request produced by buildRequest until it succeeds, fails permanently,
// or ctx is done. The caller owns the returned body.
func (c *Client) Do(ctx context.Context, buildRequest func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if c.http == nil {
		return nil, ErrNoHTTPClient
	}

	delay := c.backoff.InitialInterval
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s request: %w", c.name, err)
		}

		result, err := c.cb.Execute(func() (interface{}, error) {
			resp, execErr := c.http.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			drain(resp)
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, ErrRateLimited
			case resp.StatusCode >= 500:
				return nil, fmt.Errorf("%w: %d", ErrServerError, resp.StatusCode)
			default:
				return nil, &StatusError{StatusCode: resp.StatusCode}
			}
		})
		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, errors.New("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		if !retryable(err) || attempt >= c.backoff.MaxRetries {
			return nil, err
		}

		wait := delay + c.jitter(delay)
		if c.backoff.MaxInterval > 0 && wait > c.backoff.MaxInterval {
			wait = c.backoff.MaxInterval
		}
		c.logger.DebugContext(ctx, "Retrying upstream request",
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.Any("error", err))
		c.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("upstream", c.name)))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
