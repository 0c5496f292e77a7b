package toggl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy produces a fresh backoff schedule for one request. A new
// schedule is taken per request so attempts never share state.
type RetryPolicy func() backoff.BackOff

// DefaultRetryPolicy doubles the delay on every retry starting from
// unit, with no jitter: unit, 2*unit, 4*unit, ...
func DefaultRetryPolicy(unit time.Duration) RetryPolicy {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = unit
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxInterval = 5 * time.Minute
		b.MaxElapsedTime = 0
		b.Reset()
		return b
	}
}

// RetryClient performs HTTP requests with classification-based retry:
//
//   - any response below 500 is returned immediately, client errors
//     included, and is never retried;
//   - 5xx responses and transport failures are retried up to MaxRetries
//     times after the initial attempt;
//   - a 5xx that survives all retries is returned as a response, so the
//     caller can inspect and log the status;
//   - a transport failure that survives all retries is returned as an
//     error.
type RetryClient struct {
	HTTP       *http.Client
	Policy     RetryPolicy
	MaxRetries int
	Log        *slog.Logger
}

// NewRetryClient builds a client with the default policy (1s unit) and
// three retries.
func NewRetryClient(log *slog.Logger) *RetryClient {
	return &RetryClient{
		HTTP:       &http.Client{Timeout: 30 * time.Second},
		Policy:     DefaultRetryPolicy(time.Second),
		MaxRetries: 3,
		Log:        log,
	}
}

// Do issues method url with the given headers and optional body. The
// request is rebuilt per attempt so the body can be re-sent.
func (c *RetryClient) Do(ctx context.Context, method, url string, header http.Header, body []byte) (*http.Response, error) {
	bo := c.Policy()
	var lastErr error

	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, method, url, header, body)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}

		last := attempt >= c.MaxRetries
		if err != nil {
			lastErr = err
			if last {
				return nil, fmt.Errorf("%s %s: giving up after %d attempts: %w", method, url, attempt+1, lastErr)
			}
			c.Log.Warn("transport failure, retrying",
				slog.String("method", method),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
		} else {
			if last {
				// Persistent 5xx: hand the final response back for
				// classification instead of raising.
				return resp, nil
			}
			drain(resp)
			c.Log.Warn("server error, retrying",
				slog.String("method", method),
				slog.Int("attempt", attempt),
				slog.Int("status", resp.StatusCode))
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			if lastErr == nil {
				lastErr = errors.New("retry budget exhausted")
			}
			return nil, fmt.Errorf("%s %s: %w", method, url, lastErr)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *RetryClient) attempt(ctx context.Context, method, url string, header http.Header, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.HTTP.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
