package toggl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingBackOff captures the delay sequence without sleeping.
type recordingBackOff struct {
	next  time.Duration
	waits []time.Duration
}

func (b *recordingBackOff) NextBackOff() time.Duration {
	w := b.next
	b.waits = append(b.waits, w)
	b.next *= 2
	return 0
}

func (b *recordingBackOff) Reset() {}

func zeroPolicy() RetryPolicy {
	return func() backoff.BackOff { return &backoff.ZeroBackOff{} }
}

func newTestClient(t *testing.T, policy RetryPolicy) *RetryClient {
	t.Helper()
	c := NewRetryClient(testLogger())
	c.Policy = policy
	return c
}

func TestDo_ClientErrorNeverRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, zeroPolicy())
	resp, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (4xx must not be retried)", calls)
	}
}

func TestDo_PersistentServerErrorReturnsLastResponse(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, zeroPolicy())
	resp, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("persistent 5xx must return the response, got error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if want := c.MaxRetries + 1; calls != want {
		t.Fatalf("calls = %d, want %d", calls, want)
	}
}

func TestDo_ServerErrorRecoversMidway(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, zeroPolicy())
	resp, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || calls != 3 {
		t.Fatalf("status = %d, calls = %d", resp.StatusCode, calls)
	}
}

func TestDo_TransportFailureRaisesAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(t, zeroPolicy())
	_, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err == nil {
		t.Fatal("expected transport error after exhausted retries")
	}
}

func TestDo_BackoffSequenceDoubles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rec := &recordingBackOff{next: time.Second}
	c := newTestClient(t, func() backoff.BackOff { return rec })
	resp, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(rec.waits) != len(want) {
		t.Fatalf("waits = %v, want %v", rec.waits, want)
	}
	for i := range want {
		if rec.waits[i] != want[i] {
			t.Fatalf("waits[%d] = %v, want %v", i, rec.waits[i], want[i])
		}
	}
}

func TestDefaultRetryPolicy_Sequence(t *testing.T) {
	bo := DefaultRetryPolicy(time.Second)()
	for i, want := range []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second} {
		if got := bo.NextBackOff(); got != want {
			t.Fatalf("delay %d = %v, want %v", i, got, want)
		}
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, DefaultRetryPolicy(time.Hour))
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.Do(ctx, http.MethodGet, srv.URL, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDo_PutBodyResentOnRetry(t *testing.T) {
	var calls int
	var lastBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		b, _ := io.ReadAll(r.Body)
		lastBody = string(b)
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, zeroPolicy())
	resp, err := c.Do(context.Background(), http.MethodPut, srv.URL, nil, []byte(`{"tags":["a"]}`))
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if lastBody != `{"tags":["a"]}` {
		t.Fatalf("retried body = %q", lastBody)
	}
}
