package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pageforge/internal/llmclient"
	"pageforge/internal/tester"
)

type flakyClient struct {
	failures int // overload errors to serve before succeeding
	calls    int
	err      error // error to serve instead of overload when set
}

func (f *flakyClient) Name() string { return "flaky" }
func (f *flakyClient) Close() error { return nil }

func (f *flakyClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return nil, f.err
		}
		return nil, &llmclient.OverloadedError{Err: errors.New("overloaded")}
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func TestRetryOverloadedTwiceThenSucceeds(t *testing.T) {
	inner := &flakyClient{failures: 2}
	client := Retry(3, time.Millisecond)(inner)

	raw, err := client.GenerateJSON(context.Background(), "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, string(raw), `{"ok":true}`)
	tester.Eq(t, inner.calls, 3)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	inner := &flakyClient{failures: 10}
	client := Retry(3, time.Millisecond)(inner)

	_, err := client.GenerateJSON(context.Background(), "p", nil)
	tester.Err(t, err)

	var exhausted *RetriesExhaustedError
	tester.True(t, errors.As(err, &exhausted), "expected RetriesExhaustedError")
	tester.Eq(t, exhausted.Attempts, 3)
	tester.Eq(t, inner.calls, 3, "no further attempts after the limit")
	tester.True(t, llmclient.IsOverloaded(err), "exhaustion wraps the overload cause")
}

func TestRetryDoesNotRetryOtherErrors(t *testing.T) {
	inner := &flakyClient{failures: 10, err: errors.New("bad request")}
	client := Retry(3, time.Millisecond)(inner)

	_, err := client.GenerateJSON(context.Background(), "p", nil)
	tester.Err(t, err)
	tester.Eq(t, err.Error(), "bad request")
	tester.Eq(t, inner.calls, 1, "non-retryable errors propagate immediately")
}

func TestRetryNotifierObservesAttempts(t *testing.T) {
	inner := &flakyClient{failures: 2}
	client := Retry(3, time.Millisecond)(inner)

	var attempts []int
	ctx := WithRetryNotifier(context.Background(), func(attempt int, err error) {
		attempts = append(attempts, attempt)
	})

	_, err := client.GenerateJSON(ctx, "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, attempts, []int{1, 2})
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	inner := &flakyClient{failures: 10}
	client := Retry(3, 50*time.Millisecond)(inner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateJSON(ctx, "p", nil)
	tester.True(t, errors.Is(err, context.Canceled), "canceled context stops retries")
	tester.Eq(t, inner.calls, 1)
}
