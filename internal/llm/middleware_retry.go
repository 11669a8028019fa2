package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pageforge/internal/llmclient"
)

// RetriesExhaustedError reports that every retry attempt against an
// overloaded backend failed.
type RetriesExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Err }

// RetryNotifier is invoked before each retry sleep with the attempt number
// just failed (1-based) and the overload error that triggered the retry.
type RetryNotifier func(attempt int, err error)

type retryNotifierKey struct{}

// WithRetryNotifier attaches a notifier to the context so callers can
// surface retry attempts on their own progress channel.
func WithRetryNotifier(ctx context.Context, fn RetryNotifier) context.Context {
	return context.WithValue(ctx, retryNotifierKey{}, fn)
}

func retryNotifierFrom(ctx context.Context) RetryNotifier {
	if fn, ok := ctx.Value(retryNotifierKey{}).(RetryNotifier); ok {
		return fn
	}
	return nil
}

// Retry retries GenerateJSON up to maxAttempts with exponential backoff
// starting at baseDelay. Only backend-overload errors are retried; any other
// error propagates immediately. If the context is canceled, it stops.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next llmclient.LLMClient
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	var last error
	for i := 0; i < r.max; i++ {
		resp, err := r.next.GenerateJSON(ctx, prompt, input)
		if err == nil {
			return resp, nil
		}
		if !llmclient.IsOverloaded(err) {
			return nil, err
		}
		last = err
		if i == r.max-1 {
			break
		}
		log.Printf("LLM overloaded (%s), retrying... attempt %d/%d", r.next.Name(), i+1, r.max)
		if fn := retryNotifierFrom(ctx); fn != nil {
			fn(i+1, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return nil, &RetriesExhaustedError{Attempts: r.max, Err: last}
}
