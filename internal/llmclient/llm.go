package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// LLMClient is the minimal surface every text backend implements. Middleware
// in internal/llm wraps this interface.
type LLMClient interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

var ErrInvalidJSON = errors.New("invalid json from LLM")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// OverloadedError indicates the backend rejected the call under load or rate
// pressure. Retry middleware treats it as transient; everything else is not
// retried.
type OverloadedError struct {
	Err error
}

func (e *OverloadedError) Error() string { return fmt.Sprintf("backend overloaded: %v", e.Err) }
func (e *OverloadedError) Unwrap() error { return e.Err }

// IsOverloaded reports whether err is, or wraps, an OverloadedError.
func IsOverloaded(err error) bool {
	var oe *OverloadedError
	return errors.As(err, &oe)
}

// MalformedResponseError indicates a response that parsed as JSON transport
// but violated the call's output contract.
type MalformedResponseError struct {
	Call   string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Call, e.Reason)
}
