package enhance

import (
	"context"
	"errors"
	"fmt"
)

// Terminal failure taxonomy. The variant is decided once, at the
// boundary where the cancellation token is consulted; nothing
// downstream inspects error text.
var (
	// ErrCancelled marks a user-initiated cancellation. Suppressed
	// from user-visible error feedback.
	ErrCancelled = errors.New("enhancement cancelled")

	// ErrTimeout marks the fixed job deadline firing.
	ErrTimeout = errors.New("enhancement timed out")
)

// ProviderError wraps a stream/provider failure that is neither
// cancellation nor timeout. Retryable from the user's point of view.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// classify maps a raw stream error onto the taxonomy using the job
// context as the source of truth.
func classify(jobCtx context.Context, err error) error {
	if err == nil {
		return nil
	}
	ctxErr := jobCtx.Err()
	switch {
	case errors.Is(ctxErr, context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(ctxErr, context.Canceled) || errors.Is(err, context.Canceled):
		return ErrCancelled
	default:
		return &ProviderError{Err: err}
	}
}
