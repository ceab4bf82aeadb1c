package timeout

import (
	"context"
	"errors"
	"time"
)

// ErrElapsed is returned when the deadline settles before the call does.
var ErrElapsed = errors.New("timeout: deadline elapsed")

type settled[T any] struct {
	value T
	err   error
}

// Race runs fn against a deadline with first-settled-wins semantics.
// The losing side is cancelled through its context and its result is
// discarded: a late response can never reach the caller, so it can never
// be applied to shared state after the timeout fired. There is no retry;
// a timeout is terminal for this call.
func Race[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so the loser's goroutine can always exit.
	done := make(chan settled[T], 1)
	go func() {
		v, err := fn(callCtx)
		done <- settled[T]{value: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.value, r.err
	case <-timer.C:
		cancel()
		return zero, ErrElapsed
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}
