package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// transientSignatures are error message fragments that mark a browser launch
// failure as worth retrying. Anything else aborts immediately.
var transientSignatures = []string{
	"econnreset",
	"connection reset",
	"ebusy",
	"resource busy",
	"etxtbsy",
	"text file busy",
	"eagain",
	"temporarily unavailable",
	"enotfound",
	"no such host",
}

// sleep waits for d or until ctx is done. Tests swap it out.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsTransient reports whether err's message matches a known transient
// failure signature.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// WithRetry calls op up to maxAttempts times in total. Only transient errors
// (see IsTransient) are retried; the wait before attempt n+1 is baseDelay*n.
// The last error is returned once attempts are exhausted; a context that ends
// during the wait returns ctx.Err().
func WithRetry[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= maxAttempts || !IsTransient(err) {
			return zero, err
		}

		delay := baseDelay * time.Duration(attempt)
		slog.Warn("transient failure, retrying",
			"attempt", attempt,
			"maxAttempts", maxAttempts,
			"delay", delay,
			"error", err,
		)
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
	}
}
