package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordSleeps replaces sleep for the duration of the test and returns the
// slice the requested delays are appended to.
func recordSleeps(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	orig := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { sleep = orig })
	return &delays
}

func TestWithRetry_TransientExhaustsAttempts(t *testing.T) {
	delays := recordSleeps(t)

	calls := 0
	transient := errors.New("spawn chrome: ETXTBSY: text file busy")
	_, err := WithRetry(context.Background(), 4, 700*time.Millisecond, func(context.Context) (int, error) {
		calls++
		return 0, transient
	})

	if !errors.Is(err, transient) {
		t.Fatalf("expected last error to be rethrown, got %v", err)
	}
	if calls != 4 {
		t.Errorf("op called %d times, want 4", calls)
	}

	want := []time.Duration{700 * time.Millisecond, 1400 * time.Millisecond, 2100 * time.Millisecond}
	if len(*delays) != len(want) {
		t.Fatalf("slept %d times, want %d: %v", len(*delays), len(want), *delays)
	}
	for i, d := range want {
		if (*delays)[i] != d {
			t.Errorf("delay[%d] = %v, want %v", i, (*delays)[i], d)
		}
	}
}

func TestWithRetry_NonTransientAbortsImmediately(t *testing.T) {
	delays := recordSleeps(t)

	calls := 0
	_, err := WithRetry(context.Background(), 4, 700*time.Millisecond, func(context.Context) (string, error) {
		calls++
		return "", errors.New("chrome binary not found")
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
	if len(*delays) != 0 {
		t.Errorf("unexpected sleeps: %v", *delays)
	}
}

func TestWithRetry_SucceedsAfterTransient(t *testing.T) {
	recordSleeps(t)

	calls := 0
	got, err := WithRetry(context.Background(), 3, time.Millisecond, func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("read: connection reset by peer")
		}
		return "session", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "session" || calls != 2 {
		t.Errorf("got %q after %d calls", got, calls)
	}
}

func TestWithRetry_ZeroAttemptsStillTriesOnce(t *testing.T) {
	recordSleeps(t)

	calls := 0
	_, _ = WithRetry(context.Background(), 0, time.Millisecond, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("EBUSY")
	})
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestWithRetry_ContextCanceledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := WithRetry(ctx, 4, time.Hour, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("EAGAIN: resource temporarily unavailable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"read tcp: connection reset by peer", true},
		{"ECONNRESET", true},
		{"EBUSY: resource busy or locked", true},
		{"fork/exec chrome: text file busy", true},
		{"EAGAIN", true},
		{"dial tcp: lookup cdn.example: no such host", true},
		{"getaddrinfo ENOTFOUND", true},
		{"exec: \"chrome\": executable file not found in $PATH", false},
		{"context deadline exceeded", false},
	}
	for _, tt := range tests {
		if got := IsTransient(errors.New(tt.msg)); got != tt.want {
			t.Errorf("IsTransient(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
	if IsTransient(nil) {
		t.Error("IsTransient(nil) = true")
	}
}
