package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fireAfter(t *testing.T, ch <-chan time.Time, got *time.Duration) {
	t.Helper()
	prev := after
	after = func(d time.Duration) <-chan time.Time {
		*got = d
		return ch
	}
	t.Cleanup(func() { after = prev })
}

func TestWaitForReturnsAfterDelay(t *testing.T) {
	fired := make(chan time.Time, 1)
	fired <- time.Now()
	var waited time.Duration
	fireAfter(t, fired, &waited)

	if err := WaitFor(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if waited != 3*time.Second {
		t.Fatalf("expected 3s wait, got %v", waited)
	}
}

func TestWaitForSkipsNonPositive(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForHonoursCancellation(t *testing.T) {
	var waited time.Duration
	fireAfter(t, make(chan time.Time), &waited)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForStopsBeforeDeadline(t *testing.T) {
	var waited time.Duration
	fireAfter(t, make(chan time.Time), &waited)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if waited != 0 {
		t.Fatalf("expected no timer, got %v", waited)
	}
}
