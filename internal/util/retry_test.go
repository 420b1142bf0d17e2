// ABOUTME: Tests for backoff and retry helpers
// ABOUTME: Verifies bounds, jitter range, and retry exhaustion
package util

import (
	"errors"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		attempt int
		max     time.Duration
	}{
		{"zero attempt", time.Second, 0, 0},
		{"negative attempt", time.Second, -1, 0},
		{"first retry", time.Second, 1, 3 * time.Second},
		{"capped", time.Second, 10, 40 * time.Second},
		{"overflow guard", time.Second, 100, 40 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Backoff(tt.base, tt.attempt)
			if tt.attempt <= 0 {
				if got != 0 {
					t.Errorf("Backoff() = %v, want 0", got)
				}
				return
			}
			if got < 0 || got > tt.max {
				t.Errorf("Backoff() = %v, want in (0, %v]", got, tt.max)
			}
		})
	}
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(3, time.Nanosecond, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_EventualSuccess(t *testing.T) {
	calls := 0
	err := Retry(3, time.Nanosecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	sentinel := errors.New("always fails")
	calls := 0
	err := Retry(2, time.Nanosecond, func() error {
		calls++
		return sentinel
	})
	if err == nil {
		t.Fatal("Retry() error = nil, want failure")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("error chain does not contain the underlying error: %v", err)
	}
}
