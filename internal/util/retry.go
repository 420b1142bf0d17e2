// ABOUTME: Retry helpers for external API calls with exponential backoff
// ABOUTME: Shared by the LLM client for consistent retry behavior
package util

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Backoff returns exponential backoff with jitter. The base delay doubles
// each attempt, capped at 30 seconds, with random jitter of ±25%.
func Backoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// Retry runs fn up to maxRetries+1 times, sleeping with Backoff between
// attempts. It returns nil on the first success, otherwise the last error
// wrapped with the attempt count.
func Retry(maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(Backoff(baseDelay, attempt))
		}
		if err := fn(); err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}
