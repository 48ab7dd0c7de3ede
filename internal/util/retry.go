// ABOUTME: Retry helpers with exponential backoff for network calls
// ABOUTME: Shared by the HTTP fetcher; store access checks use a fixed delay
package util

import "time"

// CalculateBackoff returns the delay before retry number attempt.
// The base delay doubles per attempt (1s, 2s, 4s, ...) and is capped
// at 30 seconds. attempt is zero-based: attempt 0 returns baseDelay.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if baseDelay <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	// Cap the shift to avoid overflow
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second || backoff <= 0 {
		backoff = 30 * time.Second
	}
	return backoff
}
