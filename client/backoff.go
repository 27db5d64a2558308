// File: client/backoff.go
package client

import "time"

// maxBackoff is the spec's hard cap on reconnect delay regardless of
// attempt count or configured base delay.
const maxBackoff = 30 * time.Second

// BackoffDelay computes the retry delay for the given 1-indexed
// reconnect attempt: base * 2^(attempt-1), capped at 30s. attempt <= 0
// is treated as attempt 1.
func BackoffDelay(attempt int, base time.Duration) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}
