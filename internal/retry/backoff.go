package retry

import "time"

// ExponentialBackoff returns base * 2^attempt.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return base * (1 << attempt)
}

// CappedBackoff is ExponentialBackoff limited to ceiling. The shift is bounded
// so large attempt counts cannot overflow.
func CappedBackoff(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt > 30 {
		return ceiling
	}
	if d := ExponentialBackoff(attempt, base); d < ceiling {
		return d
	}
	return ceiling
}
