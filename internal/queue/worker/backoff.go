package worker

import (
	"math/rand"
	"time"
)

const (
	backoffBase   = 2 * time.Second
	backoffCap    = 5 * time.Minute
	backoffJitter = 250 * time.Millisecond
)

// ExponentialBackoff doubles per attempt starting at 2s, capped at 5min,
// with up to 250ms of jitter to spread retries out.
func ExponentialBackoff(attempt int) time.Duration {
	delay := backoffBase

	for i := 0; i < attempt && delay < backoffCap; i++ {
		delay *= 2
	}

	if delay > backoffCap {
		delay = backoffCap
	}

	return delay + time.Duration(rand.Int63n(int64(backoffJitter)))
}
