package util

import (
	"math/rand"
	"time"
)

// Backoff yields capped exponential delays with up to 50% jitter.
// Not safe for concurrent use; each feed session owns one.
type Backoff struct {
	Min time.Duration
	Max time.Duration

	attempt int
}

// Next returns the delay for the next attempt and advances the counter.
func (b *Backoff) Next() time.Duration {
	min, max := b.Min, b.Max
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}

	exp := max
	if b.attempt < 32 {
		if d := min << uint(b.attempt); d > 0 && d < max {
			exp = d
		}
	}
	b.attempt++

	half := int64(exp) / 2
	if half <= 0 {
		return exp
	}
	return exp - time.Duration(rand.Int63n(half))
}

// Reset starts the sequence over, typically after a successful connect.
func (b *Backoff) Reset() { b.attempt = 0 }

// Attempts reports how many delays were handed out since the last reset.
func (b *Backoff) Attempts() int { return b.attempt }
