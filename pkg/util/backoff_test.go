package util

import (
	"testing"
	"time"
)

func TestBackoffGrowsAndCaps(t *testing.T) {
	b := &Backoff{Min: 100 * time.Millisecond, Max: time.Second}

	var prevCeil time.Duration
	for i := 0; i < 10; i++ {
		d := b.Next()
		ceil := 100 * time.Millisecond << uint(i)
		if ceil > time.Second {
			ceil = time.Second
		}
		if d > ceil || d < ceil/2 {
			t.Fatalf("attempt %d: delay %s outside [%s, %s]", i, d, ceil/2, ceil)
		}
		if ceil < prevCeil {
			t.Fatalf("ceiling shrank")
		}
		prevCeil = ceil
	}
	if b.Attempts() != 10 {
		t.Fatalf("expected 10 attempts, got %d", b.Attempts())
	}
}

func TestBackoffReset(t *testing.T) {
	b := &Backoff{Min: 100 * time.Millisecond, Max: time.Second}
	for i := 0; i < 5; i++ {
		b.Next()
	}
	b.Reset()
	if d := b.Next(); d > 100*time.Millisecond {
		t.Fatalf("expected first delay after reset <= min, got %s", d)
	}
}
