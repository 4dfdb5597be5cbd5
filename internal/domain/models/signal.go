package models

import "strings"

// Signal is the canonical, case-folded directional call of a producer.
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// ParseSignal folds case and reports whether s is one of the three values.
func ParseSignal(s string) (Signal, bool) {
	switch sig := Signal(strings.ToLower(strings.TrimSpace(s))); sig {
	case SignalBullish, SignalBearish, SignalNeutral:
		return sig, true
	default:
		return "", false
	}
}
