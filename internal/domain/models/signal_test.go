package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		in   string
		want Signal
		ok   bool
	}{
		{"bullish", SignalBullish, true},
		{"BULLISH", SignalBullish, true},
		{" Bearish ", SignalBearish, true},
		{"NEUTRAL", SignalNeutral, true},
		{"sideways", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSignal(tt.in)
		assert.Equal(t, tt.ok, ok, "in=%q", tt.in)
		assert.Equal(t, tt.want, got, "in=%q", tt.in)
	}
}
