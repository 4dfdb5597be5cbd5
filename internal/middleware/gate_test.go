package middleware

import (
	"errors"
	"testing"

	"DeskStream/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateSentinel(t *testing.T) {
	g := NewGate()
	for _, raw := range []string{"[DONE]", "  [DONE]\n", "\t[DONE]"} {
		_, err := g.Validate(raw)
		assert.ErrorIs(t, err, ErrStreamComplete, "raw=%q", raw)
	}

	// Only the exact literal is the sentinel.
	_, err := g.Validate(`"[DONE]"`)
	_, isMismatch := IsMismatch(err)
	assert.True(t, isMismatch)
}

func TestGateNoise(t *testing.T) {
	g := NewGate()
	for _, raw := range []string{"", "not json", "{", `{"ticker":}`, "data: {}"} {
		_, err := g.Validate(raw)
		assert.ErrorIs(t, err, ErrNoise, "raw=%q", raw)
	}
}

func TestGateSchemaMismatch(t *testing.T) {
	tests := []struct {
		raw     string
		pattern string
	}{
		{"null", "shape:null"},
		{"[1,2]", "shape:array"},
		{"42", "shape:number"},
		{`"hello"`, "shape:string"},
		{"true", "shape:boolean"},
		{`{"score":"high"}`, "type:score"},
		{`{"ticker":7}`, "type:ticker"},
		{`{"factors":{"value":"x"}}`, "type:factors.value"},
		{`{"signal":"sideways"}`, "field:signal:oneof"},
		{`{"ticker":"ABCDEFGHIJKLMNOPQRSTUVWXYZABCDEFGHIJ"}`, "field:ticker:max"},
	}

	g := NewGate()
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := g.Validate(tt.raw)
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrNoise))

			se, ok := IsMismatch(err)
			require.True(t, ok, "expected schema error, got %v", err)
			assert.Equal(t, tt.pattern, se.Pattern)
			assert.NotEmpty(t, se.Message)
			assert.Contains(t, Describe(se), MismatchBanner)
		})
	}
}

func TestGateDefaults(t *testing.T) {
	env, err := NewGate().Validate(`{}`)
	require.NoError(t, err)

	assert.Equal(t, 50.0, env.Score)
	assert.Equal(t, 0.0, env.Confidence)
	assert.Equal(t, 0.0, env.Magnitude)
	assert.False(t, env.HasScore)
	assert.False(t, env.HasSignal)
	assert.False(t, env.CarriesDecision())
	assert.Empty(t, env.Ticker)
	assert.Empty(t, env.Agent)
}

func TestGateFullEvent(t *testing.T) {
	raw := `{
		"ticker": "nvda",
		"agent": "Burry",
		"signal": "BEARISH",
		"score": 12.5,
		"confidence": 0.83,
		"magnitude": 140,
		"content": "Margin compression ahead",
		"price": 118.4,
		"rsi": 71,
		"factors": {"value": 20, "risk": 88},
		"model_version": "v9"
	}`

	env, err := NewGate().Validate(raw)
	require.NoError(t, err)

	assert.Equal(t, "nvda", env.Ticker)
	assert.Equal(t, "Burry", env.Agent)
	assert.Equal(t, models.SignalBearish, env.Signal)
	assert.True(t, env.HasSignal)
	assert.Equal(t, 12.5, env.Score)
	assert.True(t, env.HasScore)
	assert.Equal(t, 0.83, env.Confidence)
	// Out-of-range values pass through untouched.
	assert.Equal(t, 140.0, env.Magnitude)
	assert.Equal(t, "Margin compression ahead", env.Content)
	require.NotNil(t, env.Price)
	assert.Equal(t, 118.4, *env.Price)
	require.NotNil(t, env.Factors.Value)
	assert.Nil(t, env.Factors.Quality)
	assert.Nil(t, env.AltmanZ)
}

func TestGateZeroScoreIsPresent(t *testing.T) {
	env, err := NewGate().Validate(`{"ticker":"TSLA","score":0}`)
	require.NoError(t, err)
	assert.True(t, env.HasScore)
	assert.Equal(t, 0.0, env.Score)
	assert.True(t, env.CarriesDecision())
}
