package main

import (
	"bytes"
	"strings"
	"testing"

	mid "DeskStream/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	in := strings.Join([]string{
		`{"ticker":"nvda","score":80}`,
		`{"agent":"Graham"}`,
		`oops`,
		`{"signal":"maybe"}`,
		`[DONE]`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, classify(strings.NewReader(in), &out, mid.NewGate()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "1\taccepted ticker=\"nvda\" decision=true", lines[0])
	assert.Equal(t, "2\taccepted ticker=\"\" decision=false", lines[1])
	assert.Equal(t, "3\tnoise", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "4\tmismatch pattern=field:signal:oneof"))
	assert.Equal(t, "5\tcomplete", lines[4])
}
