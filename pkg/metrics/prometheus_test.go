package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DeskStream/internal/domain/repository"
)

var _ repository.Metrics = (*Recorder)(nil)
var _ repository.Metrics = Nop{}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordMessage("GLOBAL", repository.OutcomeAccepted)
	r.RecordMessage("GLOBAL", repository.OutcomeAccepted)
	r.RecordMessage("GLOBAL", repository.OutcomeNoise)
	r.SetFeedLive("GLOBAL", true)
	r.RecordStoreSize(12, 20)
	r.RecordLatency("ingest", 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.messages.WithLabelValues("GLOBAL", repository.OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.messages.WithLabelValues("GLOBAL", repository.OutcomeNoise)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.feedLive.WithLabelValues("GLOBAL")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.logSize))

	r.SetFeedLive("GLOBAL", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.feedLive.WithLabelValues("GLOBAL")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
