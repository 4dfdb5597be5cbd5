package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messages   *prometheus.CounterVec
	reconnects *prometheus.CounterVec
	feedLive   *prometheus.GaugeVec
	warnings   *prometheus.CounterVec
	logSize    prometheus.Gauge
	instrSize  prometheus.Gauge
	latency    *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		messages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskstream_feed_messages_total",
				Help: "Feed messages by scope and outcome",
			},
			[]string{"scope", "outcome"},
		),
		reconnects: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskstream_feed_reconnects_total",
				Help: "Reconnect attempts per scope",
			},
			[]string{"scope"},
		),
		feedLive: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "deskstream_feed_live",
				Help: "1 when the feed for a scope is live, 0 otherwise",
			},
			[]string{"scope"},
		),
		warnings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskstream_protocol_warnings_total",
				Help: "Distinct protocol mismatch patterns raised",
			},
			[]string{"scope", "pattern"},
		),
		logSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "deskstream_audit_log_entries",
			Help: "Entries currently held in the audit log",
		}),
		instrSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "deskstream_instruments",
			Help: "Instruments currently tracked",
		}),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskstream_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordMessage(scope, outcome string) {
	r.messages.WithLabelValues(scope, outcome).Inc()
}

func (r *Recorder) RecordReconnect(scope string) {
	r.reconnects.WithLabelValues(scope).Inc()
}

func (r *Recorder) SetFeedLive(scope string, live bool) {
	v := 0.0
	if live {
		v = 1
	}
	r.feedLive.WithLabelValues(scope).Set(v)
}

func (r *Recorder) RecordProtocolWarning(scope, pattern string) {
	r.warnings.WithLabelValues(scope, pattern).Inc()
}

// RecordStoreSize records the current log length and instrument count.
func (r *Recorder) RecordStoreSize(logLen, instruments int) {
	r.logSize.Set(float64(logLen))
	r.instrSize.Set(float64(instruments))
}

// RecordLatency records operation latency.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordMessage(string, string)         {}
func (Nop) RecordReconnect(string)               {}
func (Nop) SetFeedLive(string, bool)             {}
func (Nop) RecordProtocolWarning(string, string) {}
func (Nop) RecordStoreSize(int, int)             {}
func (Nop) RecordLatency(string, time.Duration)  {}
