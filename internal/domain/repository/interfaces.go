package repository

import (
	"context"
	"time"

	"DeskStream/internal/domain/models"
)

// Transport opens a raw message stream for one scope.
type Transport interface {
	Dial(ctx context.Context, scope string) (Stream, error)
}

// Stream yields one raw payload per call. Next blocks until a message
// arrives, the context is done, or the transport fails.
type Stream interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// StateWriter is the mutation side of the reconciled store.
type StateWriter interface {
	AppendLog(entry models.AuditLogEntry)
	MergeInstrument(ticker string, patch models.InstrumentPatch)
	SetGlobalMetrics(m models.GlobalMetrics)
	SetLiveness(scope string, state models.Liveness)
	MarkComplete(scope string)
	RaiseWarning(scope, pattern, message string) bool
	ClearWarnings(scope string)
}

// SnapshotReader is the read side used by display surfaces.
type SnapshotReader interface {
	ReadAll() models.Snapshot
	Subscribe() (<-chan struct{}, func())
}

// AccountSource fetches account figures and positions from an external system.
type AccountSource interface {
	Fetch(ctx context.Context) (models.AccountSnapshot, error)
}

// Metrics records ingestion telemetry.
type Metrics interface {
	RecordMessage(scope, outcome string)
	RecordReconnect(scope string)
	SetFeedLive(scope string, live bool)
	RecordProtocolWarning(scope, pattern string)
	RecordStoreSize(logLen, instruments int)
	RecordLatency(operation string, d time.Duration)
}

// Message outcomes reported to Metrics.
const (
	OutcomeAccepted = "accepted"
	OutcomeComplete = "complete"
	OutcomeNoise    = "noise"
	OutcomeMismatch = "mismatch"
)
