package models

import "time"

// Liveness of one feed.
type Liveness string

const (
	LivenessConnecting Liveness = "connecting"
	LivenessLive       Liveness = "live"
	LivenessOffline    Liveness = "offline"
)

// FeedStatus is the display-facing health of one scope. Warning is the
// persistent protocol mismatch banner; it is empty when the feed is clean.
type FeedStatus struct {
	Scope     string    `json:"scope"`
	Liveness  Liveness  `json:"liveness"`
	Warning   string    `json:"warning,omitempty"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is a consistent, deep-copied view of the reconciled state.
type Snapshot struct {
	Version     uint64                     `json:"version"`
	TakenAt     time.Time                  `json:"takenAt"`
	Log         []AuditLogEntry            `json:"log"`
	Instruments map[string]InstrumentState `json:"instruments"`
	Metrics     GlobalMetrics              `json:"metrics"`
	Feeds       []FeedStatus               `json:"feeds"`
}
