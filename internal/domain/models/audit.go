package models

import "time"

// AuditLogEntry is one immutable line of the agent audit log.
type AuditLogEntry struct {
	ID         string    `json:"id"`
	Timestamp  string    `json:"timestamp"`
	CapturedAt time.Time `json:"capturedAt"`
	Scope      string    `json:"scope"`
	Ticker     string    `json:"ticker"`
	AgentID    string    `json:"agentId"`
	Badge      string    `json:"badge"`
	Signal     Signal    `json:"signal"`
	Confidence float64   `json:"confidence"`
	Magnitude  float64   `json:"magnitude"`
	Rationale  string    `json:"rationale"`
}
