package models

import "time"

// Health statuses for a scored event type.
const (
	StatusHealthy = "healthy"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Alert severities.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// HealthMetric is the per-event-type match-quality summary for a website.
// Derived at read time, never persisted.
type HealthMetric struct {
	EventName    string    `json:"event_name"`
	EMQScore     float64   `json:"emq_score"`
	Status       string    `json:"status"`
	SampleCount  int       `json:"sample_count"`
	LastReceived time.Time `json:"last_received"`
}

// DuplicateGroup is a set of events that plausibly represent the same
// real-world action arriving more than once. Derived at read time.
type DuplicateGroup struct {
	EventName string    `json:"event_name"`
	EventID   string    `json:"event_id,omitempty"` // empty for identifier-window groups
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Alert is a human-readable health finding surfaced on the dashboard.
// Ephemeral per request; IDs are deterministic so the frontend can
// de-duplicate across polls.
type Alert struct {
	ID        string    `json:"id"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
