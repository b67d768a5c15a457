package model

import "time"

// SessionStatus is the lifecycle state of an uploaded log.
type SessionStatus string

// Session statuses.
const (
	StatusPending SessionStatus = "pending"
	StatusDone    SessionStatus = "done"
	StatusFailed  SessionStatus = "failed"
)

// Session is one submitted telemetry log and, once analyzed, its results.
type Session struct {
	ID          string        `json:"id"`
	Status      SessionStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt time.Time     `json:"completed_at,omitzero"`
	Samples     int           `json:"samples"`
	Analysis    *Analysis     `json:"analysis,omitempty"`
}

// Job is the unit of work flowing through the analysis queue.
type Job struct {
	SessionID  string
	Samples    []Sample
	EnqueuedAt time.Time
}
