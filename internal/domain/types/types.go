// Package types contains the read shapes shared by the API and its clients.
package types

import (
	"time"

	"github.com/okian/tackline/internal/domain/model"
)

// SessionSummary is a session without its analysis payload.
type SessionSummary struct {
	ID          string              `json:"id"`
	Status      model.SessionStatus `json:"status"`
	Error       string              `json:"error,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt time.Time           `json:"completed_at,omitzero"`
	Samples     int                 `json:"samples"`
	Maneuvers   int                 `json:"maneuvers"`
	Tacks       int                 `json:"tacks"`
	Skipped     int                 `json:"skipped"`
}

// Summarize drops the analysis payload from s, keeping its counts.
func Summarize(s model.Session) SessionSummary {
	out := SessionSummary{
		ID:          s.ID,
		Status:      s.Status,
		Error:       s.Error,
		CreatedAt:   s.CreatedAt,
		CompletedAt: s.CompletedAt,
		Samples:     s.Samples,
	}
	if a := s.Analysis; a != nil {
		out.Maneuvers = len(a.Maneuvers)
		out.Tacks = len(a.Tacks)
		out.Skipped = len(a.Skipped)
	}
	return out
}

// SubmitResponse acknowledges an upload.
type SubmitResponse struct {
	ID        string              `json:"id"`
	Status    model.SessionStatus `json:"status"`
	Duplicate bool                `json:"duplicate"`
}
