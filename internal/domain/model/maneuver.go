package model

import "time"

// Maneuver is a run of consecutive samples sharing one label.
// End is the timestamp of the first sample of the next run.
type Maneuver struct {
	Board Label     `json:"board"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start.
func (m Maneuver) Duration() time.Duration {
	return m.End.Sub(m.Start)
}
