package model

import "time"

// Timing holds the critical points of a tack.
type Timing struct {
	Center    time.Time `json:"center"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Recovered time.Time `json:"recovered"`
}

// Tack is the performance record of one analyzed upwind direction change.
// Metric fields are nil when no sample contributed to them.
type Tack struct {
	Time   time.Time `json:"time"`
	Board  Label     `json:"board"`
	Timing Timing    `json:"timing"`
	Notes  []string  `json:"notes"`

	Position      *Position `json:"position,omitempty"`
	StartPosition *Position `json:"startPosition,omitempty"`
	EndPosition   *Position `json:"endPosition,omitempty"`

	EntryVMG   *float64 `json:"entryVmg,omitempty"`
	EntrySpeed *float64 `json:"entrySpeed,omitempty"`
	EntryTWA   *float64 `json:"entryTwa,omitempty"`
	EntryHdg   *float64 `json:"entryHdg,omitempty"`

	TargetSpeed *float64 `json:"targetSpeed,omitempty"`
	TargetAngle *float64 `json:"targetAngle,omitempty"`

	MaxTWA *float64 `json:"maxTwa,omitempty"`

	RecoveryTWA   *float64 `json:"recoveryTwa,omitempty"`
	RecoveryHdg   *float64 `json:"recoveryHdg,omitempty"`
	RecoverySpeed *float64 `json:"recoverySpeed,omitempty"`

	TWS *float64 `json:"tws,omitempty"`
	TWD *float64 `json:"twd,omitempty"`

	// Loss is the signed distance figure in feet; see tack.Loss.
	Loss *float64 `json:"loss,omitempty"`

	// Display windows for presentation only.
	Data  []Sample `json:"data,omitempty"`
	Track []Sample `json:"track,omitempty"`
}

// Skipped records a candidate transition the pipeline could not analyze.
type Skipped struct {
	Time   time.Time `json:"time"`
	Board  Label     `json:"board"`
	Reason string    `json:"reason"`
}

// Analysis bundles everything computed for one telemetry log.
type Analysis struct {
	Samples   int        `json:"samples"`
	Maneuvers []Maneuver `json:"maneuvers"`
	Legs      []Maneuver `json:"legs"`
	Tacks     []Tack     `json:"tacks"`
	Skipped   []Skipped  `json:"skipped,omitempty"`
}
