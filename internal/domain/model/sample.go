// Package model contains domain models passed between layers.
package model

import "time"

// Sample is one timestamped telemetry observation.
// Optional instrument fields are nil when the instrument dropped out;
// a nil field is never the same thing as zero.
type Sample struct {
	T           time.Time `json:"t"`
	TWA         *float64  `json:"twa,omitempty"`         // true wind angle, degrees, port negative
	TWS         *float64  `json:"tws,omitempty"`         // true wind speed, knots
	TWD         *float64  `json:"twd,omitempty"`         // true wind direction, 0-360
	Speed       *float64  `json:"speed,omitempty"`       // boat speed, knots
	VMG         *float64  `json:"vmg,omitempty"`         // velocity made good, knots
	Hdg         *float64  `json:"hdg,omitempty"`         // heading, 0-360
	ROT         *float64  `json:"rot,omitempty"`         // rate of turn, deg/s
	Lon         *float64  `json:"lon,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	OT          *float64  `json:"ot,omitempty"`          // elapsed race time, seconds
	TargetSpeed *float64  `json:"targetSpeed,omitempty"` // polar target speed
	TargetAngle *float64  `json:"targetAngle,omitempty"` // polar target angle
}

// F returns a pointer to v. It keeps sample literals short.
func F(v float64) *float64 { return &v }

// Position is a lon/lat pair.
type Position struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// PositionOf returns the sample's position, or nil when either coordinate
// is missing.
func PositionOf(s Sample) *Position {
	if s.Lon == nil || s.Lat == nil {
		return nil
	}
	return &Position{Lon: *s.Lon, Lat: *s.Lat}
}
