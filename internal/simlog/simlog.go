// Package simlog generates deterministic 1 Hz telemetry logs with scripted
// tacks, for tests and for exercising a running service.
package simlog

import (
	"math"
	"time"

	"github.com/okian/tackline/internal/domain/model"
)

// Shape of a scripted tack, in seconds relative to the TWA flip.
const (
	turnLead       = 3  // ROT spikes and VMG starts dropping this early
	turnTail       = 6  // last second of the ROT spike
	recoverAfter   = 30 // VMG is back to the entry value this late
	dipPeak        = 3  // second with the lowest VMG
	dipDepth       = 0.6
	turningROT     = 10.0
	steadyROT      = 0.5
	upwindTWA      = 45.0
	downwindTWA    = 140.0
	preStartCutoff = 300.0
	degreesPerStep = 1e-5
)

// overshoot is added to |TWA| for the first seconds after the flip; its
// peak marks the end of the turn.
var overshoot = []float64{3, 7, 10, 7, 3, 1}

// Config scripts a log. Offsets are measured from Start.
type Config struct {
	Start    time.Time
	Duration time.Duration
	// PreStart is how long the log stays under the pre-start cutoff.
	PreStart time.Duration
	// Port starts the log on port tack instead of starboard.
	Port bool
	// Tacks are the offsets where TWA flips sides.
	Tacks []time.Duration
	// BearAway, when non-zero, is the offset where the boat turns downwind.
	BearAway time.Duration

	VMG         float64
	Speed       float64
	TargetSpeed float64 // zero leaves targets out
	TWS         float64
	TWD         float64
	Lon, Lat    float64
}

// Default is a log with one starboard-to-port tack at 100 s, a bear-away
// at 200 s, and one minute of pre-start.
func Default() Config {
	return Config{
		Start:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Duration: 260 * time.Second,
		PreStart: 60 * time.Second,
		Tacks:    []time.Duration{100 * time.Second},
		BearAway: 200 * time.Second,
		VMG:      6,
		Speed:    7,
		TWS:      14,
		TWD:      10,
		Lon:      -122.45,
		Lat:      37.80,
	}
}

// Generate renders the scripted log.
func Generate(cfg Config) []model.Sample {
	n := int(cfg.Duration / time.Second)
	out := make([]model.Sample, 0, n)
	preStart := cfg.PreStart.Seconds()

	for k := 0; k < n; k++ {
		sec := float64(k)
		side := 1.0
		if cfg.Port {
			side = -1
		}
		// dist is the offset from the nearest tack whose shape covers sec.
		dist := math.Inf(1)
		for _, t := range cfg.Tacks {
			ts := t.Seconds()
			if ts <= sec {
				side = -side
			}
			if d := sec - ts; d >= -turnLead && d < recoverAfter && math.Abs(d) < math.Abs(dist) {
				dist = d
			}
		}

		twa := side * upwindTWA
		rot := steadyROT
		ratio := 1.0
		if !math.IsInf(dist, 1) {
			if dist >= 0 && int(dist) < len(overshoot) {
				twa = side * (upwindTWA + overshoot[int(dist)])
			}
			if dist <= turnTail {
				rot = turningROT
			}
			ratio = 1 - dipDepth*dip(dist)
		}
		if cfg.BearAway > 0 && sec >= cfg.BearAway.Seconds() {
			twa = side * downwindTWA
		}

		s := model.Sample{
			T:     cfg.Start.Add(time.Duration(k) * time.Second),
			TWA:   model.F(twa),
			TWS:   model.F(cfg.TWS),
			TWD:   model.F(cfg.TWD),
			Speed: model.F(cfg.Speed * ratio),
			VMG:   model.F(cfg.VMG * ratio),
			Hdg:   model.F(normalize(cfg.TWD - twa)),
			ROT:   model.F(rot),
			Lon:   model.F(cfg.Lon + sec*degreesPerStep),
			Lat:   model.F(cfg.Lat + sec*degreesPerStep),
			OT:    model.F(preStartCutoff - preStart + sec),
		}
		if cfg.TargetSpeed > 0 {
			s.TargetSpeed = model.F(cfg.TargetSpeed)
			s.TargetAngle = model.F(upwindTWA)
		}
		out = append(out, s)
	}
	return out
}

// dip is a triangle that is 0 at -turnLead, 1 at dipPeak and 0 again at
// recoverAfter.
func dip(d float64) float64 {
	switch {
	case d < -turnLead || d >= recoverAfter:
		return 0
	case d <= dipPeak:
		return (d + turnLead) / (dipPeak + turnLead)
	default:
		return (recoverAfter - d) / (recoverAfter - dipPeak)
	}
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
