package tack

import (
	"time"

	"github.com/okian/tackline/internal/domain/aggregate"
	"github.com/okian/tackline/internal/domain/model"
)

// Notes appended by the pipeline.
const (
	NoteDefaultStart     = "using default start"
	NoteStartedDownspeed = "* started tack downspeed"
	NoteNeverRecovered   = "never found recovery"
	NoteNeverUpToSpeed   = "* never came back up to speed"
)

// indexes are positions in the analysis range. They are converted to
// timestamps once every index-based phase has run.
type indexes struct {
	center, start, end, recovered int
}

// run is the state of one candidate moving through the pipeline.
type run struct {
	a    *Analyzer
	rng  []model.Sample
	idx  indexes
	tack model.Tack
}

type phase struct {
	name string
	fn   func(*run) error
}

// pipeline lists the phases in their mandatory order; each phase reads
// fields written by the ones before it.
var pipeline = []phase{
	{"findCenter", (*run).findCenter},
	{"findStart", (*run).findStart},
	{"calculateEntrySpeeds", (*run).calculateEntrySpeeds},
	{"findEnd", (*run).findEnd},
	{"findRecoveryTime", (*run).findRecoveryTime},
	{"findRecoveryMetrics", (*run).findRecoveryMetrics},
	{"addClassificationStats", (*run).addClassificationStats},
	{"convertIndexesToTimes", (*run).convertIndexesToTimes},
	{"calculateLoss", (*run).calculateLoss},
}

func (r *run) note(msg string) {
	r.tack.Notes = append(r.tack.Notes, msg)
}

// belowTarget reports whether speed is under the downspeed ratio of the
// target speed. Missing values never trigger it.
func (r *run) belowTarget(speed *float64) bool {
	target := r.tack.TargetSpeed
	if target == nil || speed == nil {
		return false
	}
	return *speed < *target*r.a.downspeedRatio
}

func feed(a aggregate.Aggregator, v *float64) {
	if v != nil {
		a.Update(*v)
	}
}

func clone(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Loss conversion: VMG in knots times seconds, to feet.
const (
	feetPerNauticalMile = 6076.11549
	secondsPerHour      = 3600.0
)

// Loss integrates VMG over [start, recovered] with left rectangles (each
// interval weighted by the VMG of the sample that opens it) and compares
// it with entryVMG held for the same time. The result is
// -(feet per knot-second) * (ideal - covered): a boat that lost ground
// yields a negative figure.
func Loss(samples []model.Sample, start, recovered time.Time, entryVMG float64) float64 {
	var (
		covered float64
		prevT   time.Time
		prevVMG float64
		seen    bool
	)
	for _, s := range samples {
		if s.T.Before(start) || s.T.After(recovered) || s.VMG == nil {
			continue
		}
		if seen {
			covered += s.T.Sub(prevT).Seconds() * prevVMG
		}
		prevT, prevVMG, seen = s.T, *s.VMG, true
	}
	ideal := entryVMG * recovered.Sub(start).Seconds()
	return -feetPerNauticalMile / secondsPerHour * (ideal - covered)
}
