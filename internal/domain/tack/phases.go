package tack

import (
	"math"

	"github.com/okian/tackline/internal/domain/aggregate"
	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/internal/domain/window"
)

// findCenter sets the center to the last sample on the old board.
func (r *run) findCenter() error {
	match := -1
	for j, s := range r.rng {
		if s.T.Equal(r.tack.Time) {
			match = j
			break
		}
	}
	if match < 1 {
		return ErrUnanalyzable
	}
	r.idx.center = match - 1
	r.tack.Position = model.PositionOf(r.rng[r.idx.center])
	return nil
}

// findStart walks back from just before the center to the first sample
// that is no longer turning.
func (r *run) findStart() error {
	start := -1
	for j := r.idx.center - 3; j >= 0; j-- {
		rot := r.rng[j].ROT
		if rot != nil && math.Abs(*rot) < r.a.rotThreshold {
			start = j
			break
		}
	}
	if start < 0 {
		start = min(r.a.fallbackStart, r.idx.center)
		r.note(NoteDefaultStart)
	}
	r.idx.start = start
	r.tack.StartPosition = model.PositionOf(r.rng[start])
	return nil
}

// calculateEntrySpeeds averages the approach, a few seconds before the
// turn starts.
func (r *run) calculateEntrySpeeds() error {
	t := r.rng[r.idx.start].T
	entry := window.SliceByTimeRange(r.rng, t.Add(-r.a.entryFrom), t.Add(-r.a.entryTo))

	vmg, speed, twa := r.a.mean(), r.a.mean(), r.a.mean()
	target, targetAngle := r.a.mean(), r.a.mean()
	hdg := r.a.circular()
	for _, s := range entry {
		feed(vmg, s.VMG)
		feed(speed, s.Speed)
		feed(twa, s.TWA)
		feed(target, s.TargetSpeed)
		feed(hdg, s.Hdg)
		feed(targetAngle, s.TargetAngle)
	}

	r.tack.EntryVMG = aggregate.Ptr(vmg)
	r.tack.EntrySpeed = aggregate.Ptr(speed)
	r.tack.EntryTWA = aggregate.Ptr(twa)
	r.tack.EntryHdg = aggregate.Ptr(hdg)
	r.tack.TargetSpeed = aggregate.Ptr(target)
	r.tack.TargetAngle = aggregate.Ptr(targetAngle)

	if r.belowTarget(r.tack.EntrySpeed) {
		r.note(NoteStartedDownspeed)
	}
	return nil
}

// findEnd picks the TWA extreme shortly after the center: the most
// negative angle when the tack ends on port, the largest otherwise.
func (r *run) findEnd() error {
	best := r.idx.center
	limit := min(r.idx.center+r.a.endLookahead, len(r.rng))
	lowest := r.tack.Board == model.UpwindPort
	for j := r.idx.center; j < limit; j++ {
		twa := r.rng[j].TWA
		if twa == nil {
			continue
		}
		if r.rng[best].TWA == nil {
			best = j
		}
		cur := *r.rng[best].TWA
		if (lowest && *twa < cur) || (!lowest && *twa > cur) {
			best = j
		}
	}
	r.idx.end = best
	r.tack.MaxTWA = clone(r.rng[best].TWA)
	r.tack.EndPosition = model.PositionOf(r.rng[best])
	return nil
}

// findRecoveryTime finds the first sample whose VMG is back to the entry
// VMG.
func (r *run) findRecoveryTime() error {
	recovered := -1
	if r.tack.EntryVMG != nil {
		entry := *r.tack.EntryVMG
		for j := r.idx.end + r.a.recoverySkip; j < len(r.rng); j++ {
			vmg := r.rng[j].VMG
			if vmg != nil && *vmg >= entry {
				recovered = j
				break
			}
		}
	}
	if recovered < 0 {
		recovered = min(r.idx.center+r.a.recoveryFallback, len(r.rng)-1)
		recovered = max(recovered, r.idx.end)
		r.note(NoteNeverRecovered)
	}
	r.idx.recovered = recovered
	return nil
}

// findRecoveryMetrics averages the first samples after recovery.
func (r *run) findRecoveryMetrics() error {
	twa, speed := r.a.mean(), r.a.mean()
	hdg := r.a.circular()
	limit := min(r.idx.recovered+r.a.recoverySamples, len(r.rng))
	for j := r.idx.recovered; j < limit; j++ {
		s := r.rng[j]
		feed(twa, s.TWA)
		feed(hdg, s.Hdg)
		feed(speed, s.Speed)
	}

	r.tack.RecoveryTWA = aggregate.Ptr(twa)
	r.tack.RecoveryHdg = aggregate.Ptr(hdg)
	r.tack.RecoverySpeed = aggregate.Ptr(speed)

	if r.belowTarget(r.tack.RecoverySpeed) {
		r.note(NoteNeverUpToSpeed)
	}
	return nil
}

// addClassificationStats records the wind before the turn started.
func (r *run) addClassificationStats() error {
	tws := r.a.mean()
	twd := r.a.circular()
	for _, s := range r.rng[:r.idx.start] {
		feed(tws, s.TWS)
		feed(twd, s.TWD)
	}
	r.tack.TWS = aggregate.Ptr(tws)
	r.tack.TWD = aggregate.Ptr(twd)
	return nil
}

// convertIndexesToTimes must run after every index-based phase.
func (r *run) convertIndexesToTimes() error {
	r.tack.Timing = model.Timing{
		Center:    r.rng[r.idx.center].T,
		Start:     r.rng[r.idx.start].T,
		End:       r.rng[r.idx.end].T,
		Recovered: r.rng[r.idx.recovered].T,
	}
	return nil
}

// calculateLoss compares distance made good through the maneuver with
// what the entry VMG would have made good.
func (r *run) calculateLoss() error {
	if r.tack.EntryVMG == nil {
		return nil
	}
	loss := Loss(r.rng, r.tack.Timing.Start, r.tack.Timing.Recovered, *r.tack.EntryVMG)
	r.tack.Loss = &loss
	return nil
}
