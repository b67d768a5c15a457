package tack

import (
	"slices"

	"github.com/okian/tackline/internal/domain/model"
)

// Candidate is a maneuver that qualified as a tack, with its windows.
type Candidate struct {
	// Index is the position of Maneuver in the maneuver list.
	Index    int
	Maneuver model.Maneuver
	// Range is the analysis window the pipeline works on.
	Range []model.Sample
	// Data and Track are display windows.
	Data  []model.Sample
	Track []model.Sample
}

// Select picks upwind-to-upwind transitions that are not next to pre-start
// and are not followed too closely by another maneuver. The scan starts at
// index 2 so every candidate has two maneuvers of history.
func (a *Analyzer) Select(maneuvers []model.Maneuver, samples []model.Sample) []Candidate {
	var out []Candidate
	for i := 2; i < len(maneuvers); i++ {
		cur, prev := maneuvers[i], maneuvers[i-1]
		if !cur.Board.IsUpwind() || !prev.Board.IsUpwind() {
			continue
		}
		if prev.Board == model.PreStart {
			continue
		}
		if i+1 < len(maneuvers) && maneuvers[i+1].Start.Add(-a.spacingGuard).Before(cur.Start) {
			continue
		}
		out = append(out, Candidate{
			Index:    i,
			Maneuver: cur,
			Range:    a.analysisWindow.Around(samples, cur.Start),
			Data:     slices.Clone(a.dataWindow.Around(samples, cur.Start)),
			Track:    slices.Clone(a.trackWindow.Around(samples, cur.Start)),
		})
	}
	return out
}
