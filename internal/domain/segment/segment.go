// Package segment run-length encodes a telemetry log into maneuvers.
package segment

import (
	"time"

	"github.com/okian/tackline/internal/domain/model"
)

// DefaultPreStartCutoff is the elapsed race time below which every
// labelable sample is pre-start.
const DefaultPreStartCutoff = 300 * time.Second

// Classifier labels a single sample. It must be a pure function of the
// sample; model.None means the sample cannot be labeled.
type Classifier interface {
	Classify(s model.Sample) model.Label
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(s model.Sample) model.Label

// Classify calls f(s).
func (f ClassifierFunc) Classify(s model.Sample) model.Label { return f(s) }

// Segment scans samples in order and emits one maneuver per run of equal
// labels. Unlabelable samples neither open nor close a run. The run still
// open after the last label change is not emitted.
func Segment(samples []model.Sample, c Classifier) []model.Maneuver {
	var (
		out     []model.Maneuver
		current = model.None
		start   time.Time
	)
	for _, s := range samples {
		label := c.Classify(s)
		if label == model.None || label == current {
			continue
		}
		if current != model.None {
			out = append(out, model.Maneuver{Board: current, Start: start, End: s.T})
		}
		current = label
		start = s.T
	}
	return out
}

// Maneuvers segments samples by board.
func Maneuvers(samples []model.Sample, cutoff time.Duration) []model.Maneuver {
	return Segment(samples, Board(cutoff))
}

// Legs segments samples by leg.
func Legs(samples []model.Sample, cutoff time.Duration) []model.Maneuver {
	return Segment(samples, Leg(cutoff))
}
