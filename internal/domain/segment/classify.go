package segment

import (
	"math"
	"time"

	"github.com/okian/tackline/internal/domain/model"
)

// Board classifies a sample into an upwind/downwind, port/starboard board.
// Zero TWA counts as starboard while -90 counts as upwind port; the
// boundaries are asymmetric on purpose and must stay that way.
func Board(cutoff time.Duration) Classifier {
	limit := cutoff.Seconds()
	return ClassifierFunc(func(s model.Sample) model.Label {
		if s.TWA == nil {
			return model.None
		}
		twa := *s.TWA
		b := model.UpwindStarboard
		switch {
		case -90 <= twa && twa < 0:
			b = model.UpwindPort
		case twa < -90:
			b = model.DownwindPort
		case twa > 90:
			b = model.DownwindStarboard
		}
		if inPreStart(s, limit) {
			b = model.PreStart
		}
		return b
	})
}

// Leg classifies a sample into an upwind or downwind leg. Pre-start
// applies even when TWA is missing.
func Leg(cutoff time.Duration) Classifier {
	limit := cutoff.Seconds()
	return ClassifierFunc(func(s model.Sample) model.Label {
		switch {
		case inPreStart(s, limit):
			return model.PreStart
		case s.TWA == nil:
			return model.None
		case math.Abs(*s.TWA) < 90:
			return model.Upwind
		default:
			return model.Downwind
		}
	})
}

func inPreStart(s model.Sample, limit float64) bool {
	return s.OT != nil && *s.OT < limit
}
