package tack

import (
	"time"

	"github.com/okian/tackline/internal/domain/aggregate"
	"github.com/okian/tackline/internal/domain/window"
	"github.com/okian/tackline/pkg/logger"
)

// Default analysis parameters.
const (
	DefaultRotThreshold     = 2.5 // deg/s; below this the boat is not turning
	DefaultSpacingGuard     = 45 * time.Second
	DefaultDownspeedRatio   = 0.9
	DefaultFallbackStart    = 15 // index into the analysis range
	DefaultEndLookahead     = 12 // samples after center searched for peak TWA
	DefaultRecoverySkip     = 5  // samples after end before VMG recovery is checked
	DefaultRecoverySamples  = 6  // samples averaged for recovery metrics
	DefaultRecoveryFallback = 30 // samples after center when VMG never recovers
	DefaultEntryFrom        = 6 * time.Second
	DefaultEntryTo          = 2 * time.Second
)

// Default windows around the maneuver start.
var (
	DefaultAnalysisWindow = window.Spec{Before: 30 * time.Second, After: 120 * time.Second}
	DefaultDataWindow     = window.Spec{Before: 20 * time.Second, After: 40 * time.Second}
	DefaultTrackWindow    = window.Spec{Before: 15 * time.Second, After: 20 * time.Second}
)

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithRotThreshold sets the rate of turn under which a sample counts as
// not turning.
func WithRotThreshold(degPerSec float64) Option {
	return func(a *Analyzer) {
		if degPerSec > 0 {
			a.rotThreshold = degPerSec
		}
	}
}

// WithSpacingGuard sets the minimum gap between a tack and the next
// maneuver.
func WithSpacingGuard(d time.Duration) Option {
	return func(a *Analyzer) {
		if d >= 0 {
			a.spacingGuard = d
		}
	}
}

// WithDownspeedRatio sets the fraction of target speed under which entry
// and recovery speeds are flagged.
func WithDownspeedRatio(ratio float64) Option {
	return func(a *Analyzer) {
		if ratio > 0 {
			a.downspeedRatio = ratio
		}
	}
}

// WithFallbackStart sets the range index used when no turn start is found.
func WithFallbackStart(idx int) Option {
	return func(a *Analyzer) {
		if idx >= 0 {
			a.fallbackStart = idx
		}
	}
}

// WithEndLookahead sets how many samples from the center are searched for
// the TWA extreme.
func WithEndLookahead(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.endLookahead = n
		}
	}
}

// WithRecoverySkip sets how many samples after the end are skipped before
// looking for VMG recovery.
func WithRecoverySkip(n int) Option {
	return func(a *Analyzer) {
		if n >= 0 {
			a.recoverySkip = n
		}
	}
}

// WithRecoverySamples sets how many samples are averaged from recovery on.
func WithRecoverySamples(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.recoverySamples = n
		}
	}
}

// WithRecoveryFallback sets the offset from center used when VMG never
// recovers.
func WithRecoveryFallback(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.recoveryFallback = n
		}
	}
}

// WithEntryWindow sets the window before the turn start used for entry
// metrics, as offsets back from the start.
func WithEntryWindow(from, to time.Duration) Option {
	return func(a *Analyzer) {
		if from > to && to >= 0 {
			a.entryFrom = from
			a.entryTo = to
		}
	}
}

// WithWindows overrides the analysis and display windows.
func WithWindows(analysis, data, track window.Spec) Option {
	return func(a *Analyzer) {
		a.analysisWindow = analysis
		a.dataWindow = data
		a.trackWindow = track
	}
}

// WithAggregators swaps the arithmetic and circular averaging strategies.
func WithAggregators(mean, circular aggregate.Factory) Option {
	return func(a *Analyzer) {
		if mean != nil {
			a.mean = mean
		}
		if circular != nil {
			a.circular = circular
		}
	}
}

// WithParallelism sets how many candidate tacks are processed at once.
func WithParallelism(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.parallelism = n
		}
	}
}

// WithLogger sets a logger for skipped candidates.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}
