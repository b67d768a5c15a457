// Package tack selects upwind direction changes from a maneuver list and
// measures each one through a fixed sequence of phases.
package tack

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/tackline/internal/domain/aggregate"
	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/internal/domain/window"
	"github.com/okian/tackline/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Analyzer turns maneuvers into tack records. It holds only configuration
// and is safe for concurrent use.
type Analyzer struct {
	rotThreshold     float64
	spacingGuard     time.Duration
	downspeedRatio   float64
	fallbackStart    int
	endLookahead     int
	recoverySkip     int
	recoverySamples  int
	recoveryFallback int
	entryFrom        time.Duration
	entryTo          time.Duration

	analysisWindow window.Spec
	dataWindow     window.Spec
	trackWindow    window.Spec

	mean     aggregate.Factory
	circular aggregate.Factory

	parallelism int
	logger      logger.Logger
}

// Report is the outcome of analyzing one maneuver list.
type Report struct {
	Tacks   []model.Tack
	Skipped []model.Skipped
}

// New creates an Analyzer with default parameters.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		rotThreshold:     DefaultRotThreshold,
		spacingGuard:     DefaultSpacingGuard,
		downspeedRatio:   DefaultDownspeedRatio,
		fallbackStart:    DefaultFallbackStart,
		endLookahead:     DefaultEndLookahead,
		recoverySkip:     DefaultRecoverySkip,
		recoverySamples:  DefaultRecoverySamples,
		recoveryFallback: DefaultRecoveryFallback,
		entryFrom:        DefaultEntryFrom,
		entryTo:          DefaultEntryTo,
		analysisWindow:   DefaultAnalysisWindow,
		dataWindow:       DefaultDataWindow,
		trackWindow:      DefaultTrackWindow,
		mean:             aggregate.NewMean,
		circular:         aggregate.NewCircularMean,
		parallelism:      1,
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// AnalyzeTacks runs the default analyzer and returns the analyzable tacks.
func AnalyzeTacks(maneuvers []model.Maneuver, samples []model.Sample) []model.Tack {
	return New().Analyze(context.Background(), maneuvers, samples).Tacks
}

// Analyze selects candidate tacks and runs the pipeline on each of them.
// Output order follows the maneuver list regardless of parallelism.
// Unanalyzable candidates land in Report.Skipped.
func (a *Analyzer) Analyze(ctx context.Context, maneuvers []model.Maneuver, samples []model.Sample) Report {
	candidates := a.Select(maneuvers, samples)

	type outcome struct {
		tack model.Tack
		err  error
	}
	outcomes := make([]outcome, len(candidates))

	var g errgroup.Group
	g.SetLimit(a.parallelism)
	for i := range candidates {
		g.Go(func() error {
			t, err := a.Process(candidates[i])
			outcomes[i] = outcome{tack: t, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var report Report
	for i, o := range outcomes {
		if o.err != nil {
			c := candidates[i]
			report.Skipped = append(report.Skipped, model.Skipped{
				Time:   c.Maneuver.Start,
				Board:  c.Maneuver.Board,
				Reason: o.err.Error(),
			})
			if a.logger != nil {
				a.logger.Warn(ctx, "skipping unanalyzable tack",
					logger.String("time", c.Maneuver.Start.Format(time.RFC3339)),
					logger.String("board", c.Maneuver.Board.String()),
					logger.Error(o.err),
				)
			}
			continue
		}
		report.Tacks = append(report.Tacks, o.tack)
	}
	return report
}

// Process runs every pipeline phase on one candidate.
func (a *Analyzer) Process(c Candidate) (model.Tack, error) {
	r := &run{
		a:   a,
		rng: c.Range,
		tack: model.Tack{
			Time:  c.Maneuver.Start,
			Board: c.Maneuver.Board,
			Notes: []string{},
			Data:  c.Data,
			Track: c.Track,
		},
	}
	for _, p := range pipeline {
		if err := p.fn(r); err != nil {
			return model.Tack{}, fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return r.tack, nil
}
