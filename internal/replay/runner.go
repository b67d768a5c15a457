// Package replay sends telemetry logs through a tackline service, or
// analyzes them in process, and prints the resulting tacks.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	service "github.com/okian/tackline/internal/app"
	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/pkg/logger"
)

const defaultPoll = 200 * time.Millisecond

// Run executes one replay and writes the tacks to cfg.Out.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get().Named("replay")
	stats := &Stats{StartTime: time.Now()}

	samples, err := Load(cfg)
	if err != nil {
		return fmt.Errorf("failed to load log: %w", err)
	}
	stats.Samples = len(samples)

	log.Info(ctx, "starting replay",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("file", cfg.File),
		logger.Int("samples", len(samples)),
		logger.Any("offline", cfg.Offline))

	var tacks []model.Tack
	if cfg.Offline {
		tacks, err = analyzeOffline(ctx, samples)
	} else {
		tacks, err = analyzeOnline(ctx, cfg, samples, stats)
	}
	if err != nil {
		return err
	}
	stats.Tacks = len(tacks)

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if err := writeTacks(out, tacks); err != nil {
		return fmt.Errorf("failed to write tacks: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return nil
}

func analyzeOffline(ctx context.Context, samples []model.Sample) ([]model.Tack, error) {
	a, err := service.New().Analyze(ctx, samples)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return a.Tacks, nil
}

func analyzeOnline(ctx context.Context, cfg *Config, samples []model.Sample, stats *Stats) ([]model.Tack, error) {
	log := logger.Get().Named("replay")
	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Synthetic logs are identical across runs; a fresh key keeps them
	// from being answered with an earlier session.
	var key string
	if cfg.File == "" {
		key = "replay-" + uuid.NewString()
	}
	ack, err := client.Submit(ctx, key, samples)
	if err != nil {
		return nil, err
	}
	stats.SessionID, stats.Duplicate = ack.ID, ack.Duplicate
	log.Debug(ctx, "log submitted", logger.String("session", ack.ID), logger.Any("duplicate", ack.Duplicate))

	poll := cfg.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		tacks, done, err := client.Tacks(ctx, ack.ID)
		stats.Polls++
		if err != nil {
			return nil, err
		}
		if done {
			return tacks, nil
		}
		log.Debug(ctx, "session pending", logger.String("session", ack.ID), logger.Int("polls", stats.Polls))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for session %s: %w", ack.ID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func writeTacks(w io.Writer, tacks []model.Tack) error {
	if tacks == nil {
		tacks = []model.Tack{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tacks)
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("samples", stats.Samples),
		logger.Int("tacks", stats.Tacks),
		logger.Int("polls", stats.Polls),
		logger.String("session", stats.SessionID),
		logger.Any("duplicate", stats.Duplicate),
		logger.Duration("duration", stats.Duration))
}
