package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/tackline/internal/adapters/ingest"
	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/internal/simlog"
)

// Spacing of scripted tacks in a synthetic log.
const (
	firstTack   = 100 * time.Second
	tackSpacing = 80 * time.Second
	downwindLeg = 60 * time.Second
)

// Synthetic scripts a log with n tacks on one upwind leg, closed by a
// bear-away so that the last tack is analyzable too.
func Synthetic(n int) simlog.Config {
	cfg := simlog.Default()
	cfg.Tacks = make([]time.Duration, n)
	for k := range cfg.Tacks {
		cfg.Tacks[k] = firstTack + time.Duration(k)*tackSpacing
	}
	cfg.BearAway = firstTack + time.Duration(n)*tackSpacing
	cfg.Duration = cfg.BearAway + downwindLeg
	return cfg
}

// Load returns the samples the run replays.
func Load(cfg *Config) ([]model.Sample, error) {
	if cfg.File == "" {
		if cfg.Tacks < 0 {
			return nil, ErrBadTacks
		}
		return simlog.Generate(Synthetic(cfg.Tacks)), nil
	}

	name := cfg.Format
	if name == "" {
		name = filepath.Ext(cfg.File)
	}
	f, err := ingest.ParseFormat(name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	samples, err := ingest.Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.File, err)
	}
	return samples, nil
}
