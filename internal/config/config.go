// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and the environment on top of the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory analysis queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many idempotency keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxSessions caps the session store.
	MaxSessions int `koanf:"max_sessions"`

	// Parallelism bounds concurrent tack candidates within one analysis.
	Parallelism int `koanf:"parallelism"`

	// PreStartCutoffS is the elapsed race time, in seconds, under which a
	// sample is pre-start.
	PreStartCutoffS float64 `koanf:"pre_start_cutoff_s"`

	RotThreshold     float64 `koanf:"rot_threshold"`
	SpacingGuardS    float64 `koanf:"spacing_guard_s"`
	DownspeedRatio   float64 `koanf:"downspeed_ratio"`
	FallbackStart    int     `koanf:"fallback_start"`
	EndLookahead     int     `koanf:"end_lookahead"`
	RecoverySkip     int     `koanf:"recovery_skip"`
	RecoverySamples  int     `koanf:"recovery_samples"`
	RecoveryFallback int     `koanf:"recovery_fallback"`

	// MaxUploadBytes caps the request body of an upload.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		QueueSize:        256,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       10_000,
		MaxSessions:      1_000,
		Parallelism:      1,
		PreStartCutoffS:  300,
		RotThreshold:     2.5,
		SpacingGuardS:    45,
		DownspeedRatio:   0.9,
		FallbackStart:    15,
		EndLookahead:     12,
		RecoverySkip:     5,
		RecoverySamples:  6,
		RecoveryFallback: 30,
		MaxUploadBytes:   32 << 20,
	}
}

// PreStartCutoff returns PreStartCutoffS as a duration.
func (c *Config) PreStartCutoff() time.Duration {
	return seconds(c.PreStartCutoffS)
}

// SpacingGuard returns SpacingGuardS as a duration.
func (c *Config) SpacingGuard() time.Duration {
	return seconds(c.SpacingGuardS)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Validate reports the first setting the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	case c.Parallelism <= 0:
		return fmt.Errorf("%w: parallelism must be positive", ErrInvalidConfig)
	case c.PreStartCutoffS <= 0:
		return fmt.Errorf("%w: pre_start_cutoff_s must be positive", ErrInvalidConfig)
	case c.RotThreshold <= 0:
		return fmt.Errorf("%w: rot_threshold must be positive", ErrInvalidConfig)
	case c.SpacingGuardS < 0:
		return fmt.Errorf("%w: spacing_guard_s must not be negative", ErrInvalidConfig)
	case c.DownspeedRatio <= 0:
		return fmt.Errorf("%w: downspeed_ratio must be positive", ErrInvalidConfig)
	case c.FallbackStart < 0 || c.RecoverySkip < 0:
		return fmt.Errorf("%w: fallback_start and recovery_skip must not be negative", ErrInvalidConfig)
	case c.EndLookahead <= 0 || c.RecoverySamples <= 0 || c.RecoveryFallback <= 0:
		return fmt.Errorf("%w: end_lookahead, recovery_samples and recovery_fallback must be positive", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}
