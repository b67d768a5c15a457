package replay

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/tackline/pkg/logger"
)

// SetupLogging initializes the global logger on w (stderr when nil), at
// debug level when verbose.
func SetupLogging(w io.Writer, verbose bool) error {
	if w == nil {
		w = os.Stderr
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithWriter(w), logger.WithLevel(level)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the replay tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `tackline replay
===============

Sends a telemetry log to a tackline service, waits for the analysis and
prints the tacks as JSON. With -offline the log is analyzed in process.

Usage:
  go run ./cmd/replay [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -file string
        CSV or JSON log to replay (default: a synthetic log)
  -format string
        Log format, csv or json (default: from the file extension)
  -synthetic
        Replay a synthetic log even when -file is set
  -tacks int
        Number of tacks in the synthetic log (default 3)
  -offline
        Analyze locally without a service
  -timeout duration
        HTTP request timeout (default 30s)
  -poll duration
        Interval between session polls (default 200ms)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Analyze a synthetic log without a service
  go run ./cmd/replay -offline -tacks 5

  # Replay a recorded race against a local service
  go run ./cmd/replay -file race.csv -url http://localhost:8080
`)
}
