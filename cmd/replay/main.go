package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/tackline/internal/replay"
)

// Default configuration constants.
const (
	defaultTacks      = 3
	defaultTimeout    = 30 * time.Second
	defaultPoll       = 200 * time.Millisecond
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		file      = flag.String("file", "", "CSV or JSON log to replay (default: a synthetic log)")
		format    = flag.String("format", "", "Log format, csv or json (default: from the file extension)")
		synthetic = flag.Bool("synthetic", false, "Replay a synthetic log even when -file is set")
		tacks     = flag.Int("tacks", defaultTacks, "Number of tacks in the synthetic log")
		offline   = flag.Bool("offline", false, "Analyze locally without a service")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		poll      = flag.Duration("poll", defaultPoll, "Interval between session polls")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp(os.Stdout)
		return
	}

	if err := replay.SetupLogging(os.Stderr, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &replay.Config{
		BaseURL: *baseURL,
		File:    *file,
		Format:  *format,
		Tacks:   *tacks,
		Offline: *offline,
		Timeout: *timeout,
		Poll:    *poll,
		Verbose: *verbose,
		Out:     os.Stdout,
	}
	if *synthetic {
		cfg.File = ""
	}

	if err := replay.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Replay failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
