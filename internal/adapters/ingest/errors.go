package ingest

import "errors"

// Sentinel kinds for ingest errors.
var (
	ErrEmpty         = errors.New("telemetry log is empty")
	ErrNoTimeColumn  = errors.New("no time column")
	ErrBadTimestamp  = errors.New("bad timestamp")
	ErrBadValue      = errors.New("bad value")
	ErrUnsorted      = errors.New("timestamps out of order")
	ErrUnknownFormat = errors.New("unknown log format")
)
