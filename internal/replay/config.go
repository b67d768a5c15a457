package replay

import (
	"io"
	"time"
)

// Config holds the options of one replay run.
type Config struct {
	BaseURL string        // Base URL of the service
	File    string        // Log file to replay; empty means synthetic
	Format  string        // csv or json; empty infers from the file extension
	Tacks   int           // Number of scripted tacks in a synthetic log
	Offline bool          // Analyze in process instead of calling the service
	Timeout time.Duration // HTTP request timeout
	Poll    time.Duration // Interval between session polls
	Verbose bool          // Enable debug logging
	Out     io.Writer     // Destination of the JSON tacks; stdout when nil
}

// Stats holds run statistics.
type Stats struct {
	Samples   int
	Tacks     int
	Polls     int
	SessionID string
	Duplicate bool
	StartTime time.Time
	Duration  time.Duration
}
