package tack

import "errors"

// Sentinel kinds for tack analysis errors.
var (
	// ErrUnanalyzable marks a candidate whose maneuver start has no exactly
	// matching sample with a predecessor in the analysis range.
	ErrUnanalyzable = errors.New("tack unanalyzable")
)
