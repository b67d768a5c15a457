package replay

import "errors"

// Sentinel errors for replay runs.
var (
	ErrUnhealthy     = errors.New("service is not healthy")
	ErrRejected      = errors.New("upload rejected")
	ErrSessionFailed = errors.New("analysis failed")
	ErrBadTacks      = errors.New("tacks must not be negative")
)
