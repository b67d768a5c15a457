package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnknownLabel = errors.New("unknown label")
)
