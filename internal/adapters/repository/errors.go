package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidLimit = errors.New("invalid session limit")
	ErrExists       = errors.New("session already exists")
	ErrFull         = errors.New("session store full")
	ErrFinished     = errors.New("session already finished")
)
