package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("session was modified concurrently")
	ErrNoCompleter     = errors.New("no text-completion service configured")
	ErrInvalidMarkup   = errors.New("markup is not one of the offered options")
	ErrStageClosed     = errors.New("session has moved past this stage")
)
