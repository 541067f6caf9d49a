package game

import "errors"

var (
	// ErrInvalidConfiguration marks out-of-range setup values: player, hole or
	// score counts, UI values and malformed course definitions.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	ErrSessionNotFound = errors.New("session not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrInvalidPasscode = errors.New("invalid passcode")
)
