package app

import (
	"errors"
)

// Sentinel error kinds for the recommendation façade.
var (
	// ErrInvalidOptions marks malformed request input. It is the only
	// hard failure the façade produces; collaborator trouble degrades
	// into absent data instead.
	ErrInvalidOptions = errors.New("invalid options")

	// ErrNoCalendarGrant is returned by busy-event fetchers for users who
	// never granted calendar access. Such users are excluded from the
	// availability intersection rather than treated as busy.
	ErrNoCalendarGrant = errors.New("no calendar grant")
)
