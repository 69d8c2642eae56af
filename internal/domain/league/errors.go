package league

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownLeague = errors.New("unknown league")
	ErrEmptyRoster   = errors.New("empty roster")
	// ErrBoundsViolation marks a computed multiplier outside the configured
	// bounds after clamping. This is a programming error; the drift run that
	// produced it is aborted with no state changed.
	ErrBoundsViolation = errors.New("multiplier bounds violation")
)
