package identity

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownPlayer = errors.New("player identity not found")
	ErrUnknownScope  = errors.New("scope not found")
)
