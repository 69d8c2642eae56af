// Package repository defines the season standings store interface and errors.
package repository

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotFound     = errors.New("player not found")
	ErrInvalidLimit = errors.New("invalid limit")
)
