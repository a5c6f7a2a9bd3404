package database

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidStatus   = errors.New("invalid booking status")
	ErrEmptyPackages   = errors.New("booking has no packages")
)
