package core

import "errors"

var (
	// ErrNotFound is returned when a memory id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when a trusted caller passes an out-of-range value.
	ErrValidation = errors.New("validation failed")
)
