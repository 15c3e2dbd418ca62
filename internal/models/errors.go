package models

import "errors"

var (
	// ErrNotFound indicates a referenced id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates rejected input; no state was changed.
	ErrValidation = errors.New("invalid input")
)
