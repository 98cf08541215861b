package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrNoContext is returned when advice generation is requested for a user
	// with no memories and no notes to build a prompt from.
	ErrNoContext = errors.New("no context available for advice generation")
)
