package store

import (
	"errors"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller does not own the entity.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidDraft is returned when a question draft fails validation.
	// Wrap it with the field detail: fmt.Errorf("%w: prompt is required", ErrInvalidDraft).
	ErrInvalidDraft = errors.New("invalid question draft")
)
