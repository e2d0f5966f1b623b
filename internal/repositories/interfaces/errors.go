package interfaces

import "errors"

var (
	ErrNotFound = errors.New("document not found")
	// ErrStatusChanged is returned by conditional updates whose status
	// precondition no longer holds.
	ErrStatusChanged = errors.New("document status changed")
	ErrDuplicate     = errors.New("duplicate document")
)
