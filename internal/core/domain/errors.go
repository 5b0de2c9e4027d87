package domain

import "errors"

// Storage-level conditions that repositories translate from driver errors.
// The Logic layer maps them onto its own error kinds.
var (
	// ErrConflict indicates a unique constraint rejected the write.
	ErrConflict = errors.New("unique constraint violation")

	// ErrMissingReference indicates a foreign key target does not exist.
	ErrMissingReference = errors.New("referenced row does not exist")
)
