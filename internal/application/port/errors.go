package port

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrSequenceConflict is returned when a transmission insert loses the
	// race for a (tax year, sequence number) pair. Safe to retry with a
	// freshly allocated sequence.
	ErrSequenceConflict = errors.New("sequence number already taken for tax year")
)
