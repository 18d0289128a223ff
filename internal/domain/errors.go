package domain

import "errors"

// Everything in this core either succeeds or fails with one of these,
// leaving state exactly as it was before the call. Malformed hunks are
// data, not errors: the parser records them and keeps going.
var (
	// ErrInvalidInput rejects annotation text that is empty after trimming
	// or exceeds MaxAnnotationText, and targets that fail validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded rejects an add that would push the store past its
	// distinct-annotation capacity.
	ErrCapacityExceeded = errors.New("annotation capacity exceeded")

	// ErrNotFound rejects update/delete on a target with no matches.
	ErrNotFound = errors.New("annotation not found")

	// ErrAmbiguous rejects update/delete when more than one annotation
	// shares the exact target and no ID was supplied to disambiguate.
	ErrAmbiguous = errors.New("multiple annotations match target")
)
