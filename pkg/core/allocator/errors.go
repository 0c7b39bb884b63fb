package allocator

import "errors"

var (
	// ErrInvalidInput is returned when items cannot be materialized because
	// there are no targets or no workers to give them to
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration is returned when scorer tunables are out of range
	ErrConfiguration = errors.New("invalid scorer configuration")
)
