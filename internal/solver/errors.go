package solver

import "errors"

// Domain errors for state construction.
var (
	// ErrThreshold indicates a negative zero-g threshold.
	ErrThreshold = errors.New("solver: zero-g threshold must be non-negative")

	// ErrExitFactor indicates a zero-g exit factor below 1.
	ErrExitFactor = errors.New("solver: zero-g exit factor must be at least 1")

	// ErrBlendRate indicates a negative blend rate.
	ErrBlendRate = errors.New("solver: blend rate must be non-negative")

	// ErrMaxRate indicates a negative rotation rate cap.
	ErrMaxRate = errors.New("solver: max rotation rate must be non-negative")

	// ErrInitialUp indicates a zero or non-finite initial up vector.
	ErrInitialUp = errors.New("solver: initial up must be a finite non-zero vector")
)
