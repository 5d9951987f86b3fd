package field

import "errors"

// Domain errors for source and zone construction.
var (
	// ErrSurfaceRadius indicates a non-positive surface radius.
	ErrSurfaceRadius = errors.New("field: surface radius must be positive")

	// ErrSurfaceStrength indicates a negative surface strength.
	ErrSurfaceStrength = errors.New("field: surface strength must be non-negative")

	// ErrMaxRange indicates a max range smaller than the surface radius.
	ErrMaxRange = errors.New("field: max range must cover the surface radius")

	// ErrNotFinite indicates a NaN or Inf in a position or parameter.
	ErrNotFinite = errors.New("field: value must be finite (NaN or Inf detected)")

	// ErrZoneRadius indicates a non-positive zone radius.
	ErrZoneRadius = errors.New("field: zone radius must be positive")

	// ErrUnknownSource indicates a handle that is not in the registry.
	ErrUnknownSource = errors.New("field: unknown source id")
)
