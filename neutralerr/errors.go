// Package neutralerr defines the fatal error kinds the transport core can
// raise at its boundary, per the error handling design: every condition
// here is a configuration or invariant failure, never a recoverable event.
package neutralerr

import "errors"

var (
	// ErrBadParticleCount is returned when a requested particle count is
	// not a multiple of the block width B.
	ErrBadParticleCount = errors.New("particle count is not a multiple of the block size")

	// ErrCrossSectionOutOfRange is returned when a lookup energy falls
	// outside a cross-section table's key bounds.
	ErrCrossSectionOutOfRange = errors.New("energy out of cross-section table range")

	// ErrAllocationFailed names the failure to allocate a particle or
	// ancillary buffer. No function in this module returns it: the
	// allocations use make, which does not report failure as an error.
	ErrAllocationFailed = errors.New("allocation failed")

	// ErrDegenerateDirection is returned when a particle direction cosine
	// pair is (0,0), which cannot arise from isotropic sampling and
	// indicates corrupted input.
	ErrDegenerateDirection = errors.New("degenerate particle direction")

	// ErrInvalidConfig is returned when a loaded configuration fails a
	// cross-field validation check.
	ErrInvalidConfig = errors.New("invalid configuration")
)
