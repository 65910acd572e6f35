// Package joint implements the parametric joint-geometry pipeline:
// local edge frames, mirrored cutting volumes, tolerance-bounded mating
// growth, and the boolean sequencing that produces mated tenon/mortise
// pairs, a multi-strip variant, and a curved-strip slit variant.
//
// All geometry flows through a kernel.Kernel; inputs are duplicated
// before any destructive transform, so callers keep their solids.
package joint

import (
	"errors"
	"fmt"
)

// The error taxonomy. Every pipeline failure wraps one of these
// sentinels; callers discriminate with errors.Is.
var (
	// ErrInvalidInput marks a missing or null required value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexOutOfRange marks an edge or face index outside the
	// solid's enumeration.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrGeometryPrecondition marks geometry that fails a stage's
	// precondition (non-linear edge, degenerate frame, overlapping
	// slit tools).
	ErrGeometryPrecondition = errors.New("geometry precondition failed")

	// ErrKernelFailure marks a kernel call that returned no result.
	ErrKernelFailure = errors.New("kernel returned no result")

	// ErrToleranceOutOfPolicy marks a growth scale factor outside the
	// accepted band.
	ErrToleranceOutOfPolicy = errors.New("tolerance outside accepted band")
)

// Scale-factor policy band for tolerance growth: 1 exclusive to 2
// inclusive. An oversized factor would breach the outer wall of the
// receiving solid.
const (
	MinGrowthScale = 1.0 // exclusive
	MaxGrowthScale = 2.0 // inclusive
)

// GrowthScale validates a clearance tolerance and returns the uniform
// scale factor 1+t. The check runs before any kernel call.
func GrowthScale(tolerance float64) (float64, error) {
	scale := 1 + tolerance
	if scale <= MinGrowthScale || scale > MaxGrowthScale {
		return 0, fmt.Errorf("%w: scale factor %.4f outside (%.0f, %.0f]",
			ErrToleranceOutOfPolicy, scale, MinGrowthScale, MaxGrowthScale)
	}
	return scale, nil
}

// Warning records a dropped element in an aggregate operation: the
// output is degraded but non-empty. Errors, by contrast, mean the call
// produced no output.
type Warning struct {
	Stage string // pipeline stage that dropped the element
	Index int    // element index within the aggregate, -1 if n/a
	Err   error
}

func (w Warning) String() string {
	if w.Index >= 0 {
		return fmt.Sprintf("%s[%d]: %v", w.Stage, w.Index, w.Err)
	}
	return fmt.Sprintf("%s: %v", w.Stage, w.Err)
}
