package layout

import (
	"errors"
	"fmt"

	"github.com/chazu/treenail/pkg/joint"
	"github.com/chazu/treenail/pkg/kernel"
)

// UnrollFace flattens one developable face of a curved solid and joins
// its boundary into a single closed outline. Each failure mode carries
// its own diagnostic: bad input, bad index, a face the kernel cannot
// unroll, an empty unroll, and a boundary that will not close.
func UnrollFace(k kernel.Kernel, s kernel.Solid, face int, precision float64) (kernel.Curve, error) {
	if s == nil {
		return kernel.Curve{}, fmt.Errorf("unroll: nil solid: %w", joint.ErrInvalidInput)
	}
	n, err := k.Faces(s)
	if err != nil {
		return kernel.Curve{}, fmt.Errorf("unroll: enumerate faces: %w: %v", joint.ErrKernelFailure, err)
	}
	if face < 0 || face >= n {
		return kernel.Curve{}, fmt.Errorf("unroll: face %d of %d: %w", face, n, joint.ErrIndexOutOfRange)
	}

	boundary, err := k.Unroll(k.Duplicate(s), face, precision)
	if err != nil {
		if errors.Is(err, kernel.ErrUnsupported) {
			return kernel.Curve{}, fmt.Errorf("unroll: %w", err)
		}
		return kernel.Curve{}, fmt.Errorf("unroll: non-developable face %d: %w: %v", face, joint.ErrGeometryPrecondition, err)
	}
	if len(boundary) == 0 {
		return kernel.Curve{}, fmt.Errorf("unroll: face %d produced no boundary: %w", face, joint.ErrKernelFailure)
	}

	closed, open := kernel.JoinCurves(boundary, joinEps)
	if len(closed) != 1 || len(open) != 0 {
		return kernel.Curve{}, fmt.Errorf("unroll: boundary did not join into one loop (%d closed, %d open): %w",
			len(closed), len(open), joint.ErrKernelFailure)
	}
	return closed[0], nil
}
