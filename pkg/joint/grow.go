package joint

import (
	"fmt"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

// GrowTool intersects two solids and grows the intersection uniformly
// about its own volume centroid by 1+tolerance, yielding the cutting
// tool for the mortise. The tolerance is validated before any kernel
// call; a factor outside (1, 2] would let the cut breach the outer wall
// of the receiving solid.
func GrowTool(k kernel.Kernel, precision float64, a, b kernel.Solid, tolerance float64) (kernel.Solid, error) {
	scale, err := GrowthScale(tolerance)
	if err != nil {
		return nil, fmt.Errorf("grow: %w", err)
	}
	inter, err := intersect(k, precision, a, b)
	if err != nil {
		return nil, err
	}
	centroid, err := k.VolumeCentroid(inter, kernel.Precision(precision))
	if err != nil {
		return nil, fmt.Errorf("grow: centroid undefined: %w: %v", ErrKernelFailure, err)
	}
	return scaleUniform(k, inter, centroid, scale), nil
}

// GrowToolAbout is GrowTool with a caller-supplied growth center,
// replacing the per-intersection centroid. The multi-strip pipeline
// uses one shared reference centroid for every strip.
func GrowToolAbout(k kernel.Kernel, precision float64, a, b kernel.Solid, tolerance float64, about geom.Vec3) (kernel.Solid, error) {
	scale, err := GrowthScale(tolerance)
	if err != nil {
		return nil, fmt.Errorf("grow: %w", err)
	}
	inter, err := intersect(k, precision, a, b)
	if err != nil {
		return nil, err
	}
	return scaleUniform(k, inter, about, scale), nil
}

// intersect computes a ∩ b and applies the piece policy.
func intersect(k kernel.Kernel, precision float64, a, b kernel.Solid) (kernel.Solid, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("grow: nil operand: %w", ErrInvalidInput)
	}
	pieces, err := k.Boolean(kernel.Intersection, kernel.Precision(precision), k.Duplicate(a), k.Duplicate(b))
	if err != nil {
		return nil, fmt.Errorf("grow: intersection: %w: %v", ErrKernelFailure, err)
	}
	if len(pieces) == 0 {
		return nil, fmt.Errorf("grow: solids do not overlap: %w", ErrKernelFailure)
	}
	return pickPiece(pieces, FirstPiece), nil
}

// scaleUniform scales a solid uniformly about a point.
func scaleUniform(k kernel.Kernel, s kernel.Solid, about geom.Vec3, scale float64) kernel.Solid {
	f := geom.WorldFrame()
	f.Origin = about
	return k.ScaleAbout(s, f, geom.Vec3{X: scale, Y: scale, Z: scale})
}
