package joint

import (
	"fmt"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

// CutterBoxes builds the mirrored pair of cutting boxes for a joint: a
// box centered on the frame origin with half-extent thickness/2 along
// every axis, plus its exact mirror image across the plane. The pair is
// unordered; both members feed the same tool set downstream.
func CutterBoxes(f geom.Frame, thickness float64, mirror geom.Plane) ([2]geom.Box, error) {
	if thickness <= 0 {
		return [2]geom.Box{}, fmt.Errorf("cutter boxes: thickness %.4f must be positive: %w",
			thickness, ErrInvalidInput)
	}
	if _, ok := mirror.Normal(); !ok {
		return [2]geom.Box{}, fmt.Errorf("cutter boxes: degenerate mirror plane: %w", ErrInvalidInput)
	}
	half := thickness / 2
	primary := geom.Box{
		Frame:      f,
		HalfExtent: geom.Vec3{X: half, Y: half, Z: half},
	}
	return [2]geom.Box{primary, primary.Mirror(mirror)}, nil
}

// CutterSolids realizes a mirrored box pair as kernel solids.
func CutterSolids(k kernel.Kernel, boxes [2]geom.Box) [2]kernel.Solid {
	return [2]kernel.Solid{k.Box(boxes[0]), k.Box(boxes[1])}
}
