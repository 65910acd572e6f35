package joint

import (
	"fmt"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

// linearEps is the chord deviation below which an edge counts as linear.
const linearEps = 1e-6

// EdgeFrame builds an orthonormal frame at the arc-length midpoint of a
// linear edge: the midpoint is the point at half the edge's length, not
// half its parameter domain. The primary axis is the edge tangent; the
// secondary is tangent × world-up, falling back to tangent × world-X
// when the tangent is nearly vertical; the tertiary closes the frame.
func EdgeFrame(k kernel.Kernel, s kernel.Solid, edge int) (geom.Frame, error) {
	if s == nil {
		return geom.Frame{}, fmt.Errorf("edge frame: solid is nil: %w", ErrInvalidInput)
	}
	edges, err := k.Edges(s)
	if err != nil {
		return geom.Frame{}, fmt.Errorf("edge frame: enumerating edges: %w: %v", ErrKernelFailure, err)
	}
	if edge < 0 || edge >= len(edges) {
		return geom.Frame{}, fmt.Errorf("edge frame: edge %d of %d: %w", edge, len(edges), ErrIndexOutOfRange)
	}
	return frameOnCurve(edges[edge])
}

// frameOnCurve builds the midpoint frame for an already-fetched edge.
func frameOnCurve(c kernel.Curve) (geom.Frame, error) {
	if !c.IsLinear(linearEps) {
		return geom.Frame{}, fmt.Errorf("edge frame: edge is not linear: %w", ErrGeometryPrecondition)
	}
	length := c.Length()
	if length < geom.Epsilon {
		return geom.Frame{}, fmt.Errorf("edge frame: zero-length edge: %w", ErrGeometryPrecondition)
	}
	mid := c.PointAtLength(length / 2)
	tangent, ok := c.TangentAtLength(length / 2)
	if !ok {
		return geom.Frame{}, fmt.Errorf("edge frame: degenerate tangent: %w", ErrGeometryPrecondition)
	}
	f, ok := geom.FrameAt(mid, tangent, geom.UnitZ, geom.UnitX)
	if !ok {
		return geom.Frame{}, fmt.Errorf("edge frame: degenerate frame: %w", ErrGeometryPrecondition)
	}
	return f, nil
}
