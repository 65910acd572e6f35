package joint

import (
	"fmt"
	"math"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

// SlitParams drives the curved-strip slit pipeline.
type SlitParams struct {
	A kernel.Solid
	B kernel.Solid

	Tolerance float64

	// Edge indexes the scaled intersection's edges, not A's or B's.
	Edge int

	Precision float64
}

// SlitResult holds the slit strips. A side that could not be carved is
// returned unchanged (a duplicate of the input) with a warning.
type SlitResult struct {
	A kernel.Solid
	B kernel.Solid

	Warnings []Warning
}

// CarveSlits cuts complementary offset slits into two overlapping curved
// strips. The intersection of the strips, grown by the tolerance about
// its bounding-box center, is thinned to half its tangential extent at
// the chosen edge's midpoint frame and offset a quarter edge-length each
// way along the edge. Each offset tool carves its own side; the sides
// fail independently.
func CarveSlits(k kernel.Kernel, p SlitParams) (*SlitResult, error) {
	if p.A == nil || p.B == nil {
		return nil, fmt.Errorf("slit: nil strip: %w", ErrInvalidInput)
	}
	scale, err := GrowthScale(p.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("slit: %w", err)
	}

	inter, err := intersect(k, p.Precision, p.A, p.B)
	if err != nil {
		return nil, fmt.Errorf("slit: %w", err)
	}

	// Grown about the bounding-box center rather than the volume
	// centroid; the slit tool must stay registered to the overlap's
	// extents, not its mass distribution.
	grown := scaleUniform(k, inter, inter.BoundingBox().Center(), scale)

	edges, err := k.Edges(grown)
	if err != nil {
		return nil, fmt.Errorf("slit: enumerate edges: %w: %v", ErrKernelFailure, err)
	}
	if p.Edge < 0 || p.Edge >= len(edges) {
		return nil, fmt.Errorf("slit: edge %d of %d: %w", p.Edge, len(edges), ErrIndexOutOfRange)
	}
	edge := edges[p.Edge]
	frame, err := frameOnCurve(edge)
	if err != nil {
		return nil, fmt.Errorf("slit: %w", err)
	}
	length := edge.Length()
	dir := frame.U

	// Compress to half the tangential extent about the edge frame.
	thin := k.ScaleAbout(grown, frame, geom.Vec3{X: 0.5, Y: 1, Z: 1})

	// The two offset tools must not overlap: the offset magnitude
	// 0.25·L has to clear half the thinned tool's extent along the
	// edge direction. Short edges against a wide overlap violate this.
	size := thin.BoundingBox().Size()
	support := math.Abs(size.X*dir.X) + math.Abs(size.Y*dir.Y) + math.Abs(size.Z*dir.Z)
	if 0.5*length < support {
		return nil, fmt.Errorf("slit: offset %.4g under tool extent %.4g along edge: %w",
			0.25*length, 0.5*support, ErrGeometryPrecondition)
	}

	toolA := k.Translate(k.Duplicate(thin), dir.Scale(0.25*length))
	toolB := k.Translate(thin, dir.Scale(-0.25*length))

	res := &SlitResult{}
	res.A = slitSide(k, p.Precision, p.A, toolA, 0, res)
	res.B = slitSide(k, p.Precision, p.B, toolB, 1, res)
	return res, nil
}

// slitSide carves one strip, falling back to an untouched duplicate on
// failure so the other side's result stays usable.
func slitSide(k kernel.Kernel, precision float64, strip, tool kernel.Solid, index int, res *SlitResult) kernel.Solid {
	cut, err := carve(k, precision, strip, []kernel.Solid{tool}, "slit")
	if err != nil {
		res.Warnings = append(res.Warnings, Warning{Stage: "slit", Index: index, Err: err})
		return k.Duplicate(strip)
	}
	return cut
}
