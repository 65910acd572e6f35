// Package layout produces flattened 2D fabrication curves: orthographic
// edge projections of placed strips and developable-face unrolls.
package layout

import (
	"fmt"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/joint"
	"github.com/chazu/treenail/pkg/kernel"
)

// joinEps is the endpoint tolerance for chaining projected edges.
const joinEps = 1e-6

// Projection holds one solid's projected edge loops. Open chains are
// kept alongside the closed loops; a warning marks each one.
type Projection struct {
	Closed []kernel.Curve
	Open   []kernel.Curve
}

// ProjectResult pairs the two strips' projections with any warnings
// raised while joining their edges.
type ProjectResult struct {
	Vertical   Projection
	Horizontal Projection

	Warnings []joint.Warning
}

// Project lays the vertical strip flat by rotating it 90 degrees about
// the world Y axis through its own centroid, then projects both strips'
// edges onto the plane and joins each strip's edges into loops
// independently. Open chains degrade the result with a warning rather
// than failing it.
func Project(k kernel.Kernel, vertical, horizontal kernel.Solid, plane geom.Plane, precision float64) (*ProjectResult, error) {
	if vertical == nil || horizontal == nil {
		return nil, fmt.Errorf("layout: nil strip: %w", joint.ErrInvalidInput)
	}
	if _, ok := plane.Normal(); !ok {
		return nil, fmt.Errorf("layout: degenerate projection plane: %w", joint.ErrInvalidInput)
	}

	flat := k.Duplicate(vertical)
	centroid, err := k.VolumeCentroid(flat, precision)
	if err != nil {
		return nil, fmt.Errorf("layout: centroid: %w: %v", joint.ErrKernelFailure, err)
	}
	flat = k.RotateAbout(flat, geom.UnitY, 90, centroid)

	res := &ProjectResult{}
	res.Vertical, err = projectSolid(k, flat, plane, 0, res)
	if err != nil {
		return nil, err
	}
	res.Horizontal, err = projectSolid(k, horizontal, plane, 1, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func projectSolid(k kernel.Kernel, s kernel.Solid, plane geom.Plane, index int, res *ProjectResult) (Projection, error) {
	edges, err := k.Edges(s)
	if err != nil {
		return Projection{}, fmt.Errorf("layout: enumerate edges: %w: %v", joint.ErrKernelFailure, err)
	}
	projected := make([]kernel.Curve, 0, len(edges))
	for _, e := range edges {
		pts := make([]geom.Vec3, len(e.Points))
		for i, p := range e.Points {
			pts[i] = plane.Project(p)
		}
		c := kernel.Curve{Points: pts, Closed: e.Closed}
		// Edges along the projection direction collapse to points.
		if c.Length() <= joinEps {
			continue
		}
		projected = append(projected, c)
	}

	closed, open := kernel.JoinCurves(projected, joinEps)
	if len(open) > 0 {
		res.Warnings = append(res.Warnings, joint.Warning{
			Stage: "project",
			Index: index,
			Err:   fmt.Errorf("%d edge chains did not close", len(open)),
		})
	}
	return Projection{Closed: closed, Open: open}, nil
}
