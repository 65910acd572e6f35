package joint

import (
	"fmt"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

// MateParams drives the single-pair pipeline: one vertical strip mated
// into one horizontal strip.
type MateParams struct {
	Vertical   kernel.Solid
	Horizontal kernel.Solid

	// Edges indexes the vertical strip's edges; one or two adjacent
	// indices. Each edge contributes a mirrored cutter-box pair.
	Edges []int

	Thickness float64
	Tolerance float64
	Mirror    geom.Plane

	// GrowthCenter optionally replaces the intersection centroid as
	// the center of tolerance growth.
	GrowthCenter *geom.Vec3

	Precision float64
}

// MatePair is a mated tenon/mortise pair.
type MatePair struct {
	Tenon   kernel.Solid
	Mortise kernel.Solid
}

// Mate runs the single-pair pipeline: edge frames on the vertical strip,
// mirrored cutter boxes, tenon carve, tolerance growth against the
// horizontal strip, mortise carve.
func Mate(k kernel.Kernel, p MateParams) (*MatePair, error) {
	if p.Vertical == nil || p.Horizontal == nil {
		return nil, fmt.Errorf("mate: nil strip: %w", ErrInvalidInput)
	}
	if len(p.Edges) == 0 || len(p.Edges) > 2 {
		return nil, fmt.Errorf("mate: need one or two edge indices, got %d: %w",
			len(p.Edges), ErrInvalidInput)
	}

	tools, err := stripCutters(k, p.Vertical, p.Edges, p.Thickness, p.Mirror)
	if err != nil {
		return nil, fmt.Errorf("mate: %w", err)
	}

	tenon, err := CarveTenon(k, p.Precision, p.Vertical, tools...)
	if err != nil {
		return nil, fmt.Errorf("mate: %w", err)
	}

	var grown kernel.Solid
	if p.GrowthCenter != nil {
		grown, err = GrowToolAbout(k, p.Precision, tenon, p.Horizontal, p.Tolerance, *p.GrowthCenter)
	} else {
		grown, err = GrowTool(k, p.Precision, tenon, p.Horizontal, p.Tolerance)
	}
	if err != nil {
		return nil, fmt.Errorf("mate: %w", err)
	}

	mortise, err := CarveMortise(k, p.Precision, p.Horizontal, grown)
	if err != nil {
		return nil, fmt.Errorf("mate: %w", err)
	}

	return &MatePair{Tenon: tenon, Mortise: mortise}, nil
}

// stripCutters builds the cutter-box solids for one strip: a mirrored
// pair per edge index.
func stripCutters(k kernel.Kernel, strip kernel.Solid, edges []int, thickness float64, mirror geom.Plane) ([]kernel.Solid, error) {
	var tools []kernel.Solid
	for _, e := range edges {
		frame, err := EdgeFrame(k, strip, e)
		if err != nil {
			return nil, err
		}
		boxes, err := CutterBoxes(frame, thickness, mirror)
		if err != nil {
			return nil, err
		}
		pair := CutterSolids(k, boxes)
		tools = append(tools, pair[0], pair[1])
	}
	return tools, nil
}
