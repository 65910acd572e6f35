package joint

import (
	"fmt"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

// MultiStripParams drives a lattice joint: several vertical strips mated
// into one horizontal strip along a shared cutting direction.
type MultiStripParams struct {
	Horizontal kernel.Solid
	Verticals  []kernel.Solid

	// EdgeA and EdgeB index each vertical strip's edges; every strip
	// contributes a mirrored cutter-box pair per edge.
	EdgeA int
	EdgeB int

	Thickness float64
	Tolerance float64
	Mirror    geom.Plane

	// Centroid is the shared growth center. All tenons grow about this
	// point so the mortise pockets stay mutually consistent.
	Centroid geom.Vec3

	Precision float64
}

// MultiStripResult holds the surviving tenons with their source strip
// indices, the aggregate mortise, and any per-strip warnings.
type MultiStripResult struct {
	Tenons  []kernel.Solid
	Strips  []int
	Mortise kernel.Solid

	Warnings []Warning
}

// MultiStrip carves a lattice joint. Every strip's cutter boxes join one
// global tool set and every tenon is carved against that whole set, so
// the strips interlock. A strip that fails any stage is dropped with a
// warning; the run fails outright only when the inputs are invalid or
// the final mortise carve cannot complete.
func MultiStrip(k kernel.Kernel, p MultiStripParams) (*MultiStripResult, error) {
	if p.Horizontal == nil {
		return nil, fmt.Errorf("multistrip: nil horizontal strip: %w", ErrInvalidInput)
	}
	if len(p.Verticals) == 0 {
		return nil, fmt.Errorf("multistrip: no vertical strips: %w", ErrInvalidInput)
	}
	if _, err := GrowthScale(p.Tolerance); err != nil {
		return nil, fmt.Errorf("multistrip: %w", err)
	}

	res := &MultiStripResult{}

	// First pass: frames and cutter boxes. A strip joins the run only
	// when both of its edges yield a box pair.
	var tools []kernel.Solid
	active := make([]int, 0, len(p.Verticals))
	for i, strip := range p.Verticals {
		if strip == nil {
			res.warn("frame", i, fmt.Errorf("nil strip: %w", ErrInvalidInput))
			continue
		}
		pair, err := stripCutters(k, strip, []int{p.EdgeA, p.EdgeB}, p.Thickness, p.Mirror)
		if err != nil {
			res.warn("frame", i, err)
			continue
		}
		tools = append(tools, pair...)
		active = append(active, i)
	}

	// Second pass: carve each surviving strip against the full tool set
	// and grow the result about the shared centroid.
	var grown []kernel.Solid
	for _, i := range active {
		tenon, err := CarveTenon(k, p.Precision, p.Verticals[i], tools...)
		if err != nil {
			res.warn("tenon", i, err)
			continue
		}
		g, err := GrowToolAbout(k, p.Precision, tenon, p.Horizontal, p.Tolerance, p.Centroid)
		if err != nil {
			res.warn("grow", i, err)
			continue
		}
		res.Tenons = append(res.Tenons, tenon)
		res.Strips = append(res.Strips, i)
		grown = append(grown, g)
	}

	if len(grown) == 0 {
		res.Mortise = k.Duplicate(p.Horizontal)
		return res, nil
	}

	mortise, err := CarveMortise(k, p.Precision, p.Horizontal, grown...)
	if err != nil {
		return nil, fmt.Errorf("multistrip: %w", err)
	}
	res.Mortise = mortise
	return res, nil
}

func (r *MultiStripResult) warn(stage string, index int, err error) {
	r.Warnings = append(r.Warnings, Warning{Stage: stage, Index: index, Err: err})
}
