// Package profile builds 2D hook profiles for strip hangers. It is pure
// planar construction on polygon loops; no kernel booleans are involved.
package profile

import (
	"fmt"

	"honnef.co/go/curve"

	"github.com/chazu/treenail/pkg/joint"
)

// Loop is a closed polygon outline, counter-clockwise, without a
// repeated closing point.
type Loop []curve.Point

// BezPath converts the loop to a closed Bézier path.
func (l Loop) BezPath() curve.BezPath {
	var p curve.BezPath
	for i, pt := range l {
		if i == 0 {
			p = append(p, curve.MoveTo(pt))
		} else {
			p = append(p, curve.LineTo(pt))
		}
	}
	p = append(p, curve.ClosePath())
	return p
}

// BoundingBox returns the loop's bounds.
func (l Loop) BoundingBox() curve.Rect {
	if len(l) == 0 {
		return curve.Rect{}
	}
	r := curve.Rect{X0: l[0].X, Y0: l[0].Y, X1: l[0].X, Y1: l[0].Y}
	for _, p := range l[1:] {
		if p.X < r.X0 {
			r.X0 = p.X
		}
		if p.X > r.X1 {
			r.X1 = p.X
		}
		if p.Y < r.Y0 {
			r.Y0 = p.Y
		}
		if p.Y > r.Y1 {
			r.Y1 = p.Y
		}
	}
	return r
}

// mirrorX reflects the loop across the vertical axis through the
// origin, reversing the winding back to counter-clockwise.
func (l Loop) mirrorX() Loop {
	m := make(Loop, len(l))
	for i, p := range l {
		m[len(l)-1-i] = curve.Pt(-p.X, p.Y)
	}
	return m
}

// BaseSource selects how the profile's base outline is supplied.
type BaseSource interface {
	baseLoop() (Loop, error)
}

// ExplicitBase uses a caller-supplied closed outline; its bounding box
// supplies the effective width and height for the step placement.
type ExplicitBase struct {
	Outline Loop
}

func (b ExplicitBase) baseLoop() (Loop, error) {
	if len(b.Outline) < 3 {
		return nil, fmt.Errorf("profile: explicit base needs at least 3 points: %w", joint.ErrInvalidInput)
	}
	return b.Outline, nil
}

// DefaultBase builds a width × height rectangle with its lower-left
// corner at the origin.
type DefaultBase struct {
	Width  float64
	Height float64
}

func (b DefaultBase) baseLoop() (Loop, error) {
	if b.Width <= 0 || b.Height <= 0 {
		return nil, fmt.Errorf("profile: base %g x %g: %w", b.Width, b.Height, joint.ErrInvalidInput)
	}
	return rectLoop(0, 0, b.Width, b.Height), nil
}

// Slant describes the alternate mode's slanted triangular region: a
// right triangle standing on Base, rising by Rise over the step width.
type Slant struct {
	Base curve.Point
	Rise float64
}

// Params drives Build.
type Params struct {
	Base BaseSource

	StepOffset float64
	StepWidth  float64
	StepHeight float64

	// Slant switches on the alternate mode.
	Slant *Slant

	// Mirror appends a reflected copy of every loop across the vertical
	// axis through the origin, doubling the output count.
	Mirror bool
}

// Build produces the ordered profile loops: the base outline, a step
// rectangle adjacent to it, the optional slant triangle, then mirrored
// copies of all of the above when requested.
func Build(p Params) ([]Loop, error) {
	if p.Base == nil {
		return nil, fmt.Errorf("profile: no base source: %w", joint.ErrInvalidInput)
	}
	if p.StepWidth <= 0 || p.StepHeight <= 0 {
		return nil, fmt.Errorf("profile: step %g x %g: %w", p.StepWidth, p.StepHeight, joint.ErrInvalidInput)
	}

	base, err := p.Base.baseLoop()
	if err != nil {
		return nil, err
	}
	bb := base.BoundingBox()

	loops := []Loop{base}

	// Step rectangle to the right of the base, seated on its baseline.
	x0 := bb.X1 + p.StepOffset
	loops = append(loops, rectLoop(x0, bb.Y0, x0+p.StepWidth, bb.Y0+p.StepHeight))

	if p.Slant != nil {
		if p.Slant.Rise <= 0 {
			return nil, fmt.Errorf("profile: slant rise %g: %w", p.Slant.Rise, joint.ErrInvalidInput)
		}
		b := p.Slant.Base
		loops = append(loops, Loop{
			b,
			curve.Pt(b.X+p.StepWidth, b.Y),
			curve.Pt(b.X+p.StepWidth, b.Y+p.Slant.Rise),
		})
	}

	if p.Mirror {
		n := len(loops)
		for i := 0; i < n; i++ {
			loops = append(loops, loops[i].mirrorX())
		}
	}
	return loops, nil
}

func rectLoop(x0, y0, x1, y1 float64) Loop {
	return Loop{
		curve.Pt(x0, y0),
		curve.Pt(x1, y0),
		curve.Pt(x1, y1),
		curve.Pt(x0, y1),
	}
}
