package kernel

import "github.com/chazu/treenail/pkg/geom"

// Curve is a polyline in 3D space. Backends return solid edges and
// unrolled boundaries as curves; all backends share this representation.
type Curve struct {
	Points []geom.Vec3
	Closed bool
}

// IsLinear reports whether the curve is a straight segment. Two-point
// curves are linear; longer polylines are linear when every interior
// point lies on the chord within eps.
func (c Curve) IsLinear(eps float64) bool {
	if len(c.Points) < 2 || c.Closed {
		return false
	}
	if len(c.Points) == 2 {
		return true
	}
	a := c.Points[0]
	d := c.Points[len(c.Points)-1].Sub(a)
	dir, ok := d.Unit()
	if !ok {
		return false
	}
	for _, p := range c.Points[1 : len(c.Points)-1] {
		v := p.Sub(a)
		off := v.Sub(dir.Scale(v.Dot(dir)))
		if off.Length() > eps {
			return false
		}
	}
	return true
}

// Length returns the total arc length of the polyline.
func (c Curve) Length() float64 {
	var l float64
	for i := 1; i < len(c.Points); i++ {
		l += c.Points[i].Sub(c.Points[i-1]).Length()
	}
	if c.Closed && len(c.Points) > 2 {
		l += c.Points[0].Sub(c.Points[len(c.Points)-1]).Length()
	}
	return l
}

// PointAtLength returns the point at the given arc length from the start,
// clamped to the curve's ends.
func (c Curve) PointAtLength(s float64) geom.Vec3 {
	if len(c.Points) == 0 {
		return geom.Vec3{}
	}
	if s <= 0 {
		return c.Points[0]
	}
	remaining := s
	for i := 1; i < len(c.Points); i++ {
		seg := c.Points[i].Sub(c.Points[i-1])
		l := seg.Length()
		if remaining <= l && l > 0 {
			return c.Points[i-1].Lerp(c.Points[i], remaining/l)
		}
		remaining -= l
	}
	return c.Points[len(c.Points)-1]
}

// TangentAtLength returns the unit tangent of the segment containing the
// given arc length, and false for degenerate curves.
func (c Curve) TangentAtLength(s float64) (geom.Vec3, bool) {
	if len(c.Points) < 2 {
		return geom.Vec3{}, false
	}
	remaining := s
	for i := 1; i < len(c.Points); i++ {
		seg := c.Points[i].Sub(c.Points[i-1])
		l := seg.Length()
		if remaining <= l {
			return seg.Unit()
		}
		remaining -= l
	}
	return c.Points[len(c.Points)-1].Sub(c.Points[len(c.Points)-2]).Unit()
}

// BoundingBox returns the axis-aligned bounds of the curve's points.
func (c Curve) BoundingBox() geom.AABB {
	bb := geom.EmptyAABB()
	for _, p := range c.Points {
		bb.Extend(p)
	}
	return bb
}

// JoinCurves chains curve segments end to end and splits the result into
// closed loops and open chains. Endpoints within eps are considered
// coincident. Curves already marked closed pass through unchanged.
// Open chains are returned separately from closed loops, never conflated.
func JoinCurves(curves []Curve, eps float64) (closed, open []Curve) {
	var pending []Curve
	for _, c := range curves {
		if len(c.Points) < 2 {
			continue
		}
		if c.Closed {
			closed = append(closed, c)
			continue
		}
		pending = append(pending, c)
	}

	used := make([]bool, len(pending))
	for i := range pending {
		if used[i] {
			continue
		}
		used[i] = true
		chain := append([]geom.Vec3(nil), pending[i].Points...)

		// Greedily extend the chain at its tail, reversing segments
		// as needed, until no segment attaches.
		for {
			tail := chain[len(chain)-1]
			found := false
			for j := range pending {
				if used[j] {
					continue
				}
				p := pending[j].Points
				switch {
				case tail.Sub(p[0]).Length() <= eps:
					chain = append(chain, p[1:]...)
				case tail.Sub(p[len(p)-1]).Length() <= eps:
					for k := len(p) - 2; k >= 0; k-- {
						chain = append(chain, p[k])
					}
				default:
					continue
				}
				used[j] = true
				found = true
				break
			}
			if !found {
				break
			}
		}

		if len(chain) > 2 && chain[0].Sub(chain[len(chain)-1]).Length() <= eps {
			closed = append(closed, Curve{Points: chain[:len(chain)-1], Closed: true})
		} else {
			open = append(open, Curve{Points: chain})
		}
	}
	return closed, open
}
