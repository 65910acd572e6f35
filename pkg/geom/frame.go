package geom

// Frame is a local orthonormal coordinate system: an origin plus three
// mutually orthogonal unit axes. U is the primary (tangent) axis, V the
// secondary, W the tertiary.
type Frame struct {
	Origin  Vec3
	U, V, W Vec3
}

// WorldFrame returns the identity frame at the origin.
func WorldFrame() Frame {
	return Frame{U: UnitX, V: UnitY, W: UnitZ}
}

// FrameAt builds an orthonormal frame at origin whose primary axis is the
// unit direction of tangent. The secondary axis is tangent × up; when that
// cross product is degenerate (tangent nearly parallel to up) the fallback
// reference axis is used instead. The tertiary axis is re-derived as
// W = U × V from the unitized secondary axis, which guarantees exact
// orthonormality on both branches.
func FrameAt(origin, tangent, up, fallback Vec3) (Frame, bool) {
	u, ok := tangent.Unit()
	if !ok {
		return Frame{}, false
	}
	v, ok := u.Cross(up).Unit()
	if !ok {
		v, ok = u.Cross(fallback).Unit()
		if !ok {
			return Frame{}, false
		}
	}
	w := u.Cross(v) // unit by construction: u ⟂ v, both unit
	return Frame{Origin: origin, U: u, V: v, W: w}, true
}

// ToWorld maps frame-local coordinates (a, b, c) to a world point.
func (f Frame) ToWorld(a, b, c float64) Vec3 {
	return f.Origin.
		Add(f.U.Scale(a)).
		Add(f.V.Scale(b)).
		Add(f.W.Scale(c))
}

// ToLocal maps a world point into frame-local coordinates.
func (f Frame) ToLocal(p Vec3) Vec3 {
	d := p.Sub(f.Origin)
	return Vec3{d.Dot(f.U), d.Dot(f.V), d.Dot(f.W)}
}

// Plane is a point with two in-plane axes. The normal is A × B.
type Plane struct {
	Point Vec3
	A, B  Vec3
}

// Normal returns the unit normal of the plane and whether it is
// well-defined (A and B not parallel).
func (p Plane) Normal() (Vec3, bool) {
	return p.A.Cross(p.B).Unit()
}

// ReflectPoint mirrors a point across the plane.
func (p Plane) ReflectPoint(q Vec3) Vec3 {
	n, ok := p.Normal()
	if !ok {
		return q
	}
	d := q.Sub(p.Point).Dot(n)
	return q.Sub(n.Scale(2 * d))
}

// ReflectVector mirrors a direction vector across the plane.
func (p Plane) ReflectVector(v Vec3) Vec3 {
	n, ok := p.Normal()
	if !ok {
		return v
	}
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// Project orthogonally projects a point onto the plane.
func (p Plane) Project(q Vec3) Vec3 {
	n, ok := p.Normal()
	if !ok {
		return q
	}
	d := q.Sub(p.Point).Dot(n)
	return q.Sub(n.Scale(d))
}

// XYPlane returns the world XY plane through the given point.
func XYPlane(at Vec3) Plane {
	return Plane{Point: at, A: UnitX, B: UnitY}
}

// YZPlane returns the world YZ plane through the given point. Reflecting
// across YZPlane(Vec3{}) negates X, the fixed vertical reference used for
// profile mirroring.
func YZPlane(at Vec3) Plane {
	return Plane{Point: at, A: UnitY, B: UnitZ}
}

// XZPlane returns the world XZ plane through the given point.
func XZPlane(at Vec3) Plane {
	return Plane{Point: at, A: UnitZ, B: UnitX}
}
