package geom

import "math"

// Box is an oriented box: a frame plus half-extents along each frame axis.
type Box struct {
	Frame      Frame
	HalfExtent Vec3 // half-extent along U, V, W
}

// Corners returns the eight world-space corners of the box.
func (b Box) Corners() [8]Vec3 {
	var out [8]Vec3
	i := 0
	for _, su := range [2]float64{-1, 1} {
		for _, sv := range [2]float64{-1, 1} {
			for _, sw := range [2]float64{-1, 1} {
				out[i] = b.Frame.ToWorld(
					su*b.HalfExtent.X,
					sv*b.HalfExtent.Y,
					sw*b.HalfExtent.Z,
				)
				i++
			}
		}
	}
	return out
}

// Mirror returns the exact mirror image of the box across the plane. The
// mirrored frame's axes are the reflections of the original axes; they
// remain orthonormal because reflection is an isometry.
func (b Box) Mirror(p Plane) Box {
	return Box{
		Frame: Frame{
			Origin: p.ReflectPoint(b.Frame.Origin),
			U:      p.ReflectVector(b.Frame.U),
			V:      p.ReflectVector(b.Frame.V),
			W:      p.ReflectVector(b.Frame.W),
		},
		HalfExtent: b.HalfExtent,
	}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns an inverted box ready for Extend.
func EmptyAABB() AABB {
	inf := math.MaxFloat64
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// Extend grows the box to include the point.
func (a *AABB) Extend(p Vec3) {
	a.Min = a.Min.Min(p)
	a.Max = a.Max.Max(p)
}

// Center returns the box center.
func (a AABB) Center() Vec3 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Size returns the box dimensions.
func (a AABB) Size() Vec3 {
	return a.Max.Sub(a.Min)
}

// Volume returns the box volume, zero for inverted boxes.
func (a AABB) Volume() float64 {
	s := a.Size()
	if s.X < 0 || s.Y < 0 || s.Z < 0 {
		return 0
	}
	return s.X * s.Y * s.Z
}

// Contains reports whether b lies entirely inside a.
func (a AABB) Contains(b AABB) bool {
	return a.Min.X <= b.Min.X && a.Min.Y <= b.Min.Y && a.Min.Z <= b.Min.Z &&
		a.Max.X >= b.Max.X && a.Max.Y >= b.Max.Y && a.Max.Z >= b.Max.Z
}

// ContainsStrict reports whether b lies strictly inside a on every face.
func (a AABB) ContainsStrict(b AABB) bool {
	return a.Min.X < b.Min.X && a.Min.Y < b.Min.Y && a.Min.Z < b.Min.Z &&
		a.Max.X > b.Max.X && a.Max.Y > b.Max.Y && a.Max.Z > b.Max.Z
}

// Intersect returns the overlap of a and b and whether it is non-empty.
func (a AABB) Intersect(b AABB) (AABB, bool) {
	out := AABB{Min: a.Min.Max(b.Min), Max: a.Max.Min(b.Max)}
	s := out.Size()
	if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
		return AABB{}, false
	}
	return out, true
}
