// Package kerneltest provides a fake geometry kernel for pipeline tests.
//
// Solids are composites of axis-aligned boxes: material regions plus a
// record of carved regions. That keeps booleans, centroids, mirrors and
// edge enumeration exact for the axis-aligned cases the tests exercise,
// and lets tests inspect exactly which regions a carve removed. It grew
// out of the in-file stub kernel the kernel package tests started with.
package kerneltest

import (
	"fmt"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

// touchEps is the slack used when grouping boxes into connected pieces.
const touchEps = 1e-9

// Solid is the fake kernel's solid: axis-aligned material boxes plus the
// carve regions recorded by difference operations.
type Solid struct {
	adds []geom.AABB
	subs []geom.AABB
}

// BoundingBox returns the union bounds of the material boxes. Carves are
// not subtracted from the bounds; tests inspect them via Subtracted.
func (s *Solid) BoundingBox() geom.AABB {
	bb := geom.EmptyAABB()
	for _, a := range s.adds {
		bb.Extend(a.Min)
		bb.Extend(a.Max)
	}
	return bb
}

// Kernel is a fake kernel.Kernel. The zero value is ready to use.
type Kernel struct {
	// FailBoolean forces every boolean to report an empty result.
	FailBoolean bool
	// FailBooleanAfter, when positive, makes booleans report empty
	// results once this many calls have completed. It lets tests fail a
	// late pipeline stage while earlier stages succeed.
	FailBooleanAfter int
	// FailCentroid forces VolumeCentroid to fail.
	FailCentroid bool
	// FailUnroll forces Unroll to report an empty result.
	FailUnroll bool

	// BooleanCalls counts kernel boolean invocations, letting tests
	// assert that policy checks ran before any kernel work.
	BooleanCalls int
}

var _ kernel.Kernel = (*Kernel)(nil)

// New returns a fake kernel.
func New() *Kernel {
	return &Kernel{}
}

// MakeSolid builds a solid from explicit material boxes.
func MakeSolid(boxes ...geom.AABB) kernel.Solid {
	return &Solid{adds: append([]geom.AABB(nil), boxes...)}
}

// MakeBox builds a single-box solid from min and max corners.
func MakeBox(min, max geom.Vec3) kernel.Solid {
	return MakeSolid(geom.AABB{Min: min, Max: max})
}

// Material returns the material boxes of a fake solid.
func Material(s kernel.Solid) []geom.AABB {
	return s.(*Solid).adds
}

// Subtracted returns the carve regions recorded on a fake solid.
func Subtracted(s kernel.Solid) []geom.AABB {
	return s.(*Solid).subs
}

// Box realizes an oriented box as the AABB of its corners; exact for
// axis-aligned frames, conservative otherwise.
func (k *Kernel) Box(b geom.Box) kernel.Solid {
	bb := geom.EmptyAABB()
	for _, c := range b.Corners() {
		bb.Extend(c)
	}
	return MakeSolid(bb)
}

// Boolean implements union, intersection and difference over box
// composites. Disjoint result pieces are returned as separate solids,
// nearest-origin first, so first-result policies are observable.
func (k *Kernel) Boolean(kind kernel.BooleanKind, precision float64, solids ...kernel.Solid) ([]kernel.Solid, error) {
	k.BooleanCalls++
	if len(solids) == 0 {
		return nil, fmt.Errorf("kerneltest: boolean %s with no operands", kind)
	}
	if k.FailBoolean || (k.FailBooleanAfter > 0 && k.BooleanCalls > k.FailBooleanAfter) {
		return nil, nil
	}

	switch kind {
	case kernel.Union:
		out := &Solid{}
		for _, s := range solids {
			fs := s.(*Solid)
			out.adds = append(out.adds, fs.adds...)
			out.subs = append(out.subs, fs.subs...)
		}
		if len(out.adds) == 0 {
			return nil, nil
		}
		return []kernel.Solid{out}, nil

	case kernel.Intersection:
		current := append([]geom.AABB(nil), solids[0].(*Solid).adds...)
		for _, s := range solids[1:] {
			var next []geom.AABB
			for _, a := range current {
				for _, b := range s.(*Solid).adds {
					if ov, ok := a.Intersect(b); ok {
						next = append(next, ov)
					}
				}
			}
			current = next
		}
		if len(current) == 0 {
			return nil, nil
		}
		return splitPieces(current), nil

	case kernel.Difference:
		target := solids[0].(*Solid)
		out := &Solid{
			adds: append([]geom.AABB(nil), target.adds...),
			subs: append([]geom.AABB(nil), target.subs...),
		}
		var tools []geom.AABB
		for _, s := range solids[1:] {
			tools = append(tools, s.(*Solid).adds...)
		}
		// Material boxes fully swallowed by a single tool vanish;
		// partially carved boxes keep their bounds and record the cut.
		var remaining []geom.AABB
		for _, a := range out.adds {
			swallowed := false
			for _, t := range tools {
				if t.Contains(a) {
					swallowed = true
					break
				}
			}
			if !swallowed {
				remaining = append(remaining, a)
			}
		}
		if len(remaining) == 0 {
			return nil, nil
		}
		out.adds = remaining
		for _, t := range tools {
			for _, a := range remaining {
				if _, ok := a.Intersect(t); ok {
					out.subs = append(out.subs, t)
					break
				}
			}
		}
		pieces := splitPieces(out.adds)
		for _, p := range pieces {
			p.(*Solid).subs = out.subs
		}
		return pieces, nil

	default:
		return nil, fmt.Errorf("kerneltest: unknown boolean kind %d", kind)
	}
}

// splitPieces groups boxes into connected components (overlap or touch)
// and returns one solid per component, ordered as encountered.
func splitPieces(boxes []geom.AABB) []kernel.Solid {
	n := len(boxes)
	assigned := make([]int, n)
	for i := range assigned {
		assigned[i] = -1
	}
	var components [][]geom.AABB
	for i := 0; i < n; i++ {
		if assigned[i] >= 0 {
			continue
		}
		comp := len(components)
		components = append(components, nil)
		stack := []int{i}
		assigned[i] = comp
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			components[comp] = append(components[comp], boxes[cur])
			for j := 0; j < n; j++ {
				if assigned[j] >= 0 {
					continue
				}
				if touches(boxes[cur], boxes[j]) {
					assigned[j] = comp
					stack = append(stack, j)
				}
			}
		}
	}
	out := make([]kernel.Solid, len(components))
	for i, c := range components {
		out[i] = &Solid{adds: c}
	}
	return out
}

func touches(a, b geom.AABB) bool {
	grown := geom.AABB{
		Min: a.Min.Sub(geom.Vec3{X: touchEps, Y: touchEps, Z: touchEps}),
		Max: a.Max.Add(geom.Vec3{X: touchEps, Y: touchEps, Z: touchEps}),
	}
	_, ok := grown.Intersect(b)
	return ok
}

// VolumeCentroid returns the volume-weighted centroid of the material
// boxes. Carves and overlaps are ignored.
func (k *Kernel) VolumeCentroid(s kernel.Solid, precision float64) (geom.Vec3, error) {
	if k.FailCentroid {
		return geom.Vec3{}, fmt.Errorf("kerneltest: centroid failure forced")
	}
	fs := s.(*Solid)
	var total float64
	var sum geom.Vec3
	for _, a := range fs.adds {
		v := a.Volume()
		sum = sum.Add(a.Center().Scale(v))
		total += v
	}
	if total <= 0 {
		return geom.Vec3{}, fmt.Errorf("kerneltest: volume centroid undefined for empty solid")
	}
	return sum.Scale(1 / total), nil
}

// Duplicate deep-copies the solid.
func (k *Kernel) Duplicate(s kernel.Solid) kernel.Solid {
	fs := s.(*Solid)
	return &Solid{
		adds: append([]geom.AABB(nil), fs.adds...),
		subs: append([]geom.AABB(nil), fs.subs...),
	}
}

// Edges enumerates the twelve bounding-box edges.
func (k *Kernel) Edges(s kernel.Solid) ([]kernel.Curve, error) {
	fs := s.(*Solid)
	if len(fs.adds) == 0 {
		return nil, fmt.Errorf("kerneltest: edges of empty solid")
	}
	return kernel.AABBEdges(s.BoundingBox()), nil
}

// Faces reports the six bounding-box faces.
func (k *Kernel) Faces(s kernel.Solid) (int, error) {
	return kernel.AABBFaceCount, nil
}

// Unroll returns the boundary of a bounding-box face as unjoined
// segments; planar faces unroll to themselves.
func (k *Kernel) Unroll(s kernel.Solid, face int, precision float64) ([]kernel.Curve, error) {
	if face < 0 || face >= kernel.AABBFaceCount {
		return nil, fmt.Errorf("kerneltest: face index %d out of range", face)
	}
	if k.FailUnroll {
		return nil, nil
	}
	return kernel.AABBFaceBoundary(s.BoundingBox(), face), nil
}

// Translate shifts every box.
func (k *Kernel) Translate(s kernel.Solid, v geom.Vec3) kernel.Solid {
	fs := s.(*Solid)
	out := &Solid{}
	for _, a := range fs.adds {
		out.adds = append(out.adds, geom.AABB{Min: a.Min.Add(v), Max: a.Max.Add(v)})
	}
	for _, a := range fs.subs {
		out.subs = append(out.subs, geom.AABB{Min: a.Min.Add(v), Max: a.Max.Add(v)})
	}
	return out
}

// RotateAbout rotates every box and re-bounds it; exact for multiples of
// 90 degrees about principal axes, conservative otherwise.
func (k *Kernel) RotateAbout(s kernel.Solid, axis geom.Vec3, degrees float64, about geom.Vec3) kernel.Solid {
	u, ok := axis.Unit()
	if !ok {
		return k.Duplicate(s)
	}
	rot := func(p geom.Vec3) geom.Vec3 {
		return geom.RotatePoint(p, u, degrees, about)
	}
	return mapBoxes(s.(*Solid), rot)
}

// ScaleAbout scales every box in the frame's basis about its origin.
func (k *Kernel) ScaleAbout(s kernel.Solid, f geom.Frame, factors geom.Vec3) kernel.Solid {
	m := func(p geom.Vec3) geom.Vec3 {
		l := f.ToLocal(p)
		return f.ToWorld(l.X*factors.X, l.Y*factors.Y, l.Z*factors.Z)
	}
	return mapBoxes(s.(*Solid), m)
}

// Mirror reflects every box across the plane.
func (k *Kernel) Mirror(s kernel.Solid, p geom.Plane) kernel.Solid {
	return mapBoxes(s.(*Solid), p.ReflectPoint)
}

// mapBoxes applies a point transform to all eight corners of every box
// and re-bounds.
func mapBoxes(fs *Solid, m func(geom.Vec3) geom.Vec3) kernel.Solid {
	mapOne := func(a geom.AABB) geom.AABB {
		bb := geom.EmptyAABB()
		for _, sx := range [2]float64{0, 1} {
			for _, sy := range [2]float64{0, 1} {
				for _, sz := range [2]float64{0, 1} {
					c := geom.Vec3{
						X: a.Min.X + sx*(a.Max.X-a.Min.X),
						Y: a.Min.Y + sy*(a.Max.Y-a.Min.Y),
						Z: a.Min.Z + sz*(a.Max.Z-a.Min.Z),
					}
					bb.Extend(m(c))
				}
			}
		}
		return bb
	}
	out := &Solid{}
	for _, a := range fs.adds {
		out.adds = append(out.adds, mapOne(a))
	}
	for _, a := range fs.subs {
		out.subs = append(out.subs, mapOne(a))
	}
	return out
}

// ToMesh emits a twelve-triangle box mesh of the solid's bounds.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	bb := s.BoundingBox()
	if bb.Volume() <= 0 {
		return &kernel.Mesh{}, nil
	}
	return kernel.BoxMesh(bb), nil
}
