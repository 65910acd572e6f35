// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Signed distance fields carry no b-rep topology, so this backend
// approximates edge enumeration with the twelve edges of the solid's
// axis-aligned bounding box (exact for the axis-aligned strips the
// joinery pipeline is built around) and does not support developable
// unrolling. Volume centroids are computed by sampling the field on a
// uniform grid.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// centroidCells is the per-axis sample count for centroid integration.
const centroidCells = 40

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() geom.AABB {
	bb := s.s.BoundingBox()
	return geom.AABB{
		Min: geom.Vec3{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		Max: geom.Vec3{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}

// Kernel implements kernel.Kernel using sdfx.
type Kernel struct{}

// New returns a new sdfx-backed kernel.
func New() *Kernel {
	return &Kernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func vec(v geom.Vec3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Box realizes an oriented box. sdf.Box3D centers the box at the origin,
// so the box is rotated into the frame's basis and translated to the
// frame origin.
func (k *Kernel) Box(b geom.Box) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{
		X: 2 * b.HalfExtent.X,
		Y: 2 * b.HalfExtent.Y,
		Z: 2 * b.HalfExtent.Z,
	}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(vec(b.Frame.Origin)).Mul(basisRotation(b.Frame))
	return wrap(sdf.Transform3D(s, m))
}

// Boolean combines solids. The SDF representation cannot split disjoint
// pieces, so a non-empty result is always a single solid.
func (k *Kernel) Boolean(kind kernel.BooleanKind, precision float64, solids ...kernel.Solid) ([]kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, fmt.Errorf("sdfx: boolean %s with no operands", kind)
	}
	out := unwrap(solids[0])
	for _, s := range solids[1:] {
		other := unwrap(s)
		switch kind {
		case kernel.Union:
			out = sdf.Union3D(out, other)
		case kernel.Intersection:
			out = sdf.Intersect3D(out, other)
		case kernel.Difference:
			out = sdf.Difference3D(out, other)
		default:
			return nil, fmt.Errorf("sdfx: unknown boolean kind %d", kind)
		}
	}
	if !hasInterior(out, kernel.Precision(precision)) {
		return nil, nil
	}
	return []kernel.Solid{wrap(out)}, nil
}

// hasInterior samples the field for any point at or below the iso level.
func hasInterior(s sdf.SDF3, iso float64) bool {
	bb := s.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return false
	}
	const n = 16
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for l := 0; l < n; l++ {
				p := v3.Vec{
					X: bb.Min.X + size.X*(float64(i)+0.5)/n,
					Y: bb.Min.Y + size.Y*(float64(j)+0.5)/n,
					Z: bb.Min.Z + size.Z*(float64(l)+0.5)/n,
				}
				if s.Evaluate(p) <= iso {
					return true
				}
			}
		}
	}
	return false
}

// VolumeCentroid integrates the field over a uniform grid.
func (k *Kernel) VolumeCentroid(s kernel.Solid, precision float64) (geom.Vec3, error) {
	sdf3 := unwrap(s)
	bb := sdf3.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return geom.Vec3{}, fmt.Errorf("sdfx: volume centroid of empty solid")
	}
	iso := kernel.Precision(precision)
	var sum v3.Vec
	var count int
	for i := 0; i < centroidCells; i++ {
		for j := 0; j < centroidCells; j++ {
			for l := 0; l < centroidCells; l++ {
				p := v3.Vec{
					X: bb.Min.X + size.X*(float64(i)+0.5)/centroidCells,
					Y: bb.Min.Y + size.Y*(float64(j)+0.5)/centroidCells,
					Z: bb.Min.Z + size.Z*(float64(l)+0.5)/centroidCells,
				}
				if sdf3.Evaluate(p) <= iso {
					sum = sum.Add(p)
					count++
				}
			}
		}
	}
	if count == 0 {
		return geom.Vec3{}, fmt.Errorf("sdfx: volume centroid undefined, no interior samples")
	}
	inv := 1 / float64(count)
	return geom.Vec3{X: sum.X * inv, Y: sum.Y * inv, Z: sum.Z * inv}, nil
}

// Duplicate returns an independent handle. SDF3 values are immutable, so
// sharing the field is safe.
func (k *Kernel) Duplicate(s kernel.Solid) kernel.Solid {
	return wrap(unwrap(s))
}

// Edges enumerates the twelve bounding-box edges in a stable order:
// four along X, then four along Y, then four along Z.
func (k *Kernel) Edges(s kernel.Solid) ([]kernel.Curve, error) {
	return kernel.AABBEdges(s.BoundingBox()), nil
}

// Faces reports the six bounding-box faces.
func (k *Kernel) Faces(s kernel.Solid) (int, error) {
	return 6, nil
}

// Unroll is unsupported: an implicit surface has no face topology to
// develop.
func (k *Kernel) Unroll(s kernel.Solid, face int, precision float64) ([]kernel.Curve, error) {
	return nil, fmt.Errorf("sdfx: unroll: %w", kernel.ErrUnsupported)
}

// Translate moves a solid by v.
func (k *Kernel) Translate(s kernel.Solid, v geom.Vec3) kernel.Solid {
	m := sdf.Translate3d(vec(v))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// RotateAbout rotates a solid about an axis through the given point.
func (k *Kernel) RotateAbout(s kernel.Solid, axis geom.Vec3, degrees float64, about geom.Vec3) kernel.Solid {
	u, ok := axis.Unit()
	if !ok {
		return k.Duplicate(s)
	}
	rad := degrees * math.Pi / 180
	m := sdf.Translate3d(vec(about)).
		Mul(sdf.Rotate3d(vec(u), rad)).
		Mul(sdf.Translate3d(vec(about.Scale(-1))))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ScaleAbout applies a non-uniform scale expressed in the frame's basis,
// centered on the frame origin: the diagonal scale conjugated by the
// frame's rotation.
func (k *Kernel) ScaleAbout(s kernel.Solid, f geom.Frame, factors geom.Vec3) kernel.Solid {
	rot := basisRotation(f)
	inv := basisRotationInverse(f)
	m := sdf.Translate3d(vec(f.Origin)).
		Mul(rot).
		Mul(sdf.Scale3d(vec(factors))).
		Mul(inv).
		Mul(sdf.Translate3d(vec(f.Origin.Scale(-1))))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Mirror reflects a solid across a plane: rotate the plane normal onto
// +Z, negate Z, rotate back.
func (k *Kernel) Mirror(s kernel.Solid, p geom.Plane) kernel.Solid {
	n, ok := p.Normal()
	if !ok {
		return k.Duplicate(s)
	}
	axis, angle := rotationBetween(geom.UnitZ, n)
	var align, unalign sdf.M44
	if angle < geom.Epsilon {
		align = sdf.Identity3d()
		unalign = sdf.Identity3d()
	} else {
		align = sdf.Rotate3d(vec(axis), angle)
		unalign = sdf.Rotate3d(vec(axis), -angle)
	}
	m := sdf.Translate3d(vec(p.Point)).
		Mul(align).
		Mul(sdf.Scale3d(v3.Vec{X: 1, Y: 1, Z: -1})).
		Mul(unalign).
		Mul(sdf.Translate3d(vec(p.Point.Scale(-1))))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(defaultMeshCells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// basisRotation returns the rotation taking the world basis to the
// frame's basis, as an axis-angle rotation matrix.
func basisRotation(f geom.Frame) sdf.M44 {
	axis, angle := axisAngleFromBasis(f.U, f.V, f.W)
	if angle < geom.Epsilon {
		return sdf.Identity3d()
	}
	return sdf.Rotate3d(vec(axis), angle)
}

// basisRotationInverse returns the inverse of basisRotation.
func basisRotationInverse(f geom.Frame) sdf.M44 {
	axis, angle := axisAngleFromBasis(f.U, f.V, f.W)
	if angle < geom.Epsilon {
		return sdf.Identity3d()
	}
	return sdf.Rotate3d(vec(axis), -angle)
}

// axisAngleFromBasis converts the rotation matrix with columns (u, v, w)
// to axis-angle form. The basis must be right-handed orthonormal.
func axisAngleFromBasis(u, v, w geom.Vec3) (geom.Vec3, float64) {
	// R[row][col]: col0=u, col1=v, col2=w.
	r00, r01 := u.X, v.X
	r10, r11 := u.Y, v.Y
	r20, r21 := u.Z, v.Z
	r02, r12, r22 := w.X, w.Y, w.Z

	tr := r00 + r11 + r22
	c := (tr - 1) / 2
	if c > 1 {
		c = 1
	}
	if c < -1 {
		c = -1
	}
	angle := math.Acos(c)

	if angle < geom.Epsilon {
		return geom.UnitZ, 0
	}
	if math.Pi-angle > 1e-6 {
		axis, _ := geom.Vec3{
			X: r21 - r12,
			Y: r02 - r20,
			Z: r10 - r01,
		}.Unit()
		return axis, angle
	}
	// angle ≈ π: recover the axis from the diagonal.
	ax := math.Sqrt(math.Max(0, (r00+1)/2))
	ay := math.Sqrt(math.Max(0, (r11+1)/2))
	az := math.Sqrt(math.Max(0, (r22+1)/2))
	// Fix signs using the off-diagonal sums.
	if r01+r10 < 0 {
		ay = -ay
	}
	if r02+r20 < 0 {
		az = -az
	}
	axis, ok := (geom.Vec3{X: ax, Y: ay, Z: az}).Unit()
	if !ok {
		return geom.UnitZ, angle
	}
	return axis, angle
}

// rotationBetween returns the axis-angle rotation taking unit vector a
// to unit vector b. Anti-parallel vectors rotate about any perpendicular.
func rotationBetween(a, b geom.Vec3) (geom.Vec3, float64) {
	d := a.Dot(b)
	if d > 1 {
		d = 1
	}
	if d < -1 {
		d = -1
	}
	angle := math.Acos(d)
	axis, ok := a.Cross(b).Unit()
	if !ok {
		if d > 0 {
			return geom.UnitZ, 0
		}
		perp, ok := a.Cross(geom.UnitX).Unit()
		if !ok {
			perp, _ = a.Cross(geom.UnitY).Unit()
		}
		return perp, math.Pi
	}
	return axis, angle
}
