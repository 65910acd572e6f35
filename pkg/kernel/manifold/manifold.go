//go:build manifold

// Package manifold implements the kernel.Kernel interface with a CGo
// binding to the Manifold library (https://github.com/elalish/manifold),
// which provides guaranteed-manifold mesh booleans. Unlike the SDF
// backend it can split disjoint boolean pieces exactly.
//
// The C API exposes no b-rep topology, so edge enumeration falls back to
// the bounding-box edges and developable unrolling is unsupported.
// Volume centroids are computed from the output mesh by the signed
// tetrahedron method.
//
// This package requires the Manifold C library (manifoldc). Build with:
// go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

var _ kernel.Kernel = (*Kernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() geom.AABB {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	return geom.AABB{
		Min: geom.Vec3{
			X: float64(C.manifold_box_min_x(bbox)),
			Y: float64(C.manifold_box_min_y(bbox)),
			Z: float64(C.manifold_box_min_z(bbox)),
		},
		Max: geom.Vec3{
			X: float64(C.manifold_box_max_x(bbox)),
			Y: float64(C.manifold_box_max_y(bbox)),
			Z: float64(C.manifold_box_max_z(bbox)),
		},
	}
}

// newSolid wraps a C pointer with a finalizer so the C-side manifold is
// released with the Go wrapper.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// Kernel implements kernel.Kernel using the Manifold C library.
type Kernel struct{}

// New creates a Manifold-backed kernel.
func New() (kernel.Kernel, error) {
	return &Kernel{}, nil
}

func unwrap(s kernel.Solid) *manifoldSolid {
	return s.(*manifoldSolid)
}

// affine is a row-major 3x4 transform.
type affine [12]float64

func identityAffine() affine {
	return affine{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
}

// transform applies an affine map. manifold_transform takes the matrix
// as four column vectors.
func transform(s *manifoldSolid, m affine) *manifoldSolid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_transform(alloc, s.ptr,
		C.float(m[0]), C.float(m[4]), C.float(m[8]),
		C.float(m[1]), C.float(m[5]), C.float(m[9]),
		C.float(m[2]), C.float(m[6]), C.float(m[10]),
		C.float(m[3]), C.float(m[7]), C.float(m[11]),
	)
	return newSolid(ptr)
}

// Box realizes an oriented box: a centered cube transformed into the
// frame's basis.
func (k *Kernel) Box(b geom.Box) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(2*b.HalfExtent.X),
		C.double(2*b.HalfExtent.Y),
		C.double(2*b.HalfExtent.Z),
		C.int(1), // center
	)
	cube := newSolid(ptr)

	f := b.Frame
	m := affine{
		f.U.X, f.V.X, f.W.X, f.Origin.X,
		f.U.Y, f.V.Y, f.W.Y, f.Origin.Y,
		f.U.Z, f.V.Z, f.W.Z, f.Origin.Z,
	}
	return transform(cube, m)
}

// Boolean combines solids and splits the result into its disjoint
// connected components.
func (k *Kernel) Boolean(kind kernel.BooleanKind, precision float64, solids ...kernel.Solid) ([]kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, fmt.Errorf("manifold: boolean %s with no operands", kind)
	}
	out := unwrap(solids[0]).ptr
	owned := false
	for _, s := range solids[1:] {
		other := unwrap(s).ptr
		alloc := C.manifold_alloc_manifold()
		var next *C.ManifoldManifold
		switch kind {
		case kernel.Union:
			next = C.manifold_union(alloc, out, other)
		case kernel.Intersection:
			next = C.manifold_intersection(alloc, out, other)
		case kernel.Difference:
			next = C.manifold_difference(alloc, out, other)
		default:
			return nil, fmt.Errorf("manifold: unknown boolean kind %d", kind)
		}
		if owned {
			C.manifold_delete_manifold(out)
		}
		out = next
		owned = true
	}
	if !owned {
		alloc := C.manifold_alloc_manifold()
		out = C.manifold_copy(alloc, out)
	}
	result := newSolid(out)

	if C.manifold_is_empty(result.ptr) != 0 {
		return nil, nil
	}
	return decompose(result), nil
}

// decompose splits a solid into its disjoint connected components.
func decompose(s *manifoldSolid) []kernel.Solid {
	vecAlloc := C.manifold_alloc_manifold_vec()
	vec := C.manifold_decompose(vecAlloc, s.ptr)
	defer C.manifold_delete_manifold_vec(vec)

	n := int(C.manifold_manifold_vec_length(vec))
	out := make([]kernel.Solid, 0, n)
	for i := 0; i < n; i++ {
		alloc := C.manifold_alloc_manifold()
		out = append(out, newSolid(C.manifold_manifold_vec_get(alloc, vec, C.int(i))))
	}
	return out
}

// VolumeCentroid integrates the centroid over the closed output mesh by
// summing signed tetrahedra against the origin.
func (k *Kernel) VolumeCentroid(s kernel.Solid, precision float64) (geom.Vec3, error) {
	mesh, err := k.ToMesh(s)
	if err != nil {
		return geom.Vec3{}, err
	}
	if mesh.IsEmpty() {
		return geom.Vec3{}, fmt.Errorf("manifold: volume centroid of empty solid")
	}

	var volume float64
	var cx, cy, cz float64
	for t := 0; t < mesh.TriangleCount(); t++ {
		i0, i1, i2 := mesh.Indices[3*t], mesh.Indices[3*t+1], mesh.Indices[3*t+2]
		a := vertexAt(mesh, i0)
		b := vertexAt(mesh, i1)
		c := vertexAt(mesh, i2)

		v := a.Dot(b.Cross(c)) / 6
		volume += v
		centroid := a.Add(b).Add(c).Scale(0.25)
		cx += v * centroid.X
		cy += v * centroid.Y
		cz += v * centroid.Z
	}
	if math.Abs(volume) < 1e-12 {
		return geom.Vec3{}, fmt.Errorf("manifold: volume centroid undefined for degenerate solid")
	}
	return geom.Vec3{X: cx / volume, Y: cy / volume, Z: cz / volume}, nil
}

func vertexAt(m *kernel.Mesh, i uint32) geom.Vec3 {
	return geom.Vec3{
		X: float64(m.Vertices[3*i]),
		Y: float64(m.Vertices[3*i+1]),
		Z: float64(m.Vertices[3*i+2]),
	}
}

// Duplicate deep-copies the solid on the C side.
func (k *Kernel) Duplicate(s kernel.Solid) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_copy(alloc, unwrap(s).ptr))
}

// Edges enumerates the twelve bounding-box edges; the C API exposes no
// mesh edge topology.
func (k *Kernel) Edges(s kernel.Solid) ([]kernel.Curve, error) {
	return kernel.AABBEdges(s.BoundingBox()), nil
}

// Faces reports the six bounding-box faces.
func (k *Kernel) Faces(s kernel.Solid) (int, error) {
	return kernel.AABBFaceCount, nil
}

// Unroll is unsupported.
func (k *Kernel) Unroll(s kernel.Solid, face int, precision float64) ([]kernel.Curve, error) {
	return nil, fmt.Errorf("manifold: unroll: %w", kernel.ErrUnsupported)
}

// Translate moves the solid by v.
func (k *Kernel) Translate(s kernel.Solid, v geom.Vec3) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, unwrap(s).ptr,
		C.double(v.X), C.double(v.Y), C.double(v.Z),
	)
	return newSolid(ptr)
}

// RotateAbout rotates the solid about an axis through the given point,
// via a Rodrigues rotation conjugated with translations.
func (k *Kernel) RotateAbout(s kernel.Solid, axis geom.Vec3, degrees float64, about geom.Vec3) kernel.Solid {
	u, ok := axis.Unit()
	if !ok {
		return k.Duplicate(s)
	}
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	c1 := 1 - cos

	r := [3][3]float64{
		{cos + u.X*u.X*c1, u.X*u.Y*c1 - u.Z*sin, u.X*u.Z*c1 + u.Y*sin},
		{u.Y*u.X*c1 + u.Z*sin, cos + u.Y*u.Y*c1, u.Y*u.Z*c1 - u.X*sin},
		{u.Z*u.X*c1 - u.Y*sin, u.Z*u.Y*c1 + u.X*sin, cos + u.Z*u.Z*c1},
	}
	return transform(unwrap(s), conjugated(r, about))
}

// ScaleAbout applies a non-uniform scale in the frame's basis about the
// frame origin: R * diag(f) * R^T conjugated with translations.
func (k *Kernel) ScaleAbout(s kernel.Solid, f geom.Frame, factors geom.Vec3) kernel.Solid {
	basis := [3]geom.Vec3{f.U, f.V, f.W}
	scale := [3]float64{factors.X, factors.Y, factors.Z}

	var m [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for a := 0; a < 3; a++ {
				sum += component(basis[a], i) * scale[a] * component(basis[a], j)
			}
			m[i][j] = sum
		}
	}
	return transform(unwrap(s), conjugated(m, f.Origin))
}

// Mirror reflects the solid across the plane with the Householder matrix
// I - 2nn^T conjugated with translations.
func (k *Kernel) Mirror(s kernel.Solid, p geom.Plane) kernel.Solid {
	n, ok := p.Normal()
	if !ok {
		return k.Duplicate(s)
	}
	m := [3][3]float64{
		{1 - 2*n.X*n.X, -2 * n.X * n.Y, -2 * n.X * n.Z},
		{-2 * n.Y * n.X, 1 - 2*n.Y*n.Y, -2 * n.Y * n.Z},
		{-2 * n.Z * n.X, -2 * n.Z * n.Y, 1 - 2*n.Z*n.Z},
	}
	return transform(unwrap(s), conjugated(m, p.Point))
}

func component(v geom.Vec3, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// conjugated builds the affine T(about) * M * T(-about).
func conjugated(m [3][3]float64, about geom.Vec3) affine {
	tx := about.X - m[0][0]*about.X - m[0][1]*about.Y - m[0][2]*about.Z
	ty := about.Y - m[1][0]*about.X - m[1][1]*about.Y - m[1][2]*about.Z
	tz := about.Z - m[2][0]*about.X - m[2][1]*about.Y - m[2][2]*about.Z
	return affine{
		m[0][0], m[0][1], m[0][2], tx,
		m[1][0], m[1][1], m[1][2], ty,
		m[2][0], m[2][1], m[2][2], tz,
	}
}

// ToMesh extracts a triangle mesh in Manifold's MeshGL format and
// separates the interleaved vertex properties into flat arrays.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ms := unwrap(s)

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	// The first 3 properties per vertex are the position; normals, when
	// present, follow at 3..5.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertices := make([]float32, numVert*3)
	hasNormals := numProp >= 6
	var normals []float32
	if hasNormals {
		normals = make([]float32, numVert*3)
	}
	for i := 0; i < numVert; i++ {
		base := i * numProp
		copy(vertices[i*3:i*3+3], propData[base:base+3])
		if hasNormals {
			copy(normals[i*3:i*3+3], propData[base+3:base+6])
		}
	}
	if !hasNormals {
		normals = averagedNormals(vertices, indices)
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// averagedNormals accumulates area-weighted face normals per vertex.
func averagedNormals(vertices []float32, indices []uint32) []float32 {
	numVerts := len(vertices) / 3
	normals := make([]float32, numVerts*3)

	at := func(i uint32) geom.Vec3 {
		return geom.Vec3{
			X: float64(vertices[3*i]),
			Y: float64(vertices[3*i+1]),
			Z: float64(vertices[3*i+2]),
		}
	}
	for t := 0; t < len(indices)/3; t++ {
		i0, i1, i2 := indices[3*t], indices[3*t+1], indices[3*t+2]
		a, b, c := at(i0), at(i1), at(i2)
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] += float32(n.X)
			normals[idx*3+1] += float32(n.Y)
			normals[idx*3+2] += float32(n.Z)
		}
	}
	for i := 0; i < numVerts; i++ {
		n := geom.Vec3{
			X: float64(normals[i*3]),
			Y: float64(normals[i*3+1]),
			Z: float64(normals[i*3+2]),
		}
		if u, ok := n.Unit(); ok {
			normals[i*3+0] = float32(u.X)
			normals[i*3+1] = float32(u.Y)
			normals[i*3+2] = float32(u.Z)
		}
	}
	return normals
}
