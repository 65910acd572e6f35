package kernel

import "github.com/chazu/treenail/pkg/geom"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which named solid this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// boxFaces describes the six faces of a unit box: outward normal and the
// four corner selectors (0 = min, 1 = max per component) in CCW order.
var boxFaces = [6]struct {
	normal  geom.Vec3
	corners [4][3]int
}{
	{geom.Vec3{X: -1}, [4][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{geom.Vec3{X: 1}, [4][3]int{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{geom.Vec3{Y: -1}, [4][3]int{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{geom.Vec3{Y: 1}, [4][3]int{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{geom.Vec3{Z: -1}, [4][3]int{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
	{geom.Vec3{Z: 1}, [4][3]int{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
}

// BoxMesh builds a twelve-triangle mesh for an axis-aligned box. Used by
// backends whose solids mesh as their bounds.
func BoxMesh(bb geom.AABB) *Mesh {
	m := &Mesh{}
	pick := func(sel int, min, max float64) float64 {
		if sel == 0 {
			return min
		}
		return max
	}
	var idx uint32
	for _, f := range boxFaces {
		var verts [4]geom.Vec3
		for i, c := range f.corners {
			verts[i] = geom.Vec3{
				X: pick(c[0], bb.Min.X, bb.Max.X),
				Y: pick(c[1], bb.Min.Y, bb.Max.Y),
				Z: pick(c[2], bb.Min.Z, bb.Max.Z),
			}
		}
		for _, tri := range [2][3]int{{0, 1, 2}, {0, 2, 3}} {
			for _, vi := range tri {
				v := verts[vi]
				m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
				m.Normals = append(m.Normals, float32(f.normal.X), float32(f.normal.Y), float32(f.normal.Z))
				m.Indices = append(m.Indices, idx)
				idx++
			}
		}
	}
	return m
}
