package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
)

const bbEps = 1e-9

func axisBox(k *Kernel, min, max geom.Vec3) kernel.Solid {
	center := min.Add(max).Scale(0.5)
	half := max.Sub(min).Scale(0.5)
	return k.Box(geom.Box{
		Frame:      geom.Frame{Origin: center, U: geom.UnitX, V: geom.UnitY, W: geom.UnitZ},
		HalfExtent: half,
	})
}

func boundsNear(t *testing.T, got geom.AABB, min, max geom.Vec3, eps float64) {
	t.Helper()
	if got.Min.Sub(min).Length() > eps || got.Max.Sub(max).Length() > eps {
		t.Errorf("bounds = %v..%v, want %v..%v", got.Min, got.Max, min, max)
	}
}

func TestBoxBounds(t *testing.T) {
	k := New()
	s := axisBox(k, geom.Vec3{X: -5, Y: -10, Z: 0}, geom.Vec3{X: 5, Y: 10, Z: 4})
	boundsNear(t, s.BoundingBox(), geom.Vec3{X: -5, Y: -10, Z: 0}, geom.Vec3{X: 5, Y: 10, Z: 4}, bbEps)
}

func TestTranslate(t *testing.T) {
	k := New()
	s := axisBox(k, geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
	moved := k.Translate(s, geom.Vec3{X: 10, Y: -1, Z: 3})
	boundsNear(t, moved.BoundingBox(), geom.Vec3{X: 10, Y: -1, Z: 3}, geom.Vec3{X: 12, Y: 1, Z: 5}, bbEps)
}

func TestRotateAboutQuarterTurn(t *testing.T) {
	k := New()
	s := axisBox(k, geom.Vec3{X: 0, Y: -1, Z: -1}, geom.Vec3{X: 10, Y: 1, Z: 1})
	rotated := k.RotateAbout(s, geom.UnitZ, 90, geom.Vec3{})
	boundsNear(t, rotated.BoundingBox(), geom.Vec3{X: -1, Y: 0, Z: -1}, geom.Vec3{X: 1, Y: 10, Z: 1}, 1e-6)
}

func TestMirrorAcrossYZ(t *testing.T) {
	k := New()
	s := axisBox(k, geom.Vec3{X: 1, Y: 0, Z: 0}, geom.Vec3{X: 3, Y: 2, Z: 2})
	m := k.Mirror(s, geom.YZPlane(geom.Vec3{}))
	boundsNear(t, m.BoundingBox(), geom.Vec3{X: -3, Y: 0, Z: 0}, geom.Vec3{X: -1, Y: 2, Z: 2}, 1e-6)
}

func TestScaleAboutThins(t *testing.T) {
	k := New()
	s := axisBox(k, geom.Vec3{}, geom.Vec3{X: 4, Y: 4, Z: 4})
	f := geom.Frame{Origin: geom.Vec3{X: 2, Y: 2, Z: 2}, U: geom.UnitX, V: geom.UnitY, W: geom.UnitZ}
	thin := k.ScaleAbout(s, f, geom.Vec3{X: 0.5, Y: 1, Z: 1})
	boundsNear(t, thin.BoundingBox(), geom.Vec3{X: 1, Y: 0, Z: 0}, geom.Vec3{X: 3, Y: 4, Z: 4}, 1e-6)
}

func TestBooleanUnion(t *testing.T) {
	k := New()
	a := axisBox(k, geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
	b := axisBox(k, geom.Vec3{X: 1, Y: 1, Z: 1}, geom.Vec3{X: 3, Y: 3, Z: 3})

	res, err := k.Boolean(kernel.Union, 0, a, b)
	if err != nil {
		t.Fatalf("Boolean failed: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("expected 1 solid, got %d", len(res))
	}
	boundsNear(t, res[0].BoundingBox(), geom.Vec3{}, geom.Vec3{X: 3, Y: 3, Z: 3}, bbEps)
}

func TestBooleanIntersectionDisjoint(t *testing.T) {
	k := New()
	a := axisBox(k, geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1})
	b := axisBox(k, geom.Vec3{X: 10, Y: 10, Z: 10}, geom.Vec3{X: 11, Y: 11, Z: 11})

	res, err := k.Boolean(kernel.Intersection, 0, a, b)
	if err != nil {
		t.Fatalf("Boolean failed: %v", err)
	}
	if len(res) != 0 {
		t.Errorf("expected empty result for disjoint solids, got %d", len(res))
	}
}

func TestBooleanNoOperands(t *testing.T) {
	k := New()
	if _, err := k.Boolean(kernel.Union, 0); err == nil {
		t.Errorf("expected an error with no operands")
	}
}

func TestVolumeCentroid(t *testing.T) {
	k := New()
	s := axisBox(k, geom.Vec3{X: 2, Y: 4, Z: 6}, geom.Vec3{X: 12, Y: 14, Z: 16})

	c, err := k.VolumeCentroid(s, 0)
	if err != nil {
		t.Fatalf("VolumeCentroid failed: %v", err)
	}
	want := geom.Vec3{X: 7, Y: 9, Z: 11}
	if c.Sub(want).Length() > 0.5 {
		t.Errorf("centroid = %v, want near %v", c, want)
	}
}

func TestEdgesAndFaces(t *testing.T) {
	k := New()
	s := axisBox(k, geom.Vec3{}, geom.Vec3{X: 1, Y: 2, Z: 3})

	edges, err := k.Edges(s)
	if err != nil {
		t.Fatalf("Edges failed: %v", err)
	}
	if len(edges) != 12 {
		t.Errorf("expected 12 edges, got %d", len(edges))
	}

	n, err := k.Faces(s)
	if err != nil {
		t.Fatalf("Faces failed: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6 faces, got %d", n)
	}
}

func TestUnrollUnsupported(t *testing.T) {
	k := New()
	s := axisBox(k, geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1})

	if _, err := k.Unroll(s, 0, 0); !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestToMesh(t *testing.T) {
	k := New()
	s := axisBox(k, geom.Vec3{}, geom.Vec3{X: 10, Y: 10, Z: 10})

	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatalf("expected a non-empty mesh")
	}
	if mesh.TriangleCount() == 0 {
		t.Fatalf("expected triangles")
	}

	// Marching cubes stays near the solid.
	slack := 1.0
	for i := 0; i < mesh.VertexCount(); i++ {
		x := float64(mesh.Vertices[3*i])
		y := float64(mesh.Vertices[3*i+1])
		z := float64(mesh.Vertices[3*i+2])
		if x < -slack || x > 10+slack || y < -slack || y > 10+slack || z < -slack || z > 10+slack {
			t.Fatalf("vertex %d = (%v,%v,%v) far outside the solid", i, x, y, z)
		}
	}

	for i := 0; i < mesh.VertexCount(); i++ {
		nx := float64(mesh.Normals[3*i])
		ny := float64(mesh.Normals[3*i+1])
		nz := float64(mesh.Normals[3*i+2])
		l := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if math.Abs(l-1) > 1e-3 {
			t.Fatalf("normal %d has length %v", i, l)
		}
	}
}
