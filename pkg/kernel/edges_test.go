package kernel

import (
	"testing"

	"github.com/chazu/treenail/pkg/geom"
)

func unitAABB() geom.AABB {
	return geom.AABB{Min: geom.Vec3{}, Max: geom.Vec3{X: 1, Y: 2, Z: 3}}
}

func TestAABBEdgesStableOrder(t *testing.T) {
	edges := AABBEdges(unitAABB())
	if len(edges) != 12 {
		t.Fatalf("expected 12 edges, got %d", len(edges))
	}

	axisOf := func(c Curve) geom.Vec3 {
		return c.Points[1].Sub(c.Points[0])
	}
	for i := 0; i < 4; i++ {
		if d := axisOf(edges[i]); d.Y != 0 || d.Z != 0 || d.X <= 0 {
			t.Errorf("edge %d direction = %v, want +X", i, d)
		}
	}
	for i := 4; i < 8; i++ {
		if d := axisOf(edges[i]); d.X != 0 || d.Z != 0 || d.Y <= 0 {
			t.Errorf("edge %d direction = %v, want +Y", i, d)
		}
	}
	for i := 8; i < 12; i++ {
		if d := axisOf(edges[i]); d.X != 0 || d.Y != 0 || d.Z <= 0 {
			t.Errorf("edge %d direction = %v, want +Z", i, d)
		}
	}

	// First Z edge starts at the min corner.
	if edges[8].Points[0] != (geom.Vec3{}) {
		t.Errorf("edge 8 start = %v, want origin", edges[8].Points[0])
	}

	for i, e := range edges {
		if len(e.Points) != 2 {
			t.Errorf("edge %d has %d points, want 2", i, len(e.Points))
		}
		if e.Closed {
			t.Errorf("edge %d marked closed", i)
		}
	}
}

func TestAABBFaceBoundaryJoins(t *testing.T) {
	bb := unitAABB()
	for face := 0; face < AABBFaceCount; face++ {
		segs := AABBFaceBoundary(bb, face)
		if len(segs) != 4 {
			t.Fatalf("face %d: expected 4 segments, got %d", face, len(segs))
		}
		closed, open := JoinCurves(segs, 1e-9)
		if len(closed) != 1 || len(open) != 0 {
			t.Errorf("face %d: expected a single closed loop, got %d closed %d open",
				face, len(closed), len(open))
		}
	}
}

func TestAABBFaceBoundaryPlanes(t *testing.T) {
	bb := unitAABB()

	// -X and +X faces are planar in X at the respective bound.
	for _, tc := range []struct {
		face int
		want float64
	}{
		{0, bb.Min.X},
		{1, bb.Max.X},
	} {
		for _, seg := range AABBFaceBoundary(bb, tc.face) {
			for _, p := range seg.Points {
				if p.X != tc.want {
					t.Errorf("face %d point %v not at x=%v", tc.face, p, tc.want)
				}
			}
		}
	}

	for _, seg := range AABBFaceBoundary(bb, 5) {
		for _, p := range seg.Points {
			if p.Z != bb.Max.Z {
				t.Errorf("face 5 point %v not at z=%v", p, bb.Max.Z)
			}
		}
	}
}
