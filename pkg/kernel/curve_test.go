package kernel

import (
	"math"
	"testing"

	"github.com/chazu/treenail/pkg/geom"
)

func pt(x, y, z float64) geom.Vec3 { return geom.Vec3{X: x, Y: y, Z: z} }

func TestCurveIsLinear(t *testing.T) {
	tests := []struct {
		name  string
		curve Curve
		want  bool
	}{
		{"two points", Curve{Points: []geom.Vec3{pt(0, 0, 0), pt(5, 0, 0)}}, true},
		{"collinear interior", Curve{Points: []geom.Vec3{pt(0, 0, 0), pt(2, 0, 0), pt(5, 0, 0)}}, true},
		{"bent", Curve{Points: []geom.Vec3{pt(0, 0, 0), pt(2, 1, 0), pt(5, 0, 0)}}, false},
		{"single point", Curve{Points: []geom.Vec3{pt(0, 0, 0)}}, false},
		{"closed loop", Curve{Points: []geom.Vec3{pt(0, 0, 0), pt(1, 0, 0), pt(1, 1, 0)}, Closed: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.curve.IsLinear(1e-9); got != tt.want {
				t.Errorf("IsLinear() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurveLength(t *testing.T) {
	open := Curve{Points: []geom.Vec3{pt(0, 0, 0), pt(3, 0, 0), pt(3, 4, 0)}}
	if got := open.Length(); got != 7 {
		t.Errorf("open length = %v, want 7", got)
	}

	square := Curve{
		Points: []geom.Vec3{pt(0, 0, 0), pt(1, 0, 0), pt(1, 1, 0), pt(0, 1, 0)},
		Closed: true,
	}
	if got := square.Length(); got != 4 {
		t.Errorf("closed length = %v, want 4", got)
	}
}

func TestCurvePointAtLength(t *testing.T) {
	c := Curve{Points: []geom.Vec3{pt(0, 0, 0), pt(10, 0, 0), pt(10, 10, 0)}}

	tests := []struct {
		s    float64
		want geom.Vec3
	}{
		{-1, pt(0, 0, 0)},
		{0, pt(0, 0, 0)},
		{5, pt(5, 0, 0)},
		{10, pt(10, 0, 0)},
		{15, pt(10, 5, 0)},
		{99, pt(10, 10, 0)},
	}
	for _, tt := range tests {
		got := c.PointAtLength(tt.s)
		if got.Sub(tt.want).Length() > 1e-12 {
			t.Errorf("PointAtLength(%v) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestCurveTangentAtLength(t *testing.T) {
	c := Curve{Points: []geom.Vec3{pt(0, 0, 0), pt(10, 0, 0), pt(10, 10, 0)}}

	tan, ok := c.TangentAtLength(5)
	if !ok {
		t.Fatalf("expected a tangent on the first segment")
	}
	if tan.Sub(pt(1, 0, 0)).Length() > 1e-12 {
		t.Errorf("tangent at 5 = %v, want +X", tan)
	}

	tan, ok = c.TangentAtLength(15)
	if !ok {
		t.Fatalf("expected a tangent on the second segment")
	}
	if tan.Sub(pt(0, 1, 0)).Length() > 1e-12 {
		t.Errorf("tangent at 15 = %v, want +Y", tan)
	}

	if _, ok := (Curve{Points: []geom.Vec3{pt(0, 0, 0)}}).TangentAtLength(0); ok {
		t.Errorf("expected no tangent for a degenerate curve")
	}
}

func TestCurveBoundingBox(t *testing.T) {
	c := Curve{Points: []geom.Vec3{pt(1, -2, 3), pt(-1, 4, 0)}}
	bb := c.BoundingBox()
	if bb.Min != pt(-1, -2, 0) || bb.Max != pt(1, 4, 3) {
		t.Errorf("bounding box = %v..%v, want (-1,-2,0)..(1,4,3)", bb.Min, bb.Max)
	}
}

func TestJoinCurvesClosesLoop(t *testing.T) {
	segs := []Curve{
		{Points: []geom.Vec3{pt(0, 0, 0), pt(1, 0, 0)}},
		{Points: []geom.Vec3{pt(1, 0, 0), pt(1, 1, 0)}},
		{Points: []geom.Vec3{pt(1, 1, 0), pt(0, 1, 0)}},
		{Points: []geom.Vec3{pt(0, 1, 0), pt(0, 0, 0)}},
	}
	closed, open := JoinCurves(segs, 1e-6)
	if len(closed) != 1 {
		t.Fatalf("expected 1 closed loop, got %d", len(closed))
	}
	if len(open) != 0 {
		t.Fatalf("expected no open chains, got %d", len(open))
	}
	if !closed[0].Closed {
		t.Errorf("expected result marked closed")
	}
	if got := closed[0].Length(); math.Abs(got-4) > 1e-9 {
		t.Errorf("loop length = %v, want 4", got)
	}
}

func TestJoinCurvesReversedSegment(t *testing.T) {
	// Middle segment runs backwards; joining must reverse it.
	segs := []Curve{
		{Points: []geom.Vec3{pt(0, 0, 0), pt(1, 0, 0)}},
		{Points: []geom.Vec3{pt(2, 0, 0), pt(1, 0, 0)}},
		{Points: []geom.Vec3{pt(2, 0, 0), pt(3, 0, 0)}},
	}
	closed, open := JoinCurves(segs, 1e-6)
	if len(closed) != 0 {
		t.Fatalf("expected no closed loops, got %d", len(closed))
	}
	if len(open) != 1 {
		t.Fatalf("expected 1 open chain, got %d", len(open))
	}
	if got := open[0].Length(); math.Abs(got-3) > 1e-9 {
		t.Errorf("chain length = %v, want 3", got)
	}
}

func TestJoinCurvesKeepsDisjointChainsApart(t *testing.T) {
	segs := []Curve{
		{Points: []geom.Vec3{pt(0, 0, 0), pt(1, 0, 0)}},
		{Points: []geom.Vec3{pt(5, 0, 0), pt(6, 0, 0)}},
	}
	closed, open := JoinCurves(segs, 1e-6)
	if len(closed) != 0 || len(open) != 2 {
		t.Fatalf("expected 0 closed and 2 open, got %d and %d", len(closed), len(open))
	}
}

func TestJoinCurvesPassesThroughClosed(t *testing.T) {
	loop := Curve{
		Points: []geom.Vec3{pt(0, 0, 0), pt(1, 0, 0), pt(1, 1, 0)},
		Closed: true,
	}
	closed, open := JoinCurves([]Curve{loop}, 1e-6)
	if len(closed) != 1 || len(open) != 0 {
		t.Fatalf("expected the loop to pass through, got %d closed %d open", len(closed), len(open))
	}
	if len(closed[0].Points) != 3 {
		t.Errorf("expected 3 points preserved, got %d", len(closed[0].Points))
	}
}

func TestJoinCurvesDropsDegenerate(t *testing.T) {
	segs := []Curve{
		{Points: []geom.Vec3{pt(0, 0, 0)}},
		{Points: nil},
	}
	closed, open := JoinCurves(segs, 1e-6)
	if len(closed) != 0 || len(open) != 0 {
		t.Errorf("expected degenerate segments dropped, got %d closed %d open", len(closed), len(open))
	}
}
