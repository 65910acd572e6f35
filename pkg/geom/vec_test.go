package geom

import "testing"

func TestUnit(t *testing.T) {
	u, ok := Vec3{X: 3, Y: 4}.Unit()
	if !ok {
		t.Fatalf("expected a unit vector")
	}
	if !vecNear(u, Vec3{X: 0.6, Y: 0.8}) {
		t.Errorf("expected (0.6,0.8,0), got %v", u)
	}

	if _, ok := (Vec3{}).Unit(); ok {
		t.Errorf("expected failure for the zero vector")
	}
	if _, ok := (Vec3{X: Epsilon / 2}).Unit(); ok {
		t.Errorf("expected failure below Epsilon")
	}
}

func TestCrossHandedness(t *testing.T) {
	if got := UnitX.Cross(UnitY); !vecNear(got, UnitZ) {
		t.Errorf("expected X x Y = Z, got %v", got)
	}
	if got := UnitY.Cross(UnitX); !vecNear(got, UnitZ.Scale(-1)) {
		t.Errorf("expected Y x X = -Z, got %v", got)
	}
}

func TestLerp(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 3, Y: 6, Z: -1}
	if got := a.Lerp(b, 0); !vecNear(got, a) {
		t.Errorf("expected start at t=0, got %v", got)
	}
	if got := a.Lerp(b, 1); !vecNear(got, b) {
		t.Errorf("expected end at t=1, got %v", got)
	}
	if got := a.Lerp(b, 0.5); !vecNear(got, Vec3{X: 2, Y: 4, Z: 1}) {
		t.Errorf("expected midpoint (2,4,1), got %v", got)
	}
}
