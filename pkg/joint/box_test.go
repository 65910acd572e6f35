package joint

import (
	"errors"
	"testing"

	"github.com/chazu/treenail/pkg/geom"
)

func TestCutterBoxesMirroredPair(t *testing.T) {
	f := geom.WorldFrame()
	f.Origin = v(5, 0, 0)
	mirror := geom.YZPlane(geom.Vec3{})

	boxes, err := CutterBoxes(f, 5, mirror)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := v(2.5, 2.5, 2.5)
	if !vecNear(boxes[0].HalfExtent, want, testEps) {
		t.Errorf("primary half-extent = %v, want %v", boxes[0].HalfExtent, want)
	}
	if !vecNear(boxes[0].Frame.Origin, v(5, 0, 0), testEps) {
		t.Errorf("primary origin = %v, want (5 0 0)", boxes[0].Frame.Origin)
	}
	if !vecNear(boxes[1].Frame.Origin, v(-5, 0, 0), testEps) {
		t.Errorf("mirrored origin = %v, want (-5 0 0)", boxes[1].Frame.Origin)
	}
}

// Mirroring the mirrored box across the same plane must reproduce the
// primary box's placement.
func TestCutterBoxMirrorInvolution(t *testing.T) {
	f, ok := geom.FrameAt(v(3, 1, 2), v(1, 1, 0), geom.UnitZ, geom.UnitX)
	if !ok {
		t.Fatal("frame construction failed")
	}
	mirror := geom.YZPlane(v(0.5, 0, 0))

	boxes, err := CutterBoxes(f, 2, mirror)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	back := boxes[1].Mirror(mirror)
	orig := boxes[0].Corners()
	for i, c := range back.Corners() {
		if !vecNear(c, orig[i], testEps) {
			t.Errorf("corner %d = %v, want %v", i, c, orig[i])
		}
	}
}

func TestCutterBoxesInvalidInput(t *testing.T) {
	f := geom.WorldFrame()
	mirror := geom.YZPlane(geom.Vec3{})

	if _, err := CutterBoxes(f, 0, mirror); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero thickness: expected ErrInvalidInput, got %v", err)
	}
	if _, err := CutterBoxes(f, -1, mirror); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative thickness: expected ErrInvalidInput, got %v", err)
	}
	if _, err := CutterBoxes(f, 1, geom.Plane{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("degenerate plane: expected ErrInvalidInput, got %v", err)
	}
}
