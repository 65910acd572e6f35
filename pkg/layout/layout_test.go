package layout

import (
	"errors"
	"testing"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/joint"
	"github.com/chazu/treenail/pkg/kernel"
	"github.com/chazu/treenail/pkg/kernel/kerneltest"
)

func v(x, y, z float64) geom.Vec3 { return geom.Vec3{X: x, Y: y, Z: z} }

func curveBounds(curves []kernel.Curve) geom.AABB {
	bb := geom.EmptyAABB()
	for _, c := range curves {
		for _, p := range c.Points {
			bb.Extend(p)
		}
	}
	return bb
}

func TestProjectLaysVerticalFlat(t *testing.T) {
	k := kerneltest.New()
	horizontal := kerneltest.MakeBox(v(-50, -50, -5), v(50, 50, 5))
	vertical := kerneltest.MakeBox(v(-5, -50, 0), v(5, 50, 60))

	res, err := Project(k, vertical, horizontal, geom.XYPlane(geom.Vec3{}), kernel.DefaultPrecision)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", res.Warnings)
	}
	if len(res.Vertical.Closed) == 0 || len(res.Vertical.Open) != 0 {
		t.Fatalf("expected only closed loops for the vertical, got %d closed %d open",
			len(res.Vertical.Closed), len(res.Vertical.Open))
	}
	if len(res.Horizontal.Closed) == 0 || len(res.Horizontal.Open) != 0 {
		t.Fatalf("expected only closed loops for the horizontal, got %d closed %d open",
			len(res.Horizontal.Closed), len(res.Horizontal.Open))
	}

	// The 10x100x60 strip rotated flat about Y swaps width and height:
	// its footprint spans 60 in X and keeps 100 in Y.
	bb := curveBounds(res.Vertical.Closed)
	if bb.Min.X != -30 || bb.Max.X != 30 || bb.Min.Y != -50 || bb.Max.Y != 50 {
		t.Errorf("vertical footprint = %v..%v, want (-30,-50)..(30,50)", bb.Min, bb.Max)
	}
	for _, c := range res.Vertical.Closed {
		for _, p := range c.Points {
			if p.Z != 0 {
				t.Fatalf("expected projected point on the plane, got %v", p)
			}
		}
	}

	hb := curveBounds(res.Horizontal.Closed)
	if hb.Min.X != -50 || hb.Max.X != 50 {
		t.Errorf("horizontal footprint x = %v..%v, want -50..50", hb.Min.X, hb.Max.X)
	}
}

func TestProjectDoesNotMutateInputs(t *testing.T) {
	k := kerneltest.New()
	vertical := kerneltest.MakeBox(v(-5, -50, 0), v(5, 50, 60))
	horizontal := kerneltest.MakeBox(v(-50, -50, -5), v(50, 50, 5))
	before := vertical.BoundingBox()

	if _, err := Project(k, vertical, horizontal, geom.XYPlane(geom.Vec3{}), 0); err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if vertical.BoundingBox() != before {
		t.Errorf("expected the vertical strip untouched, got %v", vertical.BoundingBox())
	}
}

// openEdgeKernel returns a single dangling edge so that joining cannot
// close a loop.
type openEdgeKernel struct {
	*kerneltest.Kernel
}

func (k *openEdgeKernel) Edges(s kernel.Solid) ([]kernel.Curve, error) {
	return []kernel.Curve{
		{Points: []geom.Vec3{v(0, 0, 0), v(10, 0, 0)}},
	}, nil
}

func TestProjectWarnsOnOpenChains(t *testing.T) {
	k := &openEdgeKernel{Kernel: kerneltest.New()}
	vertical := kerneltest.MakeBox(v(0, 0, 0), v(10, 10, 10))
	horizontal := kerneltest.MakeBox(v(0, 0, 0), v(10, 10, 10))

	res, err := Project(k, vertical, horizontal, geom.XYPlane(geom.Vec3{}), 0)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected a warning per strip, got %v", res.Warnings)
	}
	for i, w := range res.Warnings {
		if w.Stage != "project" {
			t.Errorf("warning %d stage = %s, want project", i, w.Stage)
		}
		if w.Index != i {
			t.Errorf("warning %d index = %d, want %d", i, w.Index, i)
		}
	}
	if len(res.Vertical.Open) != 1 {
		t.Errorf("expected the open chain kept, got %d", len(res.Vertical.Open))
	}
}

func TestProjectInvalidInput(t *testing.T) {
	k := kerneltest.New()
	box := kerneltest.MakeBox(v(0, 0, 0), v(1, 1, 1))

	if _, err := Project(k, nil, box, geom.XYPlane(geom.Vec3{}), 0); !errors.Is(err, joint.ErrInvalidInput) {
		t.Errorf("nil vertical: expected ErrInvalidInput, got %v", err)
	}
	if _, err := Project(k, box, nil, geom.XYPlane(geom.Vec3{}), 0); !errors.Is(err, joint.ErrInvalidInput) {
		t.Errorf("nil horizontal: expected ErrInvalidInput, got %v", err)
	}
	if _, err := Project(k, box, box, geom.Plane{}, 0); !errors.Is(err, joint.ErrInvalidInput) {
		t.Errorf("degenerate plane: expected ErrInvalidInput, got %v", err)
	}
}

func TestProjectCentroidFailure(t *testing.T) {
	k := kerneltest.New()
	k.FailCentroid = true
	box := kerneltest.MakeBox(v(0, 0, 0), v(1, 1, 1))

	_, err := Project(k, box, box, geom.XYPlane(geom.Vec3{}), 0)
	if !errors.Is(err, joint.ErrKernelFailure) {
		t.Errorf("expected ErrKernelFailure, got %v", err)
	}
}
