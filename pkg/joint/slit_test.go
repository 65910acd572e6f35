package joint

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/treenail/pkg/geom"
	"github.com/chazu/treenail/pkg/kernel"
	"github.com/chazu/treenail/pkg/kernel/kerneltest"
)

func slitStrips() (a, b kernel.Solid) {
	return kerneltest.MakeBox(v(0, 0, 0), v(10, 10, 100)),
		kerneltest.MakeBox(v(0, 0, 30), v(10, 10, 70))
}

// The two slit tools sit on opposite sides of the edge midpoint, each
// offset a quarter edge-length along the edge.
func TestCarveSlitsComplementaryOffsets(t *testing.T) {
	k := kerneltest.New()
	a, b := slitStrips()

	res, err := CarveSlits(k, SlitParams{A: a, B: b, Tolerance: 0.1, Edge: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}

	cutsA := kerneltest.Subtracted(res.A)
	cutsB := kerneltest.Subtracted(res.B)
	if len(cutsA) != 1 || len(cutsB) != 1 {
		t.Fatalf("expected one cut per side, got %d and %d", len(cutsA), len(cutsB))
	}

	// Overlap is z 30..70, grown to 44 tall about z=50, thinned to 22,
	// then offset by 11 each way: the cuts meet at z=50 and never
	// overlap.
	const eps = 1e-6
	if math.Abs(cutsA[0].Min.Z-50) > eps || math.Abs(cutsA[0].Max.Z-72) > eps {
		t.Errorf("side A cut spans z %v..%v, want 50..72", cutsA[0].Min.Z, cutsA[0].Max.Z)
	}
	if math.Abs(cutsB[0].Min.Z-28) > eps || math.Abs(cutsB[0].Max.Z-50) > eps {
		t.Errorf("side B cut spans z %v..%v, want 28..50", cutsB[0].Min.Z, cutsB[0].Max.Z)
	}

	if len(kerneltest.Subtracted(a)) != 0 || len(kerneltest.Subtracted(b)) != 0 {
		t.Error("slit carving mutated its inputs")
	}
}

func TestCarveSlitsToleranceCheckedFirst(t *testing.T) {
	k := kerneltest.New()
	a, b := slitStrips()

	_, err := CarveSlits(k, SlitParams{A: a, B: b, Tolerance: 0, Edge: 8})
	if !errors.Is(err, ErrToleranceOutOfPolicy) {
		t.Fatalf("expected ErrToleranceOutOfPolicy, got %v", err)
	}
	if k.BooleanCalls != 0 {
		t.Errorf("kernel saw %d boolean calls before policy check", k.BooleanCalls)
	}
}

func TestCarveSlitsNoOverlap(t *testing.T) {
	k := kerneltest.New()
	a := kerneltest.MakeBox(v(0, 0, 0), v(1, 1, 1))
	b := kerneltest.MakeBox(v(5, 5, 5), v(6, 6, 6))

	_, err := CarveSlits(k, SlitParams{A: a, B: b, Tolerance: 0.1, Edge: 0})
	if !errors.Is(err, ErrKernelFailure) {
		t.Fatalf("expected ErrKernelFailure, got %v", err)
	}
}

func TestCarveSlitsEdgeOutOfRange(t *testing.T) {
	k := kerneltest.New()
	a, b := slitStrips()

	_, err := CarveSlits(k, SlitParams{A: a, B: b, Tolerance: 0.1, Edge: 12})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

// An edge too short for the quarter-length offset to clear the thinned
// tool is rejected up front.
func TestCarveSlitsShortEdgePrecondition(t *testing.T) {
	k := &edgeStubKernel{
		Kernel: kerneltest.New(),
		edges: []kernel.Curve{
			{Points: []geom.Vec3{v(5, 5, 49), v(5, 5, 51)}},
		},
	}
	a, b := slitStrips()

	_, err := CarveSlits(k, SlitParams{A: a, B: b, Tolerance: 0.1, Edge: 0})
	if !errors.Is(err, ErrGeometryPrecondition) {
		t.Fatalf("expected ErrGeometryPrecondition, got %v", err)
	}
}

// A side whose subtraction fails is returned untouched with a warning;
// the other side keeps its cut.
func TestCarveSlitsPerSideFailure(t *testing.T) {
	k := kerneltest.New()
	k.FailBooleanAfter = 2 // intersection and side A succeed, side B fails

	a, b := slitStrips()
	res, err := CarveSlits(k, SlitParams{A: a, B: b, Tolerance: 0.1, Edge: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(kerneltest.Subtracted(res.A)) != 1 {
		t.Errorf("expected side A to keep its cut, got %d", len(kerneltest.Subtracted(res.A)))
	}
	if len(kerneltest.Subtracted(res.B)) != 0 {
		t.Errorf("expected side B untouched, got %d cuts", len(kerneltest.Subtracted(res.B)))
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Index != 1 {
		t.Fatalf("expected one warning for side B, got %v", res.Warnings)
	}
}

func TestCarveSlitsNilInput(t *testing.T) {
	k := kerneltest.New()
	a, _ := slitStrips()

	if _, err := CarveSlits(k, SlitParams{A: a, Tolerance: 0.1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
