// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, kerneltest) provide solid modeling and
// boolean operations behind this interface. The kernel abstraction
// allows swapping backends without changing the joinery pipeline.
//
// Precision is an explicit argument on every call that evaluates
// geometry; backends must not read it from ambient state.
package kernel

import (
	"errors"

	"github.com/chazu/treenail/pkg/geom"
)

// DefaultPrecision is the evaluation precision (mm) used when a caller
// passes zero.
const DefaultPrecision = 1e-3

// ErrUnsupported is returned by backends for contract surface their
// representation cannot provide (an implicit-surface backend has no
// b-rep topology to unroll, for example).
var ErrUnsupported = errors.New("kernel: operation not supported by this backend")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() geom.AABB
}

// BooleanKind selects the boolean operation.
type BooleanKind int

const (
	Union BooleanKind = iota
	Intersection
	Difference // first solid minus the union of the rest
)

func (k BooleanKind) String() string {
	switch k {
	case Union:
		return "union"
	case Intersection:
		return "intersection"
	case Difference:
		return "difference"
	default:
		return "unknown"
	}
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box realizes an oriented box as a solid.
	Box(b geom.Box) Solid

	// Boolean combines solids. An empty result signals no overlap or a
	// degenerate configuration, not an error; errors are reserved for
	// invalid input. Difference treats the first solid as the target and
	// the rest as tools. The result may hold several disjoint pieces.
	Boolean(kind BooleanKind, precision float64, solids ...Solid) ([]Solid, error)

	// VolumeCentroid computes the volume centroid of a solid. It fails
	// for empty or non-solid input.
	VolumeCentroid(s Solid, precision float64) (geom.Vec3, error)

	// Duplicate returns an independent copy of the solid. Pipeline
	// stages duplicate before any destructive transform so caller
	// inputs are never mutated.
	Duplicate(s Solid) Solid

	// Edges enumerates the solid's edges as polyline curves in a
	// stable order. Linear edges have exactly two points.
	Edges(s Solid) ([]Curve, error)

	// Faces returns the number of enumerable faces of the solid.
	Faces(s Solid) (int, error)

	// Unroll flattens a developable face into the XY plane and returns
	// its boundary curves. Fails for non-developable input.
	Unroll(s Solid, face int, precision float64) ([]Curve, error)

	// Transforms. All return new solids.
	Translate(s Solid, v geom.Vec3) Solid
	RotateAbout(s Solid, axis geom.Vec3, degrees float64, about geom.Vec3) Solid
	ScaleAbout(s Solid, f geom.Frame, factors geom.Vec3) Solid
	Mirror(s Solid, p geom.Plane) Solid

	// ToMesh converts a solid to a triangle mesh.
	ToMesh(s Solid) (*Mesh, error)
}

// Precision clamps a caller-supplied precision to a usable value.
func Precision(p float64) float64 {
	if p <= 0 {
		return DefaultPrecision
	}
	return p
}
