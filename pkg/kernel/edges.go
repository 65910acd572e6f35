package kernel

import "github.com/chazu/treenail/pkg/geom"

// AABBEdges returns the twelve edges of an axis-aligned box in a stable
// order: the four edges along X (indices 0-3), then along Y (4-7), then
// along Z (8-11). Within each group the edges are ordered by the
// (min, min) corner first.
func AABBEdges(bb geom.AABB) []Curve {
	lo, hi := bb.Min, bb.Max
	seg := func(a, b geom.Vec3) Curve {
		return Curve{Points: []geom.Vec3{a, b}}
	}
	return []Curve{
		// Along X.
		seg(geom.Vec3{X: lo.X, Y: lo.Y, Z: lo.Z}, geom.Vec3{X: hi.X, Y: lo.Y, Z: lo.Z}),
		seg(geom.Vec3{X: lo.X, Y: hi.Y, Z: lo.Z}, geom.Vec3{X: hi.X, Y: hi.Y, Z: lo.Z}),
		seg(geom.Vec3{X: lo.X, Y: lo.Y, Z: hi.Z}, geom.Vec3{X: hi.X, Y: lo.Y, Z: hi.Z}),
		seg(geom.Vec3{X: lo.X, Y: hi.Y, Z: hi.Z}, geom.Vec3{X: hi.X, Y: hi.Y, Z: hi.Z}),
		// Along Y.
		seg(geom.Vec3{X: lo.X, Y: lo.Y, Z: lo.Z}, geom.Vec3{X: lo.X, Y: hi.Y, Z: lo.Z}),
		seg(geom.Vec3{X: hi.X, Y: lo.Y, Z: lo.Z}, geom.Vec3{X: hi.X, Y: hi.Y, Z: lo.Z}),
		seg(geom.Vec3{X: lo.X, Y: lo.Y, Z: hi.Z}, geom.Vec3{X: lo.X, Y: hi.Y, Z: hi.Z}),
		seg(geom.Vec3{X: hi.X, Y: lo.Y, Z: hi.Z}, geom.Vec3{X: hi.X, Y: hi.Y, Z: hi.Z}),
		// Along Z.
		seg(geom.Vec3{X: lo.X, Y: lo.Y, Z: lo.Z}, geom.Vec3{X: lo.X, Y: lo.Y, Z: hi.Z}),
		seg(geom.Vec3{X: hi.X, Y: lo.Y, Z: lo.Z}, geom.Vec3{X: hi.X, Y: lo.Y, Z: hi.Z}),
		seg(geom.Vec3{X: lo.X, Y: hi.Y, Z: lo.Z}, geom.Vec3{X: lo.X, Y: hi.Y, Z: hi.Z}),
		seg(geom.Vec3{X: hi.X, Y: hi.Y, Z: lo.Z}, geom.Vec3{X: hi.X, Y: hi.Y, Z: hi.Z}),
	}
}

// AABBFaceCount is the number of enumerable faces of an axis-aligned box.
const AABBFaceCount = 6

// AABBFaceBoundary returns the four boundary segments of face index
// 0..5 (-X, +X, -Y, +Y, -Z, +Z) of an axis-aligned box, as unjoined
// curves ready for JoinCurves.
func AABBFaceBoundary(bb geom.AABB, face int) []Curve {
	lo, hi := bb.Min, bb.Max

	var corners [4]geom.Vec3
	switch face {
	case 0: // -X
		corners = [4]geom.Vec3{
			{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: lo.X, Y: hi.Y, Z: lo.Z},
			{X: lo.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: lo.Y, Z: hi.Z},
		}
	case 1: // +X
		corners = [4]geom.Vec3{
			{X: hi.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: hi.Y, Z: lo.Z},
			{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: hi.X, Y: lo.Y, Z: hi.Z},
		}
	case 2: // -Y
		corners = [4]geom.Vec3{
			{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
			{X: hi.X, Y: lo.Y, Z: hi.Z}, {X: lo.X, Y: lo.Y, Z: hi.Z},
		}
	case 3: // +Y
		corners = [4]geom.Vec3{
			{X: lo.X, Y: hi.Y, Z: lo.Z}, {X: hi.X, Y: hi.Y, Z: lo.Z},
			{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
		}
	case 4: // -Z
		corners = [4]geom.Vec3{
			{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
			{X: hi.X, Y: hi.Y, Z: lo.Z}, {X: lo.X, Y: hi.Y, Z: lo.Z},
		}
	default: // +Z
		corners = [4]geom.Vec3{
			{X: lo.X, Y: lo.Y, Z: hi.Z}, {X: hi.X, Y: lo.Y, Z: hi.Z},
			{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
		}
	}

	out := make([]Curve, 4)
	for i := 0; i < 4; i++ {
		out[i] = Curve{Points: []geom.Vec3{corners[i], corners[(i+1)%4]}}
	}
	return out
}
