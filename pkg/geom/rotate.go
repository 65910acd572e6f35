package geom

import "math"

// RotatePoint rotates p about the axis through `about` by the given
// angle in degrees, using Rodrigues' formula. The axis must be unit
// length.
func RotatePoint(p, axis Vec3, degrees float64, about Vec3) Vec3 {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	v := p.Sub(about)
	rotated := v.Scale(cos).
		Add(axis.Cross(v).Scale(sin)).
		Add(axis.Scale(axis.Dot(v) * (1 - cos)))
	return rotated.Add(about)
}
