package geometry

import "cogentcore.org/core/math32"

// IsFinite reports whether every component of v is a finite number
func IsFinite(v math32.Vector3) bool {
	for _, c := range []float32{v.X, v.Y, v.Z} {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// FromArray converts an [x, y, z] triple to a vector
func FromArray(a [3]float32) math32.Vector3 {
	return math32.Vec3(a[0], a[1], a[2])
}

// ToArray converts a vector to an [x, y, z] triple
func ToArray(v math32.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// NearlyEqual reports whether a and b differ by at most tol on every axis
func NearlyEqual(a, b math32.Vector3, tol float32) bool {
	d := a.Sub(b)
	return math32.Abs(d.X) <= tol && math32.Abs(d.Y) <= tol && math32.Abs(d.Z) <= tol
}

// Format returns a short human readable representation used in log lines
func Format(v math32.Vector3) string {
	return formatFloat(v.X) + ", " + formatFloat(v.Y) + ", " + formatFloat(v.Z)
}

// Spherical converts an offset vector to (radius, azimuth, polar) with Y up.
// Azimuth is measured around +Y starting at +Z, polar from +Y.
func Spherical(v math32.Vector3) (radius, azimuth, polar float32) {
	radius = v.Length()
	if radius == 0 {
		return 0, 0, 0
	}
	azimuth = math32.Atan2(v.X, v.Z)
	polar = math32.Acos(Clamp(v.Y/radius, -1, 1))
	return radius, azimuth, polar
}

// FromSpherical is the inverse of Spherical
func FromSpherical(radius, azimuth, polar float32) math32.Vector3 {
	s := math32.Sin(polar)
	return math32.Vec3(
		radius*s*math32.Sin(azimuth),
		radius*math32.Cos(polar),
		radius*s*math32.Cos(azimuth),
	)
}

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
