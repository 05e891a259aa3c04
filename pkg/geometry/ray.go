package geometry

import "cogentcore.org/core/math32"

// Ray is a half line starting at Origin going along the unit vector Dir
type Ray struct {
	Origin math32.Vector3
	Dir    math32.Vector3
}

// NewRay creates a ray, normalizing the direction
func NewRay(origin, dir math32.Vector3) Ray {
	return Ray{Origin: origin, Dir: dir.Normal()}
}

// At returns the point at distance t along the ray
func (r Ray) At(t float32) math32.Vector3 {
	return r.Origin.Add(r.Dir.MulScalar(t))
}

// IntersectTriangle returns the distance to the triangle (a, b, c) using the
// Moller-Trumbore algorithm. Both windings are accepted, since panorama
// geometry is viewed from inside.
func (r Ray) IntersectTriangle(a, b, c math32.Vector3) (float32, bool) {
	const eps = 1e-7
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t <= eps {
		return 0, false
	}
	return t, true
}

// IntersectBox returns the entry distance into box, or the exit distance
// when the origin lies inside it
func (r Ray) IntersectBox(box math32.Box3) (float32, bool) {
	tmin := float32(-math32.Infinity)
	tmax := float32(math32.Infinity)
	o := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float32{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
