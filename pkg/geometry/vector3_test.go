package geometry

import (
	"testing"

	"cogentcore.org/core/math32"
)

func TestIsFinite(t *testing.T) {
	if !IsFinite(math32.Vec3(1, 2, 3)) {
		t.Errorf("IsFinite failed: expected true for (1, 2, 3)")
	}
	if IsFinite(math32.Vec3(math32.NaN(), 0, 0)) {
		t.Errorf("IsFinite failed: expected false for NaN component")
	}
	if IsFinite(math32.Vec3(0, math32.Inf(1), 0)) {
		t.Errorf("IsFinite failed: expected false for +Inf component")
	}
}

func TestArrayRoundTrip(t *testing.T) {
	a := [3]float32{1.5, -2, 3}
	result := ToArray(FromArray(a))
	if result != a {
		t.Errorf("Array round trip failed: expected %v, got %v", a, result)
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	vectors := []math32.Vector3{
		math32.Vec3(10, 10, 10),
		math32.Vec3(0, 0, -5),
		math32.Vec3(-3, 4, 0.5),
		math32.Vec3(1e-5, 0, 0),
	}
	for _, v := range vectors {
		r, az, polar := Spherical(v)
		back := FromSpherical(r, az, polar)
		if !NearlyEqual(v, back, 1e-4*(1+v.Length())) {
			t.Errorf("Spherical round trip failed: expected %v, got %v", v, back)
		}
	}
}

func TestSphericalZero(t *testing.T) {
	r, az, polar := Spherical(math32.Vector3{})
	if r != 0 || az != 0 || polar != 0 {
		t.Errorf("Spherical of zero vector failed: got (%v, %v, %v)", r, az, polar)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 1) != 1 || Clamp(-5, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Errorf("Clamp failed")
	}
}

func TestScreenNDCRoundTrip(t *testing.T) {
	ndc := ScreenToNDC(0, 0, 800, 600)
	if ndc.X != -1 || ndc.Y != 1 {
		t.Errorf("ScreenToNDC failed: expected (-1, 1), got %v", ndc)
	}
	center := ScreenToNDC(400, 300, 800, 600)
	if center.X != 0 || center.Y != 0 {
		t.Errorf("ScreenToNDC failed: expected (0, 0), got %v", center)
	}
	back := NDCToScreen(math32.Vec2(0.5, -0.5), 800, 600)
	if back.X != 600 || back.Y != 450 {
		t.Errorf("NDCToScreen failed: expected (600, 450), got %v", back)
	}
}
