package camera

import (
	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/pkg/geometry"
)

// basis returns the camera frame: forward, right and up unit vectors
func (m *Manager) basis() (forward, right, up math32.Vector3) {
	forward = m.Direction()
	right = forward.Cross(m.up).Normal()
	if right.Length() == 0 {
		right = math32.Vec3(1, 0, 0)
	}
	up = right.Cross(forward).Normal()
	return forward, right, up
}

// halfExtents returns the half size of the view plane at distance one for
// perspective, or of the frustum for orthographic, with zoom applied
func (m *Manager) halfExtents() (w, h float32) {
	zoom := m.Zoom()
	if m.projection == Orthographic {
		return m.orthoHalfW / zoom, m.orthoHalfH / zoom
	}
	h = math32.Tan(math32.DegToRad(m.fov)/2) / zoom
	return h * m.Aspect(), h
}

// Project maps a world point to normalized device coordinates. ok is false
// for points behind the camera.
func (m *Manager) Project(p math32.Vector3) (ndc math32.Vector2, ok bool) {
	forward, right, up := m.basis()
	d := p.Sub(m.Position())
	z := d.Dot(forward)
	w, h := m.halfExtents()
	if m.projection == Orthographic {
		return math32.Vec2(d.Dot(right)/w, d.Dot(up)/h), z > 0
	}
	if z <= 0 {
		return math32.Vector2{}, false
	}
	return math32.Vec2(d.Dot(right)/(z*w), d.Dot(up)/(z*h)), true
}

// Unproject returns the ray through a point in normalized device coordinates
func (m *Manager) Unproject(ndc math32.Vector2) geometry.Ray {
	forward, right, up := m.basis()
	w, h := m.halfExtents()
	eye := m.Position()
	if m.projection == Orthographic {
		origin := eye.Add(right.MulScalar(ndc.X * w)).Add(up.MulScalar(ndc.Y * h))
		return geometry.NewRay(origin, forward)
	}
	dir := forward.Add(right.MulScalar(ndc.X * w)).Add(up.MulScalar(ndc.Y * h))
	return geometry.NewRay(eye, dir)
}

// ScreenRay returns the ray through a pixel of the viewport
func (m *Manager) ScreenRay(x, y float32) geometry.Ray {
	return m.Unproject(geometry.ScreenToNDC(x, y, float32(m.width), float32(m.height)))
}

// ToScreen maps a world point to viewport pixels
func (m *Manager) ToScreen(p math32.Vector3) (math32.Vector2, bool) {
	ndc, ok := m.Project(p)
	if !ok {
		return math32.Vector2{}, false
	}
	return geometry.NDCToScreen(ndc, float32(m.width), float32(m.height)), true
}

// PixelSizeInWorld returns the world length covered by one pixel. For a
// perspective camera it is measured at the target distance.
func (m *Manager) PixelSizeInWorld() float32 {
	if m.projection == Orthographic {
		w, h := m.halfExtents()
		return max(2*w, 2*h) / float32(max(m.width, m.height))
	}
	d := m.Position().DistanceTo(m.Target()) * math32.Tan(math32.DegToRad(m.fov)/2)
	return 2 * d / float32(m.height)
}

// EffectiveFov returns the vertical field of view in degrees with zoom applied
func (m *Manager) EffectiveFov() float32 {
	_, h := m.halfExtents()
	return math32.RadToDeg(2 * math32.Atan(h))
}

// OrthoHeight returns the visible height of the orthographic frustum
func (m *Manager) OrthoHeight() float32 {
	_, h := m.halfExtents()
	return 2 * h
}
