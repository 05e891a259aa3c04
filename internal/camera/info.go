package camera

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/pkg/geometry"
)

// Info is a transferable snapshot of the camera, used for the home view
type Info struct {
	Near float32    `json:"near"`
	Far  float32    `json:"far"`
	Zoom float32    `json:"zoom"`
	Eye  [3]float32 `json:"eye"`
	Up   [3]float32 `json:"up"`
	Look [3]float32 `json:"look"`
}

// Info returns the current camera state
func (m *Manager) Info() Info {
	l := m.lens()
	return Info{
		Near: l.near,
		Far:  l.far,
		Zoom: m.Zoom(),
		Eye:  geometry.ToArray(m.Position()),
		Up:   geometry.ToArray(m.up),
		Look: geometry.ToArray(m.Target()),
	}
}

// SetInfo applies a snapshot immediately, bypassing the zoom and angle
// limits of the navigation mode so that Info returns it unchanged. Zero
// near, far and zoom and a zero up vector select the defaults 0.1, 100000,
// 1 and +Y.
func (m *Manager) SetInfo(info Info) error {
	near, far, zoom := info.Near, info.Far, info.Zoom
	if near == 0 {
		near = 0.1
	}
	if far == 0 {
		far = 100000
	}
	if zoom == 0 {
		zoom = 1
	}
	up := geometry.FromArray(info.Up)
	if up == (math32.Vector3{}) {
		up = math32.Vec3(0, 1, 0)
	}
	eye, look := geometry.FromArray(info.Eye), geometry.FromArray(info.Look)

	switch {
	case !geometry.IsFinite(eye) || !geometry.IsFinite(look) || !geometry.IsFinite(up):
		return fmt.Errorf("%w: non-finite camera info", ErrDegenerate)
	case eye == look:
		return fmt.Errorf("%w: eye equals look", ErrDegenerate)
	case !(zoom > 0):
		return fmt.Errorf("%w: zoom %v", ErrDegenerate, zoom)
	}
	if err := m.SetNearFar(near, far); err != nil {
		return err
	}
	m.up = up
	m.Controls.Restore(eye, look, zoom)
	return nil
}
