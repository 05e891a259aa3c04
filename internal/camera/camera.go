// Package camera drives the viewer camera: projection switching between
// perspective and orthographic, navigation presets, guarded fly-to
// animation and near/far adjustment from scene bounds.
package camera

import (
	"errors"
	"fmt"
	"log/slog"

	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/pkg/geometry"
)

// ErrDegenerate is wrapped by errors for camera input that has no
// meaningful view, such as an eye on its own target
var ErrDegenerate = errors.New("degenerate camera input")

// Projection is the kind of camera lens
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

const (
	defaultFov = 45
	// frustumSize is the height of the orthographic frustum after a resize
	frustumSize = 50
	// orthoDistance is the orbit distance used while orthographic
	orthoDistance = 200
	// adjustFactor relates the scene diagonal to near and far
	adjustFactor = 5
	// lookOffset is the target distance used to express a direction
	lookOffset = 1e-5
	// keyRotation is the angle an arrow key rotates by
	keyRotation = 0.1
)

// lens holds the clip planes of one camera
type lens struct {
	near, far float32
}

// Manager owns a perspective and an orthographic camera sharing one set of
// controls. It is used from the render loop only.
type Manager struct {
	Controls *Controls

	projection  Projection
	perspective lens
	ortho       lens
	// orthographic frustum half extents
	orthoHalfW, orthoHalfH float32

	fov           float32
	width, height int
	up            math32.Vector3

	modes  map[NavigationMode]Mode
	active Mode

	keyControl bool

	previousDistance           float32
	previousAzimuthRotateSpeed float32
	previousPolarRotateSpeed   float32
	previousDollySpeed         float32
	previousTruckSpeed         float32
	previousMouseLeft          Action
}

// New creates a perspective camera for a viewport of width x height pixels
// in panorama mode
func New(width, height int) *Manager {
	m := &Manager{
		Controls:                   NewControls(),
		perspective:                lens{near: 0.1, far: 2000},
		ortho:                      lens{near: 0.1, far: 1000},
		fov:                        defaultFov,
		up:                         math32.Vec3(0, 1, 0),
		keyControl:                 true,
		previousDistance:           -1,
		previousAzimuthRotateSpeed: 1,
		previousPolarRotateSpeed:   1,
		previousDollySpeed:         1,
		previousTruckSpeed:         2,
		previousMouseLeft:          ActionNone,
		modes: map[NavigationMode]Mode{
			ModePanorama: panoramaMode{},
			ModeOrbit:    orbitMode{},
		},
	}
	m.Resize(width, height)
	m.active = m.modes[ModePanorama]
	m.active.SetupControl(m)
	return m
}

// RegisterMode adds or replaces a navigation preset
func (m *Manager) RegisterMode(mode Mode) {
	m.modes[mode.Mode()] = mode
}

// NavigationMode returns the active preset
func (m *Manager) NavigationMode() NavigationMode { return m.active.Mode() }

// SetNavigationMode switches to a registered preset
func (m *Manager) SetNavigationMode(mode NavigationMode) error {
	if m.active.Mode() == mode {
		return nil
	}
	next, ok := m.modes[mode]
	if !ok {
		slog.Warn("unknown navigation mode", "component", "camera", "mode", mode)
		return fmt.Errorf("unknown navigation mode %s", mode)
	}
	if m.projection == Orthographic && !next.Orthographic() {
		m.SetProjection(Perspective)
	}
	m.active = next
	m.active.SetupControl(m)
	return nil
}

// Projection returns the active projection
func (m *Manager) Projection() Projection { return m.projection }

// SetProjection switches the active camera. The orthographic frustum is
// sized to what the perspective camera shows at the target distance.
func (m *Manager) SetProjection(p Projection) {
	if m.projection == p {
		return
	}
	if p == Orthographic {
		if !m.active.Orthographic() {
			slog.Warn("orthographic camera not supported", "component", "camera", "mode", m.active.Mode())
			return
		}
		width, height := m.viewDims()
		m.previousDistance = m.Controls.Distance()
		m.Controls.DollyTo(orthoDistance, false)
		m.orthoHalfW, m.orthoHalfH = width/2, height/2
		m.Controls.Buttons.Wheel = ActionZoom
		m.Controls.ZoomTo(1, false)
		m.projection = Orthographic
		return
	}

	m.Controls.Buttons.Wheel = ActionDolly
	if m.previousDistance > 0 {
		m.Controls.DollyTo(m.previousDistance, false)
	}
	m.Controls.ZoomTo(1, false)
	m.projection = Perspective
}

// viewDims returns the size of the perspective view plane at the target
func (m *Manager) viewDims() (width, height float32) {
	depth := m.Controls.Target().Sub(m.Controls.Position()).Dot(m.Controls.Direction())
	height = depth * 2 * math32.Tan(math32.DegToRad(m.fov)/2)
	return height * m.Aspect(), height
}

// Resize updates the viewport size
func (m *Manager) Resize(width, height int) {
	m.width, m.height = max(width, 1), max(height, 1)
	m.orthoHalfW = frustumSize * m.Aspect() / 2
	m.orthoHalfH = frustumSize / 2
}

// Size returns the viewport size in pixels
func (m *Manager) Size() (width, height int) { return m.width, m.height }

// Aspect returns width over height
func (m *Manager) Aspect() float32 {
	return float32(m.width) / float32(m.height)
}

// Fov returns the vertical field of view of the perspective camera in degrees
func (m *Manager) Fov() float32 { return m.fov }

// SetFov sets the vertical field of view in degrees
func (m *Manager) SetFov(deg float32) {
	if deg > 0 && deg < 180 {
		m.fov = deg
	}
}

func (m *Manager) lens() *lens {
	if m.projection == Orthographic {
		return &m.ortho
	}
	return &m.perspective
}

// Near returns the near plane of the active camera
func (m *Manager) Near() float32 { return m.lens().near }

// Far returns the far plane of the active camera
func (m *Manager) Far() float32 { return m.lens().far }

// ClipPlanes returns near and far of the active lens in the precision
// renderers take them
func (m *Manager) ClipPlanes() (near, far float64) {
	l := m.lens()
	return float64(l.near), float64(l.far)
}

// SetNearFar sets the clip planes of the active camera
func (m *Manager) SetNearFar(near, far float32) error {
	if !(near > 0) || !(far > near) || math32.IsInf(far, 0) {
		return fmt.Errorf("%w: near %v far %v", ErrDegenerate, near, far)
	}
	l := m.lens()
	l.near, l.far = near, far
	return nil
}

// Up returns the camera up vector
func (m *Manager) Up() math32.Vector3 { return m.up }

// Position returns the camera position
func (m *Manager) Position() math32.Vector3 { return m.Controls.Position() }

// Target returns the point the camera orbits
func (m *Manager) Target() math32.Vector3 { return m.Controls.Target() }

// Direction returns the unit view direction
func (m *Manager) Direction() math32.Vector3 { return m.Controls.Direction() }

// Zoom returns the zoom factor
func (m *Manager) Zoom() float32 { return m.Controls.Zoom() }

// ZoomTo animates to a zoom factor within the zoom range
func (m *Manager) ZoomTo(zoom float32, transition bool) {
	m.Controls.ZoomTo(zoom, transition)
}

// SetZoomRange limits zooming
func (m *Manager) SetZoomRange(min, max float32) {
	m.Controls.MinZoom, m.Controls.MaxZoom = min, max
}

// EnableControl turns user input handling on or off
func (m *Manager) EnableControl(enable bool) { m.Controls.Enabled = enable }

// EnableKeyControl turns arrow key rotation on or off
func (m *Manager) EnableKeyControl(enable bool) { m.keyControl = enable }

// Update advances damped motion and reports whether the camera moved
func (m *Manager) Update(dt float32) bool {
	return m.Controls.Update(dt)
}

// SetPositionAndDirection moves the camera to pos looking along dir. A nil
// dir keeps the current direction.
func (m *Manager) SetPositionAndDirection(pos math32.Vector3, dir *math32.Vector3, transition bool) error {
	d := m.Direction()
	if dir != nil {
		d = *dir
	}
	if !geometry.IsFinite(pos) || !geometry.IsFinite(d) || d.Length() == 0 {
		slog.Error("invalid camera position or direction", "component", "camera", "position", geometry.Format(pos), "direction", geometry.Format(d))
		return fmt.Errorf("%w: position %s direction %s", ErrDegenerate, geometry.Format(pos), geometry.Format(d))
	}
	m.Controls.SetEyeDirection(pos, d, lookOffset, transition)
	return nil
}

// LookAt turns the camera in place towards p
func (m *Manager) LookAt(p math32.Vector3, transition bool) error {
	eye := m.Position()
	dir := p.Sub(eye)
	return m.SetPositionAndDirection(eye, &dir, transition)
}

// FlyTo animates the camera to position looking at lookAt. Equal or
// non-finite input is rejected without touching the camera. A position
// outside the near/far range is moved along the view direction to the
// nearest bound.
func (m *Manager) FlyTo(position, lookAt math32.Vector3) error {
	if position == lookAt {
		slog.Error("camera position and lookAt cannot be the same", "component", "camera", "position", geometry.Format(position))
		return fmt.Errorf("%w: position equals lookAt", ErrDegenerate)
	}
	if !geometry.IsFinite(position) || !geometry.IsFinite(lookAt) {
		slog.Error("invalid position or lookAt", "component", "camera")
		return fmt.Errorf("%w: non-finite position or lookAt", ErrDegenerate)
	}

	l := m.lens()
	dist := position.DistanceTo(lookAt)
	dir := position.Sub(lookAt).Normal()
	switch {
	case dist < l.near:
		position = lookAt.Add(dir.MulScalar(l.near))
		slog.Warn("camera could be too close to see the object", "component", "camera", "distance", dist, "near", l.near)
	case dist > l.far:
		position = lookAt.Add(dir.MulScalar(l.far))
		slog.Warn("camera could be too far to see the object", "component", "camera", "distance", dist, "far", l.far)
	}
	m.Controls.SetLookAt(position, lookAt, true)
	return nil
}

// FlyToBox fits the bounding sphere of box into the view
func (m *Manager) FlyToBox(box math32.Box3) error {
	if box.IsEmpty() {
		return fmt.Errorf("%w: empty box", ErrDegenerate)
	}
	return m.FitToSphere(box.GetBoundingSphere())
}

// Bounded is anything with a world space bounding box
type Bounded interface {
	WorldBounds() math32.Box3
}

// FlyToObject fits one or more objects into the view
func (m *Manager) FlyToObject(objects ...Bounded) error {
	box := math32.B3Empty()
	for _, o := range objects {
		b := o.WorldBounds()
		if b.IsEmpty() {
			continue
		}
		box.ExpandByPoint(b.Min)
		box.ExpandByPoint(b.Max)
	}
	return m.FlyToBox(box)
}

// FitToSphere animates the camera so that the sphere fills the view
func (m *Manager) FitToSphere(s math32.Sphere) error {
	if !(s.Radius > 0) || !geometry.IsFinite(s.Center) {
		return fmt.Errorf("%w: sphere radius %v", ErrDegenerate, s.Radius)
	}
	if m.projection == Orthographic {
		diameter := 2 * s.Radius
		m.Controls.ZoomTo(min(2*m.orthoHalfW/diameter, 2*m.orthoHalfH/diameter), true)
		m.Controls.MoveTo(s.Center, true)
		return nil
	}
	m.Controls.MoveTo(s.Center, true)
	m.Controls.DollyTo(m.DistanceToFitSphere(s.Radius), true)
	return nil
}

// DistanceToFitSphere returns the camera distance at which a sphere of
// radius fills the narrower field of view
func (m *Manager) DistanceToFitSphere(radius float32) float32 {
	vFov := math32.DegToRad(m.fov)
	hFov := math32.Atan(math32.Tan(vFov/2)*m.Aspect()) * 2
	fov := vFov
	if m.Aspect() < 1 {
		fov = hFov
	}
	return radius / math32.Sin(fov/2)
}

// AdjustCameraByBbox widens near and far when the box would be clipped
func (m *Manager) AdjustCameraByBbox(box math32.Box3) {
	if box.IsEmpty() {
		return
	}
	l := m.lens()
	size := box.Size().Length()
	maxNear := size / adjustFactor
	minFar := size * adjustFactor
	if l.near > maxNear || l.far < minFar {
		slog.Info("adjusting camera clip planes", "component", "camera", "bboxDiagonal", size)
		if l.near > maxNear {
			slog.Warn("camera near is too big", "component", "camera", "near", l.near, "max", maxNear)
			l.near = maxNear
		}
		if l.far < minFar {
			slog.Warn("camera far is too small", "component", "camera", "far", l.far, "min", minFar)
			l.far = minFar
		}
	}
	m.active.AdjustCameraByBbox(m, box)
	m.Controls.Update(0)
}

// RotateEnabled reports whether rotating has a non-zero speed
func (m *Manager) RotateEnabled() bool {
	return m.Controls.AzimuthRotateSpeed != 0 || m.Controls.PolarRotateSpeed != 0
}

// EnableRotate restores or zeroes the rotate speeds
func (m *Manager) EnableRotate(enable bool) {
	c := m.Controls
	if enable {
		c.AzimuthRotateSpeed = m.previousAzimuthRotateSpeed
		c.PolarRotateSpeed = m.previousPolarRotateSpeed
		return
	}
	if c.AzimuthRotateSpeed != 0 {
		m.previousAzimuthRotateSpeed = c.AzimuthRotateSpeed
	}
	if c.PolarRotateSpeed != 0 {
		m.previousPolarRotateSpeed = c.PolarRotateSpeed
	}
	c.AzimuthRotateSpeed = 0
	c.PolarRotateSpeed = 0
}

// EnableZoom restores or zeroes the zoom speed
func (m *Manager) EnableZoom(enable bool) {
	c := m.Controls
	if enable {
		c.DollySpeed = m.previousDollySpeed
		return
	}
	if c.DollySpeed != 0 {
		m.previousDollySpeed = c.DollySpeed
	}
	c.DollySpeed = 0
}

// EnablePan restores or zeroes the pan speed
func (m *Manager) EnablePan(enable bool) {
	c := m.Controls
	if enable {
		c.TruckSpeed = m.previousTruckSpeed
		return
	}
	if c.TruckSpeed != 0 {
		m.previousTruckSpeed = c.TruckSpeed
	}
	c.TruckSpeed = 0
}

// EnableMouseLeft restores or clears the left button action
func (m *Manager) EnableMouseLeft(enable bool) {
	c := m.Controls
	if enable {
		c.Buttons.Left = m.previousMouseLeft
		return
	}
	if c.Buttons.Left != ActionNone {
		m.previousMouseLeft = c.Buttons.Left
	}
	c.Buttons.Left = ActionNone
}
