package camera

import (
	"cogentcore.org/core/math32"
	"github.com/charmbracelet/harmonica"
	"github.com/philipparndt/gopano/pkg/geometry"
)

// Action is what a pointer button or the wheel does
type Action int

const (
	ActionNone Action = iota
	ActionRotate
	ActionTruck
	ActionDolly
	ActionZoom
)

// Button identifies a pointer button
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// MouseButtons maps buttons and the wheel to actions
type MouseButtons struct {
	Left, Middle, Right, Wheel Action
}

const (
	// springFrequency controls how fast damped motion settles
	springFrequency = 20.0
	springDamping   = 1.0
	restThreshold   = 1e-4
)

// axis is one smoothed scalar: value follows goal through a spring
type axis struct {
	value, goal, vel float64
}

func (a *axis) set(v float32, transition bool) {
	a.goal = float64(v)
	if !transition {
		a.value = a.goal
		a.vel = 0
	}
}

func (a *axis) update(s harmonica.Spring) bool {
	if a.value == a.goal && a.vel == 0 {
		return false
	}
	a.value, a.vel = s.Update(a.value, a.vel, a.goal)
	if abs(a.goal-a.value) < restThreshold && abs(a.vel) < restThreshold {
		a.value = a.goal
		a.vel = 0
	}
	return true
}

func (a *axis) get() float32 { return float32(a.value) }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Controls orbits a camera around a target. The camera position is kept in
// spherical coordinates relative to the target with Y up; every change is
// applied to a goal that the current state follows with a critically
// damped spring when a transition is requested.
type Controls struct {
	Enabled bool

	AzimuthRotateSpeed float32
	PolarRotateSpeed   float32
	DollySpeed         float32
	TruckSpeed         float32
	Buttons            MouseButtons

	MinPolarAngle, MaxPolarAngle float32
	MinDistance, MaxDistance     float32
	MinZoom, MaxZoom             float32

	target  [3]axis
	radius  axis
	azimuth axis
	polar   axis
	zoom    axis
}

// NewControls returns controls looking at the origin from (10, 10, 10)
func NewControls() *Controls {
	c := &Controls{
		Enabled:            true,
		AzimuthRotateSpeed: 1,
		PolarRotateSpeed:   1,
		DollySpeed:         1,
		TruckSpeed:         2,
		Buttons:            MouseButtons{Left: ActionRotate, Middle: ActionDolly, Right: ActionTruck, Wheel: ActionDolly},
		MinPolarAngle:      0,
		MaxPolarAngle:      math32.Pi,
		MinDistance:        1e-6,
		MaxDistance:        math32.Infinity,
		MinZoom:            0.01,
		MaxZoom:            math32.Infinity,
	}
	c.zoom.set(1, false)
	c.SetLookAt(math32.Vec3(10, 10, 10), math32.Vector3{}, false)
	return c
}

// Target returns the current orbit target
func (c *Controls) Target() math32.Vector3 {
	return math32.Vec3(c.target[0].get(), c.target[1].get(), c.target[2].get())
}

// Position returns the current camera position
func (c *Controls) Position() math32.Vector3 {
	return c.Target().Add(geometry.FromSpherical(c.radius.get(), c.azimuth.get(), c.polar.get()))
}

// Direction returns the unit view direction
func (c *Controls) Direction() math32.Vector3 {
	return geometry.FromSpherical(1, c.azimuth.get(), c.polar.get()).Negate()
}

// Distance returns the current distance between camera and target
func (c *Controls) Distance() float32 { return c.radius.get() }

// Azimuth returns the current azimuth angle
func (c *Controls) Azimuth() float32 { return c.azimuth.get() }

// Polar returns the current polar angle
func (c *Controls) Polar() float32 { return c.polar.get() }

// Zoom returns the current zoom factor
func (c *Controls) Zoom() float32 { return c.zoom.get() }

// SetLookAt places the camera at eye looking at target
func (c *Controls) SetLookAt(eye, target math32.Vector3, transition bool) {
	r, az, polar := geometry.Spherical(eye.Sub(target))
	c.setTarget(target, transition)
	c.setSpherical(r, az, polar, transition)
}

// Restore jumps to eye, target and zoom without applying the distance,
// angle or zoom limits
func (c *Controls) Restore(eye, target math32.Vector3, zoom float32) {
	r, az, polar := geometry.Spherical(eye.Sub(target))
	c.setTarget(target, false)
	c.radius.set(r, false)
	c.azimuth.set(az, false)
	c.polar.set(polar, false)
	c.zoom.set(zoom, false)
}

// SetEyeDirection places the camera at eye looking along dir with the
// target at distance r. The angles come from dir directly, so a tiny r
// keeps the direction exact.
func (c *Controls) SetEyeDirection(eye, dir math32.Vector3, r float32, transition bool) {
	dir = dir.Normal()
	_, az, polar := geometry.Spherical(dir.Negate())
	c.setTarget(eye.Add(dir.MulScalar(r)), transition)
	c.setSpherical(r, az, polar, transition)
}

// SetTarget moves the target keeping the camera position
func (c *Controls) SetTarget(target math32.Vector3, transition bool) {
	c.SetLookAt(c.goalPosition(), target, transition)
}

// SetPosition moves the camera keeping the target
func (c *Controls) SetPosition(pos math32.Vector3, transition bool) {
	c.SetLookAt(pos, c.goalTarget(), transition)
}

// MoveTo moves the target and the camera together
func (c *Controls) MoveTo(target math32.Vector3, transition bool) {
	c.setTarget(target, transition)
}

// Rotate adds to the azimuth and polar angles
func (c *Controls) Rotate(dAzimuth, dPolar float32, transition bool) {
	c.setSpherical(float32(c.radius.goal), float32(c.azimuth.goal)+dAzimuth, float32(c.polar.goal)+dPolar, transition)
}

// SetAzimuth sets the azimuth angle
func (c *Controls) SetAzimuth(az float32, transition bool) {
	c.azimuth.set(az, transition)
}

// DollyTo sets the distance to the target
func (c *Controls) DollyTo(distance float32, transition bool) {
	c.radius.set(geometry.Clamp(distance, c.MinDistance, c.MaxDistance), transition)
}

// ZoomTo sets the zoom factor
func (c *Controls) ZoomTo(zoom float32, transition bool) {
	c.zoom.set(geometry.Clamp(zoom, c.MinZoom, c.MaxZoom), transition)
}

// Truck moves camera and target in the view plane
func (c *Controls) Truck(dx, dy float32, transition bool) {
	dir := c.Direction()
	right := dir.Cross(math32.Vec3(0, 1, 0)).Normal()
	up := right.Cross(dir).Normal()
	offset := right.MulScalar(dx).Add(up.MulScalar(dy))
	c.setTarget(c.goalTarget().Add(offset), transition)
}

// Update advances motion by dt seconds and reports whether the camera moved
func (c *Controls) Update(dt float32) bool {
	if dt <= 0 {
		return false
	}
	s := harmonica.NewSpring(float64(dt), springFrequency, springDamping)
	moved := false
	for i := range c.target {
		moved = c.target[i].update(s) || moved
	}
	moved = c.radius.update(s) || moved
	moved = c.azimuth.update(s) || moved
	moved = c.polar.update(s) || moved
	moved = c.zoom.update(s) || moved
	return moved
}

// Settled reports whether no motion is pending
func (c *Controls) Settled() bool {
	for _, a := range []*axis{&c.target[0], &c.target[1], &c.target[2], &c.radius, &c.azimuth, &c.polar, &c.zoom} {
		if a.value != a.goal || a.vel != 0 {
			return false
		}
	}
	return true
}

// Snap jumps to the goal state
func (c *Controls) Snap() {
	for _, a := range []*axis{&c.target[0], &c.target[1], &c.target[2], &c.radius, &c.azimuth, &c.polar, &c.zoom} {
		a.value = a.goal
		a.vel = 0
	}
}

func (c *Controls) setTarget(t math32.Vector3, transition bool) {
	c.target[0].set(t.X, transition)
	c.target[1].set(t.Y, transition)
	c.target[2].set(t.Z, transition)
}

func (c *Controls) setSpherical(r, az, polar float32, transition bool) {
	// take the short way round
	cur := float32(c.azimuth.value)
	for az-cur > math32.Pi {
		az -= 2 * math32.Pi
	}
	for cur-az > math32.Pi {
		az += 2 * math32.Pi
	}
	c.radius.set(geometry.Clamp(r, c.MinDistance, c.MaxDistance), transition)
	c.azimuth.set(az, transition)
	c.polar.set(geometry.Clamp(polar, c.MinPolarAngle, c.MaxPolarAngle), transition)
}

func (c *Controls) goalTarget() math32.Vector3 {
	return math32.Vec3(float32(c.target[0].goal), float32(c.target[1].goal), float32(c.target[2].goal))
}

func (c *Controls) goalPosition() math32.Vector3 {
	return c.goalTarget().Add(geometry.FromSpherical(float32(c.radius.goal), float32(c.azimuth.goal), float32(c.polar.goal)))
}
