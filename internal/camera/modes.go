package camera

import (
	"fmt"

	"cogentcore.org/core/math32"
)

// NavigationMode names a control preset
type NavigationMode int

const (
	// ModePanorama rotates in place around the viewpoint and zooms by
	// narrowing the field of view
	ModePanorama NavigationMode = iota
	// ModeOrbit orbits, dollies and pans freely, for inspecting the scene
	ModeOrbit
)

func (m NavigationMode) String() string {
	switch m {
	case ModePanorama:
		return "panorama"
	case ModeOrbit:
		return "orbit"
	}
	return fmt.Sprintf("NavigationMode(%d)", int(m))
}

// Mode configures the controls for a navigation style
type Mode interface {
	Mode() NavigationMode
	SetupControl(m *Manager)
	AdjustCameraByBbox(m *Manager, box math32.Box3)
	// Orthographic reports whether the mode supports an orthographic camera
	Orthographic() bool
}

type panoramaMode struct{}

func (panoramaMode) Mode() NavigationMode { return ModePanorama }
func (panoramaMode) Orthographic() bool   { return false }

func (panoramaMode) SetupControl(m *Manager) {
	c := m.Controls
	c.Buttons = MouseButtons{Left: ActionRotate, Middle: ActionNone, Right: ActionRotate, Wheel: ActionZoom}
	c.AzimuthRotateSpeed = -0.2
	c.PolarRotateSpeed = -0.2
	c.MinPolarAngle = math32.Pi * 0.05
	c.MaxPolarAngle = math32.Pi * 0.95
	c.MinZoom = 0.5
	c.MaxZoom = 2
	m.EnablePan(false)
}

func (panoramaMode) AdjustCameraByBbox(*Manager, math32.Box3) {}

type orbitMode struct{}

func (orbitMode) Mode() NavigationMode { return ModeOrbit }
func (orbitMode) Orthographic() bool   { return true }

func (orbitMode) SetupControl(m *Manager) {
	c := m.Controls
	c.Buttons = MouseButtons{Left: ActionRotate, Middle: ActionDolly, Right: ActionTruck, Wheel: ActionDolly}
	c.AzimuthRotateSpeed = 1
	c.PolarRotateSpeed = 1
	c.MinPolarAngle = 0
	c.MaxPolarAngle = math32.Pi
	c.MinZoom = 0.01
	c.MaxZoom = math32.Infinity
	m.EnablePan(true)
}

// AdjustCameraByBbox bounds dollying to a few times the box diagonal
func (orbitMode) AdjustCameraByBbox(m *Manager, box math32.Box3) {
	if box.IsEmpty() {
		return
	}
	m.Controls.MaxDistance = box.Size().Length() * adjustFactor
}
