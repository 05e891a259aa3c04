package camera

import (
	"cogentcore.org/core/math32"
)

// HandleKey rotates the camera for arrow key codes. It reports whether the
// key was used.
func (m *Manager) HandleKey(code string) bool {
	if !m.keyControl || !m.Controls.Enabled {
		return false
	}
	c := m.Controls
	switch code {
	case "ArrowLeft":
		c.Rotate(keyRotation, 0, true)
	case "ArrowRight":
		c.Rotate(-keyRotation, 0, true)
	case "ArrowUp":
		c.Rotate(0, keyRotation, true)
	case "ArrowDown":
		c.Rotate(0, -keyRotation, true)
	default:
		return false
	}
	return true
}

// Drag applies a pointer drag of dx, dy pixels with the given button
func (m *Manager) Drag(b Button, dx, dy float32) {
	c := m.Controls
	if !c.Enabled {
		return
	}
	var action Action
	switch b {
	case ButtonLeft:
		action = c.Buttons.Left
	case ButtonMiddle:
		action = c.Buttons.Middle
	case ButtonRight:
		action = c.Buttons.Right
	}
	h := float32(m.height)
	switch action {
	case ActionRotate:
		c.Rotate(-2*math32.Pi*c.AzimuthRotateSpeed*dx/h, -2*math32.Pi*c.PolarRotateSpeed*dy/h, false)
	case ActionTruck:
		if c.TruckSpeed == 0 {
			return
		}
		scale := m.PixelSizeInWorld() * c.TruckSpeed / 2
		c.Truck(-dx*scale, dy*scale, false)
	case ActionDolly:
		m.dolly(dy / h * 10)
	case ActionZoom:
		m.zoomBy(dy / h * 10)
	}
}

// Wheel applies a wheel movement, positive towards the user
func (m *Manager) Wheel(delta float32) {
	c := m.Controls
	if !c.Enabled {
		return
	}
	switch c.Buttons.Wheel {
	case ActionDolly:
		m.dolly(delta)
	case ActionZoom:
		m.zoomBy(delta)
	}
}

func (m *Manager) dolly(delta float32) {
	c := m.Controls
	if c.DollySpeed == 0 {
		return
	}
	scale := math32.Pow(0.95, -delta*c.DollySpeed)
	c.DollyTo(c.Distance()*scale, true)
}

func (m *Manager) zoomBy(delta float32) {
	c := m.Controls
	if c.DollySpeed == 0 {
		return
	}
	scale := math32.Pow(0.95, delta*c.DollySpeed)
	c.ZoomTo(c.Zoom()*scale, true)
}
