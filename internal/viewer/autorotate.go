package viewer

import "cogentcore.org/core/math32"

// autoRotate turns the camera slowly while nobody interacts. Any input
// pauses it; it resumes after delay seconds without input.
type autoRotate struct {
	enabled bool
	running bool
	speed   float32
	delay   float32
	idle    float32
}

func (a *autoRotate) pause() {
	a.running = false
	a.idle = 0
}

func (a *autoRotate) advance(v *Viewer, dt float32) {
	if !a.running {
		a.idle += dt
		if a.idle < a.delay {
			return
		}
		a.running = true
	}
	if !a.enabled {
		return
	}
	c := v.Camera.Controls
	c.SetAzimuth(c.Azimuth()-2*math32.Pi/3600*a.speed, false)
	v.dirty = true
}

// SetAutoRotateEnabled turns auto rotation on or off
func (v *Viewer) SetAutoRotateEnabled(enable bool) { v.rotate.enabled = enable }

// AutoRotateEnabled reports whether auto rotation starts after idling
func (v *Viewer) AutoRotateEnabled() bool { return v.rotate.enabled }

// SetAutoRotateSpeed sets the speed; 1 is one turn per 3600 frames
func (v *Viewer) SetAutoRotateSpeed(speed float32) { v.rotate.speed = speed }

// AutoRotating reports whether the camera is currently auto rotating
func (v *Viewer) AutoRotating() bool { return v.rotate.enabled && v.rotate.running }
