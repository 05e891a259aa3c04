package pano

import (
	"math"
	"time"
)

const (
	// FadeTick is the resolution fades advance at
	FadeTick = 10 * time.Millisecond
	// DefaultFade is the duration used for a zero duration
	DefaultFade = time.Second

	fadeOutStartScale = 2
	fadeOutEndScale   = 3
)

type fadeDir int

const (
	fadingIn fadeDir = iota
	fadingOut
)

// fade is the progress of one transition. Opacity and scale are derived
// from the tick count so that the result does not depend on how dt is
// sliced.
type fade struct {
	dir   fadeDir
	ticks int
	total int
	// start opacity
	from float32
	// elapsed seconds since the fade started
	elapsed float64
}

func newFade(dir fadeDir, d time.Duration, from float32) *fade {
	if d <= 0 {
		d = DefaultFade
	}
	total := int(d / FadeTick)
	if total < 1 {
		total = 1
	}
	return &fade{dir: dir, total: total, from: from}
}

// Fading reports whether a fade is in progress
func (m *Mesh) Fading() bool { return m.fade != nil }

// FadeIn makes the mesh visible and raises its opacity from 0 to 1 over d.
// A fade in progress is finished first.
func (m *Mesh) FadeIn(d time.Duration) {
	if m.destroyed {
		return
	}
	m.finishFade()
	m.Node.Visible = true
	if len(m.materials) == 0 && m.thumb == nil {
		return
	}
	m.Node.RenderOrder = math.MaxInt
	m.setOpacity(0)
	m.fade = newFade(fadingIn, d, 0)
}

// FadeOut lowers the opacity to 0 over d while scaling the mesh from 2 to 3,
// which keeps it clear of a mesh fading in at the same place. A fade in
// progress is finished first.
func (m *Mesh) FadeOut(d time.Duration) {
	if m.destroyed {
		return
	}
	m.finishFade()
	m.Node.SetScale(fadeOutStartScale)
	m.Node.RenderOrder = 0
	m.fade = newFade(fadingOut, d, m.opacity)
}

// finishFade snaps an in-progress fade to its terminal state
func (m *Mesh) finishFade() {
	f := m.fade
	if f == nil {
		return
	}
	m.fade = nil
	switch f.dir {
	case fadingIn:
		m.Node.Visible = true
		m.setOpacity(1)
	case fadingOut:
		m.Node.Visible = false
		m.setOpacity(1)
		m.Node.SetScale(1)
	}
}

func (m *Mesh) advanceFade(dt float32) bool {
	f := m.fade
	f.elapsed += float64(dt)
	// the slack absorbs float error when dt is a multiple of a tick
	ticks := min(int(f.elapsed/FadeTick.Seconds()+1e-3), f.total)
	if ticks == f.ticks {
		return false
	}
	f.ticks = ticks

	p := float32(f.ticks) / float32(f.total)
	switch f.dir {
	case fadingIn:
		m.setOpacity(min(f.from+p, 1))
	case fadingOut:
		m.Node.SetScale(fadeOutStartScale + (fadeOutEndScale-fadeOutStartScale)*p)
		m.setOpacity(max(f.from-p, 0))
	}

	if f.ticks >= f.total {
		m.finishFade()
		if f.dir == fadingOut && m.disposeOnFadeOut {
			m.Destroy()
		}
	}
	return true
}
