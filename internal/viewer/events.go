package viewer

import (
	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/internal/camera"
	"github.com/philipparndt/gopano/internal/event"
	"github.com/philipparndt/gopano/pkg/tour"
)

// Frame describes one executed tick
type Frame struct {
	Delta float32
	Count uint64
}

// Click is a left click that was not a drag
type Click struct {
	X, Y float32
	// Point is the picked scene point, nil when nothing was hit
	Point *math32.Vector3
}

// Events are the topics a viewer publishes on
type Events struct {
	HotpointClick event.Topic[tour.Hotpoint]
	MouseClick    event.Topic[Click]
	BeforeRender  event.Topic[Frame]
	AfterRender   event.Topic[Frame]
	OnAnimate     event.Topic[Frame]
	CameraChange  event.Topic[camera.Projection]
	// ControlChange fires when a camera motion came to rest
	ControlChange event.Topic[camera.Info]
}

func (e *Events) clear() {
	e.HotpointClick.Clear()
	e.MouseClick.Clear()
	e.BeforeRender.Clear()
	e.AfterRender.Clear()
	e.OnAnimate.Clear()
	e.CameraChange.Clear()
	e.ControlChange.Clear()
}
