package viewer

import (
	"log/slog"
	"strings"

	"cogentcore.org/core/math32"
	strip "github.com/grokify/html-strip-tags-go"
	"github.com/philipparndt/gopano/internal/camera"
	"github.com/philipparndt/gopano/internal/pick"
	"github.com/philipparndt/gopano/internal/scene"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/tour"
)

const (
	// a pointer that moved further than this between down and up is a drag
	clickTolerance = 5

	// OverlayRadius is the hit radius of a hotpoint overlay in pixels
	OverlayRadius = 16
)

// InputKind tells what an InputEvent carries
type InputKind int

const (
	PointerDown InputKind = iota
	PointerMove
	PointerUp
	Wheel
	KeyDown
)

// InputEvent is a host independent input event. Positions are viewport
// pixels with the origin top left.
type InputEvent struct {
	Kind   InputKind
	X, Y   float32
	Button camera.Button
	// Delta is the wheel movement, positive towards the user
	Delta float32
	// Key is a key code such as "ArrowLeft"
	Key string
}

type pointerState struct {
	down           bool
	button         camera.Button
	startX, startY float32
	lastX, lastY   float32
	moved          bool
}

// HandleInput dispatches an event and reports whether it was used
func (v *Viewer) HandleInput(e InputEvent) bool {
	switch e.Kind {
	case PointerDown:
		v.pointerDown(e.X, e.Y, e.Button)
	case PointerMove:
		v.pointerMove(e.X, e.Y)
	case PointerUp:
		v.pointerUp(e.X, e.Y, e.Button)
	case Wheel:
		v.rotate.pause()
		v.Camera.Wheel(e.Delta)
	case KeyDown:
		v.rotate.pause()
		return v.Camera.HandleKey(e.Key)
	default:
		return false
	}
	return true
}

func (v *Viewer) pointerDown(x, y float32, b camera.Button) {
	v.pointer = pointerState{down: true, button: b, startX: x, startY: y, lastX: x, lastY: y}
	v.rotate.pause()
}

func (v *Viewer) pointerMove(x, y float32) {
	p := &v.pointer
	if !p.down {
		return
	}
	if math32.Abs(x-p.startX) > clickTolerance || math32.Abs(y-p.startY) > clickTolerance {
		p.moved = true
	}
	v.Camera.Drag(p.button, x-p.lastX, y-p.lastY)
	p.lastX, p.lastY = x, y
}

func (v *Viewer) pointerUp(x, y float32, b camera.Button) {
	p := v.pointer
	v.pointer = pointerState{}
	v.rotate.pause()
	if !p.down || p.moved || b != camera.ButtonLeft {
		return
	}

	if n, ok := v.OverlayAt(x, y); ok {
		if hp, ok := n.UserData.(tour.Hotpoint); ok {
			v.HotpointClick.Publish(hp)
		}
		return
	}

	click := Click{X: x, Y: y}
	if hit, ok := v.PickAt(x, y); ok {
		point := hit.Point
		click.Point = &point
		eye := v.Camera.Position()
		slog.Info("clicked",
			"component", "viewer",
			"point", geometry.Format(point),
			"camera", geometry.Format(eye),
			"direction", geometry.Format(point.Sub(eye).Normal()))
	}
	v.MouseClick.Publish(click)
}

// OverlayLabel turns the HTML of a hotpoint into a single line of text for
// hosts that cannot lay out markup
func OverlayLabel(html string) string {
	return strings.Join(strings.Fields(strip.StripTags(html)), " ")
}

// OverlayAt returns the visible hotpoint overlay closest to the pixel,
// within OverlayRadius
func (v *Viewer) OverlayAt(x, y float32) (*scene.Node, bool) {
	var best *scene.Node
	bestDist := float32(OverlayRadius)
	for _, n := range v.Viewpoints.Overlays() {
		s, ok := v.Camera.ToScreen(n.WorldPosition())
		if !ok {
			continue
		}
		d := math32.Vec2(s.X-x, s.Y-y).Length()
		if d <= bestDist {
			best, bestDist = n, d
		}
	}
	return best, best != nil
}

// PickAt returns the nearest scene point under the pixel
func (v *Viewer) PickAt(x, y float32) (pick.Hit, bool) {
	w, h := v.Camera.Size()
	ndc := geometry.ScreenToNDC(x, y, float32(w), float32(h))
	return pick.PickNDC(v.Camera, ndc, []*scene.Node{v.Scene.Root}, pick.AllLayers)
}
