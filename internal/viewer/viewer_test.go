package viewer

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/internal/camera"
	"github.com/philipparndt/gopano/pkg/tour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blankSource struct{}

func (blankSource) Get(context.Context, string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func newViewer(opts Options) *Viewer {
	opts.Width, opts.Height = 800, 600
	if opts.Source == nil {
		opts.Source = blankSource{}
	}
	return New(opts)
}

func TestBusyCounter(t *testing.T) {
	v := newViewer(Options{})
	for range 5 {
		v.IncreaseBusy()
	}
	assert.Equal(t, 5, v.Busy())
	for range 5 {
		v.DecreaseBusy()
	}
	assert.Equal(t, 0, v.Busy())

	v.DecreaseBusy()
	assert.Equal(t, 0, v.Busy())
}

func TestTickRendersOnlyWhenDirty(t *testing.T) {
	v := newViewer(Options{FPS: 60})
	var before, after, animate int
	v.BeforeRender.Subscribe(func(Frame) { before++ })
	v.AfterRender.Subscribe(func(Frame) { after++ })
	v.OnAnimate.Subscribe(func(Frame) { animate++ })
	draws := 0
	draw := func() { draws++ }

	// faster than the frame interval
	assert.False(t, v.Tick(0.005, draw))
	assert.Equal(t, 0, animate)

	assert.True(t, v.Tick(0.02, draw))
	assert.Equal(t, 1, draws)
	assert.Equal(t, 1, before)
	assert.Equal(t, 1, after)

	v.Camera.Controls.Snap()
	assert.False(t, v.Tick(0.02, draw))
	assert.Equal(t, 1, draws)
	assert.Equal(t, 2, animate)

	v.Invalidate()
	assert.True(t, v.Tick(0.02, draw))
	assert.Equal(t, 2, draws)
}

func TestControlChangeWhenMotionEnds(t *testing.T) {
	v := newViewer(Options{})
	v.Camera.Controls.Snap()
	var changes []camera.Info
	v.ControlChange.Subscribe(func(i camera.Info) { changes = append(changes, i) })

	v.Camera.Controls.Rotate(0.5, 0, true)
	for range 500 {
		v.Tick(0.02, nil)
	}
	require.Len(t, changes, 1)
	assert.Equal(t, v.Camera.Info(), changes[0])
}

func TestAutoRotate(t *testing.T) {
	v := newViewer(Options{AutoRotate: true, AutoRotateDelay: time.Second})
	v.Camera.Controls.Snap()
	az := v.Camera.Controls.Azimuth()

	v.Tick(0.5, nil)
	assert.Equal(t, az, v.Camera.Controls.Azimuth())
	assert.False(t, v.AutoRotating())

	v.Tick(0.6, nil)
	assert.True(t, v.AutoRotating())
	step := float32(2 * math32.Pi / 3600 * defaultAutoRotateSpeed)
	assert.InDelta(t, az-step, v.Camera.Controls.Azimuth(), 1e-5)

	// any input pauses until the delay passed again
	v.HandleInput(InputEvent{Kind: KeyDown, Key: "KeyA"})
	az = v.Camera.Controls.Azimuth()
	v.Tick(0.5, nil)
	assert.Equal(t, az, v.Camera.Controls.Azimuth())
	v.Tick(0.6, nil)
	assert.InDelta(t, az-step, v.Camera.Controls.Azimuth(), 1e-5)

	v.SetAutoRotateEnabled(false)
	assert.False(t, v.AutoRotateEnabled())
	az = v.Camera.Controls.Azimuth()
	v.Tick(0.1, nil)
	assert.Equal(t, az, v.Camera.Controls.Azimuth())
}

func TestHomeView(t *testing.T) {
	v := newViewer(Options{})
	require.NoError(t, v.GoToHomeView())

	home := camera.Info{Near: 0.1, Far: 1000, Zoom: 1, Eye: [3]float32{1, 2, 3}, Up: [3]float32{0, 1, 0}, Look: [3]float32{0, 0, 0}}
	v.SetHomeView(home)
	path := HomeViewPath(filepath.Join(t.TempDir(), "tour.yaml"))
	assert.Equal(t, "tour.yaml.home.json", filepath.Base(path))
	require.NoError(t, v.SaveHomeView(path))

	other := newViewer(Options{})
	ok, err := other.LoadHomeView(path)
	require.NoError(t, err)
	require.True(t, ok)
	got, ok := other.HomeView()
	require.True(t, ok)
	assert.Equal(t, home, got)

	require.NoError(t, other.GoToHomeView())
	eye := other.CameraInfo().Eye
	assert.InDelta(t, 1, eye[0], 1e-3)
	assert.InDelta(t, 2, eye[1], 1e-3)
	assert.InDelta(t, 3, eye[2], 1e-3)

	ok, err = newViewer(Options{}).LoadHomeView(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.False(t, ok)

	// saving without a home view removes the file
	require.NoError(t, newViewer(Options{}).SaveHomeView(path))
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type testPlugin struct {
	id          string
	installs    int
	uninstalled bool
}

func (p *testPlugin) ID() string { return p.id }

func (p *testPlugin) Install(*Viewer) error {
	p.installs++
	return nil
}

func (p *testPlugin) Uninstall(*Viewer) { p.uninstalled = true }

func TestPlugins(t *testing.T) {
	v := newViewer(Options{})
	a := &testPlugin{id: "a"}
	b := &testPlugin{id: "b"}
	require.NoError(t, v.AddPlugin(a))
	require.NoError(t, v.AddPlugin(b))
	require.NoError(t, v.AddPlugin(&testPlugin{id: "a"}))

	assert.Len(t, v.Plugins(), 2)
	assert.Equal(t, 1, a.installs)
	assert.Same(t, b, v.FindPlugin("b"))
	assert.Nil(t, v.FindPlugin("c"))

	v.RemovePlugin(a)
	assert.True(t, a.uninstalled)
	assert.Nil(t, v.FindPlugin("a"))

	v.ClearPlugins()
	assert.True(t, b.uninstalled)
	assert.Empty(t, v.Plugins())
}

func panoramaViewer(t *testing.T) *Viewer {
	t.Helper()
	v := newViewer(Options{})
	v.SetViewpoints([]*tour.Viewpoint{{
		ID:               "v1",
		InitialDirection: &[3]float32{0, 0, -1},
		Panoramas:        []tour.Panorama{{ID: "p1", Images: []string{"a.jpg"}}},
		Hotpoints: []tour.Hotpoint{
			{HotpointID: "h1", AnchorPosition: [3]float32{0, 0, -10}, HTML: "kitchen"},
		},
	}})
	require.NoError(t, v.ActivatePanorama(context.Background(), "v1", "p1", true))
	assert.Equal(t, 1, v.Busy())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, v.Viewpoints.Flush(ctx))
	v.Tick(0.6, nil)
	v.Camera.Controls.Snap()
	assert.Equal(t, 0, v.Busy())
	return v
}

func TestHotpointClick(t *testing.T) {
	v := panoramaViewer(t)
	var clicked []tour.Hotpoint
	v.HotpointClick.Subscribe(func(hp tour.Hotpoint) { clicked = append(clicked, hp) })
	var mouse []Click
	v.MouseClick.Subscribe(func(c Click) { mouse = append(mouse, c) })

	v.HandleInput(InputEvent{Kind: PointerDown, X: 400, Y: 300, Button: camera.ButtonLeft})
	v.HandleInput(InputEvent{Kind: PointerMove, X: 402, Y: 301})
	v.HandleInput(InputEvent{Kind: PointerUp, X: 402, Y: 301, Button: camera.ButtonLeft})

	require.Len(t, clicked, 1)
	assert.Equal(t, "h1", clicked[0].HotpointID)
	assert.Empty(t, mouse)
}

func TestClickPicksPanorama(t *testing.T) {
	v := panoramaViewer(t)
	var mouse []Click
	v.MouseClick.Subscribe(func(c Click) { mouse = append(mouse, c) })

	v.HandleInput(InputEvent{Kind: PointerDown, X: 100, Y: 100, Button: camera.ButtonLeft})
	v.HandleInput(InputEvent{Kind: PointerUp, X: 100, Y: 100, Button: camera.ButtonLeft})

	require.Len(t, mouse, 1)
	require.NotNil(t, mouse[0].Point)
	assert.InDelta(t, 100, mouse[0].Point.Length(), 1)
}

func TestDragIsNotAClick(t *testing.T) {
	v := panoramaViewer(t)
	var clicked, mouse int
	v.HotpointClick.Subscribe(func(tour.Hotpoint) { clicked++ })
	v.MouseClick.Subscribe(func(Click) { mouse++ })

	v.HandleInput(InputEvent{Kind: PointerDown, X: 400, Y: 300, Button: camera.ButtonLeft})
	v.HandleInput(InputEvent{Kind: PointerMove, X: 420, Y: 300})
	v.HandleInput(InputEvent{Kind: PointerUp, X: 400, Y: 300, Button: camera.ButtonLeft})

	// right clicks are ignored as well
	v.HandleInput(InputEvent{Kind: PointerDown, X: 400, Y: 300, Button: camera.ButtonRight})
	v.HandleInput(InputEvent{Kind: PointerUp, X: 400, Y: 300, Button: camera.ButtonRight})

	assert.Zero(t, clicked)
	assert.Zero(t, mouse)
}

func TestLookToPosition(t *testing.T) {
	v := panoramaViewer(t)
	require.NoError(t, v.LookToPosition(math32.Vec3(10, 0, 0)))
	v.Camera.Controls.Snap()
	pos, dir := v.CameraPositionAndDirection()
	assert.InDelta(t, 0, pos.Length(), 1e-3)
	assert.InDelta(t, 1, dir.X, 1e-3)
}

func TestRenderInfo(t *testing.T) {
	v := panoramaViewer(t)
	info := v.RenderInfo()
	assert.Equal(t, 1, info.Overlays)
	assert.Equal(t, 1, info.Textures)
	assert.Positive(t, info.Meshes)
}

func TestCameraChangeOnProjection(t *testing.T) {
	v := newViewer(Options{})
	var got []camera.Projection
	v.CameraChange.Subscribe(func(p camera.Projection) { got = append(got, p) })

	// panorama mode has no orthographic camera
	v.SetProjection(camera.Orthographic)
	assert.Empty(t, got)

	require.NoError(t, v.Camera.SetNavigationMode(camera.ModeOrbit))
	v.SetProjection(camera.Orthographic)
	assert.Equal(t, []camera.Projection{camera.Orthographic}, got)
}

func TestOverlayLabel(t *testing.T) {
	assert.Equal(t, "door to kitchen", OverlayLabel("<b>door</b>\n <i>to  kitchen</i>"))
	assert.Equal(t, "", OverlayLabel("<img src=\"x.png\">"))
}
