// Package viewer composes the scene, camera and viewpoint manager into a
// panorama viewer driven by a host render loop.
package viewer

import (
	"context"
	"image/color"
	"log/slog"
	"time"

	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/internal/camera"
	"github.com/philipparndt/gopano/internal/pano"
	"github.com/philipparndt/gopano/internal/scene"
	"github.com/philipparndt/gopano/internal/viewpoint"
	"github.com/philipparndt/gopano/pkg/tour"
)

const (
	defaultFPS             = 60
	defaultFov             = 75
	defaultAutoRotateSpeed = 2
	defaultAutoRotateDelay = 5 * time.Second
)

// ImageCache is the image store used by a viewer
type ImageCache interface {
	pano.ImageSource
	viewpoint.CacheRemover
	Clear(ctx context.Context) error
}

// Options configures a Viewer
type Options struct {
	Width, Height int
	// FPS caps the frame rate, 60 when zero
	FPS int
	// Fov is the vertical field of view in degrees, 75 when zero
	Fov float32
	// Background defaults to white
	Background *color.RGBA

	// Source loads images when Cache is nil
	Source pano.ImageSource
	// ThumbnailSource loads thumbnails, defaults to the image source
	ThumbnailSource pano.ImageSource
	// Cache enables image caching. Meshes are kept after they faded out
	// only while caching is enabled.
	Cache ImageCache

	// FadeIn and FadeOut are the panorama transition durations
	FadeIn, FadeOut time.Duration

	AutoRotate      bool
	AutoRotateSpeed float32
	AutoRotateDelay time.Duration
}

// Viewer is owned by the render loop: call Tick once per frame and route
// input through the pointer and key methods.
type Viewer struct {
	Events

	Scene      *scene.Scene
	Camera     *camera.Manager
	Viewpoints *viewpoint.Manager

	cache    ImageCache
	interval float32
	elapsed  float32
	frames   uint64
	dirty    bool
	moving   bool

	busy        int
	loadingBusy bool

	homeView *camera.Info
	plugins  []Plugin
	rotate   autoRotate
	pointer  pointerState
}

// New creates a viewer in panorama mode
func New(opts Options) *Viewer {
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.Fov <= 0 {
		opts.Fov = defaultFov
	}
	if opts.AutoRotateSpeed == 0 {
		opts.AutoRotateSpeed = defaultAutoRotateSpeed
	}
	if opts.AutoRotateDelay <= 0 {
		opts.AutoRotateDelay = defaultAutoRotateDelay
	}

	v := &Viewer{
		Scene:    scene.New(),
		Camera:   camera.New(opts.Width, opts.Height),
		interval: 1 / float32(opts.FPS),
		dirty:    true,
		rotate: autoRotate{
			enabled: opts.AutoRotate,
			speed:   opts.AutoRotateSpeed,
			delay:   float32(opts.AutoRotateDelay.Seconds()),
		},
	}
	v.Camera.SetFov(opts.Fov)
	v.Scene.Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if opts.Background != nil {
		v.Scene.Background = *opts.Background
	}

	vpOpts := viewpoint.Options{
		Source:           opts.Source,
		ThumbnailSource:  opts.ThumbnailSource,
		DisposeOnFadeOut: opts.Cache == nil,
		FadeIn:           opts.FadeIn,
		FadeOut:          opts.FadeOut,
	}
	if opts.Cache != nil {
		v.cache = opts.Cache
		vpOpts.Source = opts.Cache
		vpOpts.Cache = opts.Cache
		if vpOpts.ThumbnailSource == nil {
			vpOpts.ThumbnailSource = opts.Source
		}
	}
	v.Viewpoints = viewpoint.New(v.Scene.Root, v.Camera, vpOpts)
	v.rotate.pause()
	return v
}

// Invalidate forces the next frame to render
func (v *Viewer) Invalidate() { v.dirty = true }

// Tick advances the viewer by dt seconds. Frames closer together than the
// frame interval are skipped. It calls draw, wrapped in the render events,
// only when the camera moved or the scene changed, and reports whether it
// did.
func (v *Viewer) Tick(dt float32, draw func()) bool {
	v.elapsed += dt
	if v.elapsed+1e-6 < v.interval {
		return false
	}
	frameDt := v.elapsed
	v.elapsed = 0
	v.frames++
	frame := Frame{Delta: frameDt, Count: v.frames}

	v.rotate.advance(v, frameDt)

	moved := v.Camera.Update(frameDt)
	changed := v.Viewpoints.Update(frameDt)
	if v.loadingBusy && v.Viewpoints.Pending() == 0 {
		v.loadingBusy = false
		v.DecreaseBusy()
	}
	if v.moving && !moved {
		v.ControlChange.Publish(v.Camera.Info())
	}
	v.moving = moved

	rendered := false
	if moved || changed || v.dirty {
		v.dirty = false
		v.BeforeRender.Publish(frame)
		if draw != nil {
			draw()
		}
		v.AfterRender.Publish(frame)
		rendered = true
	}
	v.OnAnimate.Publish(frame)
	return rendered
}

// Resize updates the viewport size in pixels
func (v *Viewer) Resize(width, height int) {
	v.Camera.Resize(width, height)
	v.dirty = true
}

// SetViewpoints replaces the tour
func (v *Viewer) SetViewpoints(vps []*tour.Viewpoint) {
	v.Viewpoints.SetViewpoints(vps)
	v.dirty = true
}

// ActivatePanorama shows a panorama, see viewpoint.Manager. The viewer is
// busy until the mesh is built.
func (v *Viewer) ActivatePanorama(ctx context.Context, viewpointID, panoramaID string, resetDirection bool) error {
	err := v.Viewpoints.ActivatePanorama(ctx, viewpointID, panoramaID, resetDirection)
	if err != nil {
		return err
	}
	if !v.loadingBusy && v.Viewpoints.Pending() > 0 {
		v.loadingBusy = true
		v.IncreaseBusy()
	}
	v.dirty = true
	return nil
}

// Busy returns the busy counter; a spinner is shown while it is positive
func (v *Viewer) Busy() int { return v.busy }

// IncreaseBusy marks the start of work the user waits for
func (v *Viewer) IncreaseBusy() {
	v.busy++
	v.dirty = true
}

// DecreaseBusy marks the end of such work. The counter never goes below 0.
func (v *Viewer) DecreaseBusy() {
	if v.busy <= 0 {
		slog.Warn("busy counter is already 0", "component", "viewer")
		return
	}
	v.busy--
	v.dirty = true
}

// SetBackground sets the clear colour
func (v *Viewer) SetBackground(c color.RGBA) {
	v.Scene.Background = c
	v.dirty = true
}

// Background returns the clear colour
func (v *Viewer) Background() color.RGBA { return v.Scene.Background }

// SetProjection switches between perspective and orthographic
func (v *Viewer) SetProjection(p camera.Projection) {
	before := v.Camera.Projection()
	v.Camera.SetProjection(p)
	if v.Camera.Projection() != before {
		v.dirty = true
		v.CameraChange.Publish(v.Camera.Projection())
	}
}

// CameraInfo returns a camera snapshot
func (v *Viewer) CameraInfo() camera.Info { return v.Camera.Info() }

// SetCameraInfo applies a camera snapshot
func (v *Viewer) SetCameraInfo(info camera.Info) error {
	v.dirty = true
	return v.Camera.SetInfo(info)
}

// SetCameraPositionAndDirection moves the camera. A nil direction keeps
// the current one.
func (v *Viewer) SetCameraPositionAndDirection(pos math32.Vector3, dir *math32.Vector3) error {
	return v.Camera.SetPositionAndDirection(pos, dir, true)
}

// CameraPositionAndDirection returns where the camera is and looks
func (v *Viewer) CameraPositionAndDirection() (pos, dir math32.Vector3) {
	return v.Camera.Position(), v.Camera.Direction()
}

// LookToPosition turns the camera in place towards p
func (v *Viewer) LookToPosition(p math32.Vector3) error {
	pos := v.Camera.Position()
	dir := p.Sub(pos)
	return v.Camera.SetPositionAndDirection(pos, &dir, true)
}

// FlyTo moves the camera to position looking at lookAt
func (v *Viewer) FlyTo(position, lookAt math32.Vector3) error {
	return v.Camera.FlyTo(position, lookAt)
}

// FlyToObject fits nodes into the view
func (v *Viewer) FlyToObject(nodes ...*scene.Node) error {
	objects := make([]camera.Bounded, len(nodes))
	for i, n := range nodes {
		objects[i] = n
	}
	return v.Camera.FlyToObject(objects...)
}

// SetZoom zooms the camera
func (v *Viewer) SetZoom(zoom float32) { v.Camera.ZoomTo(zoom, true) }

// Zoom returns the camera zoom
func (v *Viewer) Zoom() float32 { return v.Camera.Zoom() }

// SetZoomRange limits the zoom
func (v *Viewer) SetZoomRange(min, max float32) { v.Camera.SetZoomRange(min, max) }

// EnableControl turns all camera input on or off
func (v *Viewer) EnableControl(enable bool) { v.Camera.EnableControl(enable) }

// PixelSizeInWorld returns the world size of a pixel at the target
func (v *Viewer) PixelSizeInWorld() float32 { return v.Camera.PixelSizeInWorld() }

// RenderInfo counts what the scene holds
func (v *Viewer) RenderInfo() scene.Info { return v.Scene.Info() }

// ClearImageCache drops every cached image
func (v *Viewer) ClearImageCache(ctx context.Context) error {
	if v.cache == nil {
		return nil
	}
	if err := v.cache.Clear(ctx); err != nil {
		return err
	}
	slog.Info("image cache cleared", "component", "viewer")
	return nil
}

// RemoveImageCache drops the given urls from the cache
func (v *Viewer) RemoveImageCache(ctx context.Context, urls ...string) {
	if v.cache == nil {
		return
	}
	for _, url := range urls {
		if err := v.cache.Remove(ctx, url); err != nil {
			slog.Warn("failed to remove cached image", "component", "viewer", "url", url, "err", err)
		}
	}
}

// Close releases the tour and every plugin
func (v *Viewer) Close() {
	v.ClearPlugins()
	v.Viewpoints.SetViewpoints([]*tour.Viewpoint{})
	v.Events.clear()
}
