// Package viewpoint decides which panorama is shown. It owns the
// viewpoints, builds panorama meshes off the render loop, cross-fades
// between them and keeps hotpoint overlays in sync.
package viewpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/internal/event"
	"github.com/philipparndt/gopano/internal/pano"
	"github.com/philipparndt/gopano/internal/scene"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/tour"
)

const (
	fadeOutDuration = time.Second
	fadeInDuration  = 500 * time.Millisecond

	// HotpointGroup is the name of the overlay group of a viewpoint
	HotpointGroup = "hotpoints"
)

// Selection identifies the shown panorama
type Selection struct {
	ViewpointID string
	PanoramaID  string
}

// Unset is the selection before anything is activated
var Unset = Selection{ViewpointID: "undefined", PanoramaID: "undefined"}

// Camera is the part of the camera the manager moves
type Camera interface {
	Near() float32
	Direction() math32.Vector3
	SetPositionAndDirection(pos math32.Vector3, dir *math32.Vector3, transition bool) error
	EnablePan(enable bool)
}

// CacheRemover drops cached images
type CacheRemover interface {
	Remove(ctx context.Context, url string) error
}

// Options configures a Manager
type Options struct {
	Source pano.ImageSource
	// ThumbnailSource loads thumbnails, bypassing the cache by default
	ThumbnailSource pano.ImageSource
	// Cache, when set, has the images of replaced viewpoints removed
	Cache CacheRemover
	// DisposeOnFadeOut destroys meshes once they faded out instead of
	// keeping them for a quick return
	DisposeOnFadeOut bool
	// FadeIn and FadeOut default to 500ms and 1s
	FadeIn, FadeOut time.Duration
}

// Manager is driven by the render loop. All methods except the mesh
// builds it starts must be called from that loop.
type Manager struct {
	root   *scene.Node
	camera Camera
	opts   Options

	viewpoints []*tour.Viewpoint
	active     Selection
	meshes     map[Selection]*pano.Mesh

	// building holds in-flight builds by token; activeBuild is the token
	// whose result may be attached
	building    map[uint64]*pano.Mesh
	nextBuild   uint64
	activeBuild uint64
	completions chan completion
	inflight    sync.WaitGroup

	// Activated is published when a panorama is attached or revealed
	Activated event.Topic[Selection]
}

type completion struct {
	token uint64
	sel   Selection
	vp    *tour.Viewpoint
	mesh  *pano.Mesh
	reset bool
	err   error
}

// New creates a manager that adds viewpoint groups under root
func New(root *scene.Node, cam Camera, opts Options) *Manager {
	if opts.FadeIn <= 0 {
		opts.FadeIn = fadeInDuration
	}
	if opts.FadeOut <= 0 {
		opts.FadeOut = fadeOutDuration
	}
	return &Manager{
		root:        root,
		camera:      cam,
		opts:        opts,
		active:      Unset,
		meshes:      map[Selection]*pano.Mesh{},
		building:    map[uint64]*pano.Mesh{},
		completions: make(chan completion, 16),
	}
}

// Active returns the current selection
func (m *Manager) Active() Selection { return m.active }

// Pending returns the number of builds not yet applied
func (m *Manager) Pending() int { return len(m.building) }

// Viewpoints returns the viewpoints
func (m *Manager) Viewpoints() []*tour.Viewpoint { return m.viewpoints }

// Viewpoint returns the viewpoint with the given id
func (m *Manager) Viewpoint(id string) (*tour.Viewpoint, bool) {
	for _, vp := range m.viewpoints {
		if vp.ID == id {
			return vp, true
		}
	}
	return nil, false
}

// Mesh returns the mesh built for a selection
func (m *Manager) Mesh(sel Selection) (*pano.Mesh, bool) {
	mesh, ok := m.meshes[sel]
	return mesh, ok
}

// SetViewpoints replaces every viewpoint. Passing the current slice again
// does nothing; otherwise the meshes, cached images and overlays of the
// previous viewpoints are released and the selection is reset.
func (m *Manager) SetViewpoints(vps []*tour.Viewpoint) {
	if sameSlice(vps, m.viewpoints) {
		return
	}
	for _, mesh := range m.building {
		mesh.Cancel()
	}
	m.activeBuild = 0

	for _, vp := range m.viewpoints {
		group := m.root.Child(vp.ID)
		for _, p := range vp.Panoramas {
			if mesh, ok := m.meshes[Selection{vp.ID, p.ID}]; ok {
				mesh.Destroy()
			}
			m.removeCached(p.Images)
		}
		if group != nil {
			group.Clear()
			group.RemoveFromParent()
		}
	}
	// meshes stored under a fallback panorama id
	for _, mesh := range m.meshes {
		mesh.Destroy()
	}
	m.meshes = map[Selection]*pano.Mesh{}
	m.active = Unset
	m.viewpoints = vps
}

func sameSlice(a, b []*tour.Viewpoint) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func (m *Manager) removeCached(urls []string) {
	if m.opts.Cache == nil {
		return
	}
	for _, url := range urls {
		if err := m.opts.Cache.Remove(context.Background(), url); err != nil {
			slog.Warn("failed to remove cached image", "component", "viewpoint", "url", url, "err", err)
		}
	}
}

// ActivatePanorama shows a panorama. The previous one fades out at once.
// A mesh built before is faded in directly; otherwise a build starts in the
// background and Update attaches it, unless another activation happened in
// the meantime. The camera moves to the viewpoint position, and to its
// initial direction when resetDirection is set.
//
// An unknown viewpoint is logged and ignored. An image list that fits no
// mesh kind is returned as *pano.ImageCountError before anything changes
// in the scene.
func (m *Manager) ActivatePanorama(ctx context.Context, viewpointID, panoramaID string, resetDirection bool) error {
	sel := Selection{viewpointID, panoramaID}
	if sel == m.active {
		return nil
	}
	vp, ok := m.Viewpoint(viewpointID)
	if !ok {
		slog.Warn("viewpoint not found", "component", "viewpoint", "viewpoint", viewpointID)
		return nil
	}

	if existing, ok := m.meshes[sel]; ok && existing.Destroyed() {
		delete(m.meshes, sel)
	}
	var mesh *pano.Mesh
	if _, ok := m.meshes[sel]; !ok {
		var err error
		if mesh, err = m.newMesh(vp, panoramaID); err != nil {
			return err
		}
	}

	m.deactivate()
	m.active = sel
	if b, ok := m.building[m.activeBuild]; ok {
		b.Cancel()
	}
	m.activeBuild = 0

	if mesh == nil {
		m.meshes[sel].FadeIn(m.opts.FadeIn)
		m.setGroupVisible(vp.ID, true)
		m.adjustCamera(vp, resetDirection)
		m.Activated.Publish(sel)
		return nil
	}

	m.nextBuild++
	token := m.nextBuild
	m.activeBuild = token
	m.building[token] = mesh
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		err := mesh.Create(ctx)
		m.completions <- completion{token: token, sel: sel, vp: vp, mesh: mesh, reset: resetDirection, err: err}
	}()
	return nil
}

func (m *Manager) newMesh(vp *tour.Viewpoint, panoramaID string) (*pano.Mesh, error) {
	p, ok := vp.Panorama(panoramaID)
	if !ok {
		if len(vp.Panoramas) == 0 {
			return nil, fmt.Errorf("viewpoint %q has no panoramas", vp.ID)
		}
		p = &vp.Panoramas[0]
		slog.Warn("panorama not found, using the first one", "component", "viewpoint", "viewpoint", vp.ID, "panorama", panoramaID)
	}
	mesh, err := pano.New(p.Images, p.Thumbnails, pano.Options{
		Name:            panoramaID,
		Source:          m.opts.Source,
		ThumbnailSource: m.opts.ThumbnailSource,
	})
	if err != nil {
		return nil, fmt.Errorf("viewpoint %q panorama %q: %w", vp.ID, p.ID, err)
	}
	mesh.SetDisposeOnFadeOut(m.opts.DisposeOnFadeOut)
	return mesh, nil
}

// deactivate fades out the shown mesh and hides its overlays
func (m *Manager) deactivate() {
	if m.active == Unset {
		return
	}
	if prev, ok := m.meshes[m.active]; ok {
		prev.FadeOut(m.opts.FadeOut)
	}
	m.setGroupVisible(m.active.ViewpointID, false)
}

// Update attaches finished builds, advances texture swaps and fades, and
// reports whether the scene changed
func (m *Manager) Update(dt float32) bool {
	changed := m.applyCompletions()
	for sel, mesh := range m.meshes {
		if mesh.Update(dt) {
			changed = true
		}
		if mesh.Destroyed() {
			delete(m.meshes, sel)
		}
	}
	return changed
}

// Flush waits for running builds and applies them
func (m *Manager) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()
	for {
		select {
		case c := <-m.completions:
			delete(m.building, c.token)
			m.attach(c)
		case <-done:
			m.applyCompletions()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Manager) applyCompletions() bool {
	changed := false
	for {
		select {
		case c := <-m.completions:
			delete(m.building, c.token)
			if m.attach(c) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (m *Manager) attach(c completion) bool {
	if c.token != m.activeBuild || c.sel != m.active {
		c.mesh.Destroy()
		return false
	}
	m.activeBuild = 0
	if c.err != nil {
		c.mesh.Destroy()
		if !errors.Is(c.err, context.Canceled) {
			slog.Error("failed to build panorama", "component", "viewpoint", "viewpoint", c.sel.ViewpointID, "panorama", c.sel.PanoramaID, "err", c.err)
		}
		// allow the same panorama to be activated again
		m.active = Unset
		return false
	}

	pos := viewpointPosition(c.vp)
	c.mesh.Node.Position = pos
	c.mesh.FadeIn(m.opts.FadeIn)
	m.adjustCamera(c.vp, c.reset)
	hotpoints := m.hotpointGroup(c.vp.ID, true)
	hotpoints.Parent().Add(c.mesh.Node)
	m.meshes[c.sel] = c.mesh

	hotpoints.Visible = true
	for _, hp := range c.vp.Hotpoints {
		if hotpoints.Child(hp.HotpointID) == nil {
			hotpoints.Add(m.newOverlay(hp, pos))
		}
	}
	m.Activated.Publish(c.sel)
	return true
}

func viewpointPosition(vp *tour.Viewpoint) math32.Vector3 {
	if vp.Position == nil {
		return math32.Vector3{}
	}
	return geometry.FromArray(*vp.Position)
}

// adjustCamera moves the camera to the viewpoint position. Without a
// configured or requested direction the current one is kept.
func (m *Manager) adjustCamera(vp *tour.Viewpoint, resetDirection bool) {
	dir := m.camera.Direction()
	if resetDirection && vp.InitialDirection != nil {
		dir = geometry.FromArray(*vp.InitialDirection)
	}
	if err := m.camera.SetPositionAndDirection(viewpointPosition(vp), &dir, true); err != nil {
		slog.Warn("failed to move camera to viewpoint", "component", "viewpoint", "viewpoint", vp.ID, "err", err)
	}
}

func (m *Manager) setGroupVisible(viewpointID string, visible bool) {
	if group := m.root.Child(viewpointID); group != nil {
		if hp := group.Child(HotpointGroup); hp != nil {
			hp.Visible = visible
		}
	}
}

// AddPanorama appends a panorama to a viewpoint. Ids are not checked for
// duplicates.
func (m *Manager) AddPanorama(viewpointID string, p tour.Panorama) error {
	vp, ok := m.Viewpoint(viewpointID)
	if !ok {
		return fmt.Errorf("viewpoint %q not found", viewpointID)
	}
	vp.Panoramas = append(vp.Panoramas, p)
	return nil
}

// FindPanorama looks up a panorama of a viewpoint
func (m *Manager) FindPanorama(viewpointID, panoramaID string) (*tour.Panorama, bool) {
	vp, ok := m.Viewpoint(viewpointID)
	if !ok {
		return nil, false
	}
	return vp.Panorama(panoramaID)
}

// ShowAll makes every panorama and, optionally, every hotpoint group
// visible and enables panning. It is meant for inspecting a tour.
func (m *Manager) ShowAll(showHotpoints bool) {
	m.camera.EnablePan(true)
	for _, mesh := range m.meshes {
		mesh.Node.Visible = true
	}
	if !showHotpoints {
		return
	}
	for _, vp := range m.viewpoints {
		m.setGroupVisible(vp.ID, true)
	}
}
