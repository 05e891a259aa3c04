// Package pano turns the images of a panorama into a textured mesh viewed
// from the inside: a sphere for one equirectangular image, a cube for six
// faces and a tiled cube for 24 tiles.
package pano

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/philipparndt/gopano/internal/scene"
)

// ImageSource resolves an image URL to a decoded image
type ImageSource interface {
	Get(ctx context.Context, url string) (image.Image, error)
}

// Options configures New
type Options struct {
	// Name of the mesh node
	Name string
	// Size overrides the default radius or edge of the kind
	Size float32
	// Source loads full resolution images
	Source ImageSource
	// ThumbnailSource loads thumbnails. Defaults to Source.
	ThumbnailSource ImageSource
}

// Mesh is a panorama node. It is built off the render loop by Create and
// afterwards only touched from the loop: Update applies texture swaps and
// advances fades.
type Mesh struct {
	Node *scene.Node

	kind       Kind
	strategy   strategy
	images     []string
	thumbnails []string
	size       float32
	src        ImageSource
	thumbSrc   ImageSource

	ctx    context.Context
	cancel context.CancelFunc

	full      *scene.Node
	thumb     *scene.Node
	materials []*scene.Material

	swaps   chan swap
	pending int
	failed  int

	opacity          float32
	fade             *fade
	disposeOnFadeOut bool

	destroyOnce sync.Once
	destroyed   bool
}

type swap struct {
	index int
	tex   *scene.Texture
	err   error
}

// New validates the image list and prepares a mesh. Nothing is loaded
// until Create. Thumbnails are used only when exactly six are given.
func New(images, thumbnails []string, opts Options) (*Mesh, error) {
	kind, err := KindFor(len(images))
	if err != nil {
		return nil, err
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("pano: no image source")
	}
	s := strategies[kind]
	m := &Mesh{
		Node:     scene.NewNode(opts.Name),
		kind:     kind,
		strategy: s,
		images:   append([]string(nil), images...),
		size:     opts.Size,
		src:      opts.Source,
		thumbSrc: opts.ThumbnailSource,
		opacity:  1,
	}
	if len(thumbnails) == 6 {
		m.thumbnails = append([]string(nil), thumbnails...)
	}
	if m.size <= 0 {
		m.size = s.defaultSize()
	}
	if m.thumbSrc == nil {
		m.thumbSrc = m.src
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.Node.UserData = m
	return m, nil
}

// Kind returns the geometry kind
func (m *Mesh) Kind() Kind { return m.kind }

// Size returns the radius of a sphere or the edge of a cube
func (m *Mesh) Size() float32 { return m.size }

// Images returns the full resolution image URLs
func (m *Mesh) Images() []string { return m.images }

// Materials returns the full resolution materials in image order
func (m *Mesh) Materials() []*scene.Material { return m.materials }

// Thumbnail returns the thumbnail node while it is shown
func (m *Mesh) Thumbnail() *scene.Node { return m.thumb }

// Full returns the full resolution node
func (m *Mesh) Full() *scene.Node { return m.full }

// Loading reports whether full resolution textures are still arriving
func (m *Mesh) Loading() bool { return m.pending > 0 }

// Create builds the primary geometry and returns once it is attached to
// m.Node. With thumbnails the thumbnail cube is primary and full
// resolution textures keep loading in the background; Update swaps each
// into its material as it arrives.
func (m *Mesh) Create(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	unwatch := context.AfterFunc(m.ctx, stop)
	defer unwatch()

	if len(m.thumbnails) == 6 {
		thumbs, err := loadTextures(ctx, m.thumbSrc, m.thumbnails)
		if err == nil {
			m.thumb = thumbnailCube(newMaterials(thumbs, "thumbnail"), m.strategy.thumbnailSize(m.size))
			m.Node.Add(m.thumb)
			m.buildFull(nil)
			m.loadInBackground()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("failed to load thumbnails, loading full images", "component", "pano", "mesh", m.Node.Name, "err", err)
	}

	textures, err := loadTextures(ctx, m.src, m.images)
	if err != nil {
		return fmt.Errorf("failed to create %s panorama: %w", m.kind, err)
	}
	m.buildFull(textures)
	return nil
}

// buildFull attaches the full resolution geometry. Without textures the
// materials stay hidden until their swap arrives.
func (m *Mesh) buildFull(textures []*scene.Texture) {
	m.materials = make([]*scene.Material, len(m.images))
	for i := range m.materials {
		mat := scene.NewMaterial(fmt.Sprintf("image_%d", i), nil)
		if textures != nil {
			mat.Texture = textures[i]
		} else {
			mat.Hidden = true
		}
		m.materials[i] = mat
	}
	m.full = m.strategy.build(m.materials, m.size)
	m.Node.Add(m.full)
	m.applyOpacity()
}

func (m *Mesh) loadInBackground() {
	m.swaps = make(chan swap, len(m.images))
	m.pending = len(m.images)
	for i, url := range m.images {
		go func() {
			img, err := m.src.Get(m.ctx, url)
			if err != nil {
				m.swaps <- swap{index: i, err: err}
				return
			}
			m.swaps <- swap{index: i, tex: scene.NewTexture(url, img)}
		}()
	}
}

// Update applies arrived textures and advances the fade by dt. It reports
// whether anything visible changed.
func (m *Mesh) Update(dt float32) bool {
	if m.destroyed {
		return false
	}
	changed := m.applySwaps()
	if m.fade != nil {
		changed = m.advanceFade(dt) || changed
	}
	return changed
}

func (m *Mesh) applySwaps() bool {
	changed := false
	for m.pending > 0 {
		select {
		case s := <-m.swaps:
			m.pending--
			changed = true
			if s.err != nil {
				m.failed++
				slog.Warn("failed to load panorama image", "component", "pano", "mesh", m.Node.Name, "image", m.images[s.index], "err", s.err)
				continue
			}
			mat := m.materials[s.index]
			mat.Texture = s.tex
			mat.Hidden = false
		default:
			return changed
		}
	}
	if changed && m.failed == 0 && m.thumb != nil {
		m.destroyNode(m.thumb)
		m.thumb = nil
	}
	return changed
}

// SetDisposeOnFadeOut makes the end of a fade out destroy the mesh
func (m *Mesh) SetDisposeOnFadeOut(v bool) {
	m.disposeOnFadeOut = v
}

// Cancel stops any loading. It is safe to call from any goroutine, also
// while Create is running.
func (m *Mesh) Cancel() {
	m.cancel()
}

// Destroyed reports whether Destroy has run
func (m *Mesh) Destroyed() bool { return m.destroyed }

// Destroy stops loading, releases every geometry and texture and detaches
// the mesh from the scene. It must not run concurrently with Create.
func (m *Mesh) Destroy() {
	m.destroyOnce.Do(func() {
		m.cancel()
		m.fade = nil
		m.destroyed = true
		if m.thumb != nil {
			m.destroyNode(m.thumb)
			m.thumb = nil
		}
		if m.full != nil {
			m.destroyNode(m.full)
			m.full = nil
		}
		// textures may still be in flight
		if m.swaps != nil {
			go drain(m.swaps, m.pending)
			m.pending = 0
		}
		m.materials = nil
		m.Node.RemoveFromParent()
	})
}

func drain(swaps <-chan swap, n int) {
	for i := 0; i < n; i++ {
		if s := <-swaps; s.tex != nil {
			s.tex.Dispose()
		}
	}
}

func (m *Mesh) destroyNode(n *scene.Node) {
	n.Walk(func(c *scene.Node) bool {
		if c.Mesh != nil {
			c.Mesh.Dispose()
		}
		return true
	})
	n.RemoveFromParent()
	n.Clear()
}

// Opacity returns the current opacity of the mesh materials
func (m *Mesh) Opacity() float32 { return m.opacity }

func (m *Mesh) setOpacity(o float32) {
	m.opacity = o
	m.applyOpacity()
}

func (m *Mesh) applyOpacity() {
	m.Node.Walk(func(c *scene.Node) bool {
		if c.Mesh != nil {
			c.Mesh.SetOpacity(m.opacity)
		}
		return true
	})
}

func newMaterials(textures []*scene.Texture, prefix string) []*scene.Material {
	mats := make([]*scene.Material, len(textures))
	for i, t := range textures {
		mats[i] = scene.NewMaterial(fmt.Sprintf("%s_%d", prefix, i), t)
	}
	return mats
}

// loadTextures loads all urls concurrently. On error every loaded texture
// is disposed.
func loadTextures(ctx context.Context, src ImageSource, urls []string) ([]*scene.Texture, error) {
	textures := make([]*scene.Texture, len(urls))
	errs := make([]error, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := src.Get(ctx, url)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", url, err)
				return
			}
			textures[i] = scene.NewTexture(url, img)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			for _, t := range textures {
				if t != nil {
					t.Dispose()
				}
			}
			return nil, err
		}
	}
	return textures, nil
}
