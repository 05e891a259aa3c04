package scene

import (
	"image"
	"sync"
	"sync/atomic"

	"cogentcore.org/core/math32"
)

// Vertex is a textured vertex
type Vertex struct {
	Pos math32.Vector3
	UV  math32.Vector2
}

// Quad is four vertices forming a closed loop
type Quad [4]Vertex

// Group is a run of quads drawn with the same material
type Group struct {
	MaterialIndex int
	Quads         []Quad
}

// Geometry holds the vertex data of a mesh
type Geometry struct {
	Groups []Group

	disposer
}

// QuadCount returns the number of quads over all groups
func (g *Geometry) QuadCount() int {
	n := 0
	for _, grp := range g.Groups {
		n += len(grp.Quads)
	}
	return n
}

// Bounds returns the local bounding box
func (g *Geometry) Bounds() math32.Box3 {
	box := math32.B3Empty()
	for _, grp := range g.Groups {
		for _, q := range grp.Quads {
			for _, v := range q {
				box.ExpandByPoint(v.Pos)
			}
		}
	}
	return box
}

// Scale multiplies every vertex position component wise. A negative
// determinant mirrors the geometry and reverses the quad winding.
func (g *Geometry) Scale(x, y, z float32) *Geometry {
	s := math32.Vec3(x, y, z)
	mirror := x*y*z < 0
	for gi := range g.Groups {
		quads := g.Groups[gi].Quads
		for qi := range quads {
			for vi := range quads[qi] {
				quads[qi][vi].Pos = quads[qi][vi].Pos.Mul(s)
			}
			if mirror {
				q := quads[qi]
				quads[qi] = Quad{q[0], q[3], q[2], q[1]}
			}
		}
	}
	return g
}

// Translate moves every vertex by d
func (g *Geometry) Translate(d math32.Vector3) *Geometry {
	for gi := range g.Groups {
		quads := g.Groups[gi].Quads
		for qi := range quads {
			for vi := range quads[qi] {
				quads[qi][vi].Pos = quads[qi][vi].Pos.Add(d)
			}
		}
	}
	return g
}

// Rotate rotates every vertex around axis through the origin
func (g *Geometry) Rotate(axis math32.Vector3, angle float32) *Geometry {
	q := math32.NewQuatAxisAngle(axis.Normal(), angle)
	for gi := range g.Groups {
		quads := g.Groups[gi].Quads
		for qi := range quads {
			for vi := range quads[qi] {
				quads[qi][vi].Pos = quads[qi][vi].Pos.MulQuat(q)
			}
		}
	}
	return g
}

// Side selects which faces of a material are drawn
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

var textureIDs atomic.Uint64

// Texture is an image that the backend uploads on first use
type Texture struct {
	ID     uint64
	Source string
	Image  image.Image

	mu     sync.Mutex
	handle any

	disposer
}

// NewTexture wraps a decoded image
func NewTexture(source string, img image.Image) *Texture {
	return &Texture{ID: textureIDs.Add(1), Source: source, Image: img}
}

// Handle returns the backend handle, or nil if the texture is not uploaded
func (t *Texture) Handle() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

// Bind attaches a backend handle and the function that frees it
func (t *Texture) Bind(handle any, release func()) {
	t.mu.Lock()
	t.handle = handle
	t.mu.Unlock()
	t.OnDispose(func() {
		t.mu.Lock()
		t.handle = nil
		t.mu.Unlock()
		if release != nil {
			release()
		}
	})
}

// Material describes how a geometry group is drawn
type Material struct {
	Name        string
	Texture     *Texture
	Opacity     float32
	Transparent bool
	Side        Side
	// Hidden suppresses drawing until a texture is assigned
	Hidden bool

	disposer
}

// NewMaterial creates an opaque double sided material
func NewMaterial(name string, tex *Texture) *Material {
	return &Material{Name: name, Texture: tex, Opacity: 1, Side: DoubleSide}
}

// Drawable reports whether the backend should draw the material
func (m *Material) Drawable() bool {
	return !m.Hidden && m.Opacity > 0 && !m.Disposed()
}

// Mesh binds a geometry to its materials
type Mesh struct {
	Geometry  *Geometry
	Materials []*Material
}

// NewMesh creates a mesh
func NewMesh(geo *Geometry, materials ...*Material) *Mesh {
	return &Mesh{Geometry: geo, Materials: materials}
}

// Material returns the material for a group or nil
func (m *Mesh) Material(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return m.Materials[i]
}

// SetOpacity sets the opacity of every material. Values below one mark the
// materials transparent.
func (m *Mesh) SetOpacity(o float32) {
	for _, mat := range m.Materials {
		mat.Opacity = o
		mat.Transparent = o < 1
	}
}

// Dispose releases the geometry, every material and every texture
func (m *Mesh) Dispose() {
	if m.Geometry != nil {
		m.Geometry.Dispose()
	}
	for _, mat := range m.Materials {
		if mat.Texture != nil {
			mat.Texture.Dispose()
		}
		mat.Dispose()
	}
}

// disposer tracks release callbacks and runs them exactly once
type disposer struct {
	mu       sync.Mutex
	disposed bool
	hooks    []func()
}

// OnDispose registers fn to run on Dispose. If already disposed fn runs now.
func (d *disposer) OnDispose(fn func()) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		fn()
		return
	}
	d.hooks = append(d.hooks, fn)
	d.mu.Unlock()
}

// Dispose runs the registered hooks. Later calls are no-ops.
func (d *disposer) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	hooks := d.hooks
	d.hooks = nil
	d.mu.Unlock()
	for _, h := range hooks {
		h()
	}
}

// Disposed reports whether Dispose has been called
func (d *disposer) Disposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}
