package app

import (
	"image"
	"image/color"
	"slices"
	"unsafe"

	"cogentcore.org/core/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gopano/internal/camera"
	"github.com/philipparndt/gopano/internal/scene"
	"golang.org/x/image/draw"
)

func (r *RenderState) init(width, height int32) {
	r.meshes = map[*scene.Geometry][]rl.Mesh{}
	r.material = rl.LoadMaterialDefault()
	r.resize(width, height)
}

func (r *RenderState) resize(width, height int32) {
	if width == r.width && height == r.height {
		return
	}
	if r.width > 0 {
		rl.UnloadRenderTexture(r.target)
	}
	r.width, r.height = width, height
	r.target = rl.LoadRenderTexture(width, height)
}

func (r *RenderState) unload() {
	r.flushReleased()
	for geo, meshes := range r.meshes {
		for i := range meshes {
			rl.UnloadMesh(&meshes[i])
		}
		delete(r.meshes, geo)
	}
	rl.UnloadRenderTexture(r.target)
}

// release schedules a GPU free on the render loop. Scene resources may be
// disposed from any goroutine.
func (r *RenderState) release(fn func()) {
	r.mu.Lock()
	r.released = append(r.released, fn)
	r.mu.Unlock()
}

func (r *RenderState) flushReleased() {
	r.mu.Lock()
	fns := r.released
	r.released = nil
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// blit draws the last rendered frame. Render textures are stored upside
// down, hence the negative source height.
func (r *RenderState) blit() {
	src := rl.NewRectangle(0, 0, float32(r.width), -float32(r.height))
	rl.DrawTextureRec(r.target.Texture, src, rl.Vector2{}, rl.White)
}

// drawItem is one material group of a scene mesh
type drawItem struct {
	node     *scene.Node
	group    int
	material *scene.Material
}

// drawScene renders the scene graph into the offscreen target
func (app *App) drawScene() {
	r := &app.Render
	var opaque, transparent []drawItem
	app.Viewer.Scene.Root.Walk(func(n *scene.Node) bool {
		if n.Mesh == nil || n.Mesh.Geometry == nil || !n.WorldVisible() {
			return true
		}
		for gi, grp := range n.Mesh.Geometry.Groups {
			m := n.Mesh.Material(grp.MaterialIndex)
			if m == nil || !m.Drawable() || m.Texture == nil {
				continue
			}
			item := drawItem{node: n, group: gi, material: m}
			if m.Transparent {
				transparent = append(transparent, item)
			} else {
				opaque = append(opaque, item)
			}
		}
		return true
	})
	slices.SortStableFunc(transparent, func(a, b drawItem) int {
		return a.node.RenderOrder - b.node.RenderOrder
	})

	rl.BeginTextureMode(r.target)
	rl.ClearBackground(toColor(app.Viewer.Background()))
	rl.SetClipPlanes(app.Viewer.Camera.ClipPlanes())
	rl.BeginMode3D(rlCamera(app.Viewer.Camera))
	// panoramas are seen from inside
	rl.DisableBackfaceCulling()
	for _, item := range opaque {
		r.draw(item)
	}
	rl.DisableDepthMask()
	for _, item := range transparent {
		r.draw(item)
	}
	rl.EnableDepthMask()
	rl.EnableBackfaceCulling()
	rl.EndMode3D()
	rl.EndTextureMode()
}

func (r *RenderState) draw(item drawItem) {
	tex, ok := r.texture(item.material.Texture)
	if !ok {
		return
	}
	meshes := r.meshFor(item.node.Mesh.Geometry)
	rl.SetMaterialTexture(&r.material, rl.MapAlbedo, tex)
	r.material.GetMap(rl.MapAlbedo).Color = rl.NewColor(255, 255, 255, uint8(math32.Clamp(item.material.Opacity, 0, 1)*255))
	rl.DrawMesh(meshes[item.group], r.material, worldMatrix(item.node))
}

// texture returns the GPU texture of t, uploading it on first use
func (r *RenderState) texture(t *scene.Texture) (rl.Texture2D, bool) {
	if t.Disposed() || t.Image == nil {
		return rl.Texture2D{}, false
	}
	if h, ok := t.Handle().(rl.Texture2D); ok {
		return h, true
	}

	img := toRGBA(t.Image)
	b := img.Bounds()
	tex := rl.LoadTextureFromImage(&rl.Image{
		Data:    unsafe.Pointer(&img.Pix[0]),
		Width:   int32(b.Dx()),
		Height:  int32(b.Dy()),
		Mipmaps: 1,
		Format:  rl.UncompressedR8g8b8a8,
	})
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.WrapClamp)
	t.Bind(tex, func() {
		r.release(func() { rl.UnloadTexture(tex) })
	})
	return tex, true
}

func toRGBA(src image.Image) *image.RGBA {
	if img, ok := src.(*image.RGBA); ok && img.Stride == img.Rect.Dx()*4 && img.Rect.Min == (image.Point{}) {
		return img
	}
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return img
}

// meshFor uploads each group of geo as one raylib mesh, two triangles per
// quad, on first use
func (r *RenderState) meshFor(geo *scene.Geometry) []rl.Mesh {
	if meshes, ok := r.meshes[geo]; ok {
		return meshes
	}
	meshes := make([]rl.Mesh, len(geo.Groups))
	for i, grp := range geo.Groups {
		meshes[i] = quadsToMesh(grp.Quads)
	}
	r.meshes[geo] = meshes
	geo.OnDispose(func() {
		r.release(func() {
			for i := range meshes {
				rl.UnloadMesh(&meshes[i])
			}
			delete(r.meshes, geo)
		})
	})
	return meshes
}

func quadsToMesh(quads []scene.Quad) rl.Mesh {
	triangleCount := len(quads) * 2
	vertexCount := triangleCount * 3
	mesh := rl.Mesh{
		VertexCount:   int32(vertexCount),
		TriangleCount: int32(triangleCount),
	}

	vertices := make([]float32, 0, vertexCount*3)
	texcoords := make([]float32, 0, vertexCount*2)
	add := func(v scene.Vertex) {
		vertices = append(vertices, v.Pos.X, v.Pos.Y, v.Pos.Z)
		// image rows run top down, geometry V runs bottom up
		texcoords = append(texcoords, v.UV.X, 1-v.UV.Y)
	}
	for _, q := range quads {
		add(q[0])
		add(q[1])
		add(q[2])
		add(q[0])
		add(q[2])
		add(q[3])
	}

	if len(vertices) > 0 {
		mesh.Vertices = &vertices[0]
		mesh.Texcoords = &texcoords[0]
	}
	rl.UploadMesh(&mesh, false)
	return mesh
}

// worldMatrix builds the column major transform of n from its world space
// origin and axes
func worldMatrix(n *scene.Node) rl.Matrix {
	o := n.LocalToWorld(math32.Vector3{})
	x := n.LocalToWorld(math32.Vec3(1, 0, 0)).Sub(o)
	y := n.LocalToWorld(math32.Vec3(0, 1, 0)).Sub(o)
	z := n.LocalToWorld(math32.Vec3(0, 0, 1)).Sub(o)
	return rl.Matrix{
		M0: x.X, M4: y.X, M8: z.X, M12: o.X,
		M1: x.Y, M5: y.Y, M9: z.Y, M13: o.Y,
		M2: x.Z, M6: y.Z, M10: z.Z, M14: o.Z,
		M15: 1,
	}
}

// rlCamera mirrors the viewer camera
func rlCamera(m *camera.Manager) rl.Camera3D {
	pos := m.Position()
	target := pos.Add(m.Direction())
	up := m.Up()
	c := rl.Camera3D{
		Position:   rl.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z},
		Target:     rl.Vector3{X: target.X, Y: target.Y, Z: target.Z},
		Up:         rl.Vector3{X: up.X, Y: up.Y, Z: up.Z},
		Fovy:       m.EffectiveFov(),
		Projection: rl.CameraPerspective,
	}
	if m.Projection() == camera.Orthographic {
		c.Fovy = m.OrthoHeight()
		c.Projection = rl.CameraOrthographic
	}
	return c
}

func toColor(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}
