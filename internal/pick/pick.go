// Package pick finds the scene object hit by a ray
package pick

import (
	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/internal/scene"
	"github.com/philipparndt/gopano/pkg/geometry"
)

// AllLayers matches every node
const AllLayers uint32 = 0xffffffff

// Hit is the nearest intersection of a ray with a mesh
type Hit struct {
	Node     *scene.Node
	Point    math32.Vector3
	Distance float32
	// Group is the index of the geometry group that was hit
	Group int
}

// Unprojector turns normalized device coordinates into a ray
type Unprojector interface {
	Unproject(ndc math32.Vector2) geometry.Ray
}

// Pick intersects ray with the meshes in the subtrees of candidates and
// returns the nearest hit. Invisible subtrees and nodes outside layers are
// skipped.
func Pick(ray geometry.Ray, candidates []*scene.Node, layers uint32) (Hit, bool) {
	best := Hit{Distance: math32.Infinity}
	found := false
	for _, root := range candidates {
		walkVisible(root, func(n *scene.Node) {
			if n.Mesh == nil || n.Mesh.Geometry == nil || n.Layers&layers == 0 {
				return
			}
			if hit, ok := intersect(ray, n); ok && hit.Distance < best.Distance {
				best = hit
				found = true
			}
		})
	}
	return best, found
}

// PickNDC picks along the ray through ndc as seen by cam
func PickNDC(cam Unprojector, ndc math32.Vector2, candidates []*scene.Node, layers uint32) (Hit, bool) {
	return Pick(cam.Unproject(ndc), candidates, layers)
}

func walkVisible(n *scene.Node, fn func(*scene.Node)) {
	if !n.Visible {
		return
	}
	fn(n)
	for _, c := range n.Children() {
		walkVisible(c, fn)
	}
}

func intersect(ray geometry.Ray, n *scene.Node) (Hit, bool) {
	box := n.Mesh.Geometry.Bounds()
	wb := math32.B3Empty()
	for _, corner := range corners(box) {
		wb.ExpandByPoint(n.LocalToWorld(corner))
	}
	if _, ok := ray.IntersectBox(wb); !ok {
		return Hit{}, false
	}

	best := Hit{Distance: math32.Infinity}
	found := false
	for gi, g := range n.Mesh.Geometry.Groups {
		if m := n.Mesh.Material(g.MaterialIndex); m == nil || !m.Drawable() {
			continue
		}
		for _, q := range g.Quads {
			a := n.LocalToWorld(q[0].Pos)
			b := n.LocalToWorld(q[1].Pos)
			c := n.LocalToWorld(q[2].Pos)
			d := n.LocalToWorld(q[3].Pos)
			for _, tri := range [2][3]math32.Vector3{{a, b, c}, {a, c, d}} {
				t, ok := ray.IntersectTriangle(tri[0], tri[1], tri[2])
				if ok && t < best.Distance {
					best = Hit{Node: n, Point: ray.At(t), Distance: t, Group: gi}
					found = true
				}
			}
		}
	}
	return best, found
}

func corners(b math32.Box3) [8]math32.Vector3 {
	return [8]math32.Vector3{
		math32.Vec3(b.Min.X, b.Min.Y, b.Min.Z),
		math32.Vec3(b.Max.X, b.Min.Y, b.Min.Z),
		math32.Vec3(b.Min.X, b.Max.Y, b.Min.Z),
		math32.Vec3(b.Max.X, b.Max.Y, b.Min.Z),
		math32.Vec3(b.Min.X, b.Min.Y, b.Max.Z),
		math32.Vec3(b.Max.X, b.Min.Y, b.Max.Z),
		math32.Vec3(b.Min.X, b.Max.Y, b.Max.Z),
		math32.Vec3(b.Max.X, b.Max.Y, b.Max.Z),
	}
}
