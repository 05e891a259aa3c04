package scene

import (
	"cogentcore.org/core/math32"
)

// Sphere builds a UV sphere centred at the origin as a single group.
// U runs around the Y axis, V runs from the north pole down.
func Sphere(radius float32, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	grid := make([][]Vertex, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		row := make([]Vertex, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			phi := u * 2 * math32.Pi
			theta := v * math32.Pi
			row[ix] = Vertex{
				Pos: math32.Vec3(
					-radius*math32.Cos(phi)*math32.Sin(theta),
					radius*math32.Cos(theta),
					radius*math32.Sin(phi)*math32.Sin(theta),
				),
				UV: math32.Vec2(u, 1-v),
			}
		}
		grid[iy] = row
	}

	quads := make([]Quad, 0, widthSegments*heightSegments)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			quads = append(quads, Quad{
				grid[iy][ix],
				grid[iy+1][ix],
				grid[iy+1][ix+1],
				grid[iy][ix+1],
			})
		}
	}
	return &Geometry{Groups: []Group{{MaterialIndex: 0, Quads: quads}}}
}

// Box builds an axis aligned cube with one group per face in the order
// +X, -X, +Y, -Y, +Z, -Z. Every face reads unmirrored from outside.
func Box(size float32) *Geometry {
	h := size / 2
	axes := []struct {
		u, v, w    int
		udir, vdir float32
		depth      float32
	}{
		{2, 1, 0, -1, -1, h},
		{2, 1, 0, 1, -1, -h},
		{0, 2, 1, 1, 1, h},
		{0, 2, 1, 1, -1, -h},
		{0, 1, 2, 1, -1, h},
		{0, 1, 2, -1, -1, -h},
	}
	geo := &Geometry{}
	for i, a := range axes {
		corner := func(ix, iy float32) Vertex {
			var p [3]float32
			p[a.u] = (ix*size - h) * a.udir
			p[a.v] = (iy*size - h) * a.vdir
			p[a.w] = a.depth
			return Vertex{Pos: math32.Vec3(p[0], p[1], p[2]), UV: math32.Vec2(ix, 1-iy)}
		}
		geo.Groups = append(geo.Groups, Group{
			MaterialIndex: i,
			Quads: []Quad{{
				corner(0, 0),
				corner(0, 1),
				corner(1, 1),
				corner(1, 0),
			}},
		})
	}
	return geo
}

// Plane builds a width x height rectangle in the XY plane facing +Z
func Plane(width, height float32) *Geometry {
	w, h := width/2, height/2
	return &Geometry{Groups: []Group{{Quads: []Quad{{
		{Pos: math32.Vec3(-w, h, 0), UV: math32.Vec2(0, 1)},
		{Pos: math32.Vec3(-w, -h, 0), UV: math32.Vec2(0, 0)},
		{Pos: math32.Vec3(w, -h, 0), UV: math32.Vec2(1, 0)},
		{Pos: math32.Vec3(w, h, 0), UV: math32.Vec2(1, 1)},
	}}}}}
}

// Merge concatenates the groups of several geometries
func Merge(parts ...*Geometry) *Geometry {
	geo := &Geometry{}
	for _, p := range parts {
		geo.Groups = append(geo.Groups, p.Groups...)
	}
	return geo
}
