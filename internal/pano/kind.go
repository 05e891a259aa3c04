package pano

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/internal/scene"
)

// Kind selects the geometry a panorama is mapped onto
type Kind int

const (
	Sphere Kind = iota
	Cube
	Cube24
)

func (k Kind) String() string {
	switch k {
	case Sphere:
		return "sphere"
	case Cube:
		return "cube"
	case Cube24:
		return "cube24"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ImageCountError reports an image list that matches no Kind
type ImageCountError struct {
	Got int
}

func (e *ImageCountError) Error() string {
	return fmt.Sprintf("wrong number of images: expected 1, 6 or 24, got %d", e.Got)
}

// KindFor selects the Kind for an image count
func KindFor(count int) (Kind, error) {
	for k, s := range strategies {
		if s.faceCount() == count {
			return k, nil
		}
	}
	return 0, &ImageCountError{Got: count}
}

// strategy builds the full resolution geometry of a Kind. Materials are
// passed in image order and build returns the node holding them.
type strategy interface {
	faceCount() int
	defaultSize() float32
	// thumbnailSize returns the edge of the thumbnail cube
	thumbnailSize(size float32) float32
	build(materials []*scene.Material, size float32) *scene.Node
}

var strategies = map[Kind]strategy{
	Sphere: sphereStrategy{},
	Cube:   cubeStrategy{},
	Cube24: cube24Strategy{},
}

const sphereSegments = 100

type sphereStrategy struct{}

func (sphereStrategy) faceCount() int                     { return 1 }
func (sphereStrategy) defaultSize() float32               { return 100 }
func (sphereStrategy) thumbnailSize(size float32) float32 { return size + 0.1 }

func (sphereStrategy) build(materials []*scene.Material, size float32) *scene.Node {
	n := scene.NewNode("panorama")
	geo := scene.Sphere(size, sphereSegments, sphereSegments).Scale(-1, 1, 1)
	n.Mesh = scene.NewMesh(geo, materials...)
	return n
}

type cubeStrategy struct{}

func (cubeStrategy) faceCount() int                     { return 6 }
func (cubeStrategy) defaultSize() float32               { return 200 }
func (cubeStrategy) thumbnailSize(size float32) float32 { return size }

// build maps right, left, up, down, front, back onto +X, -X, +Y, -Y, +Z, -Z.
// Mirroring Z puts the front face ahead of the default camera.
func (cubeStrategy) build(materials []*scene.Material, size float32) *scene.Node {
	n := scene.NewNode("panorama")
	n.Mesh = scene.NewMesh(scene.Box(size).Scale(1, 1, -1), materials...)
	return n
}

// cube24Strategy splits each face into a 2x2 grid of tiles in the order
// 1_1, 1_2, 2_1, 2_2. Faces follow the cube order.
type cube24Strategy struct{}

func (cube24Strategy) faceCount() int                     { return 24 }
func (cube24Strategy) defaultSize() float32               { return 200 }
func (cube24Strategy) thumbnailSize(size float32) float32 { return size + 0.1 }

// tileRatio is the width of the first tile column over the second
const tileRatio = 1.0

var (
	axisX = math32.Vec3(1, 0, 0)
	axisY = math32.Vec3(0, 1, 0)
	axisZ = math32.Vec3(0, 0, 1)
)

func (s cube24Strategy) build(materials []*scene.Material, size float32) *scene.Node {
	root := scene.NewNode("panorama")
	root.Scale = math32.Vec3(1, 1, -1)
	h := size / 2

	face := func(name string, i int) *scene.Node {
		f := s.face(name, materials[i*4:i*4+4], size)
		root.Add(f)
		return f
	}

	right := face("right", 0)
	right.RotateOnAxis(axisY, -math32.Pi/2)
	right.Position = math32.Vec3(h, 0, 0)

	left := face("left", 1)
	left.RotateOnAxis(axisY, math32.Pi/2)
	left.Position = math32.Vec3(-h, 0, 0)

	up := face("up", 2)
	up.RotateOnAxis(axisX, -math32.Pi/2)
	up.RotateOnAxis(axisZ, math32.Pi)
	up.RotateOnAxis(axisX, math32.Pi)
	up.Position = math32.Vec3(0, h, 0)

	down := face("down", 3)
	down.RotateOnAxis(axisX, math32.Pi/2)
	down.RotateOnAxis(axisZ, math32.Pi)
	down.RotateOnAxis(axisX, math32.Pi)
	down.Position = math32.Vec3(0, -h, 0)

	front := face("front", 4)
	front.RotateOnAxis(axisY, math32.Pi)
	front.Position = math32.Vec3(0, 0, h)

	back := face("back", 5)
	back.Position = math32.Vec3(0, 0, -h)

	return root
}

func (cube24Strategy) face(name string, materials []*scene.Material, size float32) *scene.Node {
	w0 := size * (tileRatio / (tileRatio + 1))
	w1 := size - w0
	tiles := []struct {
		w, h float32
		pos  math32.Vector3
	}{
		{w0, w0, math32.Vec3(w1/2, w1/2, 0)},
		{w1, w0, math32.Vec3(-w0/2, w1/2, 0)},
		{w0, w1, math32.Vec3(w1/2, -w0/2, 0)},
		{w1, w1, math32.Vec3(-w0/2, -w0/2, 0)},
	}
	f := scene.NewNode(name)
	for i, t := range tiles {
		tile := scene.NewNode(fmt.Sprintf("%s_%d_%d", name, i/2+1, i%2+1))
		tile.Mesh = scene.NewMesh(scene.Plane(t.w, t.h).Scale(-1, 1, 1), materials[i])
		tile.Position = t.pos
		f.Add(tile)
	}
	return f
}

// thumbnailCube builds the low resolution cube shown while full textures load
func thumbnailCube(materials []*scene.Material, size float32) *scene.Node {
	n := scene.NewNode("thumbnail")
	n.Mesh = scene.NewMesh(scene.Box(size).Scale(1, 1, -1), materials...)
	return n
}
