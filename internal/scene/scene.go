package scene

import (
	"image/color"
)

// Overlay is a screen space marker that follows its node, such as a
// hotpoint label. HTML is rendered as plain text by backends that cannot
// lay out markup.
type Overlay struct {
	HTML      string
	ClassName string
	Payload   any
}

// Scene is the root of everything the viewer draws
type Scene struct {
	Root       *Node
	Background color.RGBA
}

// New creates an empty scene with a black background
func New() *Scene {
	return &Scene{
		Root:       NewNode("scene"),
		Background: color.RGBA{A: 255},
	}
}

// Info summarises the resources held by a scene
type Info struct {
	Nodes     int `json:"nodes"`
	Meshes    int `json:"meshes"`
	Overlays  int `json:"overlays"`
	Quads     int `json:"quads"`
	Materials int `json:"materials"`
	Textures  int `json:"textures"`
}

// Info counts the live resources reachable from the root
func (s *Scene) Info() Info {
	var info Info
	textures := map[uint64]struct{}{}
	s.Root.Walk(func(n *Node) bool {
		info.Nodes++
		if n.Overlay != nil {
			info.Overlays++
		}
		if n.Mesh == nil {
			return true
		}
		info.Meshes++
		if n.Mesh.Geometry != nil {
			info.Quads += n.Mesh.Geometry.QuadCount()
		}
		for _, m := range n.Mesh.Materials {
			if m.Disposed() {
				continue
			}
			info.Materials++
			if m.Texture != nil && !m.Texture.Disposed() {
				textures[m.Texture.ID] = struct{}{}
			}
		}
		return true
	})
	info.Textures = len(textures)
	return info
}
