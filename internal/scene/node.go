// Package scene is the retained scene graph the viewer builds and the
// render backend draws. Nodes form a tree; a node may carry a Mesh (textured
// geometry) or an Overlay (a screen space marker anchored at the node).
// GPU resources are owned by the backend and released through the Dispose
// methods of Geometry and Texture.
package scene

import (
	"sync/atomic"

	"cogentcore.org/core/math32"
)

var nodeIDs atomic.Uint64

// Node is an element of the scene tree
type Node struct {
	ID          uint64
	Name        string
	Position    math32.Vector3
	Rotation    math32.Quat
	Scale       math32.Vector3
	Visible     bool
	RenderOrder int
	// Layers is a bit mask used to filter picking
	Layers uint32
	// UserData is opaque payload owned by whoever created the node
	UserData any
	Mesh     *Mesh
	Overlay  *Overlay

	parent   *Node
	children []*Node
}

// NewNode creates a visible node with identity transform on layer 0
func NewNode(name string) *Node {
	return &Node{
		ID:       nodeIDs.Add(1),
		Name:     name,
		Rotation: identity(),
		Scale:    math32.Vec3(1, 1, 1),
		Visible:  true,
		Layers:   1,
	}
}

// Parent returns the parent node or nil
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Add attaches children, detaching them from a previous parent first
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		c.RemoveFromParent()
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches a direct child
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// RemoveFromParent detaches n from its parent, if any
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// Clear detaches every child
func (n *Node) Clear() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Child returns the direct child with the given name
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find returns the first node named name in depth first order, n included
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindByID returns the node with the given id in the subtree of n
func (n *Node) FindByID(id uint64) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// Walk visits n and its descendants depth first until fn returns false
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// IsAttachedTo reports whether root is n or one of its ancestors
func (n *Node) IsAttachedTo(root *Node) bool {
	for c := n; c != nil; c = c.parent {
		if c == root {
			return true
		}
	}
	return false
}

// WorldVisible reports whether n and all its ancestors are visible
func (n *Node) WorldVisible() bool {
	for c := n; c != nil; c = c.parent {
		if !c.Visible {
			return false
		}
	}
	return true
}

// SetScale sets a uniform scale
func (n *Node) SetScale(s float32) {
	n.Scale = math32.Vec3(s, s, s)
}

// RotateOnAxis rotates n around axis in its local space
func (n *Node) RotateOnAxis(axis math32.Vector3, angle float32) {
	n.Rotation = mulQuat(n.Rotation, math32.NewQuatAxisAngle(axis.Normal(), angle))
}

// LocalToWorld transforms a point from the local space of n to world space
func (n *Node) LocalToWorld(p math32.Vector3) math32.Vector3 {
	for c := n; c != nil; c = c.parent {
		p = c.Position.Add(p.Mul(c.Scale).MulQuat(c.Rotation))
	}
	return p
}

// WorldPosition returns the origin of n in world space
func (n *Node) WorldPosition() math32.Vector3 {
	return n.LocalToWorld(math32.Vector3{})
}

// WorldBounds returns the world space bounding box of every mesh in the subtree
func (n *Node) WorldBounds() math32.Box3 {
	box := math32.B3Empty()
	n.Walk(func(c *Node) bool {
		if c.Mesh == nil || c.Mesh.Geometry == nil {
			return true
		}
		for _, g := range c.Mesh.Geometry.Groups {
			for _, q := range g.Quads {
				for _, v := range q {
					box.ExpandByPoint(c.LocalToWorld(v.Pos))
				}
			}
		}
		return true
	})
	return box
}

func identity() math32.Quat {
	return math32.Quat{W: 1}
}

// mulQuat returns the Hamilton product a*b: rotating by it applies b first
func mulQuat(a, b math32.Quat) math32.Quat {
	return math32.Quat{
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}
