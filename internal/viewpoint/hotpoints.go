package viewpoint

import (
	"log/slog"
	"slices"

	"cogentcore.org/core/math32"
	"github.com/philipparndt/gopano/internal/scene"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/tour"
)

// OverlayClass is the class name of hotpoint overlays
const OverlayClass = "hotpoint"

func (m *Manager) newOverlay(hp tour.Hotpoint, viewPos math32.Vector3) *scene.Node {
	n := scene.NewNode(hp.HotpointID)
	n.Position = m.anchor(geometry.FromArray(hp.AnchorPosition), viewPos)
	n.Visible = hp.IsVisible()
	n.Overlay = &scene.Overlay{HTML: hp.HTML, ClassName: OverlayClass, Payload: hp}
	n.UserData = hp
	return n
}

// anchor moves points closer than the near plane out to distance+1 along
// the same direction, so they are not clipped
func (m *Manager) anchor(p, viewPos math32.Vector3) math32.Vector3 {
	d := p.DistanceTo(viewPos)
	if d >= m.camera.Near() {
		return p
	}
	dir := p.Sub(viewPos)
	if dir.Length() == 0 {
		dir = math32.Vec3(0, 0, -1)
	}
	return viewPos.Add(dir.Normal().MulScalar(d + 1))
}

func (m *Manager) hotpointGroup(viewpointID string, create bool) *scene.Node {
	group := m.root.Child(viewpointID)
	if group == nil {
		if !create {
			return nil
		}
		group = scene.NewNode(viewpointID)
		m.root.Add(group)
	}
	hp := group.Child(HotpointGroup)
	if hp == nil && create {
		hp = scene.NewNode(HotpointGroup)
		group.Add(hp)
	}
	return hp
}

// AddHotpoints adds hotpoints to the active viewpoint. A hotpoint whose id
// already exists is skipped with a warning.
func (m *Manager) AddHotpoints(hotpoints []tour.Hotpoint) {
	vp, ok := m.Viewpoint(m.active.ViewpointID)
	if !ok {
		slog.Warn("no active viewpoint to add hotpoints to", "component", "viewpoint")
		return
	}
	group := m.hotpointGroup(vp.ID, true)
	pos := viewpointPosition(vp)
	for _, hp := range hotpoints {
		if vp.HotpointIndex(hp.HotpointID) >= 0 {
			slog.Warn("hotpoint already exists", "component", "viewpoint", "viewpoint", vp.ID, "hotpoint", hp.HotpointID)
			continue
		}
		group.Add(m.newOverlay(hp, pos))
		vp.Hotpoints = append(vp.Hotpoints, hp)
	}
}

// RemoveHotpoints removes hotpoints from the active viewpoint
func (m *Manager) RemoveHotpoints(ids []string) {
	vp, ok := m.Viewpoint(m.active.ViewpointID)
	if !ok {
		return
	}
	group := m.hotpointGroup(vp.ID, false)
	for _, id := range ids {
		if group != nil {
			if n := group.Child(id); n != nil {
				n.RemoveFromParent()
			}
		}
		if i := vp.HotpointIndex(id); i >= 0 {
			vp.Hotpoints = slices.Delete(vp.Hotpoints, i, i+1)
		}
	}
}

// SetHotpointsVisibility shows or hides the given hotpoints of a viewpoint.
// Without a viewpoint or without ids it applies to every hotpoint of every
// viewpoint.
func (m *Manager) SetHotpointsVisibility(visible bool, viewpointID string, ids []string) {
	if viewpointID == "" || len(ids) == 0 {
		for _, vp := range m.viewpoints {
			m.setVisibility(vp, visible, nil)
		}
		return
	}
	vp, ok := m.Viewpoint(viewpointID)
	if !ok {
		slog.Warn("viewpoint not found", "component", "viewpoint", "viewpoint", viewpointID)
		return
	}
	m.setVisibility(vp, visible, ids)
}

func (m *Manager) setVisibility(vp *tour.Viewpoint, visible bool, ids []string) {
	match := func(id string) bool { return ids == nil || slices.Contains(ids, id) }
	for i := range vp.Hotpoints {
		if match(vp.Hotpoints[i].HotpointID) {
			v := visible
			vp.Hotpoints[i].Visible = &v
		}
	}
	group := m.hotpointGroup(vp.ID, false)
	if group == nil {
		return
	}
	for _, n := range group.Children() {
		if match(n.Name) {
			n.Visible = visible
		}
	}
}

// Overlays returns the hotpoint overlays that are currently visible
func (m *Manager) Overlays() []*scene.Node {
	var out []*scene.Node
	m.root.Walk(func(n *scene.Node) bool {
		if n.Overlay != nil && n.WorldVisible() {
			out = append(out, n)
		}
		return true
	})
	return out
}
