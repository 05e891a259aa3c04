package tour

// Tour is the set of viewpoints a viewer navigates
type Tour struct {
	Name       string       `json:"name,omitempty" yaml:"name,omitempty"`
	Viewpoints []*Viewpoint `json:"viewpoints" yaml:"viewpoints"`
}

// Viewpoint is a navigable location containing one or more panoramas
type Viewpoint struct {
	ID               string      `json:"id" yaml:"id"`
	Name             string      `json:"name,omitempty" yaml:"name,omitempty"`
	Position         *[3]float32 `json:"position,omitempty" yaml:"position,omitempty"`
	InitialDirection *[3]float32 `json:"initialDirection,omitempty" yaml:"initialDirection,omitempty"`
	Panoramas        []Panorama  `json:"panoramas" yaml:"panoramas"`
	Hotpoints        []Hotpoint  `json:"hotpoints,omitempty" yaml:"hotpoints,omitempty"`
}

// Panorama is one complete 360 degree image set at a viewpoint.
// Images hold 1, 6 or 24 urls. Six images are ordered right, left, up,
// down, front, back; 24 images carry four tiles (1_1, 1_2, 2_1, 2_2) per
// face in the same face order.
type Panorama struct {
	ID         string   `json:"id" yaml:"id"`
	Images     []string `json:"images" yaml:"images"`
	Thumbnails []string `json:"thumbnails,omitempty" yaml:"thumbnails,omitempty"`
}

// Hotpoint is a clickable marker anchored to a 3D point
type Hotpoint struct {
	HotpointID     string     `json:"hotpointId" yaml:"hotpointId"`
	AnchorPosition [3]float32 `json:"anchorPosition" yaml:"anchorPosition"`
	Visible        *bool      `json:"visible,omitempty" yaml:"visible,omitempty"`
	HTML           string     `json:"html" yaml:"html"`
}

// IsVisible returns the hotpoint visibility, true unless set otherwise
func (h Hotpoint) IsVisible() bool {
	return h.Visible == nil || *h.Visible
}

// Panorama returns the panorama with the given id
func (v *Viewpoint) Panorama(id string) (*Panorama, bool) {
	for i := range v.Panoramas {
		if v.Panoramas[i].ID == id {
			return &v.Panoramas[i], true
		}
	}
	return nil, false
}

// HotpointIndex returns the index of the hotpoint with the given id, or -1
func (v *Viewpoint) HotpointIndex(id string) int {
	for i := range v.Hotpoints {
		if v.Hotpoints[i].HotpointID == id {
			return i
		}
	}
	return -1
}

// Viewpoint returns the viewpoint with the given id
func (t *Tour) Viewpoint(id string) (*Viewpoint, bool) {
	for _, vp := range t.Viewpoints {
		if vp.ID == id {
			return vp, true
		}
	}
	return nil, false
}

// Images returns every image url referenced by the tour, thumbnails included
func (t *Tour) Images() []string {
	var urls []string
	for _, vp := range t.Viewpoints {
		for _, p := range vp.Panoramas {
			urls = append(urls, p.Images...)
			urls = append(urls, p.Thumbnails...)
		}
	}
	return urls
}
