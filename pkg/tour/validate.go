package tour

import "fmt"

// ValidImageCount reports whether n images can build a panorama mesh
func ValidImageCount(n int) bool {
	return n == 1 || n == 6 || n == 24
}

// Validate checks structural rules of the tour: non-empty unique viewpoint
// ids, non-empty panorama ids, 1/6/24 images and 0/6 thumbnails.
// Duplicate panorama ids inside a viewpoint are tolerated, a viewer picks
// the first one.
func (t *Tour) Validate() error {
	seen := make(map[string]bool, len(t.Viewpoints))
	for i, vp := range t.Viewpoints {
		if vp == nil {
			return fmt.Errorf("%w: viewpoint %d is empty", ErrInvalid, i)
		}
		if vp.ID == "" {
			return fmt.Errorf("%w: viewpoint %d has no id", ErrInvalid, i)
		}
		if seen[vp.ID] {
			return fmt.Errorf("%w: duplicated viewpoint id %q", ErrInvalid, vp.ID)
		}
		seen[vp.ID] = true
		if err := vp.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single viewpoint
func (v *Viewpoint) Validate() error {
	for j, p := range v.Panoramas {
		if p.ID == "" {
			return fmt.Errorf("%w: viewpoint %q panorama %d has no id", ErrInvalid, v.ID, j)
		}
		if !ValidImageCount(len(p.Images)) {
			return fmt.Errorf("%w: viewpoint %q panorama %q: expected 1/6/24 images, got %d",
				ErrInvalid, v.ID, p.ID, len(p.Images))
		}
		if len(p.Thumbnails) != 0 && len(p.Thumbnails) != 6 {
			return fmt.Errorf("%w: viewpoint %q panorama %q: expected 6 thumbnails, got %d",
				ErrInvalid, v.ID, p.ID, len(p.Thumbnails))
		}
	}
	for _, h := range v.Hotpoints {
		if h.HotpointID == "" {
			return fmt.Errorf("%w: viewpoint %q has a hotpoint without id", ErrInvalid, v.ID)
		}
	}
	return nil
}
