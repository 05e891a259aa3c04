package tour

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var importFormats = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".tga": true, ".bmp": true}

// faceNames lists accepted base names per cube face, in face order
var faceNames = [6][]string{
	{"right", "r", "pano_r"},
	{"left", "l", "pano_l"},
	{"up", "top", "u", "pano_u"},
	{"down", "bottom", "d", "pano_d"},
	{"front", "f", "pano_f"},
	{"back", "b", "pano_b"},
}

// IsImageFile reports whether path has an importable image extension
func IsImageFile(path string) bool {
	return importFormats[strings.ToLower(filepath.Ext(path))]
}

// ImportFiles builds a single viewpoint tour from 1 or 6 local images.
// Six images are matched to cube faces by their base names.
func ImportFiles(files []string) (*Tour, error) {
	var images []string
	for _, f := range files {
		if IsImageFile(f) {
			images = append(images, f)
		}
	}

	vp := &Viewpoint{
		ID:               "viewpoint_1",
		Position:         &[3]float32{0, 1, 0},
		InitialDirection: &[3]float32{0, 0, 1},
	}

	switch len(images) {
	case 1:
		vp.Panoramas = []Panorama{{ID: "panorama_1", Images: images}}
	case 6:
		ordered, err := orderCubeFaces(images)
		if err != nil {
			return nil, err
		}
		vp.Panoramas = []Panorama{{ID: "panorama_1", Images: ordered}}
	default:
		return nil, fmt.Errorf("%w: expected 1 or 6 images, got %d", ErrInvalid, len(images))
	}

	return &Tour{Viewpoints: []*Viewpoint{vp}}, nil
}

// ImportDir imports the images found directly in dir
func ImportDir(dir string) (*Tour, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return ImportFiles(files)
}

func orderCubeFaces(images []string) ([]string, error) {
	ordered := make([]string, 6)
	for face, names := range faceNames {
		for _, img := range images {
			base := strings.ToLower(filepath.Base(img))
			if i := strings.Index(base, "."); i >= 0 {
				base = base[:i]
			}
			if contains(names, base) {
				ordered[face] = img
				break
			}
		}
		if ordered[face] == "" {
			return nil, fmt.Errorf("%w: no image named %s", ErrInvalid, strings.Join(names, "/"))
		}
	}
	return ordered, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
