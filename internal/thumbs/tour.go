package thumbs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/philipparndt/gopano/internal/pano"
	"github.com/philipparndt/gopano/pkg/tour"
)

// ForTour generates thumbnails for every panorama of t that has none, or
// for all of them when overwrite is set. Image paths of t are read
// relative to baseDir; the thumbnail paths written back to t are relative
// to baseDir as well when possible. It returns the number of panoramas
// updated.
func ForTour(ctx context.Context, src pano.ImageSource, t *tour.Tour, baseDir, outDir string, size int, overwrite bool) (int, error) {
	n := 0
	for _, vp := range t.Viewpoints {
		for i := range vp.Panoramas {
			p := &vp.Panoramas[i]
			if len(p.Thumbnails) > 0 && !overwrite {
				continue
			}
			urls := make([]string, len(p.Images))
			for j, img := range p.Images {
				urls[j] = resolve(baseDir, img)
			}

			prefix := vp.ID + "_" + p.ID
			paths, err := Generate(ctx, src, urls, outDir, prefix, size)
			if err != nil {
				return n, fmt.Errorf("viewpoint %q panorama %q: %w", vp.ID, p.ID, err)
			}
			p.Thumbnails = relativeTo(baseDir, paths)
			n++
			slog.Info("thumbnails written", "component", "thumbs", "viewpoint", vp.ID, "panorama", p.ID)
		}
	}
	return n, nil
}

func resolve(baseDir, p string) string {
	if tour.IsRemote(p) || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func relativeTo(baseDir string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(baseDir, p)
		if err != nil {
			rel = p
		}
		out[i] = filepath.ToSlash(rel)
	}
	return out
}
