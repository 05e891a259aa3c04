package thumbs

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"github.com/philipparndt/gopano/internal/pano"
)

// DefaultSize is the edge length of a generated face
const DefaultSize = 256

// Encode writes img as lossless WebP
func Encode(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, nil)
}

// Load fetches the images of a panorama concurrently, keeping their order
func Load(ctx context.Context, src pano.ImageSource, urls []string) ([]image.Image, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	images := make([]image.Image, len(urls))
	errs := make([]error, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := src.Get(ctx, url)
			if err != nil {
				errs[i] = fmt.Errorf("load %s: %w", url, err)
				cancel()
				return
			}
			images[i] = img
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return images, nil
}

// Generate renders the thumbnail faces of a panorama into dir as
// <prefix>_<face>.webp and returns the written paths in face order
func Generate(ctx context.Context, src pano.ImageSource, urls []string, dir, prefix string, size int) ([]string, error) {
	if _, err := pano.KindFor(len(urls)); err != nil {
		return nil, err
	}
	images, err := Load(ctx, src, urls)
	if err != nil {
		return nil, err
	}
	faces, err := Faces(images, size)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(faces))
	for i, face := range faces {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.webp", prefix, FaceSuffixes[i]))
		if err := writeFace(path, face); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFace(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
