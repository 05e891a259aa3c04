//go:build !js

package imagecache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// openFS returns the host filesystem rooted at dir
func openFS(_ context.Context, dir string) (hackpadfs.FS, string, error) {
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return nil, "", err
		}
		dir = filepath.Join(cache, "gopano", "images")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", err
	}
	fs := osfs.NewFS()
	root, err := fs.FromOSPath(abs)
	if err != nil {
		return nil, "", err
	}
	return fs, root, nil
}
