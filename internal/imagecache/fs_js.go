//go:build js

package imagecache

import (
	"context"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/indexeddb"
)

// openFS returns an IndexedDB backed filesystem in the browser
func openFS(ctx context.Context, dir string) (hackpadfs.FS, string, error) {
	fs, err := indexeddb.NewFS(ctx, "gopano-images", indexeddb.Options{})
	if err != nil {
		return nil, "", err
	}
	if dir == "" {
		dir = "images"
	}
	return fs, dir, nil
}
