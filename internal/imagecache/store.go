package imagecache

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"path"

	"github.com/hack-pad/hackpadfs"
)

const versionFile = "VERSION"

// store keeps one file per image under root. File names are the SHA-1 of
// the image URL so that any URL maps to a flat, valid name.
type store struct {
	fs   hackpadfs.FS
	root string
}

func newStore(fs hackpadfs.FS, root string) (*store, error) {
	if root == "" {
		root = "."
	}
	if err := hackpadfs.MkdirAll(fs, root, 0o755); err != nil {
		return nil, err
	}
	return &store{fs: fs, root: root}, nil
}

func (s *store) name(url string) string {
	sum := sha1.Sum([]byte(url))
	return path.Join(s.root, hex.EncodeToString(sum[:]))
}

// read returns the stored bytes, or nil without error on a miss
func (s *store) read(url string) ([]byte, error) {
	data, err := hackpadfs.ReadFile(s.fs, s.name(url))
	if errors.Is(err, hackpadfs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (s *store) write(url string, data []byte) error {
	return hackpadfs.WriteFullFile(s.fs, s.name(url), data, 0o644)
}

func (s *store) remove(url string) error {
	err := hackpadfs.Remove(s.fs, s.name(url))
	if errors.Is(err, hackpadfs.ErrNotExist) {
		return nil
	}
	return err
}

// clear removes every entry, the version marker included
func (s *store) clear() error {
	entries, err := hackpadfs.ReadDir(s.fs, s.root)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := hackpadfs.Remove(s.fs, path.Join(s.root, e.Name())); err != nil && !errors.Is(err, hackpadfs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// count returns the number of stored images
func (s *store) count() (int, error) {
	entries, err := hackpadfs.ReadDir(s.fs, s.root)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && e.Name() != versionFile {
			n++
		}
	}
	return n, nil
}

// checkVersion clears the store when its recorded format differs from version
func (s *store) checkVersion(version string) (cleared bool, err error) {
	name := path.Join(s.root, versionFile)
	data, err := hackpadfs.ReadFile(s.fs, name)
	if err != nil && !errors.Is(err, hackpadfs.ErrNotExist) {
		return false, err
	}
	if err == nil && string(data) == version {
		return false, nil
	}
	if err := s.clear(); err != nil {
		return false, err
	}
	return true, hackpadfs.WriteFullFile(s.fs, name, []byte(version), 0o644)
}
