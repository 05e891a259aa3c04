package tour

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid tour")

// Parse reads a tour file and returns the Tour.
// JSON and YAML are supported; the format is detected from the extension,
// falling back to the first non-space byte. The file may hold either a
// tour object or a bare list of viewpoints. Relative image paths are
// resolved against the directory of the file.
func Parse(filename string) (*Tour, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tour file: %w", err)
	}

	t, err := Decode(data, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	t.ResolvePaths(filepath.Dir(filename))
	return t, nil
}

// Decode decodes tour data. ext is a file extension hint (".json", ".yaml", ".yml")
// and may be empty.
func Decode(data []byte, ext string) (*Tour, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalid)
	}

	isYAML := false
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		isYAML = true
	case ".json":
	default:
		isYAML = trimmed[0] != '{' && trimmed[0] != '['
	}

	t := &Tour{}
	if isYAML {
		if err := decodeYAML(trimmed, t); err != nil {
			return nil, err
		}
	} else if err := decodeJSON(trimmed, t); err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeJSON(data []byte, t *Tour) error {
	if data[0] == '[' {
		return json.Unmarshal(data, &t.Viewpoints)
	}
	return json.Unmarshal(data, t)
}

func decodeYAML(data []byte, t *Tour) error {
	var probe yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return err
	}
	if len(probe.Content) > 0 && probe.Content[0].Kind == yaml.SequenceNode {
		return probe.Content[0].Decode(&t.Viewpoints)
	}
	return probe.Decode(t)
}

// Encode writes the tour as indented JSON
func Encode(t *Tour) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// EncodeFor writes the tour in the format matching the extension ext,
// YAML for ".yaml" and ".yml" and JSON otherwise
func EncodeFor(t *Tour, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Marshal(t)
	default:
		return Encode(t)
	}
}

// ResolvePaths rewrites relative local image paths to be relative to baseDir.
// URLs with a scheme and absolute paths are left untouched.
func (t *Tour) ResolvePaths(baseDir string) {
	resolve := func(p string) string {
		if p == "" || strings.Contains(p, "://") || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	for _, vp := range t.Viewpoints {
		for i := range vp.Panoramas {
			pano := &vp.Panoramas[i]
			for j := range pano.Images {
				pano.Images[j] = resolve(pano.Images[j])
			}
			for j := range pano.Thumbnails {
				pano.Thumbnails[j] = resolve(pano.Thumbnails[j])
			}
		}
	}
}

// IsRemote reports whether location is a URL with a scheme other than file
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) < 2 {
		// single letter schemes are windows drive letters
		return false
	}
	return u.Scheme != "file"
}
