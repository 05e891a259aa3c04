package viewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/philipparndt/gopano/internal/camera"
)

const homeViewVersion = "1.0"

// homeViewFile is the JSON structure of a saved home view
type homeViewFile struct {
	Version string      `json:"version"`
	Camera  camera.Info `json:"camera"`
}

// HomeViewPath returns where the home view of a tour file is stored
func HomeViewPath(tourFile string) string {
	return tourFile + ".home.json"
}

// SetHomeView remembers a camera snapshot to return to
func (v *Viewer) SetHomeView(info camera.Info) {
	v.homeView = &info
}

// HomeView returns the home view, if one is set
func (v *Viewer) HomeView() (camera.Info, bool) {
	if v.homeView == nil {
		return camera.Info{}, false
	}
	return *v.homeView, true
}

// GoToHomeView applies the home view. Without one nothing happens.
func (v *Viewer) GoToHomeView() error {
	if v.homeView == nil {
		return nil
	}
	return v.SetCameraInfo(*v.homeView)
}

// SaveHomeView writes the home view to path. Without a home view an
// existing file is removed.
func (v *Viewer) SaveHomeView(path string) error {
	if v.homeView == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	data, err := json.MarshalIndent(homeViewFile{Version: homeViewVersion, Camera: *v.homeView}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal home view: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write home view: %w", err)
	}
	return nil
}

// LoadHomeView reads a home view saved by SaveHomeView. A missing file is
// not an error and reports false.
func (v *Viewer) LoadHomeView(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read home view: %w", err)
	}
	var f homeViewFile
	if err := json.Unmarshal(data, &f); err != nil {
		return false, fmt.Errorf("failed to parse home view: %w", err)
	}
	v.SetHomeView(f.Camera)
	return true, nil
}
