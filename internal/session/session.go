// Package session ties a tour file to a viewer: it loads the tour, keeps
// it in sync with the file on disk and navigates between viewpoints.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/philipparndt/gopano/internal/event"
	"github.com/philipparndt/gopano/internal/viewer"
	"github.com/philipparndt/gopano/internal/viewpoint"
	"github.com/philipparndt/gopano/pkg/tour"
	"github.com/philipparndt/gopano/pkg/watcher"
)

const reloadDebounce = 500 * time.Millisecond

// Load reads a tour from a JSON or YAML tour file, a single panorama image
// or a directory of images
func Load(path string) (*tour.Tour, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if info.IsDir() {
		return tour.ImportDir(path)
	}
	if tour.IsImageFile(path) {
		return tour.ImportFiles([]string{path})
	}
	return tour.Parse(path)
}

// Session is used from the render loop, except for the reload goroutines
// started by Watch
type Session struct {
	path   string
	viewer *viewer.Viewer
	tour   *tour.Tour

	reloads     chan *tour.Tour
	watcher     *watcher.FileWatcher
	unsubscribe event.Unsubscribe
}

// New loads path into v and activates the first panorama
func New(ctx context.Context, v *viewer.Viewer, path string) (*Session, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	s := &Session{
		path:    path,
		viewer:  v,
		reloads: make(chan *tour.Tour, 1),
	}
	s.unsubscribe = v.HotpointClick.Subscribe(func(hp tour.Hotpoint) {
		s.follow(ctx, hp)
	})
	if err := s.apply(ctx, t); err != nil {
		s.unsubscribe()
		return nil, err
	}
	return s, nil
}

// Path returns the loaded tour location
func (s *Session) Path() string { return s.path }

// Tour returns the current tour
func (s *Session) Tour() *tour.Tour { return s.tour }

// Watch reloads the tour whenever its file changes, until ctx is done.
// Directories and single images are not watched.
func (s *Session) Watch(ctx context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}
	if info.IsDir() || tour.IsImageFile(s.path) {
		return nil
	}

	fw, err := watcher.NewFileWatcher(reloadDebounce)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(s.path); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch files: %w", err)
	}
	s.watcher = fw
	slog.Info("watching tour for changes", "component", "session", "path", s.path)

	go fw.Run(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case changed, ok := <-fw.Changes():
				if !ok {
					return
				}
				slog.Info("tour changed", "component", "session", "path", changed)
				t, err := Load(s.path)
				if err != nil {
					slog.Error("failed to reload tour", "component", "session", "err", err)
					continue
				}
				s.offer(t)
			}
		}
	}()
	return nil
}

// offer queues t, replacing a reload that was not applied yet
func (s *Session) offer(t *tour.Tour) {
	for {
		select {
		case s.reloads <- t:
			return
		default:
		}
		select {
		case <-s.reloads:
		default:
		}
	}
}

// ApplyReload swaps in a reloaded tour if one is pending. The active
// selection and the camera direction are kept when they still exist.
func (s *Session) ApplyReload(ctx context.Context) (bool, error) {
	select {
	case t := <-s.reloads:
		start := time.Now()
		if err := s.apply(ctx, t); err != nil {
			return false, err
		}
		slog.Info("tour reloaded", "component", "session", "viewpoints", len(t.Viewpoints), "took", time.Since(start))
		return true, nil
	default:
		return false, nil
	}
}

func (s *Session) apply(ctx context.Context, t *tour.Tour) error {
	if len(t.Viewpoints) == 0 {
		return fmt.Errorf("%w: tour has no viewpoints", tour.ErrInvalid)
	}
	prev := s.viewer.Viewpoints.Active()
	s.tour = t
	s.viewer.SetViewpoints(t.Viewpoints)

	if vp, ok := t.Viewpoint(prev.ViewpointID); ok {
		if _, ok := vp.Panorama(prev.PanoramaID); ok {
			return s.viewer.ActivatePanorama(ctx, prev.ViewpointID, prev.PanoramaID, false)
		}
	}
	first := t.Viewpoints[0]
	return s.viewer.ActivatePanorama(ctx, first.ID, firstPanorama(first), true)
}

func firstPanorama(vp *tour.Viewpoint) string {
	if len(vp.Panoramas) == 0 {
		return ""
	}
	return vp.Panoramas[0].ID
}

// NextViewpoint activates the viewpoint step positions away from the
// active one, wrapping around
func (s *Session) NextViewpoint(ctx context.Context, step int) error {
	vps := s.tour.Viewpoints
	i := s.viewpointIndex(s.viewer.Viewpoints.Active().ViewpointID)
	next := vps[wrap(i+step, len(vps))]
	return s.viewer.ActivatePanorama(ctx, next.ID, firstPanorama(next), true)
}

// NextPanorama cycles through the panoramas of the active viewpoint and
// keeps the viewing direction
func (s *Session) NextPanorama(ctx context.Context, step int) error {
	active := s.viewer.Viewpoints.Active()
	vp, ok := s.tour.Viewpoint(active.ViewpointID)
	if !ok {
		return errors.New("no active viewpoint")
	}
	i := 0
	for j, p := range vp.Panoramas {
		if p.ID == active.PanoramaID {
			i = j
		}
	}
	next := vp.Panoramas[wrap(i+step, len(vp.Panoramas))]
	return s.viewer.ActivatePanorama(ctx, vp.ID, next.ID, false)
}

// follow navigates to the viewpoint named by a clicked hotpoint
func (s *Session) follow(ctx context.Context, hp tour.Hotpoint) {
	vp, ok := s.tour.Viewpoint(hp.HotpointID)
	if !ok {
		return
	}
	if err := s.viewer.ActivatePanorama(ctx, vp.ID, firstPanorama(vp), true); err != nil {
		slog.Error("failed to follow hotpoint", "component", "session", "hotpoint", hp.HotpointID, "err", err)
	}
}

func (s *Session) viewpointIndex(id string) int {
	for i, vp := range s.tour.Viewpoints {
		if vp.ID == id {
			return i
		}
	}
	return 0
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

// Selection returns the active selection
func (s *Session) Selection() viewpoint.Selection {
	return s.viewer.Viewpoints.Active()
}

// Close stops watching and following hotpoints
func (s *Session) Close() error {
	s.unsubscribe()
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
