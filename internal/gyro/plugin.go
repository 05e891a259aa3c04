package gyro

import (
	"log/slog"

	"github.com/philipparndt/gopano/internal/event"
	"github.com/philipparndt/gopano/internal/viewer"
)

type pluginState struct {
	unsubscribe event.Unsubscribe
	applied     uint64
}

// ID implements viewer.Plugin
func (s *Source) ID() string { return "gyro" }

// Install turns the camera to every new orientation, once per frame
func (s *Source) Install(v *viewer.Viewer) error {
	s.plugin.unsubscribe = v.OnAnimate.Subscribe(func(viewer.Frame) {
		s.Apply(v)
	})
	return nil
}

// Uninstall stops following the sensor
func (s *Source) Uninstall(*viewer.Viewer) {
	if s.plugin.unsubscribe != nil {
		s.plugin.unsubscribe()
		s.plugin.unsubscribe = nil
	}
}

// Apply turns the camera to the latest orientation if it changed since the
// last call. It reports whether the camera was moved.
func (s *Source) Apply(v *viewer.Viewer) bool {
	q, seq := s.Latest()
	if seq == s.plugin.applied {
		return false
	}
	s.plugin.applied = seq
	dir := Direction(q)
	if err := v.SetCameraPositionAndDirection(v.Camera.Position(), &dir); err != nil {
		slog.Debug("orientation not applied", "component", "gyro", "err", err)
		return false
	}
	return true
}
