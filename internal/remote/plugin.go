package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/philipparndt/gopano/internal/camera"
	"github.com/philipparndt/gopano/internal/event"
	"github.com/philipparndt/gopano/internal/viewer"
	"github.com/philipparndt/gopano/internal/viewpoint"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/tour"
)

// Message types sent to clients
const (
	TypeHotpointClick = "hotpointClick"
	TypeActivated     = "activated"
	TypeCamera        = "camera"
	TypeError         = "error"
)

// Command types accepted from clients
const (
	CmdActivate  = "activate"
	CmdCamera    = "setCamera"
	CmdHome      = "home"
	CmdLookAt    = "lookAt"
	CmdHotpoints = "hotpoints"
)

// Activate is the data of an activate command
type Activate struct {
	ViewpointID    string `json:"viewpointId"`
	PanoramaID     string `json:"panoramaId"`
	ResetDirection bool   `json:"resetDirection"`
}

// Hotpoints is the data of a hotpoints visibility command
type Hotpoints struct {
	Visible     bool     `json:"visible"`
	ViewpointID string   `json:"viewpointId,omitempty"`
	HotpointIDs []string `json:"hotpointIds,omitempty"`
}

// Selection is the data of an activated message
type Selection struct {
	ViewpointID string `json:"viewpointId"`
	PanoramaID  string `json:"panoramaId"`
}

type pluginState struct {
	unsubscribe []event.Unsubscribe
}

// ID implements viewer.Plugin
func (h *Hub) ID() string { return "remote" }

// Install forwards viewer events to the clients and applies queued
// commands once per frame
func (h *Hub) Install(v *viewer.Viewer) error {
	h.plugin.unsubscribe = append(h.plugin.unsubscribe,
		v.HotpointClick.Subscribe(func(hp tour.Hotpoint) {
			h.send(TypeHotpointClick, hp)
		}),
		v.Viewpoints.Activated.Subscribe(func(sel viewpoint.Selection) {
			h.send(TypeActivated, Selection{ViewpointID: sel.ViewpointID, PanoramaID: sel.PanoramaID})
		}),
		v.ControlChange.Subscribe(func(info camera.Info) {
			h.send(TypeCamera, info)
		}),
		v.OnAnimate.Subscribe(func(viewer.Frame) {
			h.Process(v)
		}),
	)
	return nil
}

// Uninstall stops forwarding
func (h *Hub) Uninstall(*viewer.Viewer) {
	for _, u := range h.plugin.unsubscribe {
		u()
	}
	h.plugin.unsubscribe = nil
}

func (h *Hub) send(typ string, v any) {
	if err := h.Broadcast(typ, v); err != nil {
		slog.Debug("broadcast skipped", "component", "remote", "type", typ, "err", err)
	}
}

// Process applies every queued command and returns how many it handled.
// It must run on the render loop.
func (h *Hub) Process(v *viewer.Viewer) int {
	n := 0
	for {
		select {
		case msg := <-h.commands:
			n++
			if err := apply(v, msg); err != nil {
				slog.Warn("remote command failed", "component", "remote", "type", msg.Type, "err", err)
				h.send(TypeError, map[string]string{"command": msg.Type, "error": err.Error()})
			}
		default:
			return n
		}
	}
}

func apply(v *viewer.Viewer, msg Message) error {
	switch msg.Type {
	case CmdActivate:
		var a Activate
		if err := decode(msg, &a); err != nil {
			return err
		}
		return v.ActivatePanorama(context.Background(), a.ViewpointID, a.PanoramaID, a.ResetDirection)
	case CmdCamera:
		var info camera.Info
		if err := decode(msg, &info); err != nil {
			return err
		}
		return v.SetCameraInfo(info)
	case CmdHome:
		return v.GoToHomeView()
	case CmdLookAt:
		var p [3]float32
		if err := decode(msg, &p); err != nil {
			return err
		}
		return v.LookToPosition(geometry.FromArray(p))
	case CmdHotpoints:
		var hp Hotpoints
		if err := decode(msg, &hp); err != nil {
			return err
		}
		v.Viewpoints.SetHotpointsVisibility(hp.Visible, hp.ViewpointID, hp.HotpointIDs)
		v.Invalidate()
		return nil
	default:
		return fmt.Errorf("unknown command %q", msg.Type)
	}
}

func decode(msg Message, v any) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("%s: missing data", msg.Type)
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return fmt.Errorf("%s: %w", msg.Type, err)
	}
	return nil
}
