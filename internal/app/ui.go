package app

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gopano/internal/viewer"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/version"
)

const (
	messageDuration = 3
	fontSize        = float32(16)
	smallFontSize   = float32(14)
	lineHeight      = float32(20)
)

var helpLines = []string{
	"Drag: look around   Wheel: zoom   Arrows: rotate",
	"Tab/Shift+Tab: next/previous viewpoint   N/Shift+N: panorama",
	"H: home view   Shift+H: set home view   Space: auto rotate",
	"V: hotpoints   I: info   Shift+X: clear image cache",
}

// notify shows a short message at the bottom of the window
func (app *App) notify(msg string) {
	app.UI.message = msg
	app.UI.messageUntil = rl.GetTime() + messageDuration
}

// drawOverlays draws the hotpoint markers on top of the scene
func (app *App) drawOverlays() {
	cam := app.Viewer.Camera
	for _, n := range app.Viewer.Viewpoints.Overlays() {
		p, ok := cam.ToScreen(n.WorldPosition())
		if !ok {
			continue
		}
		center := rl.Vector2{X: p.X, Y: p.Y}
		hovered := n.Name == app.Interaction.hoveredLabel

		radius := float32(viewer.OverlayRadius) * 0.6
		fill := rl.NewColor(255, 255, 255, 200)
		if hovered {
			radius = viewer.OverlayRadius * 0.8
			fill = rl.NewColor(255, 210, 60, 230)
		}
		rl.DrawCircleV(center, radius, fill)
		rl.DrawCircleLines(int32(center.X), int32(center.Y), radius, rl.NewColor(0, 0, 0, 160))

		text := viewer.OverlayLabel(n.Overlay.HTML)
		if text == "" {
			continue
		}
		size := rl.MeasureTextEx(app.UI.font, text, smallFontSize, 1)
		pos := rl.Vector2{X: center.X - size.X/2, Y: center.Y + radius + 4}
		rl.DrawRectangle(int32(pos.X-4), int32(pos.Y-2), int32(size.X+8), int32(size.Y+4), rl.NewColor(0, 0, 0, 160))
		rl.DrawTextEx(app.UI.font, text, pos, smallFontSize, 1, rl.White)
	}
}

// drawUI draws the loading spinner, the message line and the info panel
func (app *App) drawUI() {
	screenWidth := float32(rl.GetScreenWidth())
	screenHeight := float32(rl.GetScreenHeight())
	now := rl.GetTime()

	// Loading indicator
	if app.Viewer.Busy() > 0 {
		if app.UI.spinnerStart == 0 {
			app.UI.spinnerStart = now
		}
		elapsed := now - app.UI.spinnerStart
		center := rl.Vector2{X: screenWidth - 40, Y: 40}
		start := float32(elapsed*360) - 90
		rl.DrawCircleV(center, 24, rl.NewColor(0, 0, 0, 140))
		rl.DrawRing(center, 12, 18, start, start+270, 32, rl.White)
	} else {
		app.UI.spinnerStart = 0
	}

	if app.UI.message != "" && now < app.UI.messageUntil {
		size := rl.MeasureTextEx(app.UI.font, app.UI.message, fontSize, 1)
		x := (screenWidth - size.X) / 2
		y := screenHeight - size.Y - 30
		rl.DrawRectangle(int32(x-10), int32(y-6), int32(size.X+20), int32(size.Y+12), rl.NewColor(0, 0, 0, 200))
		rl.DrawTextEx(app.UI.font, app.UI.message, rl.Vector2{X: x, Y: y}, fontSize, 1, rl.Yellow)
	}

	if !app.View.showInfo {
		rl.DrawTextEx(app.UI.font, "I: info", rl.Vector2{X: 10, Y: screenHeight - 24}, smallFontSize, 1, rl.NewColor(0, 0, 0, 120))
		return
	}
	app.drawInfo()
}

func (app *App) drawInfo() {
	v := app.Viewer
	sel := app.Session.Selection()
	pos, dir := v.CameraPositionAndDirection()
	info := v.RenderInfo()

	lines := []struct {
		text  string
		color rl.Color
	}{
		{fmt.Sprintf("GoPano %s", version.GetFullVersion()), rl.Yellow},
		{fmt.Sprintf("  Tour: %s", app.Session.Path()), rl.White},
		{fmt.Sprintf("  Viewpoint: %s  Panorama: %s", sel.ViewpointID, sel.PanoramaID), rl.White},
		{fmt.Sprintf("  Camera: %s", geometry.Format(pos)), rl.White},
		{fmt.Sprintf("  Direction: %s", geometry.Format(dir)), rl.White},
		{fmt.Sprintf("  Fov: %.1f°  Zoom: %.2f", v.Camera.EffectiveFov(), v.Zoom()), rl.White},
		{fmt.Sprintf("  Meshes: %d  Quads: %d  Textures: %d  Hotpoints: %d", info.Meshes, info.Quads, info.Textures, info.Overlays), rl.NewColor(100, 200, 255, 255)},
		{fmt.Sprintf("  Cache: %s  FPS: %d", app.cacheStatus(), rl.GetFPS()), rl.NewColor(100, 200, 255, 255)},
	}
	for _, p := range v.Plugins() {
		lines = append(lines, struct {
			text  string
			color rl.Color
		}{fmt.Sprintf("  Plugin: %s", p.ID()), rl.Green})
	}

	height := lineHeight*float32(len(lines)+len(helpLines)+1) + 10
	rl.DrawRectangle(0, 0, 560, int32(height), rl.NewColor(0, 0, 0, 180))
	y := float32(10)
	for _, l := range lines {
		rl.DrawTextEx(app.UI.font, l.text, rl.Vector2{X: 10, Y: y}, smallFontSize, 1, l.color)
		y += lineHeight
	}
	y += lineHeight / 2
	for _, h := range helpLines {
		rl.DrawTextEx(app.UI.font, h, rl.Vector2{X: 10, Y: y}, smallFontSize, 1, rl.LightGray)
		y += lineHeight
	}
}

// cacheStatus lists the store at most once per second
func (app *App) cacheStatus() string {
	if !app.cache.Enabled() {
		return "off"
	}
	if now := rl.GetTime(); now-app.UI.cacheCheckedAt > 1 {
		app.UI.cacheCount = app.cache.Len()
		app.UI.cacheCheckedAt = now
	}
	return fmt.Sprintf("%d images", app.UI.cacheCount)
}
