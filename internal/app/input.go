package app

import (
	"context"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gopano/internal/camera"
	"github.com/philipparndt/gopano/internal/viewer"
)

var mouseButtons = [3]struct {
	rl     rl.MouseButton
	button camera.Button
}{
	{rl.MouseLeftButton, camera.ButtonLeft},
	{rl.MouseMiddleButton, camera.ButtonMiddle},
	{rl.MouseRightButton, camera.ButtonRight},
}

var arrowKeys = map[int32]string{
	rl.KeyLeft:  "ArrowLeft",
	rl.KeyRight: "ArrowRight",
	rl.KeyUp:    "ArrowUp",
	rl.KeyDown:  "ArrowDown",
}

// handleInput translates raylib input into viewer events and handles the
// application shortcuts
func (app *App) handleInput(ctx context.Context) {
	v := app.Viewer
	pos := rl.GetMousePosition()

	for i, b := range mouseButtons {
		if rl.IsMouseButtonPressed(b.rl) {
			app.Interaction.buttonsDown[i] = true
			v.HandleInput(viewer.InputEvent{Kind: viewer.PointerDown, X: pos.X, Y: pos.Y, Button: b.button})
		}
	}
	if pos != app.Interaction.lastMousePos {
		v.HandleInput(viewer.InputEvent{Kind: viewer.PointerMove, X: pos.X, Y: pos.Y})
	}
	for i, b := range mouseButtons {
		if rl.IsMouseButtonReleased(b.rl) && app.Interaction.buttonsDown[i] {
			app.Interaction.buttonsDown[i] = false
			v.HandleInput(viewer.InputEvent{Kind: viewer.PointerUp, X: pos.X, Y: pos.Y, Button: b.button})
		}
	}
	app.Interaction.lastMousePos = pos

	// raylib reports scrolling away from the user as positive
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.HandleInput(viewer.InputEvent{Kind: viewer.Wheel, Delta: -wheel})
	}

	for key, code := range arrowKeys {
		if rl.IsKeyPressed(key) || rl.IsKeyPressedRepeat(key) {
			v.HandleInput(viewer.InputEvent{Kind: viewer.KeyDown, Key: code})
		}
	}

	app.updateHover(pos)
	app.handleShortcuts(ctx)
}

func (app *App) updateHover(pos rl.Vector2) {
	app.Interaction.hoveredLabel = ""
	if n, ok := app.Viewer.OverlayAt(pos.X, pos.Y); ok {
		app.Interaction.hoveredLabel = n.Name
		rl.SetMouseCursor(rl.MouseCursorPointingHand)
		return
	}
	rl.SetMouseCursor(rl.MouseCursorDefault)
}

func (app *App) handleShortcuts(ctx context.Context) {
	v := app.Viewer
	shiftPressed := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
	step := 1
	if shiftPressed {
		step = -1
	}

	switch {
	case rl.IsKeyPressed(rl.KeyH) && shiftPressed:
		app.saveHomeView()
	case rl.IsKeyPressed(rl.KeyH), rl.IsKeyPressed(rl.KeyHome):
		if _, ok := v.HomeView(); !ok {
			app.notify("No home view, press Shift+H to set one")
		} else if err := v.GoToHomeView(); err != nil {
			slog.Warn("failed to go to home view", "component", "app", "err", err)
		}
	case rl.IsKeyPressed(rl.KeyTab):
		app.report(app.Session.NextViewpoint(ctx, step))
	case rl.IsKeyPressed(rl.KeyN):
		app.report(app.Session.NextPanorama(ctx, step))
	case rl.IsKeyPressed(rl.KeySpace):
		v.SetAutoRotateEnabled(!v.AutoRotateEnabled())
	case rl.IsKeyPressed(rl.KeyI):
		app.View.showInfo = !app.View.showInfo
	case rl.IsKeyPressed(rl.KeyV):
		app.View.showHotpoints = !app.View.showHotpoints
		v.Viewpoints.SetHotpointsVisibility(app.View.showHotpoints, "", nil)
	case rl.IsKeyPressed(rl.KeyX) && shiftPressed:
		if err := v.ClearImageCache(ctx); err != nil {
			app.notify(fmt.Sprintf("Clearing cache failed: %v", err))
		} else {
			app.notify("Image cache cleared")
		}
	}
}

func (app *App) report(err error) {
	if err != nil {
		slog.Error("navigation failed", "component", "app", "err", err)
		app.notify(err.Error())
	}
}
