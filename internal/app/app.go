// Package app hosts the viewer in a raylib window. The viewer renders the
// scene into an offscreen target only when something changed; the window
// shows that target every frame with the hotpoint overlays and the HUD on
// top.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"cogentcore.org/core/base/errors"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gopano/internal/config"
	"github.com/philipparndt/gopano/internal/event"
	"github.com/philipparndt/gopano/internal/gyro"
	"github.com/philipparndt/gopano/internal/imagecache"
	"github.com/philipparndt/gopano/internal/remote"
	"github.com/philipparndt/gopano/internal/session"
	"github.com/philipparndt/gopano/internal/viewer"
	"github.com/philipparndt/gopano/internal/viewpoint"
)

type App struct {
	Viewer      *viewer.Viewer
	Session     *session.Session
	Render      RenderState
	Interaction InteractionState
	View        ViewSettings
	UI          UIState

	cfg      config.Config
	cache    *imagecache.Cache
	homePath string
}

// Run opens the window and shows the tour at path until the window is
// closed or ctx is done. cfg must be resolved.
func Run(ctx context.Context, cfg config.Config, path string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cache, err := imagecache.Open(ctx, imagecache.Options{
		Dir:      cfg.Cache.Dir,
		Disabled: !cfg.CacheEnabled(),
	})
	if err != nil {
		return err
	}
	defer func() { errors.Log(cache.Close()) }()

	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}
	opts := viewer.Options{
		Width:           cfg.Window.Width,
		Height:          cfg.Window.Height,
		FPS:             cfg.Window.FPS,
		Fov:             cfg.Window.Fov,
		Background:      &bg,
		Source:          cache,
		FadeIn:          cfg.FadeIn(),
		FadeOut:         cfg.FadeOut(),
		AutoRotate:      cfg.AutoRotateEnabled(),
		AutoRotateSpeed: cfg.AutoRotate.Speed,
		AutoRotateDelay: cfg.AutoRotateDelay(),
	}
	if cache.Enabled() {
		opts.Cache = cache
	}

	app := &App{
		Viewer:   viewer.New(opts),
		View:     ViewSettings{showHotpoints: true},
		cfg:      cfg,
		cache:    cache,
		homePath: cfg.HomeView,
	}
	if app.homePath == "" {
		app.homePath = viewer.HomeViewPath(path)
	}
	defer app.Viewer.Close()

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint) // Must be before InitWindow
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), "GoPano")
	defer rl.CloseWindow()
	rl.SetTargetFPS(refreshRate())
	rl.SetExitKey(0)

	app.UI.font = rl.GetFontDefault()
	app.Render.init(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	defer app.Render.unload()
	app.Viewer.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())

	if err := app.installPlugins(ctx); err != nil {
		return err
	}
	app.restoreHomeView()

	app.Session, err = session.New(ctx, app.Viewer, path)
	if err != nil {
		return err
	}
	defer func() { errors.Log(app.Session.Close()) }()
	if err := app.Session.Watch(ctx); err != nil {
		slog.Warn("auto-reload will not be available", "component", "app", "err", err)
	}

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if app.quitRequested() {
			break
		}
		app.frame(ctx)
	}
	return nil
}

// refreshRate returns the monitor refresh rate, 60 if unknown
func refreshRate() int32 {
	if hz := rl.GetMonitorRefreshRate(rl.GetCurrentMonitor()); hz > 0 {
		return int32(hz)
	}
	return 60
}

func (app *App) frame(ctx context.Context) {
	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		app.Render.resize(int32(w), int32(h))
		app.Viewer.Resize(w, h)
	}

	if _, err := app.Session.ApplyReload(ctx); err != nil {
		app.notify(fmt.Sprintf("Reload failed: %v", err))
		slog.Error("failed to apply reloaded tour", "component", "app", "err", err)
	}

	app.handleInput(ctx)
	app.Render.flushReleased()
	app.Viewer.Tick(rl.GetFrameTime(), app.drawScene)

	rl.BeginDrawing()
	rl.ClearBackground(toColor(app.Viewer.Background()))
	app.Render.blit()
	app.drawOverlays()
	app.drawUI()
	rl.EndDrawing()
}

// installPlugins attaches the remote control and the gyro sensor when
// they are configured
func (app *App) installPlugins(ctx context.Context) error {
	if addr := app.cfg.Remote.Listen; addr != "" {
		hub := remote.NewHub()
		if err := app.Viewer.AddPlugin(hub); err != nil {
			return err
		}
		go func() {
			if err := remote.Serve(ctx, addr, hub); err != nil {
				slog.Error("remote control stopped", "component", "app", "addr", addr, "err", err)
			}
		}()
		slog.Info("remote control listening", "component", "app", "addr", addr)
	}

	if port := app.cfg.Gyro.Port; port != "" {
		src := gyro.NewSource(port, app.cfg.Gyro.Baud)
		if err := app.Viewer.AddPlugin(src); err != nil {
			return err
		}
		go func() {
			if err := src.Run(ctx); err != nil {
				slog.Error("gyro stopped", "component", "app", "port", port, "err", err)
			}
		}()
	}
	return nil
}

// restoreHomeView loads the saved home view and applies it once the first
// panorama is shown, so the initial direction of the viewpoint does not
// override it
func (app *App) restoreHomeView() {
	ok, err := app.Viewer.LoadHomeView(app.homePath)
	if err != nil {
		slog.Warn("failed to load home view", "component", "app", "path", app.homePath, "err", err)
		return
	}
	if !ok {
		return
	}
	var unsubscribe event.Unsubscribe
	unsubscribe = app.Viewer.Viewpoints.Activated.Subscribe(func(viewpoint.Selection) {
		unsubscribe()
		if err := app.Viewer.GoToHomeView(); err != nil {
			slog.Warn("failed to apply home view", "component", "app", "err", err)
		}
	})
}

func (app *App) saveHomeView() {
	app.Viewer.SetHomeView(app.Viewer.CameraInfo())
	if err := app.Viewer.SaveHomeView(app.homePath); err != nil {
		app.notify(fmt.Sprintf("Saving home view failed: %v", err))
		return
	}
	app.notify("Home view saved")
}

// quitRequested checks for Ctrl+C
func (app *App) quitRequested() bool {
	ctrlPressed := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
	return ctrlPressed && rl.IsKeyPressed(rl.KeyC)
}
