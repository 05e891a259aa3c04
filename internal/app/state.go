package app

import (
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gopano/internal/scene"
)

// RenderState holds the GPU side of the scene
type RenderState struct {
	// target receives the scene whenever the viewer renders a frame; it
	// is blitted to the window every frame
	target        rl.RenderTexture2D
	width, height int32
	meshes        map[*scene.Geometry][]rl.Mesh
	material      rl.Material

	// released holds GPU frees requested off the render loop
	mu       sync.Mutex
	released []func()
}

// InteractionState holds mouse state between frames
type InteractionState struct {
	lastMousePos  rl.Vector2
	hoveredLabel  string
	buttonsDown   [3]bool
	controlActive bool
}

// ViewSettings holds display settings
type ViewSettings struct {
	showInfo      bool
	showHotpoints bool
}

// UIState holds UI-related state
type UIState struct {
	font rl.Font
	// spinnerStart is the time busy went positive, in seconds
	spinnerStart float64
	message      string
	messageUntil float64

	cacheCount     int
	cacheCheckedAt float64
}
