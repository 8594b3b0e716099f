package ebiten

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"cascade/pkg/engine/input"
	"cascade/pkg/engine/registry"
	"cascade/pkg/gui/control"
)

// Game implements ebiten.Game for a GUI manager. Every frame it pumps the
// registry, feeds the mouse to the manager and paints the visible dialogs.
type Game struct {
	backend *Backend
	reg     *registry.Registry
	mgr     *control.Manager

	// Start runs on the first Update, once the window exists.
	Start func() error
	// Background is the clear colour behind the dialogs.
	Background color.Color

	started bool
	quit    bool
	lastX   int
	lastY   int
}

// NewGame creates a game drawing through b.
func NewGame(b *Backend, reg *registry.Registry, mgr *control.Manager) *Game {
	return &Game{
		backend:    b,
		reg:        reg,
		mgr:        mgr,
		Background: color.RGBA{0x10, 0x10, 0x18, 0xff},
	}
}

// Quit ends the game after the current frame.
func (g *Game) Quit() { g.quit = true }

// Run opens the window and blocks until the game ends.
func (g *Game) Run(title string) error {
	w, h := g.backend.ScreenSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if !g.started {
		g.started = true
		w, h := ebiten.WindowSize()
		g.reg.Sink().Infof("window opened (%dx%d)", w, h)
		if g.Start != nil {
			if err := g.Start(); err != nil {
				return err
			}
		}
	}
	if g.quit || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.reg.Pump()
	w, h := g.backend.ScreenSize()
	for _, raw := range g.pollPointer() {
		if ev := input.MapToMouseEvent(raw, w, h); ev.Kind != input.MouseNone {
			g.mgr.HandleMouse(ev)
		}
	}
	g.reg.Pump()
	return nil
}

// pollPointer collects this tick's mouse and touch input as raw events.
func (g *Game) pollPointer() []input.RawInput {
	now := time.Now()
	mods := modifiers()
	var out []input.RawInput
	add := func(dev input.Device, code string, x, y int) {
		out = append(out, input.RawInput{Device: dev, Code: code, X: x, Y: y, Modifiers: mods, Timestamp: now})
	}

	x, y := ebiten.CursorPosition()
	if x != g.lastX || y != g.lastY {
		code := "mouse_move"
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			code = "mouse_drag"
		}
		add(input.DeviceMouse, code, x, y)
		g.lastX, g.lastY = x, y
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		add(input.DeviceMouse, "mouse_left_down", x, y)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		add(input.DeviceMouse, "mouse_left_up", x, y)
	}

	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		tx, ty := ebiten.TouchPosition(id)
		add(input.DeviceTouch, "touch_begin", tx, ty)
	}
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		tx, ty := inpututil.TouchPositionInPreviousTick(id)
		add(input.DeviceTouch, "touch_end", tx, ty)
	}
	return out
}

func modifiers() input.Modifier {
	var m input.Modifier
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= input.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= input.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= input.ModAlt
	}
	return m
}

// Draw implements ebiten.Game. Dialogs are painted back to front.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.Background)
	w, h := g.backend.ScreenSize()
	vis := g.mgr.Visible()
	for i := len(vis) - 1; i >= 0; i-- {
		d, ok := vis[i].(interface{ Controls() []*control.Control })
		if !ok {
			continue
		}
		controls := d.Controls()
		drawPanelBehind(screen, controls, w, h)
		for _, c := range controls {
			drawControl(screen, c, w, h)
		}
	}
}

// Layout implements ebiten.Game. The screen follows the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
