package control

import (
	"errors"
	"fmt"
	"image/color"

	"cascade/pkg/engine/config"
	"cascade/pkg/engine/diag"
	"cascade/pkg/engine/registry"
	"cascade/pkg/engine/scene"
)

// ErrNoDialog is returned by the Generate calls when no dialog could be
// created to hold the control.
var ErrNoDialog = errors.New("no dialog to generate into")

// DefaultDialogName is the name of the dialog implicit controls go into.
const DefaultDialogName = "GUIBaseDynamicDlg"

// TextMaterial is a material whose texture is a blank text surface. Pass it
// to CreateRectButton, or unregister Key if it goes unused.
type TextMaterial struct {
	Key      registry.Key
	Material *scene.Material
	Surface  scene.Surface
}

// Generator turns declarative parameters into wired controls. It remembers
// a current dialog for the Generate calls; Shutdown releases every dialog it
// created.
type Generator struct {
	reg      *registry.Registry
	backend  scene.Backend
	mgr      *Manager
	loc      registry.Location
	sink     *diag.Sink
	console  Console
	font     string
	fontSize float64

	keys    *KeyGen
	dialog  *Dialog
	dialogs []*Dialog
}

// Option configures a Generator.
type Option func(*Generator)

// WithConsole sets the console command buttons run against.
func WithConsole(c Console) Option {
	return func(g *Generator) { g.console = c }
}

// WithFont sets the face and size used for titles.
func WithFont(face string, size float64) Option {
	return func(g *Generator) { g.font, g.fontSize = face, size }
}

// NewGenerator creates a generator minting into loc.
func NewGenerator(reg *registry.Registry, backend scene.Backend, mgr *Manager, loc registry.Location, opts ...Option) *Generator {
	g := &Generator{
		reg:      reg,
		backend:  backend,
		mgr:      mgr,
		loc:      loc,
		sink:     reg.Sink(),
		font:     "sans",
		fontSize: config.Current().FontSize,
		keys:     &KeyGen{Prefix: "GUIButton", Loc: loc},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry returns the registry controls are minted in.
func (g *Generator) Registry() *registry.Registry { return g.reg }

// Backend returns the renderer backend.
func (g *Generator) Backend() scene.Backend { return g.backend }

// Manager returns the GUI manager dialogs are registered with.
func (g *Generator) Manager() *Manager { return g.mgr }

// Console returns the console command handlers run against.
func (g *Generator) Console() Console { return g.console }

// Font returns the title face and size.
func (g *Generator) Font() (string, float64) { return g.font, g.fontSize }

// ScreenSize returns the backend's screen size, falling back to the
// configured size before a window exists.
func (g *Generator) ScreenSize() (int, int) {
	w, h := g.backend.ScreenSize()
	if w <= 0 || h <= 0 {
		c := config.Current()
		return c.ScreenWidth, c.ScreenHeight
	}
	return w, h
}

func (g *Generator) pixelSize(w, h float64) (int, int) {
	sw, sh := g.ScreenSize()
	pw, ph := int(w*float64(sw)), int(h*float64(sh))
	return max(pw, 1), max(ph, 1)
}

// GenerateDialog starts a new current dialog, shown at once. Later Generate
// calls add to it.
func (g *Generator) GenerateDialog(name string) (*Dialog, error) {
	d, err := NewDialog(g.reg, g.mgr, NewKeyGen(name, g.loc), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDialog, err)
	}
	d.Show()
	g.dialogs = append(g.dialogs, d)
	g.dialog = d
	g.sink.Debugf("control: dialog %s", d.Name())
	return d, nil
}

func (g *Generator) current() (*Dialog, error) {
	if g.dialog != nil && g.reg.IsValid(g.dialog.key) {
		return g.dialog, nil
	}
	return g.GenerateDialog(DefaultDialogName)
}

// CurrentDialog returns the dialog Generate calls add to, if any.
func (g *Generator) CurrentDialog() *Dialog {
	if g.dialog != nil && g.reg.IsValid(g.dialog.key) {
		return g.dialog
	}
	return nil
}

// GenerateRectButton adds a titled rectangular button to the current dialog.
// A non-empty command is run on the console when the button is clicked.
func (g *Generator) GenerateRectButton(title string, x, y, w, h float64, command string, bg, fg color.Color) (*Control, error) {
	d, err := g.current()
	if err != nil {
		return nil, err
	}
	pw, ph := g.pixelSize(w, h)
	mat, err := g.CreateTextMaterial(g.keys, pw, ph)
	if err != nil {
		return nil, err
	}
	c, err := g.createRect(d, g.keys, title, x, y, w, h, mat, KindRectButton)
	if err != nil {
		return nil, err
	}
	if command != "" {
		c.SetHandler(NewHandler(&CommandProc{Command: command, Console: g.console}))
	}
	c.SetColors(bg, fg)
	return c, nil
}

// GenerateSphereButton adds a round button centred on (x, y) to the current
// dialog. radius is a fraction of the screen width.
func (g *Generator) GenerateSphereButton(x, y, radius float64, command string, col color.Color) (*Control, error) {
	d, err := g.current()
	if err != nil {
		return nil, err
	}
	cam := d.camera
	center := cam.ScreenToWorld(x, y).Sub(g.attachOffset(d))
	mesh := scene.GenerateSpherical(center, cam.ScreenLength(radius), scene.Identity)
	c, err := g.createColored(d, mesh, col, KindSphereButton)
	if err != nil {
		return nil, err
	}
	if command != "" {
		c.SetHandler(NewHandler(&CommandProc{Command: command, Console: g.console}))
	}
	return c, nil
}

// GenerateDragBar adds a drag bar to the current dialog. Controls generated
// afterwards hang from it and move with it, until GenerateDialog starts a
// new dialog.
func (g *Generator) GenerateDragBar(x, y, w, h float64, col color.Color) (*Control, error) {
	d, err := g.current()
	if err != nil {
		return nil, err
	}
	cam := d.camera
	corner := cam.ScreenToWorld(x, y+h).Sub(g.attachOffset(d))
	mesh := scene.GenerateBox(corner,
		scene.Vec3{X: cam.ScreenLength(w)},
		scene.Vec3{Y: cam.ScreenLength(h)},
		scene.Vec3{Z: cam.ScreenLength(h) / 4},
		scene.Identity)
	c, err := g.createColored(d, mesh, col, KindDragBar)
	if err != nil {
		return nil, err
	}
	d.attach = c.obj
	return c, nil
}

// CreateRectButton adds a rectangular button to d using d's key generator.
// mat may be nil, in which case a text material sized to the button is made.
// Menu items differ from buttons only in how they paint.
func (g *Generator) CreateRectButton(d *Dialog, title string, x, y, w, h float64, mat *TextMaterial, asMenuItem bool) (*Control, error) {
	if d == nil || !g.reg.IsValid(d.key) {
		return nil, ErrNoDialog
	}
	if mat == nil {
		pw, ph := g.pixelSize(w, h)
		var err error
		if mat, err = g.CreateTextMaterial(d.keys, pw, ph); err != nil {
			return nil, err
		}
	}
	kind := KindRectButton
	if asMenuItem {
		kind = KindMenuItem
	}
	c, err := g.createRect(d, d.keys, title, x, y, w, h, mat, kind)
	if err != nil {
		return nil, err
	}
	c.Repaint()
	return c, nil
}

// CreateTextMaterial makes a w x h text surface and a material textured with
// it. The material holds the texture; whatever drawable uses the material
// holds the material.
func (g *Generator) CreateTextMaterial(keys *KeyGen, w, h int) (*TextMaterial, error) {
	surf := g.backend.CreateBlankSurface(w, h)
	surf.SetFont(g.font, g.fontSize)

	tex := &scene.Texture{Surface: surf}
	texKey, err := keys.Mint(g.reg, tex)
	if err != nil {
		surf.Dispose()
		return nil, err
	}
	mat := &scene.Material{Base: color.White}
	matKey, err := keys.Mint(g.reg, mat)
	if err != nil {
		_ = g.reg.Unregister(texKey)
		return nil, err
	}
	if _, err := g.reg.RequestImmediate(texKey, matKey, registry.Active, scene.SlotTexture, 0); err != nil {
		_ = g.reg.Unregister(matKey)
		_ = g.reg.Unregister(texKey)
		return nil, err
	}
	return &TextMaterial{Key: matKey, Material: mat, Surface: surf}, nil
}

// attachOffset is the world translation of d's attach point, so geometry
// placed under a moved drag bar lands where it was asked for.
func (g *Generator) attachOffset(d *Dialog) scene.Vec3 {
	return d.AttachPoint().WorldTransform().Translate
}

func (g *Generator) createRect(d *Dialog, keys *KeyGen, title string, x, y, w, h float64, mat *TextMaterial, kind Kind) (*Control, error) {
	cam := d.camera
	origin := cam.ScreenToWorld(x, y+h).Sub(g.attachOffset(d))
	mesh := scene.GeneratePlanar(origin,
		scene.Vec3{X: cam.ScreenLength(w)},
		scene.Vec3{Y: cam.ScreenLength(h)},
		scene.Identity)
	c, err := g.createControl(d, keys, mesh, mat.Key, kind)
	if err != nil {
		_ = g.reg.Unregister(mat.Key)
		return nil, err
	}
	c.label = title
	c.surface = mat.Surface
	return c, nil
}

func (g *Generator) createColored(d *Dialog, mesh *scene.Mesh, col color.Color, kind Kind) (*Control, error) {
	mat := &scene.Material{Base: col}
	matKey, err := g.keys.Mint(g.reg, mat)
	if err != nil {
		return nil, err
	}
	c, err := g.createControl(d, g.keys, mesh, matKey, kind)
	if err != nil {
		_ = g.reg.Unregister(matKey)
		return nil, err
	}
	c.bg = col
	return c, nil
}

// createControl mints the drawable, scene object and control for mesh and
// wires them: control -> object -> drawable -> material, object into the
// dialog's group and under its attach point, dialog -> control.
func (g *Generator) createControl(d *Dialog, keys *KeyGen, mesh *scene.Mesh, matKey registry.Key, kind Kind) (*Control, error) {
	reg := g.reg
	meshKey, err := keys.Mint(reg, mesh)
	if err != nil {
		return nil, err
	}
	if _, err := reg.RequestImmediate(matKey, meshKey, registry.Active, scene.SlotMaterial, 0); err != nil {
		_ = reg.Unregister(meshKey)
		return nil, err
	}

	obj, err := scene.NewObject(reg, keys.Next(), keys.Loc)
	if err != nil {
		_ = reg.Unregister(meshKey)
		return nil, err
	}
	if err := obj.AttachDrawable(meshKey); err != nil {
		_ = reg.Unregister(obj.Key())
		_ = reg.Unregister(meshKey)
		return nil, err
	}

	c := &Control{dlg: d, reg: reg, kind: kind, tag: -1, enabled: true}
	if c.key, err = keys.Mint(reg, c); err != nil {
		_ = reg.Unregister(obj.Key())
		return nil, err
	}
	if _, err := reg.RequestImmediate(obj.Key(), c.key, registry.Active, SlotObject, 0); err != nil {
		_ = reg.Unregister(c.key)
		_ = reg.Unregister(obj.Key())
		return nil, err
	}
	if err := obj.SetGroup(d.group); err != nil {
		_ = reg.Unregister(c.key)
		return nil, err
	}
	if err := scene.AttachChild(d.AttachPoint(), obj); err != nil {
		_ = obj.SetGroup(nil)
		_ = reg.Unregister(c.key)
		return nil, err
	}
	if _, err := reg.RequestImmediate(c.key, d.key, registry.Active, SlotControl, 0); err != nil {
		_ = obj.SetGroup(nil)
		_ = reg.Unregister(c.key)
		return nil, err
	}
	d.adopt(c)
	return c, nil
}

// Dialogs returns the dialogs created so far that are still alive.
func (g *Generator) Dialogs() []*Dialog {
	var out []*Dialog
	for _, d := range g.dialogs {
		if g.reg.IsValid(d.key) {
			out = append(out, d)
		}
	}
	return out
}

// Shutdown unregisters every dialog the generator created. Their controls,
// placements and drawables are freed by the next Pump.
func (g *Generator) Shutdown() {
	for _, d := range g.dialogs {
		if g.reg.IsValid(d.key) {
			_ = g.reg.Unregister(d.key)
		}
	}
	g.dialogs = nil
	g.dialog = nil
}
