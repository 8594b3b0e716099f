// Package control synthesizes on-screen controls (buttons, drag bars,
// dialogs) from normalized screen coordinates and routes pointer events to
// them. Every cross-object link goes through the registry.
package control

import (
	"image/color"

	"github.com/leonelquinteros/gotext"

	"cascade/pkg/engine/input"
	"cascade/pkg/engine/registry"
	"cascade/pkg/engine/scene"
	"cascade/pkg/gui/skin"
)

// translate is a variable so titles can be looked up as keys without vet
// flagging a non-constant format string.
var translate = gotext.Get

// Reference slots used by dialogs, controls and the manager.
const (
	SlotControl registry.Slot = iota + 200
	SlotGroup
	SlotRoot
	SlotObject
	SlotDialog
)

// Kind is the shape and behaviour of a control.
type Kind int

const (
	KindRectButton Kind = iota
	KindSphereButton
	KindDragBar
	KindMenuItem
)

func (k Kind) String() string {
	switch k {
	case KindRectButton:
		return "button"
	case KindSphereButton:
		return "sphere"
	case KindDragBar:
		return "dragbar"
	case KindMenuItem:
		return "menuitem"
	}
	return "unknown"
}

// Flags alter how a control reacts to the pointer.
type Flags uint8

const (
	// FlagReportHovers sends EventHover and EventExit to the handler.
	FlagReportHovers Flags = 1 << iota
	// FlagDrawSubMenuArrow marks a menu item that opens a submenu.
	FlagDrawSubMenuArrow
	// FlagIntangible makes the control ignore the pointer.
	FlagIntangible
	// FlagWantsInterest captures the pointer between mouse down and up.
	FlagWantsInterest
)

// SkinPart says which slice of a skinned menu a control draws.
type SkinPart int

const (
	PartTop SkinPart = iota
	PartMiddle
	PartBottom
)

// Control is a placed, clickable region owned by a dialog.
type Control struct {
	dlg     *Dialog
	reg     *registry.Registry
	key     registry.Key
	obj     *scene.Object
	kind    Kind
	tag     int
	label   string
	flags   Flags
	handler *Handler
	skin    *skin.Skin
	part    SkinPart
	bg, fg  color.Color
	surface scene.Surface
	enabled bool
	hovered bool
}

// Key returns the control's registry key.
func (c *Control) Key() registry.Key { return c.key }

// Dialog returns the owning dialog.
func (c *Control) Dialog() *Dialog { return c.dlg }

// Object returns the scene object the control is drawn with.
func (c *Control) Object() *scene.Object { return c.obj }

// Kind returns the control kind.
func (c *Control) Kind() Kind { return c.kind }

// Tag returns the identifying tag. Menu items use their position in the menu.
func (c *Control) Tag() int { return c.tag }

// SetTag sets the identifying tag.
func (c *Control) SetTag(t int) { c.tag = t }

// Label returns the untranslated title.
func (c *Control) Label() string { return c.label }

// SetLabel changes the title and repaints.
func (c *Control) SetLabel(s string) {
	c.label = s
	c.Repaint()
}

// SetFlag sets f.
func (c *Control) SetFlag(f Flags) { c.flags |= f }

// ClearFlag clears f.
func (c *Control) ClearFlag(f Flags) { c.flags &^= f }

// HasFlag reports whether f is set.
func (c *Control) HasFlag(f Flags) bool { return c.flags&f != 0 }

// Handler returns the attached handler.
func (c *Control) Handler() *Handler { return c.handler }

// SetHandler replaces the handler, adjusting both reference counts.
func (c *Control) SetHandler(h *Handler) {
	if c.handler == h {
		return
	}
	if c.handler != nil {
		c.handler.DecRef()
	}
	c.handler = h
	if h != nil {
		h.IncRef()
	}
}

// Skin returns the skin and the slice of it the control draws.
func (c *Control) Skin() (*skin.Skin, SkinPart) { return c.skin, c.part }

// SetSkin sets the decoration used by skinned backends.
func (c *Control) SetSkin(s *skin.Skin, part SkinPart) {
	c.skin, c.part = s, part
}

// Colors returns the background and text colours.
func (c *Control) Colors() (bg, fg color.Color) { return c.bg, c.fg }

// SetColors sets the background and text colours and repaints.
func (c *Control) SetColors(bg, fg color.Color) {
	c.bg, c.fg = bg, fg
	c.Repaint()
}

// Surface returns the text surface, or nil for untitled controls.
func (c *Control) Surface() scene.Surface { return c.surface }

// Enabled reports whether the control accepts the pointer.
func (c *Control) Enabled() bool { return c.enabled }

// SetEnabled enables or disables the control.
func (c *Control) SetEnabled(e bool) { c.enabled = e }

// Hovered reports whether the pointer is over the control.
func (c *Control) Hovered() bool { return c.hovered }

// Bounds returns the control's screen rectangle in fractions, top-left origin.
func (c *Control) Bounds() (x, y, w, h float64) {
	if c.obj == nil || c.dlg == nil {
		return 0, 0, 0, 0
	}
	b := c.obj.WorldBounds()
	cam := c.dlg.camera
	tl := cam.WorldToScreen(scene.Vec3{X: b.Min.X, Y: b.Max.Y, Z: cam.Depth})
	br := cam.WorldToScreen(scene.Vec3{X: b.Max.X, Y: b.Min.Y, Z: cam.Depth})
	return tl.X, tl.Y, br.X - tl.X, br.Y - tl.Y
}

// Contains reports whether the screen point (x, y) hits the control.
func (c *Control) Contains(x, y float64) bool {
	bx, by, bw, bh := c.Bounds()
	if bw <= 0 || bh <= 0 {
		return false
	}
	if c.kind == KindSphereButton {
		r := bw / 2
		dx, dy := x-(bx+r), y-(by+bh/2)
		return dx*dx+dy*dy <= r*r
	}
	return x >= bx && x < bx+bw && y >= by && y < by+bh
}

// Repaint redraws the title onto the control's surface. Hovered menu items
// swap their colours.
func (c *Control) Repaint() {
	s := c.surface
	if s == nil {
		return
	}
	bg, fg := c.bg, c.fg
	if bg == nil {
		bg = color.White
	}
	if fg == nil {
		fg = color.Black
	}
	if c.hovered && c.kind == KindMenuItem {
		bg, fg = fg, bg
	}
	s.ClearToColor(bg)
	s.SetTextColor(fg)

	label := translate(c.label)
	sw, sh := s.Size()
	tw, th := s.MeasureString(label)
	y := (sh - th) / 2
	if c.kind != KindMenuItem {
		s.DrawString((sw-tw)/2, y, label)
		return
	}
	s.DrawString(2, y, label)
	if c.HasFlag(FlagDrawSubMenuArrow) && c.skin == nil {
		aw, _ := s.MeasureString(">>")
		s.DrawString(sw-aw-2, y, ">>")
	}
}

func (c *Control) notify(ev input.Event) {
	c.handler.Do(c, ev)
}

// drag moves the control's placement by a screen-fraction delta.
func (c *Control) drag(dx, dy float64) {
	if c.obj == nil {
		return
	}
	cam := c.dlg.camera
	t := c.obj.Transform()
	t.Translate = t.Translate.Add(scene.Vec3{X: cam.ScreenLength(dx), Y: -cam.ScreenLength(dy)})
	c.obj.SetTransform(t)
	c.notify(input.Event{Kind: input.EventDragged, DX: dx, DY: dy})
}

// ReceiveRef implements registry.Receiver.
func (c *Control) ReceiveRef(msg *registry.RefMsg) bool {
	if msg.Slot != SlotObject {
		return false
	}
	if msg.Context.Attaches() {
		c.obj, _ = msg.Ref.(*scene.Object)
	} else {
		c.obj = nil
	}
	return true
}

// Destroy implements registry.Destroyer.
func (c *Control) Destroy() {
	c.SetHandler(nil)
	if c.dlg != nil {
		c.dlg.forget(c)
	}
	c.surface = nil
}
