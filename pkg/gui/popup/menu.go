// Package popup builds cascading pop-up menus out of generated controls.
//
// A Menu keeps a list of item templates and turns them into menu-item
// controls when it is shown. Skins, submenus and the origin anchor all
// arrive through registry notifications, so a menu can be shown before
// they resolve; it stays dirty and builds once they do.
package popup

import (
	"errors"
	"fmt"

	"github.com/leonelquinteros/gotext"

	"cascade/pkg/engine/config"
	"cascade/pkg/engine/registry"
	"cascade/pkg/engine/scene"
	"cascade/pkg/gui/control"
	"cascade/pkg/gui/skin"
)

var translate = gotext.Get

// ErrNotReady is returned by Rebuild while the menu waits for its skin.
var ErrNotReady = errors.New("menu waiting for skin")

// Unset marks an origin coordinate or open submenu that has no value.
const Unset = -1

// Reference slots used by menus.
const (
	SlotSkin registry.Slot = iota + 300
	SlotSubMenu
	SlotAnchor
	SlotContext
)

// Alignment says which corner of the menu sits on its origin.
type Alignment uint8

const (
	AlignUpLeft Alignment = iota
	AlignUpRight
	AlignDownLeft
	AlignDownRight
)

func (a Alignment) String() string {
	switch a {
	case AlignUpLeft:
		return "up-left"
	case AlignUpRight:
		return "up-right"
	case AlignDownLeft:
		return "down-left"
	case AlignDownRight:
		return "down-right"
	}
	return fmt.Sprintf("alignment(%d)", uint8(a))
}

// Flags alter menu behaviour.
type Flags uint8

const (
	// StayOpenAfterClick keeps the menu up after an item is chosen.
	StayOpenAfterClick Flags = 1 << iota
	// ModalOutsideMenus makes a root menu swallow clicks outside itself.
	ModalOutsideMenus
	// ScaleWithResolution lays the menu out against a 1024-wide screen so it
	// covers the same fraction of the display at any resolution.
	ScaleWithResolution
)

// State is where a menu is in its build cycle.
type State int

const (
	StateUninitialized State = iota
	StateNeedsRebuild
	StateHidden
	StateVisible
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateNeedsRebuild:
		return "needs-rebuild"
	case StateHidden:
		return "hidden"
	case StateVisible:
		return "visible"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Built reports whether the menu's controls match its items.
func (s State) Built() bool { return s >= StateHidden }

// Item is a menu item template.
type Item struct {
	Name    string
	Handler *control.Handler
	SubMenu *Menu

	// YOffsetToNext is the distance from this item's top to the next one's,
	// as of the last build.
	YOffsetToNext float64

	subKey registry.Key
}

// projector is what an origin context must offer: a dialog or a menu.
type projector interface {
	WorldToScreenPoint(p scene.Vec3) scene.Vec3
}

// Menu is a pop-up menu. It is a dialog whose controls are rebuilt from
// its items whenever they, the skin or the layout settings change.
type Menu struct {
	*control.Dialog

	reg *registry.Registry
	gen *control.Generator

	items []Item

	margin           uint16
	align            Alignment
	flags            Flags
	originX, originY float64
	builtX, builtY   float64

	skinKey        registry.Key
	skin           *skin.Skin
	waitingForSkin bool

	anchorKey  registry.Key
	anchor     *scene.Object
	contextKey registry.Key
	context    projector

	parentKey   registry.Key
	subMenuOpen int

	needsRebuild bool
	built        bool
}

// Build creates a hidden menu named name in loc and registers it with the
// generator's GUI manager. (x, y) is the default origin; pass Unset to
// position it from an anchor instead. A parent with a skin lends it to the
// new menu.
func Build(name string, gen *control.Generator, parent *Menu, x, y float64, loc registry.Location) (*Menu, error) {
	cfg := config.Current()
	m := &Menu{
		reg:         gen.Registry(),
		gen:         gen,
		margin:      uint16(cfg.MenuMargin),
		align:       AlignDownRight,
		flags:       ModalOutsideMenus,
		originX:     x,
		originY:     y,
		subMenuOpen: Unset,
	}
	if cfg.ScaleWithResolution {
		m.flags |= ScaleWithResolution
	}
	d, err := control.NewDialog(m.reg, gen.Manager(), control.NewKeyGen(name, loc), m)
	if err != nil {
		return nil, fmt.Errorf("build menu %s: %w", name, err)
	}
	m.Dialog = d

	if parent != nil && !parent.skinKey.IsNull() && m.reg.IsValid(parent.skinKey) {
		if err := m.SetSkin(parent.skinKey); err != nil {
			_ = m.reg.Unregister(d.Key())
			return nil, err
		}
	}
	m.reg.Sink().Debugf("popup: built %s", d.Name())
	return m, nil
}

// Generator returns the generator the menu builds its items with.
func (m *Menu) Generator() *control.Generator { return m.gen }

// Parent returns the menu this one is a submenu of, if it is still alive.
func (m *Menu) Parent() *Menu {
	if m.parentKey.IsNull() {
		return nil
	}
	p, _ := registry.Get[*Menu](m.reg, m.parentKey)
	return p
}

// Items returns a copy of the item templates.
func (m *Menu) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Controls returns the dialog's live menu-item controls in item order. A
// control destroyed behind the menu's back drops out here too.
func (m *Menu) Controls() []*control.Control {
	var out []*control.Control
	for _, c := range m.Dialog.Controls() {
		if c.Kind() == control.KindMenuItem {
			out = append(out, c)
		}
	}
	return out
}

// SubMenuOpen returns the index of the item whose submenu is open, or Unset.
func (m *Menu) SubMenuOpen() int { return m.subMenuOpen }

// State returns where the menu is in its build cycle.
func (m *Menu) State() State {
	switch {
	case m.needsRebuild:
		return StateNeedsRebuild
	case !m.built:
		return StateUninitialized
	case m.IsVisible():
		return StateVisible
	}
	return StateHidden
}

// AddItem appends an item. handler and sub may be nil. The menu holds an
// active reference on sub and becomes its parent.
func (m *Menu) AddItem(name string, handler *control.Handler, sub *Menu) error {
	if handler != nil {
		handler.IncRef()
	}
	m.items = append(m.items, Item{Name: name, Handler: handler, SubMenu: sub})
	m.needsRebuild = true
	if sub == nil {
		return nil
	}
	i := len(m.items) - 1
	sub.parentKey = m.Key()
	m.items[i].subKey = sub.Key()
	if _, err := m.reg.RequestImmediate(sub.Key(), m.Key(), registry.Active, SlotSubMenu, i); err != nil {
		m.items[i].SubMenu = nil
		m.items[i].subKey = registry.Key{}
		return err
	}
	return nil
}

// ClearItems drops every item, releasing handlers and submenus.
func (m *Menu) ClearItems() {
	m.closeSubMenu()
	for _, it := range m.items {
		if it.Handler != nil {
			it.Handler.DecRef()
		}
		if !it.subKey.IsNull() && m.reg.IsValid(it.subKey) {
			_ = m.reg.Release(m.Key(), it.subKey)
		}
	}
	m.items = nil
	m.needsRebuild = true
}

// Skin returns the resolved skin, if any.
func (m *Menu) Skin() *skin.Skin { return m.skin }

// SetSkin makes the menu hold the skin behind k; the null key removes it.
// Until a skin resolves the menu will not build.
func (m *Menu) SetSkin(k registry.Key) error {
	if !m.skinKey.IsNull() {
		if m.reg.IsValid(m.skinKey) {
			if err := m.reg.Release(m.Key(), m.skinKey); err != nil {
				return err
			}
		}
		m.skinKey = registry.Key{}
		m.skin = nil
	}
	m.needsRebuild = true
	if k.IsNull() {
		m.waitingForSkin = false
		m.rebuildIfVisible()
		return nil
	}
	m.skinKey = k
	m.waitingForSkin = true
	_, err := m.reg.RequestImmediate(k, m.Key(), registry.Active, SlotSkin, Unset)
	return err
}

// SetOriginAnchor positions the menu from a scene object when no explicit
// origin is given. context is the dialog whose camera projects the anchor;
// the null key uses the menu's own. Both references are passive and
// resolve on the next Pump.
func (m *Menu) SetOriginAnchor(anchor, context registry.Key) error {
	m.releasePassive(&m.anchorKey)
	m.releasePassive(&m.contextKey)
	m.anchor, m.context = nil, nil
	if !anchor.IsNull() {
		if err := m.reg.RequestWithNotify(anchor, m.Key(), registry.Passive, SlotAnchor, Unset); err != nil {
			return err
		}
		m.anchorKey = anchor
	}
	if !context.IsNull() {
		if err := m.reg.RequestWithNotify(context, m.Key(), registry.Passive, SlotContext, Unset); err != nil {
			return err
		}
		m.contextKey = context
	}
	m.needsRebuild = true
	return nil
}

func (m *Menu) releasePassive(k *registry.Key) {
	if !k.IsNull() && m.reg.IsValid(*k) {
		_ = m.reg.Release(m.Key(), *k)
	}
	*k = registry.Key{}
}

// Alignment returns the alignment policy.
func (m *Menu) Alignment() Alignment { return m.align }

// SetAlignment sets which corner of the menu sits on the origin.
func (m *Menu) SetAlignment(a Alignment) {
	m.align = a
	m.needsRebuild = true
}

// Margin returns the unskinned item margin in pixels.
func (m *Menu) Margin() uint16 { return m.margin }

// SetMargin sets the unskinned item margin in pixels.
func (m *Menu) SetMargin(px uint16) {
	m.margin = px
	m.needsRebuild = true
}

// SetFlag sets f.
func (m *Menu) SetFlag(f Flags) {
	m.flags |= f
	m.needsRebuild = true
}

// ClearFlag clears f.
func (m *Menu) ClearFlag(f Flags) {
	m.flags &^= f
	m.needsRebuild = true
}

// HasFlag reports whether f is set.
func (m *Menu) HasFlag(f Flags) bool { return m.flags&f != 0 }

// Origin returns the explicit origin. Either coordinate may be Unset.
func (m *Menu) Origin() (x, y float64) { return m.originX, m.originY }

// Show opens the menu with its origin at (x, y), building it first if its
// items or settings changed.
func (m *Menu) Show(x, y float64) {
	m.originX, m.originY = x, y
	if m.built && (x != m.builtX || y != m.builtY) {
		m.needsRebuild = true
	}
	m.SetEnabled(true)
}

// Hide closes the menu and any submenu it has open.
func (m *Menu) Hide() {
	m.SetEnabled(false)
}

// SetEnabled shows or hides the menu. Showing a dirty menu rebuilds it;
// hiding closes open submenus and tells the parent this one is shut.
func (m *Menu) SetEnabled(e bool) {
	if e {
		if m.needsRebuild {
			if err := m.Rebuild(); err != nil && !errors.Is(err, ErrNotReady) {
				m.reg.Sink().ConfigError(err)
			}
		}
		m.Dialog.Show()
		return
	}
	if p := m.Parent(); p != nil {
		p.subMenuOpen = Unset
	}
	m.closeSubMenu()
	m.Dialog.Hide()
}

func (m *Menu) rebuildIfVisible() {
	if !m.IsVisible() {
		return
	}
	if err := m.Rebuild(); err != nil && !errors.Is(err, ErrNotReady) {
		m.reg.Sink().ConfigError(err)
	}
}

// ReceiveRef implements registry.Receiver.
func (m *Menu) ReceiveRef(msg *registry.RefMsg) bool {
	attach := msg.Context.Attaches()
	switch msg.Slot {
	case SlotSkin:
		sk, _ := msg.Ref.(*skin.Skin)
		switch {
		case attach && sk != nil:
			m.skin = sk
			m.skinKey = msg.Target
			m.waitingForSkin = false
		case msg.Context == registry.OnDestroy:
			m.skin = nil
			m.skinKey = registry.Key{}
			m.waitingForSkin = false
		default:
			// Still held but empty; wait for the next object.
			m.skin = nil
			m.waitingForSkin = true
		}
		m.needsRebuild = true
		m.rebuildIfVisible()
		return true
	case SlotSubMenu:
		if msg.Which < 0 || msg.Which >= len(m.items) {
			return true
		}
		it := &m.items[msg.Which]
		if attach {
			if sub, ok := msg.Ref.(*Menu); ok {
				it.SubMenu = sub
				it.subKey = msg.Target
				sub.parentKey = m.Key()
			}
		} else {
			it.SubMenu = nil
			if m.subMenuOpen == msg.Which {
				m.subMenuOpen = Unset
			}
		}
		return true
	case SlotAnchor:
		if attach {
			m.anchor, _ = msg.Ref.(*scene.Object)
		} else {
			m.anchor = nil
		}
		return true
	case SlotContext:
		if attach {
			m.context, _ = msg.Ref.(projector)
		} else {
			m.context = nil
		}
		return true
	}
	return m.Dialog.ReceiveRef(msg)
}

// Destroy implements registry.Destroyer. References the menu holds are
// released by the registry afterwards, which frees owned submenus.
func (m *Menu) Destroy() {
	m.closeSubMenu()
	for _, it := range m.items {
		if it.Handler != nil {
			it.Handler.DecRef()
		}
	}
	m.items = nil
	m.skin = nil
	m.anchor, m.context = nil, nil
	m.Dialog.Destroy()
}
