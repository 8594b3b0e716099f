package popup

import (
	"cascade/pkg/engine/input"
	"cascade/pkg/gui/control"
)

// itemProc routes a menu item's events back to its menu.
type itemProc struct {
	menu  *Menu
	index int
}

func (p itemProc) Do(c *control.Control, ev input.Event) {
	p.menu.HandleMenuEvent(p.index, c, ev)
}

func (m *Menu) closeSubMenu() {
	i := m.subMenuOpen
	m.subMenuOpen = Unset
	if i < 0 || i >= len(m.items) {
		return
	}
	if sub := m.items[i].SubMenu; sub != nil {
		sub.Hide()
	}
}

func (m *Menu) openSubMenu(i int, c *control.Control) {
	if m.subMenuOpen != Unset && m.subMenuOpen != i {
		m.closeSubMenu()
	}
	sub := m.items[i].SubMenu
	x, y, w, _ := c.Bounds()
	sub.Show(x+w, y)
	m.subMenuOpen = i
}

// HandleMenuEvent reacts to an event from the control of item i.
//
// Hovering an item closes whatever other submenu is open and opens the
// item's own. Activating an item runs its handler, then either opens its
// submenu or hides this menu and every parent up to the first one that
// stays open after a click.
func (m *Menu) HandleMenuEvent(i int, c *control.Control, ev input.Event) {
	if i < 0 || i >= len(m.items) {
		return
	}
	if ev.Kind.Extended() {
		if m.subMenuOpen != Unset && m.subMenuOpen != i {
			m.closeSubMenu()
		}
		if ev.Kind == input.EventHover && m.items[i].SubMenu != nil {
			m.openSubMenu(i, c)
		}
		return
	}

	m.items[i].Handler.Do(c, ev)
	// The handler may have changed the items.
	if i >= len(m.items) {
		return
	}
	if m.items[i].SubMenu != nil {
		m.openSubMenu(i, c)
		return
	}
	for menu := m; menu != nil && !menu.HasFlag(StayOpenAfterClick); menu = menu.Parent() {
		menu.Hide()
	}
}

// HandleMouseEvent implements control.EventTarget. A mouse up that misses
// every item hides the menu and is offered to the parent, so one outside
// click closes a whole cascade. A root menu claims events while it is
// modal outside itself or has a submenu open.
func (m *Menu) HandleMouseEvent(ev input.MouseEvent) bool {
	r := m.Dialog.HandleMouseEvent(ev)
	parent := m.Parent()
	if !r && ev.Kind == input.MouseUp && !m.HasFlag(StayOpenAfterClick) {
		m.Hide()
		if parent != nil {
			return parent.HandleMouseEvent(ev)
		}
	}
	if parent != nil {
		return r
	}
	return m.HasFlag(ModalOutsideMenus) || m.subMenuOpen != Unset
}
