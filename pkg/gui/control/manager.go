package control

import (
	"fmt"

	"cascade/pkg/engine/input"
	"cascade/pkg/engine/registry"
)

// EventTarget is a dialog-like object the manager routes pointer events to.
// Pop-up menus implement it to add their own propagation rules.
type EventTarget interface {
	Key() registry.Key
	IsVisible() bool
	IsModal() bool
	UpdateHover(x, y float64)
	HandleMouseEvent(ev input.MouseEvent) bool
}

// Manager routes pointer events to visible dialogs, most recently shown
// first. It holds passive references, so dialogs drop out when destroyed.
type Manager struct {
	reg     *registry.Registry
	key     registry.Key
	targets []EventTarget
}

// NewManager mints the GUI manager in loc.
func NewManager(reg *registry.Registry, loc registry.Location) (*Manager, error) {
	m := &Manager{reg: reg}
	k, err := reg.Mint("GUIManager", m, loc)
	if err != nil {
		return nil, err
	}
	m.key = k
	return m, nil
}

// Key returns the manager's registry key.
func (m *Manager) Key() registry.Key { return m.key }

// Add starts routing events to the dialog-like object behind k. The object
// must implement EventTarget.
func (m *Manager) Add(k registry.Key) error {
	_, err := m.reg.RequestImmediate(k, m.key, registry.Passive, SlotDialog, 0)
	return err
}

// Raise moves the target behind k to the front.
func (m *Manager) Raise(k registry.Key) {
	for i, t := range m.targets {
		if t.Key() == k {
			copy(m.targets[1:i+1], m.targets[:i])
			m.targets[0] = t
			return
		}
	}
}

// Targets returns every registered target, front first.
func (m *Manager) Targets() []EventTarget { return m.targets }

// Visible returns the visible targets, front first.
func (m *Manager) Visible() []EventTarget {
	var out []EventTarget
	for _, t := range m.targets {
		if t.IsVisible() {
			out = append(out, t)
		}
	}
	return out
}

// HandleMouse updates hover state on every visible target, then offers ev to
// each in turn until one consumes it. A modal target swallows everything
// except mouse up.
func (m *Manager) HandleMouse(ev input.MouseEvent) bool {
	vis := m.Visible()
	for _, t := range vis {
		if t.IsVisible() {
			t.UpdateHover(ev.X, ev.Y)
		}
	}
	for _, t := range vis {
		if !t.IsVisible() {
			continue
		}
		if t.HandleMouseEvent(ev) || (t.IsModal() && ev.Kind != input.MouseUp) {
			return true
		}
	}
	return false
}

// ReceiveRef implements registry.Receiver.
func (m *Manager) ReceiveRef(msg *registry.RefMsg) bool {
	if msg.Slot != SlotDialog {
		return false
	}
	if msg.Context.Attaches() {
		t, ok := msg.Ref.(EventTarget)
		if !ok {
			m.reg.Sink().ProgrammingError(fmt.Errorf("manager: %v is not an event target", msg.Target))
			return true
		}
		for _, x := range m.targets {
			if x == t {
				return true
			}
		}
		m.targets = append(m.targets, t)
		return true
	}
	for i, t := range m.targets {
		if t.Key() == msg.Target {
			m.targets = append(m.targets[:i], m.targets[i+1:]...)
			break
		}
	}
	return true
}
