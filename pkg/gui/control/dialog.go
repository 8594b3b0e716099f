package control

import (
	"fmt"

	"cascade/pkg/engine/input"
	"cascade/pkg/engine/registry"
	"cascade/pkg/engine/scene"
)

// Dialog owns a set of controls, the scene group they are drawn in and the
// placement root they hang from. It holds an active reference on each.
type Dialog struct {
	reg    *registry.Registry
	mgr    *Manager
	key    registry.Key
	keys   *KeyGen
	group  *scene.Group
	root   *scene.Object
	attach *scene.Object
	camera scene.VirtualCamera

	controls []*Control
	visible  bool
	modal    bool

	interest *Control
	hovered  *Control
	lastX    float64
	lastY    float64
}

// NewDialog mints a dialog with keys and registers it with mgr (which may
// be nil). owner is the object stored under the dialog's key; nil stores the
// dialog itself. A non-nil owner must forward ReceiveRef and Destroy to the
// dialog for the slots it does not handle.
func NewDialog(reg *registry.Registry, mgr *Manager, keys *KeyGen, owner any) (*Dialog, error) {
	d := &Dialog{reg: reg, mgr: mgr, keys: keys, camera: scene.GUICamera}

	// Declared empty so wiring below is not delivered to a half-built owner.
	k, err := reg.Declare(keys.Next(), keys.Loc)
	if err != nil {
		return nil, fmt.Errorf("dialog %s: %w", keys.Prefix, err)
	}
	d.key = k

	g, err := scene.NewGroup(reg, keys.Next(), keys.Loc)
	if err != nil {
		_ = reg.Unregister(k)
		return nil, err
	}
	if _, err := reg.RequestImmediate(g.Key(), k, registry.Active, SlotGroup, 0); err != nil {
		_ = reg.Unregister(g.Key())
		_ = reg.Unregister(k)
		return nil, err
	}
	d.group = g

	root, err := scene.NewObject(reg, keys.Next(), keys.Loc)
	if err != nil {
		_ = reg.Unregister(k)
		return nil, err
	}
	if _, err := reg.RequestImmediate(root.Key(), k, registry.Active, SlotRoot, 0); err != nil {
		_ = reg.Unregister(root.Key())
		_ = reg.Unregister(k)
		return nil, err
	}
	d.root = root
	if err := root.SetGroup(g); err != nil {
		_ = reg.Unregister(k)
		return nil, err
	}

	if owner == nil {
		owner = d
	}
	if err := reg.Populate(k, owner); err != nil {
		return nil, err
	}
	if mgr != nil {
		if err := mgr.Add(k); err != nil {
			_ = reg.Unregister(k)
			return nil, err
		}
	}
	return d, nil
}

// Key returns the dialog's registry key.
func (d *Dialog) Key() registry.Key { return d.key }

// Name returns the dialog's key name.
func (d *Dialog) Name() string { return d.reg.Name(d.key) }

// Registry returns the registry the dialog lives in.
func (d *Dialog) Registry() *registry.Registry { return d.reg }

// Keys returns the key generator used for objects this dialog owns.
func (d *Dialog) Keys() *KeyGen { return d.keys }

// Group returns the scene group the dialog's objects are drawn in.
func (d *Dialog) Group() *scene.Group { return d.group }

// Root returns the dialog's placement root.
func (d *Dialog) Root() *scene.Object { return d.root }

// AttachPoint returns the object new controls are placed under: the most
// recent drag bar, or the root.
func (d *Dialog) AttachPoint() *scene.Object {
	if d.attach != nil {
		return d.attach
	}
	return d.root
}

// Camera returns the virtual camera the dialog renders through.
func (d *Dialog) Camera() scene.VirtualCamera { return d.camera }

// Controls returns the live controls in creation order.
func (d *Dialog) Controls() []*Control { return d.controls }

// Show makes the dialog visible and raises it above the others.
func (d *Dialog) Show() {
	d.visible = true
	if d.mgr != nil {
		d.mgr.Raise(d.key)
	}
}

// Hide makes the dialog invisible.
func (d *Dialog) Hide() {
	d.visible = false
	d.interest = nil
	if d.hovered != nil {
		d.hovered.hovered = false
		d.hovered.Repaint()
		d.hovered = nil
	}
}

// IsVisible reports whether the dialog is shown.
func (d *Dialog) IsVisible() bool { return d.visible }

// SetModal makes the dialog swallow every pointer event except mouse up.
func (d *Dialog) SetModal(m bool) { d.modal = m }

// IsModal reports whether the dialog is modal.
func (d *Dialog) IsModal() bool { return d.modal }

// WorldToScreenPoint projects p into screen fractions. Z is the depth.
func (d *Dialog) WorldToScreenPoint(p scene.Vec3) scene.Vec3 {
	return d.camera.WorldToScreen(p)
}

// ScreenToWorldPoint maps a screen point onto the plane at depth z.
func (d *Dialog) ScreenToWorldPoint(x, y, z float64) scene.Vec3 {
	return d.camera.ScreenToWorldAt(x, y, z)
}

func (d *Dialog) adopt(c *Control) {
	for _, x := range d.controls {
		if x == c {
			return
		}
	}
	d.controls = append(d.controls, c)
}

func (d *Dialog) forget(c *Control) {
	if d.interest == c {
		d.interest = nil
	}
	if d.hovered == c {
		d.hovered = nil
	}
	if d.attach == c.obj {
		d.attach = nil
	}
	for i, x := range d.controls {
		if x == c {
			d.controls = append(d.controls[:i], d.controls[i+1:]...)
			return
		}
	}
}

// TeardownControl takes c off screen and releases it. The control's object
// leaves the scene group before the control key is released; the group's
// own reference would otherwise keep the drawable alive.
func (d *Dialog) TeardownControl(c *Control) error {
	if c == nil || c.dlg != d {
		return nil
	}
	d.forget(c)
	if o := c.obj; o != nil {
		if err := o.SetGroup(nil); err != nil {
			return err
		}
	}
	return d.reg.Release(d.key, c.key)
}

func (d *Dialog) hit(x, y float64) *Control {
	for _, c := range d.controls {
		if c.enabled && !c.HasFlag(FlagIntangible) && c.Contains(x, y) {
			return c
		}
	}
	return nil
}

// UpdateHover tracks which control is under the pointer and reports enter
// and leave to controls that ask for it.
func (d *Dialog) UpdateHover(x, y float64) {
	if !d.visible {
		return
	}
	over := d.hit(x, y)
	if over == d.hovered {
		return
	}
	old := d.hovered
	d.hovered = over
	if old != nil {
		old.hovered = false
		old.Repaint()
		if old.HasFlag(FlagReportHovers) {
			old.notify(input.Exit())
		}
	}
	if over != nil && d.hovered == over {
		over.hovered = true
		over.Repaint()
		if over.HasFlag(FlagReportHovers) {
			over.notify(input.Hover())
		}
	}
}

// HandleMouseEvent routes ev to the control under the pointer, or to the
// control holding the pointer. It reports whether a control took the event.
func (d *Dialog) HandleMouseEvent(ev input.MouseEvent) bool {
	if !d.visible {
		return false
	}
	dx, dy := ev.X-d.lastX, ev.Y-d.lastY
	d.lastX, d.lastY = ev.X, ev.Y

	c := d.interest
	if c == nil {
		c = d.hit(ev.X, ev.Y)
	}
	if c == nil {
		return false
	}

	switch ev.Kind {
	case input.MouseDown:
		if c.kind == KindDragBar || c.HasFlag(FlagWantsInterest) {
			d.interest = c
		}
	case input.MouseUp:
		d.interest = nil
		if c.kind != KindDragBar && c.Contains(ev.X, ev.Y) {
			c.notify(input.Activate())
		}
	case input.MouseDrag:
		if c.kind == KindDragBar && d.interest == c {
			c.drag(dx, dy)
		}
	}
	return true
}

// ReceiveRef implements registry.Receiver.
func (d *Dialog) ReceiveRef(msg *registry.RefMsg) bool {
	switch msg.Slot {
	case SlotControl:
		c, _ := msg.Ref.(*Control)
		if msg.Context.Attaches() && c != nil {
			d.adopt(c)
		} else {
			for _, x := range d.controls {
				if x.key == msg.Target {
					d.forget(x)
					break
				}
			}
		}
		return true
	case SlotGroup:
		if !msg.Context.Attaches() {
			d.group = nil
		}
		return true
	case SlotRoot:
		if !msg.Context.Attaches() {
			d.root = nil
			d.attach = nil
		}
		return true
	}
	return false
}

// Destroy implements registry.Destroyer. Objects leave the scene group so
// the released references free them.
func (d *Dialog) Destroy() {
	d.visible = false
	for _, c := range d.controls {
		if c.obj != nil {
			_ = c.obj.SetGroup(nil)
		}
	}
	d.controls = nil
	d.interest, d.hovered, d.attach = nil, nil, nil
	if d.root != nil {
		_ = d.root.SetGroup(nil)
	}
}
