package popup

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"cascade/pkg/engine/registry"
	"cascade/pkg/gui/control"
)

const (
	nameSize = 256
	maxItems = 1 << 12
)

// Write stores the menu: margin (LE16), item count (LE32), then per item a
// 256-byte NUL-padded name, its handler and its submenu reference, followed
// by the skin, anchor and context references and the alignment byte.
func (m *Menu) Write(w io.Writer) error {
	var hdr []byte
	hdr = binary.LittleEndian.AppendUint16(hdr, m.margin)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(m.items)))
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	for _, it := range m.items {
		var name [nameSize]byte
		copy(name[:nameSize-1], it.Name)
		if _, err := w.Write(name[:]); err != nil {
			return err
		}
		if err := control.WriteHandler(w, it.Handler); err != nil {
			return err
		}
		if err := m.reg.WriteKey(w, it.subKey); err != nil {
			return err
		}
	}
	for _, k := range []registry.Key{m.skinKey, m.anchorKey, m.contextKey} {
		if err := m.reg.WriteKey(w, k); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{byte(m.align)})
	return err
}

// Read replaces the menu's items and settings with a record written by
// Write. Console commands bind to console. Submenus, skin, anchor and
// context resolve on later Pumps; the menu will not build until the skin
// has arrived.
func (m *Menu) Read(r io.Reader, console control.Console) error {
	m.ClearItems()
	if err := m.SetSkin(registry.Key{}); err != nil {
		return err
	}
	if err := m.SetOriginAnchor(registry.Key{}, registry.Key{}); err != nil {
		return err
	}
	m.originX, m.originY = Unset, Unset

	var hdr [6]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return fmt.Errorf("read menu: %w", err)
	}
	m.margin = binary.LittleEndian.Uint16(hdr[:2])
	count := binary.LittleEndian.Uint32(hdr[2:])
	if count > maxItems {
		return fmt.Errorf("read menu: %d items", count)
	}

	for i := range int(count) {
		var name [nameSize]byte
		if _, err := io.ReadFull(r, name[:]); err != nil {
			return fmt.Errorf("read menu item %d: %w", i, err)
		}
		h, err := control.ReadHandler(r, console)
		if err != nil {
			return fmt.Errorf("read menu item %d: %w", i, err)
		}
		if h != nil {
			h.IncRef()
		}
		text, _, _ := bytes.Cut(name[:], []byte{0})
		m.items = append(m.items, Item{Name: string(text), Handler: h})

		k, err := m.reg.ReadKeyNotifyMe(r, m.Key(), registry.Active, SlotSubMenu, i)
		if err != nil {
			return fmt.Errorf("read menu item %d: %w", i, err)
		}
		m.items[i].subKey = k
	}

	k, err := m.reg.ReadKeyNotifyMe(r, m.Key(), registry.Active, SlotSkin, Unset)
	if err != nil {
		return fmt.Errorf("read menu skin: %w", err)
	}
	if !k.IsNull() {
		m.skinKey = k
		m.waitingForSkin = true
	}
	if m.anchorKey, err = m.reg.ReadKeyNotifyMe(r, m.Key(), registry.Passive, SlotAnchor, Unset); err != nil {
		return fmt.Errorf("read menu anchor: %w", err)
	}
	if m.contextKey, err = m.reg.ReadKeyNotifyMe(r, m.Key(), registry.Passive, SlotContext, Unset); err != nil {
		return fmt.Errorf("read menu context: %w", err)
	}

	var align [1]byte
	if _, err := io.ReadFull(r, align[:]); err != nil {
		return fmt.Errorf("read menu alignment: %w", err)
	}
	m.align = Alignment(align[0])
	m.needsRebuild = true
	return nil
}
