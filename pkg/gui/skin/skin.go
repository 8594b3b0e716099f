// Package skin describes how pop-up menus are decorated: a bitmap atlas, the
// rectangles inside it for borders, fills and glyphs, and two margins.
package skin

import (
	"encoding/binary"
	"fmt"
	"io"

	"cascade/pkg/engine/registry"
	"cascade/pkg/engine/scene"
)

// Element names a region of the atlas.
type Element int

const (
	UpLeftCorner Element = iota
	TopSpan
	UpRightCorner
	RightSpan
	LowerRightCorner
	BottomSpan
	LowerLeftCorner
	LeftSpan
	MiddleFill
	SelectedFill
	SubMenuArrow
	SelectedSubMenuArrow
	TreeButtonClosed
	TreeButtonOpen

	NumElements
)

var elementNames = [NumElements]string{
	"up_left_corner",
	"top_span",
	"up_right_corner",
	"right_span",
	"lower_right_corner",
	"bottom_span",
	"lower_left_corner",
	"left_span",
	"middle_fill",
	"selected_fill",
	"sub_menu_arrow",
	"selected_sub_menu_arrow",
	"tree_button_closed",
	"tree_button_open",
}

func (e Element) String() string {
	if e >= 0 && e < NumElements {
		return elementNames[e]
	}
	return fmt.Sprintf("element(%d)", int(e))
}

// Rect is a region of the atlas in pixels.
type Rect struct {
	X, Y, W, H uint16
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.W == 0 || r.H == 0
}

// Skin is a registry-owned decoration descriptor. Apart from the texture,
// which resolves through the registry, it does not change after loading.
type Skin struct {
	ItemMargin   uint16
	BorderMargin uint16

	reg      *registry.Registry
	key      registry.Key
	elements [NumElements]Rect
	texKey   registry.Key
	texture  *scene.Texture
}

// New mints an empty skin in loc.
func New(reg *registry.Registry, name string, loc registry.Location) (*Skin, error) {
	s := &Skin{reg: reg}
	k, err := reg.Mint(name, s, loc)
	if err != nil {
		return nil, err
	}
	s.key = k
	return s, nil
}

// Key returns the skin's registry key.
func (s *Skin) Key() registry.Key { return s.key }

// Element returns the rectangle for e.
func (s *Skin) Element(e Element) Rect {
	if e < 0 || e >= NumElements {
		return Rect{}
	}
	return s.elements[e]
}

// SetElement sets the rectangle for e.
func (s *Skin) SetElement(e Element, x, y, w, h uint16) {
	if e < 0 || e >= NumElements {
		return
	}
	s.elements[e] = Rect{X: x, Y: y, W: w, H: h}
}

// Texture returns the atlas, or nil until it has resolved.
func (s *Skin) Texture() *scene.Texture { return s.texture }

// SetTexture makes the skin hold the atlas behind k. The null key clears it.
func (s *Skin) SetTexture(k registry.Key) error {
	if !s.texKey.IsNull() {
		if s.reg.IsValid(s.texKey) {
			if err := s.reg.Release(s.key, s.texKey); err != nil {
				return err
			}
		}
		s.texKey = registry.Key{}
		s.texture = nil
	}
	if k.IsNull() {
		return nil
	}
	s.texKey = k
	_, err := s.reg.RequestImmediate(k, s.key, registry.Active, scene.SlotTexture, -1)
	return err
}

// ReceiveRef implements registry.Receiver.
func (s *Skin) ReceiveRef(msg *registry.RefMsg) bool {
	if msg.Slot != scene.SlotTexture {
		return false
	}
	if msg.Context.Attaches() {
		s.texture, _ = msg.Ref.(*scene.Texture)
		s.texKey = msg.Target
	} else {
		s.texture = nil
	}
	return true
}

// Write stores the skin: item and border margins (LE16), the element count
// (LE32), each rectangle as four LE16 values, then the atlas reference.
func (s *Skin) Write(w io.Writer) error {
	buf := make([]byte, 0, 8+int(NumElements)*8)
	buf = binary.LittleEndian.AppendUint16(buf, s.ItemMargin)
	buf = binary.LittleEndian.AppendUint16(buf, s.BorderMargin)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(NumElements))
	for _, r := range s.elements {
		buf = binary.LittleEndian.AppendUint16(buf, r.X)
		buf = binary.LittleEndian.AppendUint16(buf, r.Y)
		buf = binary.LittleEndian.AppendUint16(buf, r.W)
		buf = binary.LittleEndian.AppendUint16(buf, r.H)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write skin: %w", err)
	}
	return s.reg.WriteKey(w, s.texKey)
}

// Read loads a skin written by Write. Elements missing from the stream are
// left empty and extra ones are skipped. The atlas arrives on a later Pump.
func (s *Skin) Read(r io.Reader) error {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return fmt.Errorf("read skin: %w", err)
	}
	s.ItemMargin = binary.LittleEndian.Uint16(hdr[0:])
	s.BorderMargin = binary.LittleEndian.Uint16(hdr[2:])
	count := binary.LittleEndian.Uint32(hdr[4:])

	s.elements = [NumElements]Rect{}
	var raw [8]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return fmt.Errorf("read skin element %d: %w", i, err)
		}
		if i >= uint32(NumElements) {
			continue
		}
		s.elements[i] = Rect{
			X: binary.LittleEndian.Uint16(raw[0:]),
			Y: binary.LittleEndian.Uint16(raw[2:]),
			W: binary.LittleEndian.Uint16(raw[4:]),
			H: binary.LittleEndian.Uint16(raw[6:]),
		}
	}

	k, err := s.reg.ReadKeyNotifyMe(r, s.key, registry.Active, scene.SlotTexture, -1)
	if err != nil {
		return err
	}
	s.texKey = k
	return nil
}
