package input

import (
	"sort"
	"time"
)

// Device represents a physical input source.
type Device int

const (
	DeviceUnknown Device = iota
	DeviceMouse
	DeviceKeyboard
	DeviceTouch
)

// MouseEventKind is the 3rd-layer classification of a pointer event.
type MouseEventKind int

const (
	MouseNone MouseEventKind = iota
	MouseDown
	MouseUp
	MouseMove
	MouseDrag
	MouseDoubleClick
)

func (k MouseEventKind) String() string {
	switch k {
	case MouseDown:
		return "down"
	case MouseUp:
		return "up"
	case MouseMove:
		return "move"
	case MouseDrag:
		return "drag"
	case MouseDoubleClick:
		return "double-click"
	}
	return "none"
}

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// RawInput is the 1st-layer event emitted directly from an input device.
// Code is a device-specific identifier (e.g. "mouse_left_down", "touch_end").
// X and Y are in pixels.
type RawInput struct {
	Device    Device
	Code      string
	X, Y      int
	Modifiers Modifier
	Timestamp time.Time
}

// MouseEvent is the 4th-layer event routed to dialogs. X and Y are
// normalized screen fractions: (0,0) top-left, (1,1) bottom-right.
type MouseEvent struct {
	Kind      MouseEventKind
	X, Y      float64
	Modifiers Modifier
}

// bindings maps raw codes to mouse event kinds.
// Multiple codes may point to the same kind.
var bindings = map[string]MouseEventKind{
	"mouse_left_down":   MouseDown,
	"mouse_left_up":     MouseUp,
	"mouse_move":        MouseMove,
	"mouse_drag":        MouseDrag,
	"mouse_left_double": MouseDoubleClick,

	// Touch screens act like a single left button.
	"touch_begin": MouseDown,
	"touch_end":   MouseUp,
	"touch_move":  MouseDrag,
}

// MapToMouseEvent applies the bindings to a raw input and converts its pixel
// position to screen fractions for a screen of the given size. Unknown codes
// and empty screens yield MouseNone.
func MapToMouseEvent(raw RawInput, screenW, screenH int) MouseEvent {
	kind, ok := bindings[raw.Code]
	if !ok || screenW <= 0 || screenH <= 0 {
		return MouseEvent{Kind: MouseNone}
	}
	return MouseEvent{
		Kind:      kind,
		X:         float64(raw.X) / float64(screenW),
		Y:         float64(raw.Y) / float64(screenH),
		Modifiers: raw.Modifiers,
	}
}

// GetBindingsByKind returns the current bindings grouped by event kind.
func GetBindingsByKind() map[MouseEventKind][]string {
	result := make(map[MouseEventKind][]string)
	for code, kind := range bindings {
		result[kind] = append(result[kind], code)
	}
	// Stable ordering so tooling output doesn't flicker.
	for kind, codes := range result {
		sort.Strings(codes)
		result[kind] = codes
	}
	return result
}

// SetBinding maps code to kind. An empty kind (MouseNone) removes the code.
func SetBinding(code string, kind MouseEventKind) {
	if code == "" {
		return
	}
	if kind == MouseNone {
		delete(bindings, code)
		return
	}
	bindings[code] = kind
}
