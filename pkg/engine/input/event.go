// Package input turns device input into pointer events and defines the
// events controls report to their handlers.
package input

import "fmt"

// EventKind tags an Event.
type EventKind int

const (
	// EventActivate is a plain click release inside a control.
	EventActivate EventKind = iota
	// EventHover is reported when the pointer enters a control that reports hovers.
	EventHover
	// EventExit is reported when the pointer leaves a control that reports hovers.
	EventExit
	// EventDragged is reported by drag bars while they move their dialog.
	EventDragged
)

func (k EventKind) String() string {
	switch k {
	case EventActivate:
		return "activate"
	case EventHover:
		return "hover"
	case EventExit:
		return "exit"
	case EventDragged:
		return "dragged"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Extended reports whether the event is anything other than a plain activation.
func (k EventKind) Extended() bool {
	return k != EventActivate
}

// Event is what a control hands to its handler. DX and DY carry the drag
// delta in screen fractions for EventDragged.
type Event struct {
	Kind   EventKind
	DX, DY float64
}

// Activate returns a plain activation event.
func Activate() Event { return Event{Kind: EventActivate} }

// Hover returns a pointer-enter event.
func Hover() Event { return Event{Kind: EventHover} }

// Exit returns a pointer-leave event.
func Exit() Event { return Event{Kind: EventExit} }
