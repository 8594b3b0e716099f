package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrBadLocation is returned when a key is minted or looked up in an invalid location.
	ErrBadLocation = errors.New("invalid location")
	// ErrStaleKey is returned when a key is used after its object was destroyed.
	ErrStaleKey = errors.New("stale key")
	// ErrNullKey is returned when a null key is passed where a live one is required.
	ErrNullKey = errors.New("null key")
	// ErrNotHeld is returned by Release when the requester holds no reference to the target.
	ErrNotHeld = errors.New("reference not held")
)

// Location identifies the page an object lives in. Page zero is invalid.
type Location struct {
	Page uint32
}

// DynamicLocation is where runtime-generated GUI objects are minted.
var DynamicLocation = Location{Page: 0xFF000001}

// IsValid reports whether objects can be minted in l.
func (l Location) IsValid() bool {
	return l.Page != 0
}

func (l Location) String() string {
	return fmt.Sprintf("page:%08x", l.Page)
}

// Key is an opaque handle to a registry-owned object. Keys are generational:
// once the object is destroyed every copy of its key becomes stale.
// The zero Key is the null handle.
type Key struct {
	index uint32
	gen   uint32
}

// IsNull reports whether k is the null handle.
func (k Key) IsNull() bool {
	return k.gen == 0
}

func (k Key) String() string {
	if k.IsNull() {
		return "key(nil)"
	}
	return fmt.Sprintf("key(%d#%d)", k.index, k.gen)
}

// Kind says whether a reference extends the target's lifetime.
type Kind uint8

const (
	// Active references keep the target alive until released.
	Active Kind = iota
	// Passive references only receive notifications.
	Passive
)

func (k Kind) String() string {
	if k == Passive {
		return "passive"
	}
	return "active"
}

// Context is the lifecycle transition a notification reports.
type Context uint8

const (
	OnCreate Context = 1 << iota
	OnReplace
	OnRemove
	OnDestroy
)

// Attaches reports whether the notification carries a usable object.
func (c Context) Attaches() bool {
	return c&(OnCreate|OnReplace) != 0
}

func (c Context) String() string {
	switch c {
	case OnCreate:
		return "create"
	case OnReplace:
		return "replace"
	case OnRemove:
		return "remove"
	case OnDestroy:
		return "destroy"
	}
	return fmt.Sprintf("context(%d)", uint8(c))
}

// Slot identifies which field on the requester a reference fills. Values are
// defined by each requester type.
type Slot int

// RefMsg is delivered to a requester when a referenced object changes state.
// Ref is nil unless Context.Attaches().
type RefMsg struct {
	Target    Key
	Requester Key
	Kind      Kind
	Context   Context
	Slot      Slot
	Which     int
	Ref       any
}

// Receiver is implemented by objects that hold references.
type Receiver interface {
	ReceiveRef(msg *RefMsg) bool
}

// Destroyer is implemented by objects that need to clean up when their key
// is destroyed. It runs before the object's own outgoing references are
// released, so it may still release them explicitly.
type Destroyer interface {
	Destroy()
}
