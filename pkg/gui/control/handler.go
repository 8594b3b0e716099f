package control

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"cascade/pkg/engine/input"
)

// Proc is the logic run when a control reports an event.
type Proc interface {
	Do(c *Control, ev input.Event)
}

// ProcFunc adapts a function to Proc.
type ProcFunc func(c *Control, ev input.Event)

// Do implements Proc.
func (f ProcFunc) Do(c *Control, ev input.Event) { f(c, ev) }

// Handler wraps a Proc with a small reference count so several controls (or
// menu items) can share it. The Proc's own state belongs to whoever wrote it.
type Handler struct {
	proc Proc
	refs int
}

// NewHandler wraps p. The count starts at zero; every holder calls IncRef.
func NewHandler(p Proc) *Handler {
	return &Handler{proc: p}
}

// Proc returns the wrapped logic.
func (h *Handler) Proc() Proc { return h.proc }

// Refs returns the number of holders.
func (h *Handler) Refs() int { return h.refs }

// IncRef records a new holder.
func (h *Handler) IncRef() { h.refs++ }

// DecRef drops a holder and reports whether it was the last one. The last
// release closes the Proc if it implements io.Closer.
func (h *Handler) DecRef() bool {
	if h.refs > 0 {
		h.refs--
	}
	if h.refs > 0 {
		return false
	}
	if c, ok := h.proc.(io.Closer); ok {
		_ = c.Close()
	}
	return true
}

// Do runs the Proc.
func (h *Handler) Do(c *Control, ev input.Event) {
	if h != nil && h.proc != nil {
		h.proc.Do(c, ev)
	}
}

// Console executes console-style command strings.
type Console interface {
	Execute(cmd string) error
}

// CommandProc runs a console command on activation. It is the only Proc that
// can be persisted.
type CommandProc struct {
	Command string
	Console Console
}

// Do implements Proc.
func (p *CommandProc) Do(_ *Control, ev input.Event) {
	if ev.Kind != input.EventActivate || p.Console == nil || p.Command == "" {
		return
	}
	_ = p.Console.Execute(p.Command)
}

// Persisted handler types.
const (
	procNone    uint32 = 0
	procConsole uint32 = 1

	maxCommand = 1 << 16
)

// ErrUnknownProc is returned when a persisted handler has an unknown type.
var ErrUnknownProc = errors.New("unknown handler type")

// WriteHandler stores h: a LE32 type, then for console commands a LE32
// length and the command bytes. Handlers that cannot be persisted are
// written as none.
func WriteHandler(w io.Writer, h *Handler) error {
	var cp *CommandProc
	if h != nil {
		cp, _ = h.proc.(*CommandProc)
	}
	var buf []byte
	if cp == nil {
		buf = binary.LittleEndian.AppendUint32(buf, procNone)
	} else {
		buf = binary.LittleEndian.AppendUint32(buf, procConsole)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(cp.Command)))
		buf = append(buf, cp.Command...)
	}
	_, err := w.Write(buf)
	return err
}

// ReadHandler reads a handler written by WriteHandler, binding console
// commands to console. A stored none yields a nil handler.
func ReadHandler(r io.Reader, console Console) (*Handler, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read handler: %w", err)
	}
	switch t := binary.LittleEndian.Uint32(hdr[:]); t {
	case procNone:
		return nil, nil
	case procConsole:
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("read handler: %w", err)
		}
		n := binary.LittleEndian.Uint32(hdr[:])
		if n > maxCommand {
			return nil, fmt.Errorf("read handler: command length %d too long", n)
		}
		cmd := make([]byte, n)
		if _, err := io.ReadFull(r, cmd); err != nil {
			return nil, fmt.Errorf("read handler command: %w", err)
		}
		return NewHandler(&CommandProc{Command: string(cmd), Console: console}), nil
	default:
		return nil, fmt.Errorf("read handler: type %d: %w", t, ErrUnknownProc)
	}
}
