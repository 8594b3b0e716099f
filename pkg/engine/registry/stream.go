package registry

import (
	"encoding/binary"
	"fmt"
	"io"
)

const maxKeyName = 0xFFFF

// WriteKey writes a deferred-resolve reference to k: a presence byte, then
// the location page (LE32) and the name (LE16 length + bytes). Null and stale
// keys are written as absent.
func (r *Registry) WriteKey(w io.Writer, k Key) error {
	e, err := r.lookup(k)
	if err != nil {
		_, werr := w.Write([]byte{0})
		return werr
	}
	if len(e.name) > maxKeyName {
		return fmt.Errorf("write key %q: name too long", e.name)
	}
	buf := make([]byte, 0, 7+len(e.name))
	buf = append(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, e.loc.Page)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(e.name)))
	buf = append(buf, e.name...)
	_, err = w.Write(buf)
	return err
}

// ReadKey reads a reference written by WriteKey. An absent reference yields
// ok == false.
func ReadKey(rd io.Reader) (name string, loc Location, ok bool, err error) {
	var present [1]byte
	if _, err = io.ReadFull(rd, present[:]); err != nil {
		return "", Location{}, false, err
	}
	if present[0] == 0 {
		return "", Location{}, false, nil
	}
	var hdr [6]byte
	if _, err = io.ReadFull(rd, hdr[:]); err != nil {
		return "", Location{}, false, err
	}
	loc.Page = binary.LittleEndian.Uint32(hdr[:4])
	n := binary.LittleEndian.Uint16(hdr[4:])
	raw := make([]byte, n)
	if _, err = io.ReadFull(rd, raw); err != nil {
		return "", Location{}, false, err
	}
	return string(raw), loc, true, nil
}

// ReadKeyNotifyMe reads a reference and subscribes requester to it. The
// notification arrives on a later Pump once the target is populated. An absent
// reference returns the null key and no error.
func (r *Registry) ReadKeyNotifyMe(rd io.Reader, requester Key, kind Kind, slot Slot, which int) (Key, error) {
	name, loc, ok, err := ReadKey(rd)
	if err != nil {
		return Key{}, fmt.Errorf("read key: %w", err)
	}
	if !ok {
		return Key{}, nil
	}
	return r.RequestByName(name, loc, requester, kind, slot, which)
}
