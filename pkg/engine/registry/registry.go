// Package registry owns keyed engine objects and delivers reference
// notifications to the objects that depend on them.
//
// Notifications are queued and delivered only from Pump, which the frame loop
// calls at defined points. RequestImmediate is the single synchronous path and
// is meant for wiring objects created in the same call stack.
//
// The registry is not safe for concurrent use; it belongs to the frame loop.
package registry

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/queue"

	"cascade/pkg/engine/diag"
)

type subscription struct {
	target    Key
	requester Key
	kind      Kind
	slot      Slot
	which     int
	live      bool
}

type entry struct {
	gen       uint32
	name      string
	loc       Location
	uid       uuid.UUID
	obj       any
	populated bool
	freed     bool
	doomed    bool
	active    int
	subs      []*subscription // references to this entry, in request order
	owned     []*subscription // references this entry holds
}

type job struct {
	sub     *subscription
	ctx     Context
	obj     any // object as of the transition
	destroy Key
}

type nameKey struct {
	loc  Location
	name string
}

// Registry owns keyed objects and their references.
type Registry struct {
	entries []*entry
	free    []uint32
	names   map[nameKey]Key
	jobs    *queue.Queue[*job]
	pumping bool
	sink    *diag.Sink
}

// New creates an empty registry reporting to sink (nil uses diag.Default).
func New(sink *diag.Sink) *Registry {
	return &Registry{
		entries: []*entry{nil},
		names:   make(map[nameKey]Key),
		jobs:    queue.New[*job](),
		sink:    diag.Or(sink),
	}
}

// Sink returns the diagnostic sink.
func (r *Registry) Sink() *diag.Sink {
	return r.sink
}

func (r *Registry) lookup(k Key) (*entry, error) {
	if k.IsNull() {
		return nil, ErrNullKey
	}
	if int(k.index) >= len(r.entries) {
		return nil, fmt.Errorf("%v: %w", k, ErrStaleKey)
	}
	e := r.entries[k.index]
	if e == nil || e.freed || e.gen != k.gen {
		return nil, fmt.Errorf("%v: %w", k, ErrStaleKey)
	}
	return e, nil
}

// misuse reports a programming error and returns it.
func (r *Registry) misuse(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	r.sink.ProgrammingError(err)
	return err
}

// Mint registers obj under name in loc. Names are expected to be unique per
// location; minting a duplicate name shadows the earlier key for Find.
// obj may be nil, in which case the key exists but is not yet populated.
func (r *Registry) Mint(name string, obj any, loc Location) (Key, error) {
	if !loc.IsValid() {
		err := fmt.Errorf("mint %q in %v: %w", name, loc, ErrBadLocation)
		r.sink.ConfigError(err)
		return Key{}, err
	}

	var idx uint32
	var e *entry
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
		e = r.entries[idx]
		gen := e.gen + 1
		if gen == 0 {
			gen = 1
		}
		*e = entry{gen: gen}
	} else {
		idx = uint32(len(r.entries))
		e = &entry{gen: 1}
		r.entries = append(r.entries, e)
	}
	e.name = name
	e.loc = loc
	e.uid = uuid.New()
	e.obj = obj
	e.populated = obj != nil

	k := Key{index: idx, gen: e.gen}
	if prev, ok := r.names[nameKey{loc, name}]; ok && r.IsValid(prev) {
		r.sink.Debugf("registry: %q in %v shadows %v", name, loc, prev)
	}
	r.names[nameKey{loc, name}] = k
	return k, nil
}

// Declare mints a key whose object will be supplied later with Populate.
func (r *Registry) Declare(name string, loc Location) (Key, error) {
	return r.Mint(name, nil, loc)
}

// Populate attaches obj to k. Subscribers are notified on the next Pump with
// OnCreate the first time, OnReplace afterwards, or OnRemove when obj is nil.
func (r *Registry) Populate(k Key, obj any) error {
	e, err := r.lookup(k)
	if err != nil {
		return r.misuse("populate", err)
	}
	ctx := OnCreate
	switch {
	case obj == nil:
		ctx = OnRemove
	case e.populated:
		ctx = OnReplace
	}
	e.obj = obj
	e.populated = obj != nil
	for _, sub := range e.subs {
		if sub.live {
			r.jobs.Enqueue(&job{sub: sub, ctx: ctx, obj: obj})
		}
	}
	return nil
}

// Find returns the key registered under name in loc.
func (r *Registry) Find(name string, loc Location) (Key, bool) {
	k, ok := r.names[nameKey{loc, name}]
	if !ok || !r.IsValid(k) {
		return Key{}, false
	}
	return k, true
}

// IsValid reports whether k refers to a live object.
func (r *Registry) IsValid(k Key) bool {
	_, err := r.lookup(k)
	return err == nil
}

// Object returns the object behind k, or nil when k is null, stale or not
// yet populated.
func (r *Registry) Object(k Key) any {
	e, err := r.lookup(k)
	if err != nil {
		return nil
	}
	return e.obj
}

// Get returns the object behind k as a T.
func Get[T any](r *Registry, k Key) (T, bool) {
	v, ok := r.Object(k).(T)
	return v, ok
}

// Name returns the name k was minted with.
func (r *Registry) Name(k Key) string {
	e, err := r.lookup(k)
	if err != nil {
		return ""
	}
	return e.name
}

// Location returns the location k was minted in.
func (r *Registry) Location(k Key) Location {
	e, err := r.lookup(k)
	if err != nil {
		return Location{}
	}
	return e.loc
}

// UID returns the globally unique identifier of k.
func (r *Registry) UID(k Key) uuid.UUID {
	e, err := r.lookup(k)
	if err != nil {
		return uuid.Nil
	}
	return e.uid
}

// ActiveRefs returns the number of active references held on k.
func (r *Registry) ActiveRefs(k Key) int {
	e, err := r.lookup(k)
	if err != nil {
		return 0
	}
	return e.active
}

// Live returns the number of keys that have not been destroyed.
func (r *Registry) Live() int {
	return len(r.entries) - 1 - len(r.free)
}

// Pending reports whether notifications or destructions are queued.
func (r *Registry) Pending() bool {
	return !r.jobs.Empty()
}

func (r *Registry) subscribe(op string, target, requester Key, kind Kind, slot Slot, which int) (*subscription, *entry, error) {
	te, err := r.lookup(target)
	if err != nil {
		return nil, nil, r.misuse(op+" target", err)
	}
	re, err := r.lookup(requester)
	if err != nil {
		return nil, nil, r.misuse(op+" requester", err)
	}
	sub := &subscription{
		target:    target,
		requester: requester,
		kind:      kind,
		slot:      slot,
		which:     which,
		live:      true,
	}
	te.subs = append(te.subs, sub)
	re.owned = append(re.owned, sub)
	if kind == Active {
		te.active++
		te.doomed = false
	}
	return sub, te, nil
}

// RequestWithNotify asks to be told when target is usable. The notification
// is always delivered by a later Pump, even when target is already populated.
func (r *Registry) RequestWithNotify(target, requester Key, kind Kind, slot Slot, which int) error {
	sub, te, err := r.subscribe("request", target, requester, kind, slot, which)
	if err != nil {
		return err
	}
	if te.populated {
		r.jobs.Enqueue(&job{sub: sub, ctx: OnCreate, obj: te.obj})
	}
	return nil
}

// RequestByName resolves name in loc, declaring a placeholder key when no
// object has been registered under it yet, then behaves like RequestWithNotify.
func (r *Registry) RequestByName(name string, loc Location, requester Key, kind Kind, slot Slot, which int) (Key, error) {
	if !loc.IsValid() {
		err := fmt.Errorf("request %q in %v: %w", name, loc, ErrBadLocation)
		r.sink.ConfigError(err)
		return Key{}, err
	}
	k, ok := r.Find(name, loc)
	if !ok {
		var err error
		if k, err = r.Declare(name, loc); err != nil {
			return Key{}, err
		}
	}
	return k, r.RequestWithNotify(k, requester, kind, slot, which)
}

// RequestImmediate subscribes like RequestWithNotify but, when target is
// already populated, delivers the notification before returning. It reports
// whether delivery happened.
func (r *Registry) RequestImmediate(target, requester Key, kind Kind, slot Slot, which int) (bool, error) {
	sub, te, err := r.subscribe("request immediate", target, requester, kind, slot, which)
	if err != nil {
		return false, err
	}
	if !te.populated {
		return false, nil
	}
	r.deliver(sub, OnCreate, te.obj)
	return true, nil
}

// Release drops one reference requester holds on target, preferring active
// references. Undelivered notifications for the dropped reference are
// suppressed. When the target's active count reaches zero its destruction is
// scheduled for the next Pump.
func (r *Registry) Release(requester, target Key) error {
	re, err := r.lookup(requester)
	if err != nil {
		return r.misuse("release requester", err)
	}
	te, err := r.lookup(target)
	if err != nil {
		return r.misuse("release target", err)
	}

	var found *subscription
	for _, sub := range re.owned {
		if sub.live && sub.target == target {
			if sub.kind == Active {
				found = sub
				break
			}
			if found == nil {
				found = sub
			}
		}
	}
	if found == nil {
		return r.misuse("release", fmt.Errorf("%v on %v: %w", requester, target, ErrNotHeld))
	}

	r.drop(found, re, te)
	return nil
}

// drop kills sub and unlinks it from both ends.
func (r *Registry) drop(sub *subscription, re, te *entry) {
	sub.live = false
	re.owned = removeSub(re.owned, sub)
	te.subs = removeSub(te.subs, sub)
	if sub.kind == Active {
		te.active--
		if te.active <= 0 {
			te.active = 0
			r.schedule(sub.target, te)
		}
	}
}

func removeSub(list []*subscription, sub *subscription) []*subscription {
	for i, s := range list {
		if s == sub {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (r *Registry) schedule(k Key, e *entry) {
	if e.doomed {
		return
	}
	e.doomed = true
	r.jobs.Enqueue(&job{destroy: k})
}

// Unregister schedules k for destruction regardless of its reference count.
// Used for root objects nothing else holds, such as dialogs owned by a generator.
func (r *Registry) Unregister(k Key) error {
	e, err := r.lookup(k)
	if err != nil {
		return r.misuse("unregister", err)
	}
	e.active = 0
	r.schedule(k, e)
	return nil
}

// Pump delivers queued notifications and performs scheduled destructions,
// including any queued while pumping. It returns the number of notifications
// delivered. Nested calls return immediately.
func (r *Registry) Pump() int {
	if r.pumping {
		return 0
	}
	r.pumping = true
	defer func() { r.pumping = false }()

	delivered := 0
	for !r.jobs.Empty() {
		j := r.jobs.Dequeue()
		if !j.destroy.IsNull() {
			r.destroy(j.destroy)
			continue
		}
		if r.deliver(j.sub, j.ctx, j.obj) {
			delivered++
		}
	}
	return delivered
}

// deliver hands obj to the requester of sub. Attach contexts carry the object
// captured when the notification was queued, not the target's current one.
func (r *Registry) deliver(sub *subscription, ctx Context, obj any) bool {
	if !sub.live {
		return false
	}
	if _, err := r.lookup(sub.target); err != nil {
		return false
	}
	re, err := r.lookup(sub.requester)
	if err != nil {
		// Requester died with the notification in flight.
		r.sink.Debugf("registry: dropped %v notification for dead requester %v", ctx, sub.requester)
		return false
	}
	if re.doomed && ctx.Attaches() {
		// Scheduled for destruction; don't hand it new objects.
		return false
	}
	rcv, ok := re.obj.(Receiver)
	if !ok {
		return false
	}
	msg := &RefMsg{
		Target:    sub.target,
		Requester: sub.requester,
		Kind:      sub.kind,
		Context:   ctx,
		Slot:      sub.slot,
		Which:     sub.which,
	}
	if ctx.Attaches() {
		msg.Ref = obj
	}
	rcv.ReceiveRef(msg)
	return true
}

func (r *Registry) destroy(k Key) {
	e, err := r.lookup(k)
	if err != nil || !e.doomed {
		// Already gone, or re-referenced after being scheduled.
		return
	}

	// Tell everyone still pointing at us so they can clear their slots.
	// Receivers may release us from inside ReceiveRef, so walk a snapshot.
	for _, sub := range slices.Clone(e.subs) {
		if !sub.live {
			continue
		}
		r.deliver(sub, OnDestroy, nil)
		if re, err := r.lookup(sub.requester); err == nil {
			re.owned = removeSub(re.owned, sub)
		}
		sub.live = false
	}
	e.subs = nil

	if d, ok := e.obj.(Destroyer); ok {
		d.Destroy()
	}

	// Release what we held; this may schedule further destructions.
	for len(e.owned) > 0 {
		sub := e.owned[0]
		if te, err := r.lookup(sub.target); err == nil {
			r.drop(sub, e, te)
		} else {
			sub.live = false
			e.owned = e.owned[1:]
		}
	}

	if cur, ok := r.names[nameKey{e.loc, e.name}]; ok && cur == k {
		delete(r.names, nameKey{e.loc, e.name})
	}
	e.freed = true
	e.obj = nil
	e.populated = false
	e.subs = nil
	e.owned = nil
	r.free = append(r.free, k.index)
}
