package registry

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"cascade/pkg/engine/diag"
)

var testLoc = Location{Page: 7}

// recorder is a requester that keeps every notification it receives.
type recorder struct {
	msgs      []RefMsg
	destroyed bool
	onDestroy func()
	onReceive func(msg *RefMsg)
}

func (r *recorder) ReceiveRef(msg *RefMsg) bool {
	r.msgs = append(r.msgs, *msg)
	if r.onReceive != nil {
		r.onReceive(msg)
	}
	return true
}

func (r *recorder) Destroy() {
	r.destroyed = true
	if r.onDestroy != nil {
		r.onDestroy()
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(diag.New(io.Discard))
}

func mint(t *testing.T, r *Registry, name string, obj any) Key {
	t.Helper()
	k, err := r.Mint(name, obj, testLoc)
	if err != nil {
		t.Fatalf("Mint(%q): %v", name, err)
	}
	return k
}

func TestMint_BadLocation(t *testing.T) {
	r := newTestRegistry(t)
	k, err := r.Mint("GUIButton0", nil, Location{})
	if !errors.Is(err, ErrBadLocation) {
		t.Errorf("Mint at invalid location: err = %v, want ErrBadLocation", err)
	}
	if !k.IsNull() {
		t.Errorf("Mint at invalid location returned %v, want null key", k)
	}
}

func TestFind_ReturnsMintedKey(t *testing.T) {
	r := newTestRegistry(t)
	k := mint(t, r, "Skin01", "skin")
	got, ok := r.Find("Skin01", testLoc)
	if !ok || got != k {
		t.Errorf("Find = %v, %v; want %v, true", got, ok, k)
	}
	if r.UID(k).String() == "" || r.Name(k) != "Skin01" {
		t.Errorf("UID/Name not recorded for %v", k)
	}
}

func TestRequestWithNotify_NeverSynchronous(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "menu", rec)
	target := mint(t, r, "skin", "skin-object")

	if err := r.RequestWithNotify(target, req, Active, 3, -1); err != nil {
		t.Fatal(err)
	}
	if len(rec.msgs) != 0 {
		t.Fatalf("notification delivered inside RequestWithNotify: %+v", rec.msgs)
	}

	if n := r.Pump(); n != 1 {
		t.Errorf("Pump delivered %d, want 1", n)
	}
	if len(rec.msgs) != 1 {
		t.Fatalf("got %d notifications, want 1", len(rec.msgs))
	}
	msg := rec.msgs[0]
	if msg.Context != OnCreate || msg.Slot != 3 || msg.Ref != "skin-object" {
		t.Errorf("msg = %+v, want OnCreate slot 3 with object", msg)
	}
}

func TestRequestImmediate_DeliversBeforeReturn(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "layer", rec)
	tex := mint(t, r, "texture", "bits")

	delivered, err := r.RequestImmediate(tex, req, Active, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !delivered || len(rec.msgs) != 1 {
		t.Errorf("RequestImmediate delivered=%v msgs=%d, want true 1", delivered, len(rec.msgs))
	}
	if r.Pending() {
		t.Error("RequestImmediate left work queued")
	}
}

func TestRequestImmediate_UnpopulatedFallsBackToQueue(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "layer", rec)
	tex, _ := r.Declare("texture", testLoc)

	delivered, err := r.RequestImmediate(tex, req, Active, 0, 0)
	if err != nil || delivered {
		t.Fatalf("RequestImmediate on unpopulated = %v, %v; want false, nil", delivered, err)
	}
	if err := r.Populate(tex, "bits"); err != nil {
		t.Fatal(err)
	}
	if len(rec.msgs) != 0 {
		t.Error("Populate delivered synchronously")
	}
	r.Pump()
	if len(rec.msgs) != 1 || rec.msgs[0].Context != OnCreate {
		t.Errorf("msgs = %+v, want one OnCreate", rec.msgs)
	}
}

func TestPopulate_ReplaceAndRemove(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "menu", rec)
	target := mint(t, r, "skin", "a")
	_ = r.RequestWithNotify(target, req, Passive, 1, -1)
	r.Pump()

	_ = r.Populate(target, "b")
	_ = r.Populate(target, nil)
	r.Pump()

	if len(rec.msgs) != 3 {
		t.Fatalf("got %d msgs, want 3", len(rec.msgs))
	}
	if rec.msgs[1].Context != OnReplace || rec.msgs[1].Ref != "b" {
		t.Errorf("second msg = %+v, want OnReplace b", rec.msgs[1])
	}
	if rec.msgs[2].Context != OnRemove || rec.msgs[2].Ref != nil {
		t.Errorf("third msg = %+v, want OnRemove nil", rec.msgs[2])
	}
}

func TestPopulate_RefCapturedWhenQueued(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "menu", rec)
	target, err := r.Declare("skin", testLoc)
	if err != nil {
		t.Fatal(err)
	}
	_ = r.RequestWithNotify(target, req, Passive, 1, -1)

	_ = r.Populate(target, "a")
	_ = r.Populate(target, nil)
	r.Pump()

	if len(rec.msgs) != 2 {
		t.Fatalf("got %d msgs, want 2", len(rec.msgs))
	}
	if rec.msgs[0].Context != OnCreate || rec.msgs[0].Ref != "a" {
		t.Errorf("first msg = %+v, want OnCreate a", rec.msgs[0])
	}
	if rec.msgs[1].Context != OnRemove {
		t.Errorf("second msg = %+v, want OnRemove", rec.msgs[1])
	}
}

func TestRequestWithNotify_RefCapturedWhenQueued(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "menu", rec)
	target := mint(t, r, "skin", "a")
	_ = r.RequestWithNotify(target, req, Passive, 1, -1)
	_ = r.Populate(target, "b")
	r.Pump()

	if len(rec.msgs) != 2 {
		t.Fatalf("got %d msgs, want 2", len(rec.msgs))
	}
	if rec.msgs[0].Ref != "a" || rec.msgs[1].Ref != "b" {
		t.Errorf("refs = %v, %v; want a, b", rec.msgs[0].Ref, rec.msgs[1].Ref)
	}
}

func TestNotifications_OrderedPerRequester(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "menu", rec)
	target := mint(t, r, "submenu", "sub")
	for i := 0; i < 5; i++ {
		_ = r.RequestWithNotify(target, req, Passive, 2, i)
	}
	r.Pump()
	if len(rec.msgs) != 5 {
		t.Fatalf("got %d msgs, want 5", len(rec.msgs))
	}
	for i, m := range rec.msgs {
		if m.Which != i {
			t.Errorf("msg %d has Which %d, want %d", i, m.Which, i)
		}
	}
}

func TestRelease_SuppressesPendingNotification(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "menu", rec)
	target := mint(t, r, "skin", "skin")
	holder := mint(t, r, "holder", &recorder{})
	_ = r.RequestWithNotify(target, holder, Active, 0, 0)

	_ = r.RequestWithNotify(target, req, Active, 0, 0)
	if err := r.Release(req, target); err != nil {
		t.Fatal(err)
	}
	r.Pump()
	for _, m := range rec.msgs {
		if m.Context == OnCreate {
			t.Errorf("released requester still received %+v", m)
		}
	}
}

func TestRelease_LastActiveDestroysAfterPump(t *testing.T) {
	r := newTestRegistry(t)
	owner := mint(t, r, "dialog", &recorder{})
	obj := &recorder{}
	target := mint(t, r, "button", obj)
	_ = r.RequestWithNotify(target, owner, Active, 0, 0)
	r.Pump()

	if got := r.ActiveRefs(target); got != 1 {
		t.Fatalf("ActiveRefs = %d, want 1", got)
	}
	if err := r.Release(owner, target); err != nil {
		t.Fatal(err)
	}
	if !r.IsValid(target) {
		t.Error("target destroyed synchronously; want deferred to Pump")
	}
	r.Pump()
	if r.IsValid(target) {
		t.Error("target still valid after Pump")
	}
	if !obj.destroyed {
		t.Error("Destroyer hook not called")
	}
}

func TestRelease_DoubleReleaseIsProgrammingError(t *testing.T) {
	r := newTestRegistry(t)
	owner := mint(t, r, "dialog", &recorder{})
	target := mint(t, r, "button", "b")
	keep := mint(t, r, "keeper", &recorder{})
	_ = r.RequestWithNotify(target, keep, Active, 0, 0)
	_ = r.RequestWithNotify(target, owner, Active, 0, 0)

	if err := r.Release(owner, target); err != nil {
		t.Fatal(err)
	}
	if err := r.Release(owner, target); !errors.Is(err, ErrNotHeld) {
		t.Errorf("second Release err = %v, want ErrNotHeld", err)
	}
}

func TestStrictSink_PanicsOnStaleKey(t *testing.T) {
	r := New(diag.New(io.Discard, diag.WithStrict(true)))
	owner := mint(t, r, "dialog", &recorder{})
	target := mint(t, r, "button", "b")
	_ = r.Unregister(target)
	r.Pump()

	defer func() {
		if recover() == nil {
			t.Error("request on stale key did not panic under strict sink")
		}
	}()
	_ = r.RequestWithNotify(target, owner, Active, 0, 0)
}

func TestStaleKey_AfterSlotReuse(t *testing.T) {
	r := newTestRegistry(t)
	old := mint(t, r, "a", "a")
	_ = r.Unregister(old)
	r.Pump()
	fresh := mint(t, r, "b", "b")

	if r.IsValid(old) {
		t.Error("old key valid after its slot was reused")
	}
	if r.Object(old) != nil {
		t.Error("Object(old) returned the new occupant")
	}
	if got, _ := Get[string](r, fresh); got != "b" {
		t.Errorf("Get(fresh) = %q, want b", got)
	}
}

func TestDestroy_PassiveSubscribersToldWithNil(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	menu := mint(t, r, "menu", rec)
	anchor := mint(t, r, "anchor", "anchor-object")
	_ = r.RequestWithNotify(anchor, menu, Passive, 5, -1)
	r.Pump()

	_ = r.Unregister(anchor)
	r.Pump()

	last := rec.msgs[len(rec.msgs)-1]
	if last.Context != OnDestroy || last.Ref != nil || last.Slot != 5 {
		t.Errorf("last msg = %+v, want OnDestroy nil slot 5", last)
	}
}

func TestDestroy_ReleaseDuringNotificationKeepsOthers(t *testing.T) {
	r := newTestRegistry(t)
	first := &recorder{}
	second := &recorder{}
	a := mint(t, r, "first", first)
	b := mint(t, r, "second", second)
	anchor := mint(t, r, "anchor", "anchor-object")
	_ = r.RequestWithNotify(anchor, a, Passive, 0, -1)
	_ = r.RequestWithNotify(anchor, b, Passive, 0, -1)
	r.Pump()

	first.onReceive = func(msg *RefMsg) {
		if msg.Context == OnDestroy {
			if err := r.Release(a, anchor); err != nil {
				t.Errorf("Release during OnDestroy: %v", err)
			}
		}
	}
	_ = r.Unregister(anchor)
	r.Pump()

	for name, rec := range map[string]*recorder{"first": first, "second": second} {
		last := rec.msgs[len(rec.msgs)-1]
		if last.Context != OnDestroy {
			t.Errorf("%s last msg = %+v, want OnDestroy", name, last)
		}
	}
	if r.IsValid(anchor) {
		t.Error("anchor still valid after destroy")
	}
}

func TestDestroy_CascadesOwnedReferences(t *testing.T) {
	r := newTestRegistry(t)
	before := r.Live()

	dlg := mint(t, r, "dialog", &recorder{})
	ctrl := mint(t, r, "control", &recorder{})
	mat := mint(t, r, "material", &recorder{})
	surf := mint(t, r, "surface", "pixels")
	_, _ = r.RequestImmediate(ctrl, dlg, Active, 0, 0)
	_, _ = r.RequestImmediate(mat, ctrl, Active, 0, 0)
	_, _ = r.RequestImmediate(surf, mat, Active, 0, 0)

	_ = r.Unregister(dlg)
	r.Pump()

	if got := r.Live(); got != before {
		t.Errorf("Live = %d after cascade, want %d", got, before)
	}
}

func TestDestroy_RequesterDeathCancelsInFlight(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "menu", rec)
	target := mint(t, r, "skin", "s")
	_ = r.RequestWithNotify(target, req, Passive, 0, 0)
	_ = r.Unregister(req)
	r.Pump()
	for _, m := range rec.msgs {
		if m.Context == OnCreate {
			t.Errorf("dead requester received %+v", m)
		}
	}
}

func TestReadKeyNotifyMe_ResolvesLater(t *testing.T) {
	r := newTestRegistry(t)
	skin := mint(t, r, "GUISkin01", "skin")

	var buf bytes.Buffer
	if err := r.WriteKey(&buf, skin); err != nil {
		t.Fatal(err)
	}
	if err := r.WriteKey(&buf, Key{}); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	req := mint(t, r, "menu", rec)
	got, err := r.ReadKeyNotifyMe(&buf, req, Active, 9, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got != skin {
		t.Errorf("ReadKeyNotifyMe = %v, want %v", got, skin)
	}
	absent, err := r.ReadKeyNotifyMe(&buf, req, Active, 9, -1)
	if err != nil || !absent.IsNull() {
		t.Errorf("absent key = %v, %v; want null, nil", absent, err)
	}
	if len(rec.msgs) != 0 {
		t.Error("ReadKeyNotifyMe delivered synchronously")
	}
	r.Pump()
	if len(rec.msgs) != 1 || rec.msgs[0].Slot != 9 {
		t.Errorf("msgs = %+v, want one slot-9 notification", rec.msgs)
	}
}

func TestRequestByName_DeclaresPlaceholder(t *testing.T) {
	r := newTestRegistry(t)
	rec := &recorder{}
	req := mint(t, r, "menu", rec)
	k, err := r.RequestByName("LateSkin", testLoc, req, Active, 1, -1)
	if err != nil {
		t.Fatal(err)
	}
	r.Pump()
	if len(rec.msgs) != 0 {
		t.Fatal("placeholder delivered before populate")
	}
	_ = r.Populate(k, "skin")
	r.Pump()
	if len(rec.msgs) != 1 || rec.msgs[0].Ref != "skin" {
		t.Errorf("msgs = %+v, want one with skin", rec.msgs)
	}

	if _, err := r.RequestByName("x", Location{}, req, Active, 1, -1); !errors.Is(err, ErrBadLocation) {
		t.Errorf("bad location err = %v, want ErrBadLocation", err)
	}
}
