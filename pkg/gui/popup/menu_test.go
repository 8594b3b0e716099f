package popup

import (
	"bytes"
	"io"
	"math"
	"testing"

	"cascade/pkg/engine/diag"
	"cascade/pkg/engine/input"
	"cascade/pkg/engine/registry"
	"cascade/pkg/engine/render/headless"
	"cascade/pkg/engine/scene"
	"cascade/pkg/gui/control"
	"cascade/pkg/gui/skin"
)

var loc = registry.Location{Page: 7}

type fixture struct {
	reg     *registry.Registry
	backend *headless.Backend
	mgr     *control.Manager
	gen     *control.Generator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		reg:     registry.New(diag.New(io.Discard, diag.WithStrict(true))),
		backend: headless.New(800, 600),
	}
	mgr, err := control.NewManager(f.reg, loc)
	if err != nil {
		t.Fatal(err)
	}
	f.mgr = mgr
	f.gen = control.NewGenerator(f.reg, f.backend, mgr, loc)
	return f
}

func (f *fixture) menu(t *testing.T, name string, items ...string) *Menu {
	t.Helper()
	m, err := Build(name, f.gen, nil, 0.1, 0.1, loc)
	if err != nil {
		t.Fatalf("Build(%q): %v", name, err)
	}
	for _, it := range items {
		if err := m.AddItem(it, nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func center(c *control.Control) (float64, float64) {
	x, y, w, h := c.Bounds()
	return x + w/2, y + h/2
}

func (f *fixture) click(x, y float64) bool {
	f.mgr.HandleMouse(input.MouseEvent{Kind: input.MouseDown, X: x, Y: y})
	return f.mgr.HandleMouse(input.MouseEvent{Kind: input.MouseUp, X: x, Y: y})
}

func (f *fixture) hover(c *control.Control) {
	x, y := center(c)
	f.mgr.HandleMouse(input.MouseEvent{Kind: input.MouseMove, X: x, Y: y})
}

func TestBuild_Defaults(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu")
	if m.Name() != "Menu-0" {
		t.Errorf("Name = %q, want Menu-0", m.Name())
	}
	if m.Margin() != 4 || m.Alignment() != AlignDownRight {
		t.Errorf("margin/alignment = %d/%v", m.Margin(), m.Alignment())
	}
	if !m.HasFlag(ModalOutsideMenus) {
		t.Error("ModalOutsideMenus not set by default")
	}
	if m.SubMenuOpen() != Unset {
		t.Errorf("SubMenuOpen = %d", m.SubMenuOpen())
	}
	if m.State() != StateUninitialized {
		t.Errorf("State = %v, want uninitialized", m.State())
	}
	if m.IsVisible() {
		t.Error("new menu visible")
	}
}

func TestShow_ItemCountAndTags(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu", "a", "b", "c")
	m.ClearItems()
	m.AddItem("Open", nil, nil)
	m.AddItem("Save", nil, nil)
	if m.State() != StateNeedsRebuild {
		t.Errorf("State = %v, want needs-rebuild", m.State())
	}

	m.Show(0.1, 0.1)
	if m.State() != StateVisible {
		t.Errorf("State = %v, want visible", m.State())
	}
	cs := m.Controls()
	if len(cs) != len(m.Items()) {
		t.Fatalf("controls = %d, items = %d", len(cs), len(m.Items()))
	}
	for i, c := range cs {
		if c.Tag() != i {
			t.Errorf("control %d tag = %d", i, c.Tag())
		}
		if c.Label() != m.Items()[i].Name {
			t.Errorf("control %d label = %q", i, c.Label())
		}
		if c.Kind() != control.KindMenuItem || !c.HasFlag(control.FlagReportHovers) {
			t.Errorf("control %d kind = %v", i, c.Kind())
		}
	}
	if _, part := cs[0].Skin(); part != control.PartTop {
		t.Errorf("first part = %v", part)
	}
	if _, part := cs[1].Skin(); part != control.PartBottom {
		t.Errorf("last part = %v", part)
	}

	m.Hide()
	if m.State() != StateHidden {
		t.Errorf("State = %v, want hidden", m.State())
	}
}

func TestRebuild_Idempotent(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu", "One", "Two", "Three")
	m.Show(0.2, 0.3)
	f.reg.Pump()
	live := f.reg.Live()

	type box struct{ x, y, w, h float64 }
	snapshot := func() []box {
		var out []box
		for _, c := range m.Controls() {
			x, y, w, h := c.Bounds()
			out = append(out, box{x, y, w, h})
		}
		return out
	}
	first := snapshot()

	for range 3 {
		if err := m.Rebuild(); err != nil {
			t.Fatal(err)
		}
		f.reg.Pump()
	}
	if f.reg.Live() != live {
		t.Errorf("live keys = %d after rebuilds, want %d", f.reg.Live(), live)
	}
	again := snapshot()
	if len(again) != len(first) {
		t.Fatalf("controls = %d, want %d", len(again), len(first))
	}
	for i := range first {
		a, b := first[i], again[i]
		if !near(a.x, b.x) || !near(a.y, b.y) || !near(a.w, b.w) || !near(a.h, b.h) {
			t.Errorf("item %d moved: %+v -> %+v", i, a, b)
		}
	}
	if n := f.backend.LiveSurfaces(); n != 3 {
		t.Errorf("live surfaces = %d, want 3", n)
	}
}

func TestLayout_ClampsToBottomEdge(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu", "One", "Two", "Six")
	m.SetMargin(30)
	m.Show(0.5, 0.9)

	cs := m.Controls()
	if len(cs) != 3 {
		t.Fatalf("controls = %d", len(cs))
	}
	// (16 + 2 + 30) / 600 per item.
	x, y, _, h := cs[0].Bounds()
	if !near(h, 0.08) {
		t.Errorf("item height = %v, want 0.08", h)
	}
	if !near(y, 0.76) {
		t.Errorf("top = %v, want 0.76", y)
	}
	if !near(x, 0.5) {
		t.Errorf("left = %v, want 0.5", x)
	}
	_, ly, _, lh := cs[2].Bounds()
	if !near(ly+lh, 1) {
		t.Errorf("bottom = %v, want 1", ly+lh)
	}
}

func TestLayout_TopClampWins(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu")
	for range 20 {
		m.AddItem("Item", nil, nil)
	}
	m.SetMargin(30)
	m.SetAlignment(AlignDownLeft)
	// 20 items of 0.08 overflow both edges.
	m.Show(0.5, 0.5)
	x, y, w, _ := m.Controls()[0].Bounds()
	if !near(y, 0) {
		t.Errorf("top = %v, want 0", y)
	}
	if !near(x+w, 0.5) {
		t.Errorf("right = %v, want 0.5", x+w)
	}
}

func TestLayout_SkinnedClampKeepsBorderOnScreen(t *testing.T) {
	f := newFixture(t)
	sk, err := skin.New(f.reg, "GUISkin01", loc)
	if err != nil {
		t.Fatal(err)
	}
	sk.ItemMargin = 1
	sk.BorderMargin = 30
	m := f.menu(t, "Menu", "One", "Two", "Three")
	if err := m.SetSkin(sk.Key()); err != nil {
		t.Fatal(err)
	}
	m.Show(0.5, 0.99)

	cs := m.Controls()
	if len(cs) != 3 {
		t.Fatalf("controls = %d, want 3", len(cs))
	}
	// Items are 20px tall with a 30px border above and below.
	_, top, _, _ := cs[0].Bounds()
	if want := 1 - 120.0/600; !near(top, want) {
		t.Errorf("top = %v, want %v", top, want)
	}
	_, ly, _, lh := cs[2].Bounds()
	if !near(ly+lh, 1) {
		t.Errorf("bottom = %v, want 1", ly+lh)
	}
	for i := 1; i < len(cs); i++ {
		_, py, _, ph := cs[i-1].Bounds()
		_, y, _, _ := cs[i].Bounds()
		if !near(py+ph, y) {
			t.Errorf("item %d starts at %v, previous ends at %v", i, y, py+ph)
		}
	}
}

func TestLayout_SkinnedOriginIsBorderTop(t *testing.T) {
	f := newFixture(t)
	sk, err := skin.New(f.reg, "GUISkin01", loc)
	if err != nil {
		t.Fatal(err)
	}
	sk.BorderMargin = 30
	m := f.menu(t, "Menu", "One", "Two")
	if err := m.SetSkin(sk.Key()); err != nil {
		t.Fatal(err)
	}
	m.Show(0.2, 0.2)
	_, top, _, _ := m.Controls()[0].Bounds()
	if !near(top, 0.2) {
		t.Errorf("top = %v, want 0.2", top)
	}
}

func TestShow_ElsewhereRebuildsAtNewOrigin(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu", "One", "Two")
	m.Show(0.1, 0.1)
	m.Hide()
	m.Show(0.5, 0.5)
	x, y, _, _ := m.Controls()[0].Bounds()
	if !near(x, 0.5) || !near(y, 0.5) {
		t.Errorf("first item at (%v, %v), want (0.5, 0.5)", x, y)
	}
	if got := len(m.Controls()); got != 2 {
		t.Errorf("controls = %d, want 2", got)
	}

	// Same origin again keeps the built controls.
	first := m.Controls()[0]
	m.Hide()
	m.Show(0.5, 0.5)
	if m.Controls()[0] != first {
		t.Error("reshowing at the same origin rebuilt the menu")
	}
}

func TestLayout_ScaleWithResolution(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu", "One")
	m.SetMargin(30)
	m.SetFlag(ScaleWithResolution)
	m.Show(0, 0)
	// 800x600 lays out against 1024x768.
	_, _, w, h := m.Controls()[0].Bounds()
	if !near(h, 48.0/768) {
		t.Errorf("height = %v, want %v", h, 48.0/768)
	}
	if !near(w, (24.0+30+4)/1024) {
		t.Errorf("width = %v", w)
	}
}

func TestHover_AtMostOneSubMenuOpen(t *testing.T) {
	f := newFixture(t)
	root := f.menu(t, "Root")
	subA := f.menu(t, "SubA", "a1", "a2")
	subB := f.menu(t, "SubB", "b1")
	root.AddItem("A", nil, subA)
	root.AddItem("B", nil, subB)
	root.AddItem("C", nil, nil)
	root.Show(0.1, 0.1)

	cs := root.Controls()
	if !cs[0].HasFlag(control.FlagDrawSubMenuArrow) || cs[2].HasFlag(control.FlagDrawSubMenuArrow) {
		t.Error("submenu arrows not flagged")
	}
	f.hover(cs[0])
	if !subA.IsVisible() || root.SubMenuOpen() != 0 {
		t.Fatalf("hover did not open SubA (open = %d)", root.SubMenuOpen())
	}
	ax, ay, _, _ := subA.Controls()[0].Bounds()
	rx, ry, rw, _ := cs[0].Bounds()
	if !near(ax, rx+rw) || !near(ay, ry) {
		t.Errorf("SubA at (%v, %v), want (%v, %v)", ax, ay, rx+rw, ry)
	}

	f.hover(cs[1])
	if subA.IsVisible() || !subB.IsVisible() || root.SubMenuOpen() != 1 {
		t.Errorf("after hovering B: A=%v B=%v open=%d", subA.IsVisible(), subB.IsVisible(), root.SubMenuOpen())
	}
	f.hover(cs[2])
	if subB.IsVisible() || root.SubMenuOpen() != Unset {
		t.Errorf("after hovering C: B=%v open=%d", subB.IsVisible(), root.SubMenuOpen())
	}
	if subA.Parent() != root {
		t.Error("submenu parent not set")
	}
}

func TestActivate_ClosesOtherSubMenu(t *testing.T) {
	f := newFixture(t)
	root := f.menu(t, "Root")
	subA := f.menu(t, "SubA", "a1")
	subB := f.menu(t, "SubB", "b1")
	root.AddItem("A", nil, subA)
	root.AddItem("B", nil, subB)
	root.Show(0.1, 0.1)

	cs := root.Controls()
	root.HandleMenuEvent(0, cs[0], input.Event{Kind: input.EventHover})
	if !subA.IsVisible() {
		t.Fatal("hover did not open SubA")
	}
	root.HandleMenuEvent(1, cs[1], input.Event{Kind: input.EventActivate})
	if subA.IsVisible() || !subB.IsVisible() || root.SubMenuOpen() != 1 {
		t.Errorf("after activating B: A=%v B=%v open=%d", subA.IsVisible(), subB.IsVisible(), root.SubMenuOpen())
	}
}

func TestOutsideClick_ClosesCascade(t *testing.T) {
	f := newFixture(t)
	root := f.menu(t, "Root")
	mid := f.menu(t, "Mid")
	leaf := f.menu(t, "Leaf", "Deepest")
	mid.AddItem("Deeper", nil, leaf)
	root.AddItem("Deep", nil, mid)
	root.Show(0.1, 0.1)

	f.hover(root.Controls()[0])
	f.hover(mid.Controls()[0])
	if !mid.IsVisible() || !leaf.IsVisible() {
		t.Fatal("cascade did not open")
	}

	if !f.mgr.HandleMouse(input.MouseEvent{Kind: input.MouseUp, X: 0.95, Y: 0.95}) {
		t.Error("outside click not consumed by root")
	}
	for _, m := range []*Menu{root, mid, leaf} {
		if m.IsVisible() {
			t.Errorf("%s still visible", m.Name())
		}
	}
	if root.SubMenuOpen() != Unset || mid.SubMenuOpen() != Unset {
		t.Error("open submenu indexes not cleared")
	}
}

func TestClick_HidesUpToStayOpen(t *testing.T) {
	f := newFixture(t)
	root := f.menu(t, "Root")
	sub := f.menu(t, "Sub")
	var chosen []string
	h := control.NewHandler(control.ProcFunc(func(c *control.Control, ev input.Event) {
		chosen = append(chosen, c.Label())
	}))
	sub.AddItem("Pick", h, nil)
	root.AddItem("More", nil, sub)
	root.SetFlag(StayOpenAfterClick)
	root.Show(0.1, 0.1)

	f.hover(root.Controls()[0])
	x, y := center(sub.Controls()[0])
	if !f.click(x, y) {
		t.Error("click on item not consumed")
	}
	if len(chosen) != 1 || chosen[0] != "Pick" {
		t.Errorf("handler calls = %v", chosen)
	}
	if sub.IsVisible() {
		t.Error("submenu still open after click")
	}
	if !root.IsVisible() {
		t.Error("stay-open root hidden")
	}
	if root.SubMenuOpen() != Unset {
		t.Errorf("root SubMenuOpen = %d", root.SubMenuOpen())
	}
}

func TestClick_SubMenuItemOpensIt(t *testing.T) {
	f := newFixture(t)
	root := f.menu(t, "Root")
	sub := f.menu(t, "Sub", "x")
	root.AddItem("More", nil, sub)
	root.Show(0.1, 0.1)
	x, y := center(root.Controls()[0])
	f.click(x, y)
	if !root.IsVisible() || !sub.IsVisible() {
		t.Error("activating a submenu item closed the menu")
	}
}

func TestDestroy_ZeroRefDelta(t *testing.T) {
	f := newFixture(t)
	before := f.reg.Live()
	h := control.NewHandler(&control.CommandProc{Command: "noop"})

	root := f.menu(t, "Root")
	sub := f.menu(t, "Sub", "s1", "s2")
	root.AddItem("One", h, nil)
	root.AddItem("Two", h, sub)
	root.Show(0.1, 0.1)
	f.hover(root.Controls()[1])
	root.Rebuild()
	f.reg.Pump()
	if h.Refs() != 2 {
		t.Errorf("handler refs = %d, want 2", h.Refs())
	}

	if err := f.reg.Unregister(root.Key()); err != nil {
		t.Fatal(err)
	}
	f.reg.Pump()
	if f.reg.Live() != before {
		t.Errorf("live keys = %d, want %d", f.reg.Live(), before)
	}
	if n := f.backend.LiveSurfaces(); n != 0 {
		t.Errorf("live surfaces = %d, want 0", n)
	}
	if h.Refs() != 0 {
		t.Errorf("handler refs = %d, want 0", h.Refs())
	}
	if len(f.mgr.Targets()) != 0 {
		t.Errorf("manager targets = %d", len(f.mgr.Targets()))
	}
}

func TestSkin_GatesBuild(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu", "One", "Two")
	skinKey, err := f.reg.Declare("GUISkin01", loc)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetSkin(skinKey); err != nil {
		t.Fatal(err)
	}
	m.Show(0.1, 0.1)
	if len(m.Controls()) != 0 {
		t.Fatalf("built %d controls before the skin arrived", len(m.Controls()))
	}
	if m.State() != StateNeedsRebuild {
		t.Errorf("State = %v, want needs-rebuild", m.State())
	}
	if err := m.Rebuild(); err != ErrNotReady {
		t.Errorf("Rebuild = %v, want ErrNotReady", err)
	}

	sk := &skin.Skin{ItemMargin: 1, BorderMargin: 3}
	sk.SetElement(skin.SubMenuArrow, 0, 0, 6, 6)
	f.reg.Populate(skinKey, sk)
	if len(m.Controls()) != 0 {
		t.Fatal("skin delivered before Pump")
	}
	f.reg.Pump()
	if m.Skin() != sk {
		t.Fatal("skin not resolved")
	}
	cs := m.Controls()
	if len(cs) != 2 {
		t.Fatalf("controls = %d after skin arrived, want 2", len(cs))
	}
	if s, _ := cs[0].Skin(); s != sk {
		t.Error("item control not skinned")
	}
	// Border margin widens the first and last items.
	_, _, _, h0 := cs[0].Bounds()
	want := float64(16+2+2)/600 + 3.0/600
	if !near(h0, want) {
		t.Errorf("first item height = %v, want %v", h0, want)
	}
}

func TestSkin_RemovedBeforePumpStaysUnbuilt(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu", "One")
	skinKey, err := f.reg.Declare("GUISkin01", loc)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetSkin(skinKey); err != nil {
		t.Fatal(err)
	}
	m.Show(0.1, 0.1)

	sk := &skin.Skin{ItemMargin: 1, BorderMargin: 3}
	f.reg.Populate(skinKey, sk)
	f.reg.Populate(skinKey, nil)
	f.reg.Pump()
	if m.Skin() != nil {
		t.Errorf("Skin = %v after removal, want nil", m.Skin())
	}
	if got := len(m.Controls()); got != 0 {
		t.Errorf("controls = %d without a skin, want 0", got)
	}
	if m.State() != StateNeedsRebuild {
		t.Errorf("State = %v, want needs-rebuild", m.State())
	}

	next := &skin.Skin{ItemMargin: 1, BorderMargin: 3}
	f.reg.Populate(skinKey, next)
	f.reg.Pump()
	if m.Skin() != next {
		t.Fatal("replacement skin not resolved")
	}
	if got := len(m.Controls()); got != 1 {
		t.Errorf("controls = %d after replacement, want 1", got)
	}
}

func TestReceiveRef_NilSkinAttachKeepsWaiting(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu", "One")
	skinKey, err := f.reg.Declare("GUISkin01", loc)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetSkin(skinKey); err != nil {
		t.Fatal(err)
	}
	m.Show(0.1, 0.1)
	m.ReceiveRef(&registry.RefMsg{Target: skinKey, Requester: m.Key(), Context: registry.OnCreate, Slot: SlotSkin, Which: Unset})
	if got := len(m.Controls()); got != 0 {
		t.Errorf("controls = %d after empty attach, want 0", got)
	}
	if err := m.Rebuild(); err != ErrNotReady {
		t.Errorf("Rebuild = %v, want ErrNotReady", err)
	}
}

func TestControls_DropsExternallyDestroyed(t *testing.T) {
	f := newFixture(t)
	m := f.menu(t, "Menu", "One", "Two", "Three")
	m.Show(0.1, 0.1)
	gone := m.Controls()[1]
	if err := f.reg.Unregister(gone.Key()); err != nil {
		t.Fatal(err)
	}
	f.reg.Pump()

	cs := m.Controls()
	if len(cs) != 2 {
		t.Fatalf("controls = %d, want 2", len(cs))
	}
	if cs[0].Tag() != 0 || cs[1].Tag() != 2 {
		t.Errorf("tags = %d, %d; want 0, 2", cs[0].Tag(), cs[1].Tag())
	}
	if len(m.Dialog.Controls()) != len(cs) {
		t.Errorf("dialog controls = %d, menu controls = %d", len(m.Dialog.Controls()), len(cs))
	}
	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if got := len(m.Controls()); got != 3 {
		t.Errorf("controls = %d after rebuild, want 3", got)
	}
}

func TestBuild_InheritsParentSkin(t *testing.T) {
	f := newFixture(t)
	sk, err := skin.New(f.reg, "GUISkin01", loc)
	if err != nil {
		t.Fatal(err)
	}
	parent := f.menu(t, "Parent")
	if err := parent.SetSkin(sk.Key()); err != nil {
		t.Fatal(err)
	}
	child, err := Build("Child", f.gen, parent, 0, 0, loc)
	if err != nil {
		t.Fatal(err)
	}
	if child.Skin() != sk {
		t.Error("child did not pick up the parent's skin")
	}
	if n := f.reg.ActiveRefs(sk.Key()); n != 2 {
		t.Errorf("skin active refs = %d, want 2", n)
	}
}

func TestOrigin_FromAnchor(t *testing.T) {
	f := newFixture(t)
	anchor, err := scene.NewObject(f.reg, "Anchor", loc)
	if err != nil {
		t.Fatal(err)
	}
	anchor.SetTransform(scene.Transform{Translate: scene.Vec3{X: 2, Y: -4, Z: 100}, Scale: 1})
	ctx, err := control.NewDialog(f.reg, nil, control.NewKeyGen("Ctx", loc), nil)
	if err != nil {
		t.Fatal(err)
	}

	m := f.menu(t, "Menu", "One")
	if err := m.SetOriginAnchor(anchor.Key(), ctx.Key()); err != nil {
		t.Fatal(err)
	}
	f.reg.Pump()
	m.Show(Unset, 0.25)
	x, y, _, _ := m.Controls()[0].Bounds()
	if !near(x, 0.6) || !near(y, 0.25) {
		t.Errorf("origin = (%v, %v), want (0.6, 0.25)", x, y)
	}
	if ox, _ := m.Origin(); ox != Unset {
		t.Errorf("explicit origin overwritten: %v", ox)
	}
}

func TestWriteRead(t *testing.T) {
	f := newFixture(t)
	sk, _ := skin.New(f.reg, "GUISkin01", loc)
	anchor, _ := scene.NewObject(f.reg, "Anchor", loc)
	sub := f.menu(t, "Sub", "x")

	m := f.menu(t, "Menu")
	m.SetMargin(6)
	m.SetAlignment(AlignUpLeft)
	m.AddItem("Open", control.NewHandler(&control.CommandProc{Command: "open"}), nil)
	m.AddItem("Recent", nil, sub)
	if err := m.SetSkin(sk.Key()); err != nil {
		t.Fatal(err)
	}
	if err := m.SetOriginAnchor(anchor.Key(), registry.Key{}); err != nil {
		t.Fatal(err)
	}
	f.reg.Pump()

	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		t.Fatal(err)
	}

	console := &recordingConsole{}
	got := f.menu(t, "Copy")
	if err := got.Read(&buf, console); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("%d bytes left unread", buf.Len())
	}
	if got.Margin() != 6 || got.Alignment() != AlignUpLeft {
		t.Errorf("margin/alignment = %d/%v", got.Margin(), got.Alignment())
	}
	if x, y := got.Origin(); x != Unset || y != Unset {
		t.Errorf("origin = (%v, %v), want unset", x, y)
	}
	items := got.Items()
	if len(items) != 2 || items[0].Name != "Open" || items[1].Name != "Recent" {
		t.Fatalf("items = %+v", items)
	}
	if items[1].SubMenu != nil || got.Skin() != nil {
		t.Error("references resolved before Pump")
	}
	got.Show(Unset, Unset)
	if len(got.Controls()) != 0 {
		t.Error("built before the skin resolved")
	}

	f.reg.Pump()
	items = got.Items()
	if items[1].SubMenu != sub || sub.Parent() != got {
		t.Error("submenu not resolved")
	}
	if got.Skin() != sk {
		t.Error("skin not resolved")
	}
	if len(got.Controls()) != 2 {
		t.Errorf("controls = %d after Pump, want 2", len(got.Controls()))
	}
	items[0].Handler.Do(got.Controls()[0], input.Activate())
	if len(console.cmds) != 1 || console.cmds[0] != "open" {
		t.Errorf("commands = %v", console.cmds)
	}
}

type recordingConsole struct {
	cmds []string
}

func (c *recordingConsole) Execute(cmd string) error {
	c.cmds = append(c.cmds, cmd)
	return nil
}
