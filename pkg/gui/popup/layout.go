package popup

import (
	"image/color"

	"cascade/pkg/gui/control"
	"cascade/pkg/gui/skin"
)

// baseScaleWidth is the virtual screen width used with ScaleWithResolution.
const baseScaleWidth = 1024

// Rebuild tears the item controls down and builds them again now. It
// returns ErrNotReady, leaving the menu dirty, while a requested skin has
// not resolved.
func (m *Menu) Rebuild() error {
	m.teardown()
	return m.build()
}

// teardown releases every item control. Each control's object leaves the
// scene group before the control key is released.
func (m *Menu) teardown() {
	for _, c := range m.Controls() {
		if err := m.TeardownControl(c); err != nil {
			m.reg.Sink().Warnf("popup: teardown %s: %v", m.Name(), err)
		}
	}
	m.needsRebuild = true
}

// origin resolves the top-left reference point. Each unset coordinate falls
// back to the anchor's projected centre when an anchor is present.
func (m *Menu) origin() (float64, float64) {
	x, y := m.originX, m.originY
	if (x == Unset || y == Unset) && m.anchor != nil {
		p := m.anchor.WorldBounds().Center()
		var proj projector = m.Dialog
		if m.context != nil {
			proj = m.context
		}
		s := proj.WorldToScreenPoint(p)
		if x == Unset {
			x = s.X
		}
		if y == Unset {
			y = s.Y
		}
	}
	if x == Unset {
		x = 0
	}
	if y == Unset {
		y = 0
	}
	return x, y
}

// measure returns the pixel size of the largest item, margins included.
func (m *Menu) measure() (width, height int) {
	face, size := m.gen.Font()
	scratch := m.gen.Backend().CreateBlankSurface(8, 8)
	defer scratch.Dispose()
	scratch.SetFont(face, size)

	sk := m.skin
	for _, it := range m.items {
		w, h := scratch.MeasureString(translate(it.Name))
		if it.SubMenu != nil {
			if sk != nil {
				w += 4 + int(sk.Element(skin.SubMenuArrow).W)<<1
			} else {
				aw, _ := scratch.MeasureString(" >>")
				w += aw
			}
		}
		h += 2

		margin := int(m.margin)
		if sk != nil {
			margin = int(sk.BorderMargin) << 1
		}
		width = max(width, w+margin)
		if sk != nil {
			margin = int(sk.ItemMargin) << 1
		}
		height = max(height, h+margin)
	}
	return width + 4, height
}

// build creates one menu-item control per item, stacked from the aligned
// and clamped origin.
func (m *Menu) build() error {
	if m.waitingForSkin && m.skin == nil {
		return ErrNotReady
	}
	x, y := m.origin()
	pw, ph := m.measure()

	sw, sh := m.gen.ScreenSize()
	if m.HasFlag(ScaleWithResolution) {
		sh = sh * baseScaleWidth / sw
		sw = baseScaleWidth
	}
	width := float64(pw) / float64(sw)
	height := float64(ph) / float64(sh)
	topMargin := 0.0
	if m.skin != nil {
		topMargin = float64(m.skin.BorderMargin) / float64(sh)
	}

	n := len(m.items)
	// The skin border sits above the first item and below the last.
	span := height*float64(n) + 2*topMargin
	switch m.align {
	case AlignUpLeft:
		x -= width
		y -= span
	case AlignUpRight:
		y -= span
	case AlignDownLeft:
		x -= width
	}
	if y+span > 1 {
		y = 1 - span
	}
	if y < 0 {
		y = 0
	}
	y += topMargin

	for i := range m.items {
		it := &m.items[i]
		thisMargin, thisOffset := 0.0, 0.0
		if i == 0 || i == n-1 {
			thisMargin = topMargin
		}
		if i == n-1 {
			thisOffset = topMargin
		}

		c, err := m.gen.CreateRectButton(m.Dialog, it.Name, x, y+thisOffset-thisMargin, width, height+thisMargin, nil, true)
		if err != nil {
			m.teardown()
			return err
		}
		c.SetTag(i)
		c.SetHandler(control.NewHandler(itemProc{menu: m, index: i}))
		c.SetFlag(control.FlagReportHovers)
		part := control.PartMiddle
		switch i {
		case 0:
			part = control.PartTop
		case n - 1:
			part = control.PartBottom
		}
		c.SetSkin(m.skin, part)
		if it.SubMenu != nil {
			c.SetFlag(control.FlagDrawSubMenuArrow)
		}
		c.SetColors(color.White, color.Black)

		it.YOffsetToNext = height + thisOffset
		y += it.YOffsetToNext
	}

	m.builtX, m.builtY = m.originX, m.originY
	m.needsRebuild = false
	m.built = true
	return nil
}
