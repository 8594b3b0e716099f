package ebiten

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/leonelquinteros/gotext"

	"cascade/pkg/gui/control"
	"cascade/pkg/gui/skin"
)

var (
	colorPanelBorder = color.RGBA{0x6a, 0x70, 0x9c, 0xff}
	colorPanelFill   = color.RGBA{0x1c, 0x1e, 0x2a, 0xff}
)

// translate looks labels up as message ids.
var translate = gotext.Get

const (
	panelCornerRadius = 4
	panelBorderWidth  = 1
)

// appendRoundedRect adds a rounded rectangle to the path. (x, y) is top-left.
func appendRoundedRect(p *vector.Path, x, y, w, h, r float32) {
	appendRoundedRectDir(p, x, y, w, h, r, vector.Clockwise)
}

// appendRoundedRectDir adds a rounded rectangle with the given winding.
// CounterClockwise cuts a hole when combined with an outer clockwise rect.
func appendRoundedRectDir(p *vector.Path, x, y, w, h, r float32, dir vector.Direction) {
	if r <= 0 {
		p.MoveTo(x, y)
		p.LineTo(x, y+h)
		p.LineTo(x+w, y+h)
		p.LineTo(x+w, y)
		p.Close()
		return
	}
	r = min(r, w/2, h/2)
	halfPi := float32(math.Pi / 2)
	pi := float32(math.Pi)
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.Arc(x+w-r, y+r, r, 3*halfPi, 0, dir)
	p.LineTo(x+w, y+h-r)
	p.Arc(x+w-r, y+h-r, r, 0, halfPi, dir)
	p.LineTo(x+r, y+h)
	p.Arc(x+r, y+h-r, r, halfPi, pi, dir)
	p.LineTo(x, y+r)
	p.Arc(x+r, y+r, r, pi, 3*halfPi, dir)
	p.Close()
}

// drawPanel draws a rounded rectangle with a soft drop shadow, a fill and a
// border. The shadow is the border colour darkened.
func drawPanel(screen *ebiten.Image, x, y, w, h float32, bg, border color.Color) {
	const shadowSpread = 6
	br, bg8, bb, _ := border.RGBA()
	shadow := color.RGBA{
		R: max(uint8((br>>8)*15/255), 8),
		G: max(uint8((bg8>>8)*15/255), 8),
		B: max(uint8((bb>>8)*15/255), 8),
	}

	var path vector.Path
	for i := shadowSpread; i >= 1; i-- {
		shadow.A = uint8(min(12+i*8, 55))
		path.Reset()
		appendRoundedRect(&path, x-float32(i), y-float32(i), w+float32(i*2), h+float32(i*2), panelCornerRadius+float32(i))
		appendRoundedRectDir(&path, x-float32(i-1), y-float32(i-1), w+float32((i-1)*2), h+float32((i-1)*2),
			panelCornerRadius+float32(i-1), vector.CounterClockwise)
		op := &vector.DrawPathOptions{AntiAlias: true}
		op.ColorScale.ScaleWithColor(shadow)
		vector.FillPath(screen, &path, nil, op)
	}

	path.Reset()
	appendRoundedRect(&path, x, y, w, h, panelCornerRadius)
	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(bg)
	vector.FillPath(screen, &path, nil, op)

	op = &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(border)
	vector.StrokePath(screen, &path, &vector.StrokeOptions{Width: panelBorderWidth, MiterLimit: 10}, op)
}

// pixels converts a control's screen fractions to a pixel rectangle.
func pixels(c *control.Control, sw, sh int) (x, y, w, h float32) {
	fx, fy, fw, fh := c.Bounds()
	return float32(fx * float64(sw)), float32(fy * float64(sh)), float32(fw * float64(sw)), float32(fh * float64(sh))
}

// drawPanelBehind frames unskinned menu items as one panel.
func drawPanelBehind(screen *ebiten.Image, controls []*control.Control, sw, sh int) {
	var box image.Rectangle
	for _, c := range controls {
		if c.Kind() != control.KindMenuItem {
			continue
		}
		if s, _ := c.Skin(); s != nil {
			return
		}
		x, y, w, h := pixels(c, sw, sh)
		box = box.Union(image.Rect(int(x), int(y), int(math.Ceil(float64(x+w))), int(math.Ceil(float64(y+h)))))
	}
	if box.Empty() {
		return
	}
	drawPanel(screen, float32(box.Min.X)-1, float32(box.Min.Y)-1, float32(box.Dx())+2, float32(box.Dy())+2,
		colorPanelFill, colorPanelBorder)
}

// drawControl paints one control.
func drawControl(screen *ebiten.Image, c *control.Control, sw, sh int) {
	x, y, w, h := pixels(c, sw, sh)
	if w <= 0 || h <= 0 {
		return
	}
	bg, fg := c.Colors()
	if bg == nil {
		bg = color.White
	}

	switch c.Kind() {
	case control.KindSphereButton:
		vector.DrawFilledCircle(screen, x+w/2, y+h/2, w/2, bg, true)
		if c.Hovered() {
			vector.StrokeCircle(screen, x+w/2, y+h/2, w/2, 1, colorPanelBorder, true)
		}
		return
	case control.KindDragBar:
		var path vector.Path
		appendRoundedRect(&path, x, y, w, h, panelCornerRadius)
		op := &vector.DrawPathOptions{AntiAlias: true}
		op.ColorScale.ScaleWithColor(bg)
		vector.FillPath(screen, &path, nil, op)
		return
	}

	if sk, part := c.Skin(); sk != nil {
		if atlas := atlasImage(sk); atlas != nil {
			drawSkinned(screen, atlas, sk, part, c, x, y, w, h, fg)
			return
		}
	}
	drawSurface(screen, c, x, y, w, h)
}

// drawSurface stretches the control's own surface over its rectangle.
func drawSurface(screen *ebiten.Image, c *control.Control, x, y, w, h float32) {
	s, ok := c.Surface().(*Surface)
	if !ok || s.Image() == nil {
		return
	}
	iw, ih := s.Size()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w)/float64(iw), float64(h)/float64(ih))
	op.GeoM.Translate(float64(x), float64(y))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(s.Image(), op)
}

func atlasImage(sk *skin.Skin) *ebiten.Image {
	t := sk.Texture()
	if t == nil {
		return nil
	}
	s, ok := t.Surface.(*Surface)
	if !ok {
		return nil
	}
	return s.Image()
}

// drawElement stretches one atlas region over (x, y, w, h).
func drawElement(screen, atlas *ebiten.Image, r skin.Rect, x, y, w, h float32) {
	if r.Empty() || w <= 0 || h <= 0 {
		return
	}
	sub := atlas.SubImage(image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.W), int(r.Y)+int(r.H))).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w)/float64(r.W), float64(h)/float64(r.H))
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(sub, op)
}

// drawSkinned paints a menu item from the skin atlas. Top and bottom items
// carry the horizontal border; every item carries the side spans.
func drawSkinned(screen, atlas *ebiten.Image, sk *skin.Skin, part control.SkinPart, c *control.Control, x, y, w, h float32, fg color.Color) {
	fill, arrow := skin.MiddleFill, skin.SubMenuArrow
	if c.Hovered() {
		fill, arrow = skin.SelectedFill, skin.SelectedSubMenuArrow
	}
	drawElement(screen, atlas, sk.Element(fill), x, y, w, h)

	left, right := sk.Element(skin.LeftSpan), sk.Element(skin.RightSpan)
	drawElement(screen, atlas, left, x, y, float32(left.W), h)
	drawElement(screen, atlas, right, x+w-float32(right.W), y, float32(right.W), h)

	switch part {
	case control.PartTop:
		ul, ur := sk.Element(skin.UpLeftCorner), sk.Element(skin.UpRightCorner)
		top := sk.Element(skin.TopSpan)
		drawElement(screen, atlas, top, x+float32(ul.W), y, w-float32(ul.W)-float32(ur.W), float32(top.H))
		drawElement(screen, atlas, ul, x, y, float32(ul.W), float32(ul.H))
		drawElement(screen, atlas, ur, x+w-float32(ur.W), y, float32(ur.W), float32(ur.H))
	case control.PartBottom:
		ll, lr := sk.Element(skin.LowerLeftCorner), sk.Element(skin.LowerRightCorner)
		bottom := sk.Element(skin.BottomSpan)
		drawElement(screen, atlas, bottom, x+float32(ll.W), y+h-float32(bottom.H), w-float32(ll.W)-float32(lr.W), float32(bottom.H))
		drawElement(screen, atlas, ll, x, y+h-float32(ll.H), float32(ll.W), float32(ll.H))
		drawElement(screen, atlas, lr, x+w-float32(lr.W), y+h-float32(lr.H), float32(lr.W), float32(lr.H))
	}

	if c.HasFlag(control.FlagDrawSubMenuArrow) {
		a := sk.Element(arrow)
		drawElement(screen, atlas, a, x+w-float32(a.W)-float32(right.W)-2, y+(h-float32(a.H))/2, float32(a.W), float32(a.H))
	}

	s, ok := c.Surface().(*Surface)
	if !ok {
		return
	}
	if fg == nil {
		fg = color.Black
	}
	if c.Hovered() {
		fg = color.White
	}
	label := translate(c.Label())
	_, th := text.Measure(label, s.Face(), 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x)+float64(left.W)+2, float64(y)+(float64(h)-th)/2)
	op.ColorScale.ScaleWithColor(fg)
	text.Draw(screen, label, s.Face(), op)
}
