// Package ebiten is the windowed renderer backend. Surfaces are ebiten
// images and text is shaped with text/v2.
package ebiten

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"cascade/pkg/engine/scene"
)

// DefaultFace is the face used when a surface asks for one that was never
// registered.
const DefaultFace = "sans"

type faceKey struct {
	name string
	size float64
}

// Backend implements scene.Backend on top of ebiten.
type Backend struct {
	width, height int

	sources map[string]*text.GoTextFaceSource
	faces   map[faceKey]*text.GoTextFace

	created  int
	disposed int
}

// New creates a backend for a screen of w x h pixels with the Go Regular
// font registered as DefaultFace.
func New(w, h int) (*Backend, error) {
	b := &Backend{
		width:   w,
		height:  h,
		sources: make(map[string]*text.GoTextFaceSource),
		faces:   make(map[faceKey]*text.GoTextFace),
	}
	if err := b.RegisterFont(DefaultFace, goregular.TTF); err != nil {
		return nil, err
	}
	return b, nil
}

// RegisterFont makes a TrueType or OpenType font available under name.
func (b *Backend) RegisterFont(name string, data []byte) error {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("font %s: %w", name, err)
	}
	b.sources[name] = src
	for k := range b.faces {
		if k.name == name {
			delete(b.faces, k)
		}
	}
	return nil
}

// face returns a cached face for name at size.
func (b *Backend) face(name string, size float64) *text.GoTextFace {
	if size <= 0 {
		size = 12
	}
	src, ok := b.sources[name]
	if !ok {
		name = DefaultFace
		src = b.sources[DefaultFace]
	}
	k := faceKey{name: name, size: size}
	if f, ok := b.faces[k]; ok {
		return f
	}
	f := &text.GoTextFace{Source: src, Size: size}
	b.faces[k] = f
	return f
}

// ScreenSize implements scene.Screen.
func (b *Backend) ScreenSize() (int, int) {
	return b.width, b.height
}

// Resize records a new screen size, normally from Game.Layout.
func (b *Backend) Resize(w, h int) {
	b.width, b.height = w, h
}

// LiveSurfaces returns the number of surfaces created and not yet disposed.
func (b *Backend) LiveSurfaces() int {
	return b.created - b.disposed
}

// CreateBlankSurface implements scene.Surfaces. Sizes are clamped to one
// pixel because ebiten refuses empty images.
func (b *Backend) CreateBlankSurface(w, h int) scene.Surface {
	b.created++
	return &Surface{
		backend: b,
		img:     ebiten.NewImage(max(w, 1), max(h, 1)),
		face:    b.face(DefaultFace, 0),
		fg:      color.Black,
	}
}

// SurfaceFromImage wraps a decoded image, such as a skin atlas.
func (b *Backend) SurfaceFromImage(img image.Image) scene.Surface {
	b.created++
	return &Surface{
		backend: b,
		img:     ebiten.NewImageFromImage(img),
		face:    b.face(DefaultFace, 0),
		fg:      color.Black,
	}
}

// Surface is an ebiten image with a current face and text colour.
type Surface struct {
	backend *Backend
	img     *ebiten.Image
	face    *text.GoTextFace
	fg      color.Color
}

// Image returns the backing image, or nil once disposed.
func (s *Surface) Image() *ebiten.Image { return s.img }

// Face returns the current face.
func (s *Surface) Face() *text.GoTextFace { return s.face }

// Size implements scene.Surface.
func (s *Surface) Size() (int, int) {
	if s.img == nil {
		return 0, 0
	}
	r := s.img.Bounds()
	return r.Dx(), r.Dy()
}

// SetFont implements scene.Surface.
func (s *Surface) SetFont(face string, size float64) {
	s.face = s.backend.face(face, size)
}

// ClearToColor implements scene.Surface.
func (s *Surface) ClearToColor(c color.Color) {
	if s.img != nil {
		s.img.Fill(c)
	}
}

// SetTextColor implements scene.Surface.
func (s *Surface) SetTextColor(c color.Color) { s.fg = c }

// DrawString implements scene.Surface. (x, y) is the top-left of the line.
func (s *Surface) DrawString(x, y int, str string) {
	if s.img == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(s.fg)
	text.Draw(s.img, str, s.face, op)
}

// MeasureString implements scene.Surface.
func (s *Surface) MeasureString(str string) (int, int) {
	w, h := text.Measure(str, s.face, 0)
	return int(math.Ceil(w)), int(math.Ceil(h))
}

// Dispose implements scene.Surface.
func (s *Surface) Dispose() {
	if s.img == nil {
		return
	}
	s.img.Deallocate()
	s.img = nil
	s.backend.disposed++
}
