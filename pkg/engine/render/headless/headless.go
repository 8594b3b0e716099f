// Package headless is a renderer backend without a window. Text metrics are
// monospace and deterministic, which makes it the backend of choice for tests
// and for dumping layouts to a terminal.
package headless

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"cascade/pkg/engine/scene"
)

const (
	DefaultGlyphWidth = 8
	DefaultLineHeight = 16
)

// Backend implements scene.Backend.
type Backend struct {
	GlyphWidth int
	LineHeight int
	Width      int
	Height     int

	created  int
	disposed int
}

// New creates a backend with a screen of w x h pixels.
func New(w, h int) *Backend {
	return &Backend{
		GlyphWidth: DefaultGlyphWidth,
		LineHeight: DefaultLineHeight,
		Width:      w,
		Height:     h,
	}
}

// ScreenSize implements scene.Screen.
func (b *Backend) ScreenSize() (int, int) {
	return b.Width, b.Height
}

// Resize changes the screen size.
func (b *Backend) Resize(w, h int) {
	b.Width, b.Height = w, h
}

// CreateBlankSurface implements scene.Surfaces.
func (b *Backend) CreateBlankSurface(w, h int) scene.Surface {
	b.created++
	s := &Surface{backend: b, w: w, h: h}
	cols, rows := w/b.GlyphWidth, h/b.LineHeight
	if cols > 0 && rows > 0 {
		s.cells = make([][]rune, rows)
		for i := range s.cells {
			s.cells[i] = []rune(strings.Repeat(" ", cols))
		}
	}
	return s
}

// LiveSurfaces returns the number of surfaces created and not yet disposed.
func (b *Backend) LiveSurfaces() int {
	return b.created - b.disposed
}

// Surface is a character grid standing in for a bitmap.
type Surface struct {
	backend  *Backend
	w, h     int
	cells    [][]rune
	font     string
	fontSize float64
	bg, fg   color.Color
	disposed bool
}

// Size implements scene.Surface.
func (s *Surface) Size() (int, int) { return s.w, s.h }

// SetFont implements scene.Surface. Metrics ignore the face.
func (s *Surface) SetFont(face string, size float64) {
	s.font, s.fontSize = face, size
}

// ClearToColor implements scene.Surface.
func (s *Surface) ClearToColor(c color.Color) {
	s.bg = c
	for _, row := range s.cells {
		for i := range row {
			row[i] = ' '
		}
	}
}

// SetTextColor implements scene.Surface.
func (s *Surface) SetTextColor(c color.Color) { s.fg = c }

// Background returns the last clear colour.
func (s *Surface) Background() color.Color { return s.bg }

// DrawString implements scene.Surface. Text is clipped to the grid.
func (s *Surface) DrawString(x, y int, str string) {
	row := y / s.backend.LineHeight
	if row < 0 || row >= len(s.cells) {
		return
	}
	col := x / s.backend.GlyphWidth
	for _, r := range str {
		if col >= 0 && col < len(s.cells[row]) {
			s.cells[row][col] = r
		}
		col++
	}
}

// MeasureString implements scene.Surface.
func (s *Surface) MeasureString(str string) (int, int) {
	return utf8.RuneCountInString(str) * s.backend.GlyphWidth, s.backend.LineHeight
}

// Dispose implements scene.Surface.
func (s *Surface) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.backend.disposed++
	s.cells = nil
}

// Disposed reports whether Dispose has been called.
func (s *Surface) Disposed() bool { return s.disposed }

// Text returns the grid contents, one line per row with trailing spaces trimmed.
func (s *Surface) Text() string {
	lines := make([]string, len(s.cells))
	for i, row := range s.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}
