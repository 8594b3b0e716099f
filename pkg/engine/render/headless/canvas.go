package headless

import (
	"strings"
	"unicode/utf8"
)

// Canvas rasterizes normalized rectangles onto a grid of terminal cells.
type Canvas struct {
	cols, rows int
	cells      [][]rune
	marks      [][]int
}

// NewCanvas creates a blank canvas of cols x rows cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{cols: cols, rows: rows}
	c.cells = make([][]rune, rows)
	c.marks = make([][]int, rows)
	for i := range c.cells {
		c.cells[i] = []rune(strings.Repeat(" ", cols))
		c.marks[i] = make([]int, cols)
	}
	return c
}

func (c *Canvas) cell(x, y float64) (int, int) {
	return int(x * float64(c.cols)), int(y * float64(c.rows))
}

func (c *Canvas) set(col, row int, r rune, mark int) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return
	}
	c.cells[row][col] = r
	c.marks[row][col] = mark
}

// Box draws a framed rectangle in screen fractions with label on its first
// inner line. mark tags the cells so callers can colour them later.
func (c *Canvas) Box(x, y, w, h float64, label string, mark int) {
	x0, y0 := c.cell(x, y)
	x1, y1 := c.cell(x+w, y+h)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for col := x0; col < x1; col++ {
		c.set(col, y0, '-', mark)
		c.set(col, y1-1, '-', mark)
	}
	for row := y0; row < y1; row++ {
		c.set(x0, row, '|', mark)
		c.set(x1-1, row, '|', mark)
	}
	c.set(x0, y0, '+', mark)
	c.set(x1-1, y0, '+', mark)
	c.set(x0, y1-1, '+', mark)
	c.set(x1-1, y1-1, '+', mark)

	row := y0 + (y1-y0)/2
	col := x0 + 1
	if max := x1 - x0 - 2; utf8.RuneCountInString(label) > max && max > 0 {
		label = string([]rune(label)[:max])
	}
	for _, r := range label {
		if col >= x1-1 {
			break
		}
		c.set(col, row, r, mark)
		col++
	}
}

// Lines returns each row along with the mark of every cell.
func (c *Canvas) Lines() ([]string, [][]int) {
	lines := make([]string, c.rows)
	for i, row := range c.cells {
		lines[i] = string(row)
	}
	return lines, c.marks
}

// String returns the canvas with trailing spaces trimmed.
func (c *Canvas) String() string {
	lines, _ := c.Lines()
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
