// Package canvas implements the cell-matrix paint surface the scene draws
// into. Each cell carries a rune plus a style, so the terminal blitter can
// map painted output losslessly onto screen attributes.
package canvas

import (
	"strings"

	"patcher/core"
)

// Color identifies a foreground or background color.
type Color int

const (
	ColorDefault Color = iota
	ColorBlack
	ColorWhite
	ColorGray
	ColorBlue
	ColorCyan
	ColorRed
	ColorYellow
)

// Style describes how a cell is rendered.
type Style struct {
	Fg      Color
	Bg      Color
	Bold    bool
	Reverse bool
}

// Cell is a single canvas position.
type Cell struct {
	Ch    rune
	Style Style
}

// Canvas is a rune+style matrix with box and line drawing primitives.
//
// Coordinate system: origin (0,0) top-left, X rightward, Y downward, all
// coordinates in character cells. Not safe for concurrent writes.
type Canvas struct {
	cells  [][]Cell
	width  int
	height int
}

// New creates a canvas with the given dimensions. Returns nil for
// non-positive sizes.
func New(width, height int) *Canvas {
	if width <= 0 || height <= 0 {
		return nil
	}
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
		for x := range cells[y] {
			cells[y][x] = Cell{Ch: ' '}
		}
	}
	return &Canvas{cells: cells, width: width, height: height}
}

// Size returns the width and height of the canvas.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// Get returns the cell at the given position, or a blank cell if the
// position is out of bounds.
func (c *Canvas) Get(p core.Point) Cell {
	if p.X < 0 || p.X >= c.width || p.Y < 0 || p.Y >= c.height {
		return Cell{Ch: ' '}
	}
	return c.cells[p.Y][p.X]
}

// Set places a plain character at the given position. Out-of-bounds
// positions are ignored; painting partially off-screen items is routine.
func (c *Canvas) Set(p core.Point, ch rune) {
	c.SetStyled(p, ch, Style{})
}

// SetStyled places a styled character at the given position.
func (c *Canvas) SetStyled(p core.Point, ch rune, style Style) {
	if p.X < 0 || p.X >= c.width || p.Y < 0 || p.Y >= c.height {
		return
	}
	c.cells[p.Y][p.X] = Cell{Ch: ch, Style: style}
}

// Clear resets the canvas to all blanks.
func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = Cell{Ch: ' '}
		}
	}
}

// Fill sets every cell inside the rect to the given character and style.
func (c *Canvas) Fill(r core.Rect, ch rune, style Style) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c.SetStyled(core.Point{X: x, Y: y}, ch, style)
		}
	}
}

// FillStyle re-styles every cell inside the rect without touching the
// characters. Used for selection/hover highlight fills.
func (c *Canvas) FillStyle(r core.Rect, style Style) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if x < 0 || x >= c.width || y < 0 || y >= c.height {
				continue
			}
			c.cells[y][x].Style = style
		}
	}
}

// boxRunes holds the character set for one box style.
type boxRunes struct {
	h, v, tl, tr, bl, br rune
}

var (
	solidBox  = boxRunes{h: '─', v: '│', tl: '┌', tr: '┐', bl: '└', br: '┘'}
	dashedBox = boxRunes{h: '╌', v: '╎', tl: '┌', tr: '┐', bl: '└', br: '┘'}
)

// DrawBox draws a rectangle outline. When dashed is true the edges use
// dashed box-drawing characters (the corner set stays solid).
func (c *Canvas) DrawBox(r core.Rect, style Style, dashed bool) {
	if r.Width() < 2 || r.Height() < 2 {
		return
	}
	b := solidBox
	if dashed {
		b = dashedBox
	}
	x1, y1 := r.Min.X, r.Min.Y
	x2, y2 := r.Max.X-1, r.Max.Y-1
	for x := x1 + 1; x < x2; x++ {
		c.SetStyled(core.Point{X: x, Y: y1}, b.h, style)
		c.SetStyled(core.Point{X: x, Y: y2}, b.h, style)
	}
	for y := y1 + 1; y < y2; y++ {
		c.SetStyled(core.Point{X: x1, Y: y}, b.v, style)
		c.SetStyled(core.Point{X: x2, Y: y}, b.v, style)
	}
	c.SetStyled(core.Point{X: x1, Y: y1}, b.tl, style)
	c.SetStyled(core.Point{X: x2, Y: y1}, b.tr, style)
	c.SetStyled(core.Point{X: x1, Y: y2}, b.bl, style)
	c.SetStyled(core.Point{X: x2, Y: y2}, b.br, style)
}

// DrawLine draws a straight line between two cells, picking a line
// character from the dominant direction of each step.
func (c *Canvas) DrawLine(a, b core.Point, style Style, dashed bool) {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	ch := lineRune(b.X-a.X, b.Y-a.Y)
	err := dx - dy
	x, y := a.X, a.Y
	step := 0
	for {
		if !dashed || step%2 == 0 {
			c.SetStyled(core.Point{X: x, Y: y}, ch, style)
		}
		if x == b.X && y == b.Y {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
		step++
	}
}

// lineRune picks the line character best matching a direction vector.
func lineRune(dx, dy int) rune {
	adx, ady := abs(dx), abs(dy)
	switch {
	case ady == 0:
		return '─'
	case adx == 0:
		return '│'
	case 2*adx >= 3*ady:
		return '─'
	case 2*ady >= 3*adx:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// DrawText writes a string starting at the given position, advancing by
// each rune's display width.
func (c *Canvas) DrawText(p core.Point, text string, style Style) {
	x := p.X
	for _, r := range text {
		c.SetStyled(core.Point{X: x, Y: p.Y}, r, style)
		x += RuneWidth(r)
	}
}

// String returns the canvas contents as plain text with newlines, styles
// discarded. Mainly useful in tests.
func (c *Canvas) String() string {
	var sb strings.Builder
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			ch := c.cells[y][x].Ch
			if ch == 0 {
				ch = ' '
			}
			sb.WriteRune(ch)
		}
		if y < c.height-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
