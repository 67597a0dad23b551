// Package core contains the fundamental geometry types used throughout the
// patcher canvas.
package core

// Point represents a 2D coordinate in canvas cells.
type Point struct {
	X, Y int
}

// Add returns the point translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the point translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect represents a rectangular area. Min is inclusive, Max is exclusive.
type Rect struct {
	Min, Max Point
}

// NewRect builds a rect from an origin and non-negative dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{Min: Point{X: x, Y: y}, Max: Point{X: x + w, Y: y + h}}
}

// RectFromPoints builds the smallest rect covering both points, each taken
// as a single cell.
func RectFromPoints(a, b Point) Rect {
	r := Rect{Min: a, Max: a.Add(Point{X: 1, Y: 1})}
	return r.Union(Rect{Min: b, Max: b.Add(Point{X: 1, Y: 1})})
}

// Width returns the width of the rect.
func (r Rect) Width() int {
	return r.Max.X - r.Min.X
}

// Height returns the height of the rect.
func (r Rect) Height() int {
	return r.Max.Y - r.Min.Y
}

// Empty reports whether the rect covers no cells.
func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// Contains checks if a point is within the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X &&
		p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Intersects reports whether the two rects share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Union returns the smallest rect covering both rects.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	u := r
	if o.Min.X < u.Min.X {
		u.Min.X = o.Min.X
	}
	if o.Min.Y < u.Min.Y {
		u.Min.Y = o.Min.Y
	}
	if o.Max.X > u.Max.X {
		u.Max.X = o.Max.X
	}
	if o.Max.Y > u.Max.Y {
		u.Max.Y = o.Max.Y
	}
	return u
}

// Expand grows the rect by n cells on every side.
func (r Rect) Expand(n int) Rect {
	return Rect{
		Min: Point{X: r.Min.X - n, Y: r.Min.Y - n},
		Max: Point{X: r.Max.X + n, Y: r.Max.Y + n},
	}
}
