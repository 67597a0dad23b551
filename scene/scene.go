// Package scene provides the retained scene graph behind the patcher
// canvas: a z-ordered collection of paintable items with point
// hit-testing. Items carry an explicit kind discriminant so hit-testing
// can filter candidates without downcasting to concrete types.
package scene

import (
	"sort"

	"patcher/canvas"
	"patcher/core"
)

// ItemKind discriminates the scene item variants.
type ItemKind int

const (
	KindNode ItemKind = iota
	KindConnection
	KindInlet
	KindOutlet
	KindTooltip
	KindTempWire
	KindOverlay
)

// String returns the kind name.
func (k ItemKind) String() string {
	switch k {
	case KindNode:
		return "Node"
	case KindConnection:
		return "Connection"
	case KindInlet:
		return "Inlet"
	case KindOutlet:
		return "Outlet"
	case KindTooltip:
		return "Tooltip"
	case KindTempWire:
		return "TempWire"
	case KindOverlay:
		return "Overlay"
	default:
		return "Unknown"
	}
}

// Item is anything the scene can paint and hit-test.
type Item interface {
	// Kind returns the item's discriminant.
	Kind() ItemKind
	// Bounds returns the item's bounding rect in canvas coordinates.
	Bounds() core.Rect
	// Visible reports whether the item currently paints and hit-tests.
	Visible() bool
	// Paint draws the item onto the canvas.
	Paint(c *canvas.Canvas)
}

// Shaped is implemented by items whose hit area is narrower than their
// bounding rect (connections use a quadrilateral band).
type Shaped interface {
	Contains(p core.Point) bool
}

// Scene owns the item list and stacking order.
type Scene struct {
	items []Item
	z     map[Item]int
	nextZ int
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{z: make(map[Item]int)}
}

// Add inserts an item at the top of the stacking order. Re-adding an
// existing item is a no-op.
func (s *Scene) Add(it Item) {
	if _, ok := s.z[it]; ok {
		return
	}
	s.nextZ++
	s.items = append(s.items, it)
	s.z[it] = s.nextZ
}

// Remove deletes an item. Removing an absent item is a no-op.
func (s *Scene) Remove(it Item) {
	if _, ok := s.z[it]; !ok {
		return
	}
	delete(s.z, it)
	for i, other := range s.items {
		if other == it {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Has reports whether the item is in the scene.
func (s *Scene) Has(it Item) bool {
	_, ok := s.z[it]
	return ok
}

// Len returns the number of items.
func (s *Scene) Len() int {
	return len(s.items)
}

// Z returns the item's stacking value (0 if absent).
func (s *Scene) Z(it Item) int {
	return s.z[it]
}

// SetZ pins the item's stacking value.
func (s *Scene) SetZ(it Item, z int) {
	if _, ok := s.z[it]; !ok {
		return
	}
	s.z[it] = z
	if z > s.nextZ {
		s.nextZ = z
	}
}

// Raise bumps the item one above the highest visible item whose bounds
// intersect its own, bringing it to the front of its local stack.
// Invisible items are ignored so hidden overlays parked at reserved high
// z values never drag raised items up into their band.
func (s *Scene) Raise(it Item) {
	if _, ok := s.z[it]; !ok {
		return
	}
	b := it.Bounds()
	maxZ := 0
	for _, other := range s.items {
		if other == it || !other.Visible() {
			continue
		}
		if other.Bounds().Intersects(b) && s.z[other] > maxZ {
			maxZ = s.z[other]
		}
	}
	s.SetZ(it, maxZ+1)
}

// ItemAt returns the topmost visible item containing the point, filtered
// by kind. With no kinds given, every kind is a candidate. Items
// implementing Shaped are tested against their shape, everything else
// against its bounding rect.
func (s *Scene) ItemAt(p core.Point, kinds ...ItemKind) Item {
	var best Item
	bestZ := -1
	for _, it := range s.items {
		if !it.Visible() || !matchKind(it.Kind(), kinds) {
			continue
		}
		if sh, ok := it.(Shaped); ok {
			if !sh.Contains(p) {
				continue
			}
		} else if !it.Bounds().Contains(p) {
			continue
		}
		if z := s.z[it]; z > bestZ {
			best, bestZ = it, z
		}
	}
	return best
}

// ItemsIn returns every visible item of the given kinds whose bounds
// intersect the rect, in ascending stacking order.
func (s *Scene) ItemsIn(r core.Rect, kinds ...ItemKind) []Item {
	var out []Item
	for _, it := range s.byZ() {
		if !it.Visible() || !matchKind(it.Kind(), kinds) {
			continue
		}
		if it.Bounds().Intersects(r) {
			out = append(out, it)
		}
	}
	return out
}

// PaintAll paints every visible item in ascending stacking order.
func (s *Scene) PaintAll(c *canvas.Canvas) {
	for _, it := range s.byZ() {
		if it.Visible() {
			it.Paint(c)
		}
	}
}

// byZ returns the items sorted by stacking value, stable on insertion
// order for equal z.
func (s *Scene) byZ() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool {
		return s.z[out[i]] < s.z[out[j]]
	})
	return out
}

func matchKind(k ItemKind, kinds []ItemKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
