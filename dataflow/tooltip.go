package dataflow

import (
	"patcher/canvas"
	"patcher/core"
	"patcher/scene"
)

// tooltipPlacement says which side of the owning pin the tooltip hangs
// off: above for inlets, below for outlets, so the text never covers
// the node body.
type tooltipPlacement int

const (
	tooltipAbove tooltipPlacement = iota
	tooltipBelow
)

// tooltipMaxWidth caps the bubble so an oversized type label cannot
// smear across neighboring nodes.
const tooltipMaxWidth = 16

// Tooltip shows a pin's type label while the pin is hovered in
// HoverTooltips mode. It lives in the scene at a fixed top z band so it
// paints over every node and wire.
type Tooltip struct {
	owner     *iolet
	placement tooltipPlacement
	text      func() string
}

func newTooltip(owner *iolet, placement tooltipPlacement, text func() string) *Tooltip {
	return &Tooltip{owner: owner, placement: placement, text: text}
}

// origin returns the tooltip's top-left cell, one row off the pin.
func (t *Tooltip) origin() core.Point {
	var p core.Point
	switch t.placement {
	case tooltipAbove:
		p = pinOrigin(t.owner.node, t.owner.index, t.owner.node.pos.Y)
		p.Y--
	case tooltipBelow:
		p = pinOrigin(t.owner.node, t.owner.index,
			t.owner.node.pos.Y+headerHeight+bodyHeight)
		p.Y++
	}
	return p
}

// Kind implements scene.Item.
func (t *Tooltip) Kind() scene.ItemKind { return scene.KindTooltip }

// Visible shows the tooltip only while its pin is hovered and has a
// nonempty type label.
func (t *Tooltip) Visible() bool {
	return t.owner.hovered && t.text() != ""
}

// Bounds implements scene.Item.
func (t *Tooltip) Bounds() core.Rect {
	p := t.origin()
	text := canvas.Truncate(t.text(), tooltipMaxWidth)
	return core.NewRect(p.X, p.Y, canvas.StringWidth(text), 1)
}

// Paint implements scene.Item.
func (t *Tooltip) Paint(cv *canvas.Canvas) {
	style := canvas.Style{Fg: canvas.ColorBlack, Bg: canvas.ColorYellow}
	cv.DrawText(t.origin(), canvas.Truncate(t.text(), tooltipMaxWidth), style)
}
