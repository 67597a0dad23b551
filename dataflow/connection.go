package dataflow

import (
	"math"

	"patcher/canvas"
	"patcher/core"
	"patcher/model"
	"patcher/scene"
)

// Connection is the view of a model connection: a line from a source
// outlet's anchor to a destination inlet's anchor. Its hit shape is a
// thin quadrilateral around the line so wires stay clickable without
// obscuring what sits behind them.
type Connection struct {
	modelConn *model.Connection
	src       *Outlet
	dst       *Inlet
	from      core.Point
	to        core.Point
	selected  bool
	hovered   bool
}

// newConnection resolves both endpoint views and attaches to them.
// Returns nil when either endpoint view does not exist yet; the caller
// drops such events (the views are torn down together with their node).
func newConnection(c *Canvas, mc *model.Connection) *Connection {
	srcNode := c.Node(mc.Source().Node())
	dstNode := c.Node(mc.Dest().Node())
	if srcNode == nil || dstNode == nil {
		return nil
	}
	src := srcNode.OutletAt(mc.Source().Index())
	dst := dstNode.InletAt(mc.Dest().Index())
	if src == nil || dst == nil {
		return nil
	}
	vc := &Connection{modelConn: mc, src: src, dst: dst}
	src.addConnection(vc)
	dst.addConnection(vc)
	return vc
}

// ModelConnection returns the model connection this view mirrors.
func (vc *Connection) ModelConnection() *model.Connection { return vc.modelConn }

// Source returns the source outlet view.
func (vc *Connection) Source() *Outlet { return vc.src }

// Dest returns the destination inlet view.
func (vc *Connection) Dest() *Inlet { return vc.dst }

// Selected reports whether the connection is selected.
func (vc *Connection) Selected() bool { return vc.selected }

func (vc *Connection) setSelected(selected bool) {
	vc.selected = selected
}

// adjust recomputes the endpoints from the pins' anchors. Called when
// either endpoint node moves, resizes or changes validity.
func (vc *Connection) adjust() {
	vc.from = vc.src.anchor()
	vc.to = vc.dst.anchor()
}

// Kind implements scene.Item.
func (vc *Connection) Kind() scene.ItemKind { return scene.KindConnection }

// Visible implements scene.Item.
func (vc *Connection) Visible() bool { return true }

// Bounds implements scene.Item.
func (vc *Connection) Bounds() core.Rect {
	return core.RectFromPoints(vc.from, vc.to).Expand(headerHeight)
}

// Contains implements scene.Shaped: the hit shape is the parallelogram
// spanned by the endpoints offset one header height perpendicular to the
// wire, clamped to the bounding rect. Perpendicular offset keeps thin
// vertical and diagonal runs targetable without the quad degenerating
// into a line that would capture a whole row or column.
func (vc *Connection) Contains(p core.Point) bool {
	if !vc.Bounds().Contains(p) {
		return false
	}
	dx := float64(vc.to.X - vc.from.X)
	dy := float64(vc.to.Y - vc.from.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return p == vc.from
	}
	ox := -dy / length * headerHeight
	oy := dx / length * headerHeight
	quad := [4][2]float64{
		{float64(vc.from.X) + ox, float64(vc.from.Y) + oy},
		{float64(vc.to.X) + ox, float64(vc.to.Y) + oy},
		{float64(vc.to.X) - ox, float64(vc.to.Y) - oy},
		{float64(vc.from.X) - ox, float64(vc.from.Y) - oy},
	}
	px, py := float64(p.X), float64(p.Y)
	sign := 0
	for i := range quad {
		a := quad[i]
		b := quad[(i+1)%4]
		cross := (b[0]-a[0])*(py-a[1]) - (b[1]-a[1])*(px-a[0])
		switch {
		case cross > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cross < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return true
}

// Paint implements scene.Item. Selected and hovered wires paint a
// highlight fill over their span before the line itself.
func (vc *Connection) Paint(cv *canvas.Canvas) {
	if vc.from == vc.to {
		return
	}
	style := canvas.Style{}
	switch {
	case vc.selected:
		cv.FillStyle(core.RectFromPoints(vc.from, vc.to), canvas.Style{Bg: canvas.ColorGray})
		style.Fg = canvas.ColorBlue
		style.Bold = true
	case vc.hovered:
		cv.FillStyle(core.RectFromPoints(vc.from, vc.to), canvas.Style{Bg: canvas.ColorGray})
		style.Fg = canvas.ColorCyan
	}
	cv.DrawLine(vc.from, vc.to, style, false)
}
