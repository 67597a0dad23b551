package dataflow

import (
	"patcher/canvas"
	"patcher/core"
	"patcher/model"
	"patcher/scene"
)

// iolet is the behavior shared by inlet and outlet pins: an owning node,
// an index within its side, the attached view connections, and a hover
// tooltip showing the pin's model type label.
type iolet struct {
	node    *Node
	index   int
	conns   []*Connection
	tooltip *Tooltip
	hovered bool
}

// Node returns the owning view node.
func (io *iolet) Node() *Node { return io.node }

// Index returns the pin's position within its side.
func (io *iolet) Index() int { return io.index }

// Connections returns the attached view connections.
func (io *iolet) Connections() []*Connection { return io.connectionsCopy() }

func (io *iolet) connectionsCopy() []*Connection {
	out := make([]*Connection, len(io.conns))
	copy(out, io.conns)
	return out
}

// addConnection attaches a connection and immediately recomputes its
// geometry.
func (io *iolet) addConnection(vc *Connection) {
	io.conns = append(io.conns, vc)
	vc.adjust()
}

// removeConnection detaches by identity; removing an absent connection
// is a no-op, which makes redundant teardown harmless.
func (io *iolet) removeConnection(vc *Connection) {
	for i, other := range io.conns {
		if other == vc {
			io.conns = append(io.conns[:i], io.conns[i+1:]...)
			return
		}
	}
}

// adjustConnections recomputes geometry for every attached connection.
func (io *iolet) adjustConnections() {
	for _, vc := range io.conns {
		vc.adjust()
	}
}

func (io *iolet) setHovered(hovered bool) {
	io.hovered = hovered
}

// origin returns the top-left cell of an inlet/outlet pin at the given
// header row.
func pinOrigin(n *Node, index, row int) core.Point {
	return core.Point{
		X: n.pos.X + 1 + index*(ioletWidth+ioletSpacing),
		Y: row,
	}
}

// pinBounds is the nominal pin rect expanded by a fixed tolerance so the
// small pins stay easy to target.
func pinBounds(origin core.Point) core.Rect {
	return core.NewRect(origin.X, origin.Y, ioletWidth, 1).Expand(pinTolerance)
}

func paintPin(cv *canvas.Canvas, origin core.Point) {
	for i := 0; i < ioletWidth; i++ {
		cv.Set(core.Point{X: origin.X + i, Y: origin.Y}, '█')
	}
}

// Inlet is a connection endpoint on the node's input side.
type Inlet struct {
	iolet
}

func newInlet(n *Node, index int) *Inlet {
	in := &Inlet{iolet: iolet{node: n, index: index}}
	in.tooltip = newTooltip(&in.iolet, tooltipAbove, func() string {
		if mi := in.modelInlet(); mi != nil {
			return mi.Type()
		}
		return ""
	})
	return in
}

func (in *Inlet) attach() {
	s := in.node.canvas.scene
	s.Add(in)
	s.SetZ(in, s.Z(in.node)+1)
	s.Add(in.tooltip)
	s.SetZ(in.tooltip, tooltipZ)
}

func (in *Inlet) detach() {
	s := in.node.canvas.scene
	if in.node.canvas.hoveredPin == hoverable(in) {
		in.node.canvas.hoveredPin = nil
	}
	s.Remove(in.tooltip)
	s.Remove(in)
}

// modelInlet resolves the matching model pin, nil when the model row is
// shorter than the view row (transiently during count changes).
func (in *Inlet) modelInlet() *model.Inlet {
	return in.node.modelNode.Inlet(in.index)
}

// origin returns the pin's top-left cell on the inlet header row.
func (in *Inlet) origin() core.Point {
	return pinOrigin(in.node, in.index, in.node.pos.Y)
}

// anchor is where connection geometry attaches: the pin itself, or the
// body's top edge while the node is invalid and headers are hidden.
func (in *Inlet) anchor() core.Point {
	p := in.origin()
	if !in.node.valid {
		p.Y = in.node.pos.Y + headerHeight
	}
	return p
}

// Kind implements scene.Item.
func (in *Inlet) Kind() scene.ItemKind { return scene.KindInlet }

// Visible hides the pin together with its header while the node is
// invalid.
func (in *Inlet) Visible() bool { return in.node.valid }

// Bounds implements scene.Item.
func (in *Inlet) Bounds() core.Rect { return pinBounds(in.origin()) }

// Paint implements scene.Item.
func (in *Inlet) Paint(cv *canvas.Canvas) { paintPin(cv, in.origin()) }

// Outlet is a connection endpoint on the node's output side. It is also
// the pin a wire-drag gesture can originate from (see Canvas.MouseDown).
type Outlet struct {
	iolet
}

func newOutlet(n *Node, index int) *Outlet {
	o := &Outlet{iolet: iolet{node: n, index: index}}
	o.tooltip = newTooltip(&o.iolet, tooltipBelow, func() string {
		if mo := o.modelOutlet(); mo != nil {
			return mo.Type()
		}
		return ""
	})
	return o
}

func (o *Outlet) attach() {
	s := o.node.canvas.scene
	s.Add(o)
	s.SetZ(o, s.Z(o.node)+1)
	s.Add(o.tooltip)
	s.SetZ(o.tooltip, tooltipZ)
}

func (o *Outlet) detach() {
	s := o.node.canvas.scene
	if o.node.canvas.hoveredPin == hoverable(o) {
		o.node.canvas.hoveredPin = nil
	}
	s.Remove(o.tooltip)
	s.Remove(o)
}

// modelOutlet resolves the matching model pin.
func (o *Outlet) modelOutlet() *model.Outlet {
	return o.node.modelNode.Outlet(o.index)
}

// origin returns the pin's top-left cell on the outlet header row.
func (o *Outlet) origin() core.Point {
	return pinOrigin(o.node, o.index, o.node.pos.Y+headerHeight+bodyHeight)
}

// anchor is where connection geometry attaches: the pin itself, or the
// body's bottom edge while the node is invalid.
func (o *Outlet) anchor() core.Point {
	p := o.origin()
	if !o.node.valid {
		p.Y = o.node.pos.Y + headerHeight + bodyHeight - 1
	}
	return p
}

// Kind implements scene.Item.
func (o *Outlet) Kind() scene.ItemKind { return scene.KindOutlet }

// Visible hides the pin together with its header while the node is
// invalid.
func (o *Outlet) Visible() bool { return o.node.valid }

// Bounds implements scene.Item.
func (o *Outlet) Bounds() core.Rect { return pinBounds(o.origin()) }

// Paint implements scene.Item.
func (o *Outlet) Paint(cv *canvas.Canvas) { paintPin(cv, o.origin()) }
