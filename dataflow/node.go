package dataflow

import (
	"patcher/canvas"
	"patcher/core"
	"patcher/model"
	"patcher/scene"
)

// Node box layout, in cells:
//
//	 ██  ██          inlet pins (header row)
//	┌──────────┐
//	│ osc~     │     body with label
//	└──────────┘
//	 ██              outlet pins (header row)
//
// Both header rows are hidden while the node is invalid, so connections
// stay visually anchored to the body.
const (
	ioletWidth   = 2
	ioletSpacing = 2
	headerHeight = 1
	bodyHeight   = 3
	pinTolerance = 1
	minBodyWidth = 6
)

// Node is the on-screen box for one model node.
type Node struct {
	canvas    *Canvas
	modelNode *model.Node

	pos     core.Point
	width   int
	valid   bool
	oldText string

	inlets  []*Inlet
	outlets []*Outlet
	label   *TextLabel

	selected bool
	hovered  bool
}

func newNode(c *Canvas, mn *model.Node) *Node {
	n := &Node{
		canvas:    c,
		modelNode: mn,
		pos:       c.snap(mn.Pos()),
		valid:     mn.Valid(),
	}
	n.label = newTextLabel(n, mn.Text())
	n.oldText = mn.Text()
	return n
}

// attachPins creates the view pins matching the model's current counts.
// Called once, right after the node enters the scene.
func (n *Node) attachPins() {
	n.growInlets(n.modelNode.InletCount())
	n.growOutlets(n.modelNode.OutletCount())
}

// ModelNode returns the wrapped model node.
func (n *Node) ModelNode() *model.Node { return n.modelNode }

// Pos returns the node's top-left corner.
func (n *Node) Pos() core.Point { return n.pos }

// Text returns the label's current text.
func (n *Node) Text() string { return n.label.Text() }

// Valid returns the view's validity flag.
func (n *Node) Valid() bool { return n.valid }

// Selected reports whether the node is selected.
func (n *Node) Selected() bool { return n.selected }

// InletCount returns the number of view inlet pins.
func (n *Node) InletCount() int { return len(n.inlets) }

// OutletCount returns the number of view outlet pins.
func (n *Node) OutletCount() int { return len(n.outlets) }

// InletAt returns the view inlet at index, or nil.
func (n *Node) InletAt(index int) *Inlet {
	if index < 0 || index >= len(n.inlets) {
		return nil
	}
	return n.inlets[index]
}

// OutletAt returns the view outlet at index, or nil.
func (n *Node) OutletAt(index int) *Outlet {
	if index < 0 || index >= len(n.outlets) {
		return nil
	}
	return n.outlets[index]
}

// Kind implements scene.Item.
func (n *Node) Kind() scene.ItemKind { return scene.KindNode }

// Visible implements scene.Item.
func (n *Node) Visible() bool { return true }

// Bounds covers the body plus both header rows regardless of validity,
// keeping hit-testing stable while headers are hidden.
func (n *Node) Bounds() core.Rect {
	return core.NewRect(n.pos.X, n.pos.Y, n.width, headerHeight+bodyHeight+headerHeight)
}

func (n *Node) bodyRect() core.Rect {
	return core.NewRect(n.pos.X, n.pos.Y+headerHeight, n.width, bodyHeight)
}

// labelOrigin returns the cell where the label text starts.
func (n *Node) labelOrigin() core.Point {
	return core.Point{X: n.pos.X + 2, Y: n.pos.Y + headerHeight + 1}
}

func pinRowWidth(count int) int {
	if count == 0 {
		return 0
	}
	return 2 + count*ioletWidth + (count-1)*ioletSpacing
}

// adjust recomputes the node's width from its label and pin rows, then
// cascades a geometry recompute to every attached connection.
func (n *Node) adjust() {
	w := canvas.StringWidth(n.label.Text()) + 4
	if iw := pinRowWidth(len(n.inlets)); iw > w {
		w = iw
	}
	if ow := pinRowWidth(len(n.outlets)); ow > w {
		w = ow
	}
	if w < minBodyWidth {
		w = minBodyWidth
	}
	n.width = w
	n.adjustConnections()
}

// adjustConnections recomputes geometry for every connection attached to
// any of the node's pins.
func (n *Node) adjustConnections() {
	for _, in := range n.inlets {
		in.adjustConnections()
	}
	for _, o := range n.outlets {
		o.adjustConnections()
	}
}

// setPos moves the node and refreshes attached connection geometry. A
// same-value call is a no-op, which is what breaks the drag echo loop.
func (n *Node) setPos(p core.Point) {
	if p == n.pos {
		return
	}
	n.pos = p
	n.adjustConnections()
}

func (n *Node) setValid(valid bool) {
	n.valid = valid
	n.adjust()
}

// setTextFromModel applies a model-side text change without writing
// back.
func (n *Node) setTextFromModel(text string) {
	if text == n.label.Text() {
		return
	}
	n.label.setText(text)
	n.oldText = text
	n.adjust()
}

// setInletCount resizes the view pin row. Shrinking tears down the
// dropped pins' view connections first; the model has already removed
// the corresponding model connections, so this is a tolerant safety
// net, not a write-back.
func (n *Node) setInletCount(count int) {
	for len(n.inlets) > count {
		last := n.inlets[len(n.inlets)-1]
		for _, vc := range last.connectionsCopy() {
			n.canvas.teardownConnection(vc)
		}
		last.detach()
		n.inlets = n.inlets[:len(n.inlets)-1]
	}
	n.growInlets(count)
	n.adjust()
}

func (n *Node) growInlets(count int) {
	for len(n.inlets) < count {
		in := newInlet(n, len(n.inlets))
		n.inlets = append(n.inlets, in)
		in.attach()
	}
}

// setOutletCount mirrors setInletCount for the output side.
func (n *Node) setOutletCount(count int) {
	for len(n.outlets) > count {
		last := n.outlets[len(n.outlets)-1]
		for _, vc := range last.connectionsCopy() {
			n.canvas.teardownConnection(vc)
		}
		last.detach()
		n.outlets = n.outlets[:len(n.outlets)-1]
	}
	n.growOutlets(count)
	n.adjust()
}

func (n *Node) growOutlets(count int) {
	for len(n.outlets) < count {
		o := newOutlet(n, len(n.outlets))
		n.outlets = append(n.outlets, o)
		o.attach()
	}
}

// setSelected toggles selection. Selecting raises the node with its
// wires and snapshots the label for a later commit/revert; deselecting
// while editing commits the edit.
func (n *Node) setSelected(sel bool) {
	if sel == n.selected {
		return
	}
	n.selected = sel
	if sel {
		n.canvas.raiseNode(n)
		n.oldText = n.label.Text()
	} else if n.isInEditMode() {
		n.exitEditMode(false)
	}
}

// enterEditMode puts the label into focused editing: snapshot the text,
// select it all and ask for completion of the current text.
func (n *Node) enterEditMode() {
	n.oldText = n.label.Text()
	n.canvas.selectOnlyNode(n)
	n.label.startEdit()
}

// exitEditMode leaves editing, either reverting to the snapshot or
// committing: a changed text issues exactly one model SetText call, an
// unchanged one issues none.
func (n *Node) exitEditMode(revert bool) {
	n.label.clearCompletion()
	if revert {
		n.label.setText(n.oldText)
	} else if n.oldText != n.label.Text() {
		n.modelNode.SetText(n.label.Text())
		n.oldText = n.label.Text()
	}
	n.label.endEdit()
	n.adjust()
}

// isInEditMode reports whether the label is editable and focused.
func (n *Node) isInEditMode() bool {
	return n.label.editable && n.label.focused
}

func (n *Node) outlineStyle() canvas.Style {
	st := canvas.Style{}
	if n.hovered && n.canvas.hoverMode == HoverFeedback {
		st.Bg = canvas.ColorGray
	}
	if n.selected {
		st.Fg = canvas.ColorBlue
		st.Bg = canvas.ColorCyan
	}
	return st
}

// Paint implements scene.Item.
func (n *Node) Paint(cv *canvas.Canvas) {
	st := n.outlineStyle()
	body := n.bodyRect()
	if st.Bg != canvas.ColorDefault {
		cv.Fill(body, ' ', canvas.Style{Bg: st.Bg})
	}
	cv.DrawBox(body, st, !n.valid)

	textStyle := st
	if n.label.editable && n.label.selectedAll && n.label.Len() > 0 {
		textStyle.Reverse = true
	}
	cv.DrawText(n.labelOrigin(), n.label.Text(), textStyle)
}
