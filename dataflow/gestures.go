package dataflow

import (
	"patcher/core"
	"patcher/scene"
)

// MouseDown begins a gesture: wire-dragging from an outlet, moving a
// node, selecting a connection, or rubber-band selection from empty
// space. Pins are hit-tested before nodes so a press on a pin never
// turns into a node drag.
func (c *Canvas) MouseDown(p core.Point) {
	if it := c.scene.ItemAt(p, scene.KindOutlet); it != nil {
		o := it.(*Outlet)
		w := &TempWire{from: o.anchor(), to: p, style: WireNeutral}
		c.scene.Add(w)
		c.scene.SetZ(w, wireZ)
		c.raiseNode(o.node)
		c.gesture = gesture{kind: gestureWire, outlet: o, wire: w}
		return
	}
	if it := c.scene.ItemAt(p, scene.KindNode); it != nil {
		n := it.(*Node)
		if !n.selected {
			c.selectOnlyNode(n)
		}
		c.gesture = gesture{kind: gestureMove, node: n, grab: p.Sub(n.pos)}
		return
	}
	if it := c.scene.ItemAt(p, scene.KindConnection); it != nil {
		c.selectOnlyConnection(it.(*Connection))
		return
	}
	c.ClearSelection()
	c.gesture = gesture{kind: gestureRubber, origin: p, rubber: core.RectFromPoints(p, p)}
}

// MouseDrag extends the active gesture while a button is held.
func (c *Canvas) MouseDrag(p core.Point) {
	switch c.gesture.kind {
	case gestureMove:
		n := c.gesture.node
		target := c.snap(p.Sub(c.gesture.grab))
		if target != n.pos {
			n.setPos(target)
			// View leads during the drag; push the settled position back
			// to the model. The resulting echo is absorbed by setPos's
			// same-value guard.
			n.modelNode.SetPos(target)
		}
	case gestureWire:
		g := &c.gesture
		g.wire.to = p
		g.wire.style = WireNeutral
		if in := c.inletAt(p); in != nil {
			src := g.outlet.modelOutlet()
			dst := in.modelInlet()
			if src != nil && dst != nil && src.CanConnectTo(dst) && dst.CanAcceptFrom(src) {
				g.wire.style = WireValid
			} else {
				g.wire.style = WireInvalid
			}
		}
	case gestureRubber:
		c.gesture.rubber = core.RectFromPoints(c.gesture.origin, p)
	}
}

// MouseUp finishes the active gesture. Releasing a wire over a
// compatible inlet issues a connect request to the model; the view
// connection appears only through the resulting ConnectionAdded event.
func (c *Canvas) MouseUp(p core.Point) {
	g := c.gesture
	c.gesture = gesture{}
	switch g.kind {
	case gestureWire:
		c.scene.Remove(g.wire)
		in := c.inletAt(p)
		if in == nil {
			return
		}
		src := g.outlet.modelOutlet()
		dst := in.modelInlet()
		if src == nil || dst == nil || !src.CanConnectTo(dst) || !dst.CanAcceptFrom(src) {
			return
		}
		c.model.Connect(g.outlet.node.modelNode, g.outlet.index, in.node.modelNode, in.index)
	case gestureRubber:
		c.selectInRect(g.rubber)
	}
}

// MouseMove tracks hover while no button is held, per the active hover
// mode.
func (c *Canvas) MouseMove(p core.Point) {
	switch c.hoverMode {
	case HoverTooltips:
		var pin hoverable
		if it := c.scene.ItemAt(p, scene.KindInlet, scene.KindOutlet); it != nil {
			pin = it.(hoverable)
		}
		if pin == c.hoveredPin {
			return
		}
		if c.hoveredPin != nil {
			c.hoveredPin.setHovered(false)
		}
		c.hoveredPin = pin
		if pin != nil {
			pin.setHovered(true)
		}
	case HoverFeedback:
		var node *Node
		if it := c.scene.ItemAt(p, scene.KindNode); it != nil {
			node = it.(*Node)
		}
		if c.hoveredNode != node {
			if c.hoveredNode != nil {
				c.hoveredNode.hovered = false
			}
			c.hoveredNode = node
			if node != nil {
				node.hovered = true
			}
		}
		var conn *Connection
		if node == nil {
			if it := c.scene.ItemAt(p, scene.KindConnection); it != nil {
				conn = it.(*Connection)
			}
		}
		if c.hoveredConn != conn {
			if c.hoveredConn != nil {
				c.hoveredConn.hovered = false
			}
			c.hoveredConn = conn
			if conn != nil {
				conn.hovered = true
			}
		}
	}
}

// DoubleClick edits the node under the cursor, or creates a fresh empty
// node on empty canvas (the model assigns identity and pin counts; the
// new node enters edit mode through its NodeAdded notification).
func (c *Canvas) DoubleClick(p core.Point) {
	if it := c.scene.ItemAt(p, scene.KindNode); it != nil {
		n := it.(*Node)
		if !n.isInEditMode() {
			n.enterEditMode()
		}
		return
	}
	if c.scene.ItemAt(p) != nil {
		return
	}
	c.model.Create(p, "", 0, 0)
}

// KeyPress routes keyboard input: to the editing label when one has
// focus, otherwise Backspace deletes the current selection (connections
// first, by exact endpoint signature, then nodes). Reports whether the
// key was consumed.
func (c *Canvas) KeyPress(k Key) bool {
	if vn := c.EditingNode(); vn != nil {
		return vn.label.handleKey(k)
	}
	if k.Kind == KeyBackspace {
		c.deleteSelected()
		return true
	}
	return false
}

func (c *Canvas) deleteSelected() {
	for _, vc := range c.SelectedConnections() {
		src := vc.src
		dst := vc.dst
		c.model.Disconnect(src.node.modelNode, src.index, dst.node.modelNode, dst.index)
	}
	for _, vn := range c.SelectedNodes() {
		c.model.Remove(vn.modelNode)
	}
}

func (c *Canvas) inletAt(p core.Point) *Inlet {
	if it := c.scene.ItemAt(p, scene.KindInlet); it != nil {
		return it.(*Inlet)
	}
	return nil
}

func (c *Canvas) selectInRect(r core.Rect) {
	for _, it := range c.scene.ItemsIn(r, scene.KindNode) {
		it.(*Node).setSelected(true)
	}
	for _, it := range c.scene.ItemsIn(r, scene.KindConnection) {
		it.(*Connection).setSelected(true)
	}
}
