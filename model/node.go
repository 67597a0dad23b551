package model

import "patcher/core"

// Node is a graph vertex: a text label, a position, a validity flag and
// ordered inlet/outlet pins. Nodes are identified by pointer; the int id
// only exists for log and dump output.
type Node struct {
	model   *Model
	id      int
	text    string
	pos     core.Point
	valid   bool
	inlets  []*Inlet
	outlets []*Outlet
}

// ID returns the node's numeric id.
func (n *Node) ID() int { return n.id }

// Text returns the node's label text.
func (n *Node) Text() string { return n.text }

// Pos returns the node's position.
func (n *Node) Pos() core.Point { return n.pos }

// Valid reports whether the node's configuration is well-formed. The flag
// is set externally (by the host) and only affects presentation.
func (n *Node) Valid() bool { return n.valid }

// InletCount returns the number of inlet pins.
func (n *Node) InletCount() int { return len(n.inlets) }

// OutletCount returns the number of outlet pins.
func (n *Node) OutletCount() int { return len(n.outlets) }

// Inlet returns the inlet at index, or nil if out of range.
func (n *Node) Inlet(index int) *Inlet {
	if index < 0 || index >= len(n.inlets) {
		return nil
	}
	return n.inlets[index]
}

// Outlet returns the outlet at index, or nil if out of range.
func (n *Node) Outlet(index int) *Outlet {
	if index < 0 || index >= len(n.outlets) {
		return nil
	}
	return n.outlets[index]
}

// SetText updates the label text, firing NodeTextChanged on actual change.
func (n *Node) SetText(text string) {
	if text == n.text {
		return
	}
	n.text = text
	n.model.emit(Event{Kind: NodeTextChanged, Node: n, Text: text})
}

// SetPos moves the node, firing NodePosChanged on actual change.
func (n *Node) SetPos(pos core.Point) {
	if pos == n.pos {
		return
	}
	n.pos = pos
	n.model.emit(Event{Kind: NodePosChanged, Node: n, Pos: pos})
}

// SetValid updates the validity flag, firing NodeValidChanged on actual
// change.
func (n *Node) SetValid(valid bool) {
	if valid == n.valid {
		return
	}
	n.valid = valid
	n.model.emit(Event{Kind: NodeValidChanged, Node: n, Valid: valid})
}

// SetInletCount resizes the inlet row. Shrinking first removes every
// connection on the truncated pins (each firing ConnectionRemoved), so
// views observe the connection teardown before the count change.
func (n *Node) SetInletCount(count int) {
	if count < 0 {
		count = 0
	}
	if count == len(n.inlets) {
		return
	}
	for i := count; i < len(n.inlets); i++ {
		for _, c := range n.model.connectionsOnInlet(n.inlets[i]) {
			n.model.removeConnection(c)
		}
	}
	if count < len(n.inlets) {
		n.inlets = n.inlets[:count]
	} else {
		for i := len(n.inlets); i < count; i++ {
			n.inlets = append(n.inlets, &Inlet{node: n, index: i})
		}
	}
	n.model.emit(Event{Kind: InletCountChanged, Node: n, Count: count})
}

// SetOutletCount resizes the outlet row with the same connection-first
// teardown ordering as SetInletCount.
func (n *Node) SetOutletCount(count int) {
	if count < 0 {
		count = 0
	}
	if count == len(n.outlets) {
		return
	}
	for i := count; i < len(n.outlets); i++ {
		for _, c := range n.model.connectionsOnOutlet(n.outlets[i]) {
			n.model.removeConnection(c)
		}
	}
	if count < len(n.outlets) {
		n.outlets = n.outlets[:count]
	} else {
		for i := len(n.outlets); i < count; i++ {
			n.outlets = append(n.outlets, &Outlet{node: n, index: i})
		}
	}
	n.model.emit(Event{Kind: OutletCountChanged, Node: n, Count: count})
}

// Inlet is a connection endpoint on a node's input side.
type Inlet struct {
	node  *Node
	index int
	typ   string
}

// Node returns the owning node.
func (in *Inlet) Node() *Node { return in.node }

// Index returns the pin's position within the inlet row.
func (in *Inlet) Index() int { return in.index }

// Type returns the pin's type label, used for tooltips and compatibility.
func (in *Inlet) Type() string { return in.typ }

// SetType updates the pin's type label.
func (in *Inlet) SetType(t string) { in.typ = t }

// CanAcceptFrom reports whether this inlet accepts a connection from the
// given outlet, per the model's inlet-side predicate.
func (in *Inlet) CanAcceptFrom(src *Outlet) bool {
	if src == nil {
		return false
	}
	if in.node.model.CanAccept == nil {
		return true
	}
	return in.node.model.CanAccept(src, in)
}

// Outlet is a connection endpoint on a node's output side.
type Outlet struct {
	node  *Node
	index int
	typ   string
}

// Node returns the owning node.
func (o *Outlet) Node() *Node { return o.node }

// Index returns the pin's position within the outlet row.
func (o *Outlet) Index() int { return o.index }

// Type returns the pin's type label, used for tooltips and compatibility.
func (o *Outlet) Type() string { return o.typ }

// SetType updates the pin's type label.
func (o *Outlet) SetType(t string) { o.typ = t }

// CanConnectTo reports whether this outlet may be wired to the given
// inlet, per the model's outlet-side predicate.
func (o *Outlet) CanConnectTo(dst *Inlet) bool {
	if dst == nil {
		return false
	}
	if o.node.model.CanConnect == nil {
		return true
	}
	return o.node.model.CanConnect(o, dst)
}

// Connection is a directed edge from an outlet to an inlet.
type Connection struct {
	id  int
	src *Outlet
	dst *Inlet
}

// ID returns the connection's numeric id.
func (c *Connection) ID() int { return c.id }

// Source returns the originating outlet.
func (c *Connection) Source() *Outlet { return c.src }

// Dest returns the terminating inlet.
func (c *Connection) Dest() *Inlet { return c.dst }
