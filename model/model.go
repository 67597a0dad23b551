// Package model holds the abstract dataflow graph: nodes with typed inlet
// and outlet pins, and directed connections between them. The model is the
// single source of truth; views subscribe to its change events and never
// mutate it except through the operations here.
package model

import "patcher/core"

// CompatibilityFunc decides whether an outlet may be wired to an inlet.
// A nil func means every pairing is allowed.
type CompatibilityFunc func(*Outlet, *Inlet) bool

// Model is the dataflow graph. It is not safe for concurrent use; all
// mutation is expected to happen on the UI event goroutine.
type Model struct {
	nextID    int
	nodes     []*Node
	conns     []*Connection
	listeners []Listener

	// CanConnect is consulted from the outlet side, CanAccept from the
	// inlet side. Both must agree for a connection to be made or offered
	// as valid during drag feedback.
	CanConnect CompatibilityFunc
	CanAccept  CompatibilityFunc
}

// New creates an empty model.
func New() *Model {
	return &Model{}
}

// Subscribe registers a change listener. Listeners are invoked in
// subscription order.
func (m *Model) Subscribe(l Listener) {
	m.listeners = append(m.listeners, l)
}

func (m *Model) emit(ev Event) {
	for _, l := range m.listeners {
		l(ev)
	}
}

// Nodes returns the current nodes in creation order.
func (m *Model) Nodes() []*Node {
	out := make([]*Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Connections returns the current connections in creation order.
func (m *Model) Connections() []*Connection {
	out := make([]*Connection, len(m.conns))
	copy(out, m.conns)
	return out
}

// Create adds a node and fires NodeAdded. New nodes start valid.
func (m *Model) Create(pos core.Point, text string, inlets, outlets int) *Node {
	m.nextID++
	n := &Node{
		model: m,
		id:    m.nextID,
		text:  text,
		pos:   pos,
		valid: true,
	}
	for i := 0; i < inlets; i++ {
		n.inlets = append(n.inlets, &Inlet{node: n, index: i})
	}
	for i := 0; i < outlets; i++ {
		n.outlets = append(n.outlets, &Outlet{node: n, index: i})
	}
	m.nodes = append(m.nodes, n)
	m.emit(Event{Kind: NodeAdded, Node: n})
	return n
}

// Remove deletes a node. Incident connections are removed first, each
// firing ConnectionRemoved, then NodeRemoved fires for the node itself.
func (m *Model) Remove(n *Node) {
	for _, c := range m.connectionsTouching(n) {
		m.removeConnection(c)
	}
	for i, other := range m.nodes {
		if other == n {
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			m.emit(Event{Kind: NodeRemoved, Node: n})
			return
		}
	}
}

// Connect wires srcNode's outlet to dstNode's inlet. It refuses
// out-of-range indices, duplicate connections, and pairings rejected by
// either compatibility predicate. Fires ConnectionAdded on success.
func (m *Model) Connect(srcNode *Node, srcIndex int, dstNode *Node, dstIndex int) (*Connection, bool) {
	if srcNode == nil || dstNode == nil {
		return nil, false
	}
	if srcIndex < 0 || srcIndex >= len(srcNode.outlets) {
		return nil, false
	}
	if dstIndex < 0 || dstIndex >= len(dstNode.inlets) {
		return nil, false
	}
	src := srcNode.outlets[srcIndex]
	dst := dstNode.inlets[dstIndex]
	for _, c := range m.conns {
		if c.src == src && c.dst == dst {
			return nil, false
		}
	}
	if !src.CanConnectTo(dst) || !dst.CanAcceptFrom(src) {
		return nil, false
	}
	m.nextID++
	c := &Connection{id: m.nextID, src: src, dst: dst}
	m.conns = append(m.conns, c)
	m.emit(Event{Kind: ConnectionAdded, Conn: c})
	return c, true
}

// Disconnect removes the connection matching the exact endpoint
// signature, firing ConnectionRemoved. Returns false if no such
// connection exists.
func (m *Model) Disconnect(srcNode *Node, srcIndex int, dstNode *Node, dstIndex int) bool {
	for _, c := range m.conns {
		if c.src.node == srcNode && c.src.index == srcIndex &&
			c.dst.node == dstNode && c.dst.index == dstIndex {
			m.removeConnection(c)
			return true
		}
	}
	return false
}

func (m *Model) removeConnection(c *Connection) {
	for i, other := range m.conns {
		if other == c {
			m.conns = append(m.conns[:i], m.conns[i+1:]...)
			m.emit(Event{Kind: ConnectionRemoved, Conn: c})
			return
		}
	}
}

func (m *Model) connectionsTouching(n *Node) []*Connection {
	var out []*Connection
	for _, c := range m.conns {
		if c.src.node == n || c.dst.node == n {
			out = append(out, c)
		}
	}
	return out
}

// connectionsOnInlet returns connections terminating at the given inlet.
func (m *Model) connectionsOnInlet(in *Inlet) []*Connection {
	var out []*Connection
	for _, c := range m.conns {
		if c.dst == in {
			out = append(out, c)
		}
	}
	return out
}

// connectionsOnOutlet returns connections originating at the given outlet.
func (m *Model) connectionsOnOutlet(src *Outlet) []*Connection {
	var out []*Connection
	for _, c := range m.conns {
		if c.src == src {
			out = append(out, c)
		}
	}
	return out
}
