package model

import "patcher/core"

// EventKind tags a model change notification.
type EventKind int

const (
	NodeAdded EventKind = iota
	NodeRemoved
	NodeValidChanged
	NodePosChanged
	NodeTextChanged
	InletCountChanged
	OutletCountChanged
	ConnectionAdded
	ConnectionRemoved
)

// String returns the event kind name for logging.
func (k EventKind) String() string {
	switch k {
	case NodeAdded:
		return "NodeAdded"
	case NodeRemoved:
		return "NodeRemoved"
	case NodeValidChanged:
		return "NodeValidChanged"
	case NodePosChanged:
		return "NodePosChanged"
	case NodeTextChanged:
		return "NodeTextChanged"
	case InletCountChanged:
		return "InletCountChanged"
	case OutletCountChanged:
		return "OutletCountChanged"
	case ConnectionAdded:
		return "ConnectionAdded"
	case ConnectionRemoved:
		return "ConnectionRemoved"
	default:
		return "Unknown"
	}
}

// Event is a tagged model change notification. Node is set for node
// events, Conn for connection events; the remaining fields carry the new
// value for the kind that uses them.
type Event struct {
	Kind  EventKind
	Node  *Node
	Conn  *Connection
	Text  string
	Pos   core.Point
	Count int
	Valid bool
}

// Listener receives model change events. Events are delivered
// synchronously: the mutation that caused the event has been committed,
// and the mutating call does not return until every listener has run.
type Listener func(Event)
