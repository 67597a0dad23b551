// Package dataflow implements the interactive patch editor core: a canvas
// mediating between the abstract graph model and a retained scene of
// node boxes, pins, wires, tooltips and an in-place label editor.
//
// The model is the source of truth. View nodes and connections are
// created and destroyed only in response to model change events; user
// gestures turn into model operations, never direct view mutation.
package dataflow

import (
	"log/slog"

	"patcher/canvas"
	"patcher/core"
	"patcher/model"
	"patcher/scene"
)

// HoverMode selects which hover presentation the canvas uses. Feedback
// highlighting and pin tooltips are mutually exclusive by construction.
type HoverMode int

const (
	HoverNone HoverMode = iota
	HoverFeedback
	HoverTooltips
)

// Stacking bands for overlay items that must stay above the patch.
const (
	wireZ    = 1 << 28
	overlayZ = 1 << 29
	tooltipZ = 1 << 30
)

// Canvas owns the scene and keeps it in lockstep with the model. It is
// the only component that creates or destroys view nodes and
// connections.
type Canvas struct {
	scene      *scene.Scene
	model      *model.Model
	completion Completer
	logger     *slog.Logger

	nodes map[*model.Node]*Node
	conns map[*model.Connection]*Connection

	hoverMode HoverMode
	gridSize  int
	showGrid  bool

	gesture     gesture
	hoveredPin  hoverable
	hoveredNode *Node
	hoveredConn *Connection
}

// hoverable is the hover capability shared by inlets and outlets.
type hoverable interface {
	setHovered(bool)
}

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureMove
	gestureWire
	gestureRubber
)

type gesture struct {
	kind   gestureKind
	node   *Node
	grab   core.Point
	outlet *Outlet
	wire   *TempWire
	origin core.Point
	rubber core.Rect
}

// NewCanvas creates an empty canvas. A nil logger falls back to
// slog.Default.
func NewCanvas(logger *slog.Logger) *Canvas {
	if logger == nil {
		logger = slog.Default()
	}
	return &Canvas{
		scene:    scene.New(),
		logger:   logger,
		nodes:    make(map[*model.Node]*Node),
		conns:    make(map[*model.Connection]*Connection),
		gridSize: 1,
	}
}

// Scene returns the underlying scene.
func (c *Canvas) Scene() *scene.Scene { return c.scene }

// Model returns the active model.
func (c *Canvas) Model() *model.Model { return c.model }

// SetModel attaches a model and subscribes to its change events. Any
// views projected from a previously attached model are torn down; the
// old model is assumed quiescent afterwards.
func (c *Canvas) SetModel(m *model.Model) {
	for mn := range c.nodes {
		c.teardownNode(c.nodes[mn])
	}
	for mc := range c.conns {
		c.teardownConnection(c.conns[mc])
	}
	c.model = m
	if m != nil {
		m.Subscribe(c.handleModelEvent)
	}
}

// Completion returns the completion provider.
func (c *Canvas) Completion() Completer { return c.completion }

// SetCompletion installs the completion provider. Nil disables label
// autocomplete.
func (c *Canvas) SetCompletion(p Completer) { c.completion = p }

// GridSize returns the snapping grid size in cells.
func (c *Canvas) GridSize() int { return c.gridSize }

// SetGridSize sets the snapping grid size; values below 1 clamp to 1
// (no snapping).
func (c *Canvas) SetGridSize(size int) {
	if size < 1 {
		size = 1
	}
	c.gridSize = size
}

// ShowGrid reports whether grid dots are painted.
func (c *Canvas) ShowGrid() bool { return c.showGrid }

// SetShowGrid toggles grid dot painting.
func (c *Canvas) SetShowGrid(show bool) { c.showGrid = show }

// HoverMode returns the active hover presentation mode.
func (c *Canvas) HoverMode() HoverMode { return c.hoverMode }

// SetHoverMode switches hover presentation, retroactively clearing any
// hover state left by the previous mode.
func (c *Canvas) SetHoverMode(mode HoverMode) {
	if mode == c.hoverMode {
		return
	}
	c.clearHover()
	c.hoverMode = mode
}

func (c *Canvas) clearHover() {
	if c.hoveredPin != nil {
		c.hoveredPin.setHovered(false)
		c.hoveredPin = nil
	}
	if c.hoveredNode != nil {
		c.hoveredNode.hovered = false
		c.hoveredNode = nil
	}
	if c.hoveredConn != nil {
		c.hoveredConn.hovered = false
		c.hoveredConn = nil
	}
}

// Node returns the view for a model node, logging a warning and
// returning nil when the node is unknown.
func (c *Canvas) Node(mn *model.Node) *Node {
	vn, ok := c.nodes[mn]
	if !ok {
		c.logger.Warn("canvas does not know about node", "node", mn.ID())
		return nil
	}
	return vn
}

// Connection returns the view for a model connection, logging a warning
// and returning nil when the connection is unknown.
func (c *Canvas) Connection(mc *model.Connection) *Connection {
	vc, ok := c.conns[mc]
	if !ok {
		c.logger.Warn("canvas does not know about connection", "connection", mc.ID())
		return nil
	}
	return vc
}

// SelectedNodes returns the selected view nodes in model order.
func (c *Canvas) SelectedNodes() []*Node {
	var out []*Node
	for _, mn := range c.model.Nodes() {
		if vn, ok := c.nodes[mn]; ok && vn.selected {
			out = append(out, vn)
		}
	}
	return out
}

// SelectedConnections returns the selected view connections in model
// order.
func (c *Canvas) SelectedConnections() []*Connection {
	var out []*Connection
	for _, mc := range c.model.Connections() {
		if vc, ok := c.conns[mc]; ok && vc.selected {
			out = append(out, vc)
		}
	}
	return out
}

// IsSomeNodeInEditMode reports whether any node's label has focus.
func (c *Canvas) IsSomeNodeInEditMode() bool {
	for _, vn := range c.nodes {
		if vn.isInEditMode() {
			return true
		}
	}
	return false
}

// EditingNode returns the node currently in edit mode, or nil.
func (c *Canvas) EditingNode() *Node {
	for _, vn := range c.nodes {
		if vn.isInEditMode() {
			return vn
		}
	}
	return nil
}

// ClearSelection deselects every node and connection. Deselecting a node
// in edit mode commits its edit.
func (c *Canvas) ClearSelection() {
	for _, vn := range c.nodes {
		vn.setSelected(false)
	}
	for _, vc := range c.conns {
		vc.setSelected(false)
	}
}

func (c *Canvas) selectOnlyNode(n *Node) {
	for _, vn := range c.nodes {
		if vn != n {
			vn.setSelected(false)
		}
	}
	for _, vc := range c.conns {
		vc.setSelected(false)
	}
	n.setSelected(true)
}

func (c *Canvas) selectOnlyConnection(vc *Connection) {
	for _, vn := range c.nodes {
		vn.setSelected(false)
	}
	for _, other := range c.conns {
		if other != vc {
			other.setSelected(false)
		}
	}
	vc.setSelected(true)
}

// raiseNode brings a node, its pins and every connection on those pins
// to the top of their local stacks, so a selected node travels with its
// wires.
func (c *Canvas) raiseNode(n *Node) {
	c.scene.Raise(n)
	z := c.scene.Z(n)
	for _, in := range n.inlets {
		c.scene.SetZ(in, z+1)
	}
	for _, o := range n.outlets {
		c.scene.SetZ(o, z+1)
	}
	for _, in := range n.inlets {
		for _, vc := range in.conns {
			c.scene.Raise(vc)
		}
	}
	for _, o := range n.outlets {
		for _, vc := range o.conns {
			c.scene.Raise(vc)
		}
	}
}

// handleModelEvent is the single model listener: one dispatch switch
// over the event tag.
func (c *Canvas) handleModelEvent(ev model.Event) {
	switch ev.Kind {
	case model.NodeAdded:
		c.onNodeAdded(ev.Node)
	case model.NodeRemoved:
		c.onNodeRemoved(ev.Node)
	case model.NodeValidChanged:
		if vn := c.Node(ev.Node); vn != nil {
			vn.setValid(ev.Valid)
		}
	case model.NodePosChanged:
		// Every position change lands grid-snapped, whatever its origin.
		// setPos is a no-op when the view already leads (drag pushes the
		// same snapped position back), which suppresses the echo loop.
		if vn := c.Node(ev.Node); vn != nil {
			vn.setPos(c.snap(ev.Pos))
		}
	case model.NodeTextChanged:
		if vn := c.Node(ev.Node); vn != nil {
			vn.setTextFromModel(ev.Text)
		}
	case model.InletCountChanged:
		if vn := c.Node(ev.Node); vn != nil {
			vn.setInletCount(ev.Count)
		}
	case model.OutletCountChanged:
		if vn := c.Node(ev.Node); vn != nil {
			vn.setOutletCount(ev.Count)
		}
	case model.ConnectionAdded:
		c.onConnectionAdded(ev.Conn)
	case model.ConnectionRemoved:
		if vc := c.Connection(ev.Conn); vc != nil {
			c.teardownConnection(vc)
		}
	}
}

func (c *Canvas) onNodeAdded(mn *model.Node) {
	vn := newNode(c, mn)
	c.nodes[mn] = vn
	c.scene.Add(vn)
	vn.attachPins()
	vn.adjust()

	// Freshly created empty nodes go straight into label editing; this is
	// how "create a node" flows into "type its name".
	if mn.Text() == "" {
		vn.enterEditMode()
	}
}

func (c *Canvas) onNodeRemoved(mn *model.Node) {
	vn := c.Node(mn)
	if vn == nil {
		return
	}
	if vn.isInEditMode() {
		vn.exitEditMode(true)
	}
	c.teardownNode(vn)
}

func (c *Canvas) onConnectionAdded(mc *model.Connection) {
	vc := newConnection(c, mc)
	if vc == nil {
		return
	}
	c.conns[mc] = vc
	c.scene.Add(vc)
	c.scene.Raise(vc)
}

// teardownConnection removes a view connection from its pins and the
// scene. Safe to call redundantly.
func (c *Canvas) teardownConnection(vc *Connection) {
	if vc == nil {
		return
	}
	if vc.src != nil {
		vc.src.removeConnection(vc)
	}
	if vc.dst != nil {
		vc.dst.removeConnection(vc)
	}
	if c.hoveredConn == vc {
		c.hoveredConn = nil
	}
	c.scene.Remove(vc)
	delete(c.conns, vc.modelConn)
}

func (c *Canvas) teardownNode(vn *Node) {
	vn.label.clearCompletion()
	vn.setInletCount(0)
	vn.setOutletCount(0)
	if c.hoveredNode == vn {
		c.hoveredNode = nil
	}
	c.scene.Remove(vn)
	delete(c.nodes, vn.modelNode)
}

// snap rounds a position to the nearest grid multiple when snapping is
// enabled.
func (c *Canvas) snap(p core.Point) core.Point {
	if c.gridSize <= 1 {
		return p
	}
	return core.Point{
		X: snapCoord(p.X, c.gridSize),
		Y: snapCoord(p.Y, c.gridSize),
	}
}

func snapCoord(v, grid int) int {
	if v >= 0 {
		return (v + grid/2) / grid * grid
	}
	return -((-v + grid/2) / grid * grid)
}

// Paint draws the grid, the scene and any in-flight rubber band.
func (c *Canvas) Paint(cv *canvas.Canvas) {
	if c.showGrid && c.gridSize > 1 {
		w, h := cv.Size()
		dot := canvas.Style{Fg: canvas.ColorGray}
		for y := 0; y < h; y += c.gridSize {
			for x := 0; x < w; x += c.gridSize {
				cv.SetStyled(core.Point{X: x, Y: y}, '·', dot)
			}
		}
	}
	c.scene.PaintAll(cv)
	if c.gesture.kind == gestureRubber {
		cv.DrawBox(c.gesture.rubber, canvas.Style{Fg: canvas.ColorGray}, true)
	}
}

// CursorPos returns the screen position of the text cursor while a label
// is being edited.
func (c *Canvas) CursorPos() (core.Point, bool) {
	vn := c.EditingNode()
	if vn == nil {
		return core.Point{}, false
	}
	origin := vn.labelOrigin()
	origin.X += canvas.StringWidth(string(vn.label.buf[:vn.label.cursor]))
	return origin, true
}
