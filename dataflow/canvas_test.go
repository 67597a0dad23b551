package dataflow

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patcher/canvas"
	"patcher/core"
	"patcher/model"
	"patcher/scene"
)

func newTestCanvas(t *testing.T) (*Canvas, *model.Model) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCanvas(logger)
	m := model.New()
	c.SetModel(m)
	return c, m
}

// prefixCompleter completes over a fixed word list, skipping empty input.
type prefixCompleter []string

func (p prefixCompleter) Complete(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, w := range p {
		if strings.HasPrefix(w, text) && w != text {
			out = append(out, w)
		}
	}
	return out
}

func typeText(c *Canvas, text string) {
	for _, r := range text {
		c.KeyPress(Key{Kind: KeyRune, Rune: r})
	}
}

func TestViewTracksModelLockstep(t *testing.T) {
	c, m := newTestCanvas(t)

	mn := m.Create(core.Point{X: 2, Y: 2}, "osc~", 2, 1)
	vn := c.Node(mn)
	require.NotNil(t, vn)
	assert.Equal(t, 2, vn.InletCount())
	assert.Equal(t, 1, vn.OutletCount())
	assert.True(t, c.Scene().Has(vn))

	m.Remove(mn)
	assert.Nil(t, c.Node(mn))
	assert.Equal(t, 0, c.Scene().Len())
}

func TestEmptyNodeEntersEditMode(t *testing.T) {
	c, m := newTestCanvas(t)

	named := m.Create(core.Point{}, "print", 1, 0)
	assert.False(t, c.IsSomeNodeInEditMode(), "named node stays out of edit mode")

	empty := m.Create(core.Point{X: 20, Y: 0}, "", 0, 0)
	require.True(t, c.IsSomeNodeInEditMode())
	assert.Same(t, c.Node(empty), c.EditingNode())
	assert.False(t, c.Node(named).isInEditMode())
}

func TestCommitIssuesExactlyOneSetText(t *testing.T) {
	c, m := newTestCanvas(t)
	var textEvents int
	m.Subscribe(func(ev model.Event) {
		if ev.Kind == model.NodeTextChanged {
			textEvents++
		}
	})

	mn := m.Create(core.Point{X: 1, Y: 1}, "", 0, 0)
	typeText(c, "osc~")
	assert.Equal(t, 0, textEvents, "typing alone must not touch the model")

	c.KeyPress(Key{Kind: KeyEnter})
	assert.Equal(t, 1, textEvents)
	assert.Equal(t, "osc~", mn.Text())
	assert.False(t, c.IsSomeNodeInEditMode())
}

func TestCommitUnchangedTextIsSilent(t *testing.T) {
	c, m := newTestCanvas(t)
	mn := m.Create(core.Point{X: 1, Y: 1}, "metro", 0, 0)
	var textEvents int
	m.Subscribe(func(ev model.Event) {
		if ev.Kind == model.NodeTextChanged {
			textEvents++
		}
	})

	c.DoubleClick(core.Point{X: 3, Y: 3})
	require.True(t, c.Node(mn).isInEditMode())
	c.KeyPress(Key{Kind: KeyEnter})
	assert.Equal(t, 0, textEvents)
}

func TestEscapeReverts(t *testing.T) {
	c, m := newTestCanvas(t)
	mn := m.Create(core.Point{X: 1, Y: 1}, "osc~", 0, 0)
	var textEvents int
	m.Subscribe(func(ev model.Event) {
		if ev.Kind == model.NodeTextChanged {
			textEvents++
		}
	})

	c.DoubleClick(core.Point{X: 3, Y: 3})
	typeText(c, "dac~")
	require.Equal(t, "dac~", c.Node(mn).Text())

	c.KeyPress(Key{Kind: KeyEscape})
	assert.Equal(t, "osc~", c.Node(mn).Text())
	assert.Equal(t, "osc~", mn.Text())
	assert.Equal(t, 0, textEvents)
	assert.False(t, c.IsSomeNodeInEditMode())
}

func TestDeselectWhileEditingCommits(t *testing.T) {
	c, m := newTestCanvas(t)
	mn := m.Create(core.Point{X: 1, Y: 1}, "", 0, 0)
	typeText(c, "dac~")

	c.ClearSelection()
	assert.Equal(t, "dac~", mn.Text())
	assert.False(t, c.IsSomeNodeInEditMode())
}

func TestCompletionCycleAndAccept(t *testing.T) {
	c, m := newTestCanvas(t)
	c.SetCompletion(prefixCompleter{"osc~", "oscbank~", "out~"})

	mn := m.Create(core.Point{X: 1, Y: 1}, "", 0, 0)
	typeText(c, "o")
	vn := c.Node(mn)
	require.NotNil(t, vn.label.overlay)
	require.Equal(t, []string{"osc~", "oscbank~", "out~"}, vn.label.overlay.candidates)
	assert.Equal(t, -1, vn.label.overlay.index)

	// Up from the unhighlighted state wraps to the last row, Down walks
	// forward circularly.
	c.KeyPress(Key{Kind: KeyUp})
	assert.Equal(t, 2, vn.label.overlay.index)
	c.KeyPress(Key{Kind: KeyDown})
	assert.Equal(t, 0, vn.label.overlay.index)
	c.KeyPress(Key{Kind: KeyDown})
	c.KeyPress(Key{Kind: KeyDown})
	c.KeyPress(Key{Kind: KeyDown})
	assert.Equal(t, 0, vn.label.overlay.index)

	// Enter accepts the highlighted candidate without leaving edit mode,
	// then a second Enter commits.
	c.KeyPress(Key{Kind: KeyEnter})
	assert.Equal(t, "osc~", vn.Text())
	assert.True(t, vn.isInEditMode())
	assert.Equal(t, "", mn.Text())

	c.KeyPress(Key{Kind: KeyEnter})
	assert.Equal(t, "osc~", mn.Text())
}

func TestEscapeClosesOverlayBeforeReverting(t *testing.T) {
	c, m := newTestCanvas(t)
	c.SetCompletion(prefixCompleter{"osc~"})

	mn := m.Create(core.Point{X: 1, Y: 1}, "", 0, 0)
	typeText(c, "o")
	vn := c.Node(mn)
	require.NotNil(t, vn.label.overlay)

	c.KeyPress(Key{Kind: KeyEscape})
	assert.Nil(t, vn.label.overlay)
	assert.True(t, vn.isInEditMode(), "first escape only closes the list")

	c.KeyPress(Key{Kind: KeyEscape})
	assert.False(t, vn.isInEditMode())
	assert.Equal(t, "", vn.Text())
}

func TestDoubleClickOnEmptyCanvasCreatesNode(t *testing.T) {
	c, m := newTestCanvas(t)

	c.DoubleClick(core.Point{X: 7, Y: 5})
	nodes := m.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, core.Point{X: 7, Y: 5}, nodes[0].Pos())
	assert.Equal(t, "", nodes[0].Text())
	assert.Equal(t, 0, nodes[0].InletCount())
	assert.True(t, c.IsSomeNodeInEditMode())
}

func TestDragConnect(t *testing.T) {
	c, m := newTestCanvas(t)
	src := m.Create(core.Point{X: 0, Y: 0}, "a", 0, 1)
	dst := m.Create(core.Point{X: 20, Y: 0}, "b", 1, 0)

	from := c.Node(src).OutletAt(0).origin()
	to := c.Node(dst).InletAt(0).origin()

	c.MouseDown(from)
	require.NotNil(t, c.Scene().ItemAt(from, scene.KindTempWire), "press on outlet spawns a wire")
	c.MouseDrag(to)
	c.MouseUp(to)

	assert.Nil(t, c.Scene().ItemAt(to, scene.KindTempWire), "wire is discarded on release")
	require.Len(t, m.Connections(), 1)
	conn := m.Connections()[0]
	assert.Same(t, src, conn.Source().Node())
	assert.Same(t, dst, conn.Dest().Node())
	require.NotNil(t, c.Connection(conn), "view connection appears via the model event")
}

func TestDragConnectRejectedByPredicate(t *testing.T) {
	c, m := newTestCanvas(t)
	m.CanAccept = func(src *model.Outlet, dst *model.Inlet) bool {
		return src.Type() == dst.Type()
	}
	src := m.Create(core.Point{X: 0, Y: 0}, "a", 0, 1)
	dst := m.Create(core.Point{X: 20, Y: 0}, "b", 1, 0)
	src.Outlet(0).SetType("signal")
	dst.Inlet(0).SetType("bang")

	from := c.Node(src).OutletAt(0).origin()
	to := c.Node(dst).InletAt(0).origin()
	c.MouseDown(from)
	c.MouseDrag(to)
	c.MouseUp(to)
	assert.Empty(t, m.Connections())

	// Releasing over empty space issues no request either.
	c.MouseDown(from)
	c.MouseUp(core.Point{X: 50, Y: 30})
	assert.Empty(t, m.Connections())
}

func TestDragMovesNodeAndSuppressesEcho(t *testing.T) {
	c, m := newTestCanvas(t)
	mn := m.Create(core.Point{X: 0, Y: 0}, "osc~", 0, 0)
	var posEvents int
	m.Subscribe(func(ev model.Event) {
		if ev.Kind == model.NodePosChanged {
			posEvents++
		}
	})

	grab := core.Point{X: 2, Y: 2}
	c.MouseDown(grab)
	c.MouseDrag(core.Point{X: 12, Y: 7})
	c.MouseUp(core.Point{X: 12, Y: 7})

	want := core.Point{X: 10, Y: 5}
	assert.Equal(t, want, mn.Pos())
	assert.Equal(t, want, c.Node(mn).Pos())
	assert.Equal(t, 1, posEvents)
}

func TestDragSnapsToGrid(t *testing.T) {
	c, m := newTestCanvas(t)
	c.SetGridSize(4)
	mn := m.Create(core.Point{X: 0, Y: 0}, "osc~", 0, 0)

	c.MouseDown(core.Point{X: 2, Y: 2})
	c.MouseDrag(core.Point{X: 11, Y: 8})
	c.MouseUp(core.Point{X: 11, Y: 8})

	assert.Equal(t, core.Point{X: 8, Y: 8}, mn.Pos())
}

func TestExternalPosChangeMovesView(t *testing.T) {
	c, m := newTestCanvas(t)
	mn := m.Create(core.Point{X: 0, Y: 0}, "osc~", 0, 0)

	mn.SetPos(core.Point{X: 30, Y: 10})
	assert.Equal(t, core.Point{X: 30, Y: 10}, c.Node(mn).Pos())
}

func TestInvalidNodeHidesPins(t *testing.T) {
	c, m := newTestCanvas(t)
	mn := m.Create(core.Point{X: 0, Y: 2}, "osc~", 1, 1)
	vn := c.Node(mn)
	in := vn.InletAt(0)
	require.True(t, in.Visible())
	require.NotNil(t, c.Scene().ItemAt(in.origin(), scene.KindInlet))

	mn.SetValid(false)
	assert.False(t, in.Visible())
	assert.Nil(t, c.Scene().ItemAt(in.origin(), scene.KindInlet))
	assert.False(t, vn.Valid())

	// Connection anchors fall back to the body edges while the headers
	// are hidden.
	bodyTop := vn.pos.Y + headerHeight
	assert.Equal(t, bodyTop, in.anchor().Y)
}

func TestShrinkingPinRowDropsItsConnections(t *testing.T) {
	c, m := newTestCanvas(t)
	src := m.Create(core.Point{X: 0, Y: 0}, "a", 0, 1)
	dst := m.Create(core.Point{X: 20, Y: 0}, "b", 2, 0)
	conn, ok := m.Connect(src, 0, dst, 1)
	require.True(t, ok)
	require.NotNil(t, c.Connection(conn))

	dst.SetInletCount(1)
	assert.Nil(t, c.Connection(conn))
	assert.Equal(t, 1, c.Node(dst).InletCount())
	assert.Empty(t, m.Connections())
}

func TestBackspaceDeletesSelection(t *testing.T) {
	c, m := newTestCanvas(t)
	src := m.Create(core.Point{X: 0, Y: 0}, "a", 0, 1)
	dst := m.Create(core.Point{X: 20, Y: 0}, "b", 1, 0)
	_, ok := m.Connect(src, 0, dst, 0)
	require.True(t, ok)

	// Rubber-band everything from an empty corner.
	c.MouseDown(core.Point{X: 50, Y: 30})
	c.MouseDrag(core.Point{X: 0, Y: 0})
	c.MouseUp(core.Point{X: 0, Y: 0})
	require.Len(t, c.SelectedNodes(), 2)
	require.Len(t, c.SelectedConnections(), 1)

	consumed := c.KeyPress(Key{Kind: KeyBackspace})
	assert.True(t, consumed)
	assert.Empty(t, m.Nodes())
	assert.Empty(t, m.Connections())
	assert.Equal(t, 0, c.Scene().Len())
}

func TestBackspaceWhileEditingEditsText(t *testing.T) {
	c, m := newTestCanvas(t)
	mn := m.Create(core.Point{X: 1, Y: 1}, "", 0, 0)
	typeText(c, "ab")
	c.KeyPress(Key{Kind: KeyBackspace})
	assert.Equal(t, "a", c.Node(mn).Text())
	assert.Len(t, m.Nodes(), 1, "backspace in edit mode never deletes nodes")
}

func TestTooltipShowsOnPinHover(t *testing.T) {
	c, m := newTestCanvas(t)
	c.SetHoverMode(HoverTooltips)
	mn := m.Create(core.Point{X: 0, Y: 2}, "osc~", 1, 0)
	mn.Inlet(0).SetType("signal")
	in := c.Node(mn).InletAt(0)

	require.False(t, in.tooltip.Visible())
	c.MouseMove(in.origin())
	assert.True(t, in.tooltip.Visible())

	c.MouseMove(core.Point{X: 50, Y: 30})
	assert.False(t, in.tooltip.Visible())
}

func TestHoverModeChangeClearsHover(t *testing.T) {
	c, m := newTestCanvas(t)
	c.SetHoverMode(HoverTooltips)
	mn := m.Create(core.Point{X: 0, Y: 2}, "osc~", 1, 0)
	mn.Inlet(0).SetType("signal")
	in := c.Node(mn).InletAt(0)
	c.MouseMove(in.origin())
	require.True(t, in.tooltip.Visible())

	c.SetHoverMode(HoverNone)
	assert.False(t, in.tooltip.Visible())
}

func TestVerticalWireHitsOnlyNearItsRun(t *testing.T) {
	c, m := newTestCanvas(t)
	src := m.Create(core.Point{X: 0, Y: 0}, "a", 0, 1)
	dst := m.Create(core.Point{X: 0, Y: 10}, "b", 1, 0)
	conn, ok := m.Connect(src, 0, dst, 0)
	require.True(t, ok)
	vc := c.Connection(conn)

	// The wire runs straight down one column between the stacked nodes.
	onWire := core.Point{X: 1, Y: 7}
	require.Same(t, vc, c.Scene().ItemAt(onWire, scene.KindConnection))

	farBelow := core.Point{X: 1, Y: 500}
	assert.Nil(t, c.Scene().ItemAt(farBelow, scene.KindConnection),
		"a point far outside the wire's run is not a hit")
	assert.Nil(t, c.Scene().ItemAt(core.Point{X: 5, Y: 7}, scene.KindConnection),
		"a point beside the wire is not a hit")

	c.MouseDown(farBelow)
	c.MouseUp(farBelow)
	assert.Empty(t, c.SelectedConnections(),
		"a press in the wire's column but outside its run must not select it")

	c.MouseDown(onWire)
	assert.Equal(t, []*Connection{vc}, c.SelectedConnections())
}

func TestRaiseKeepsWiresBelowOverlayBands(t *testing.T) {
	c, m := newTestCanvas(t)
	src := m.Create(core.Point{X: 0, Y: 0}, "a", 0, 1)
	dst := m.Create(core.Point{X: 0, Y: 10}, "b", 1, 0)
	dst.Inlet(0).SetType("signal")
	conn, ok := m.Connect(src, 0, dst, 0)
	require.True(t, ok)

	// Selecting the source node raises the node with its wires; the
	// hidden tooltip parked in the top band next to the dst inlet must
	// not pull the wire up there.
	c.MouseDown(core.Point{X: 3, Y: 2})
	c.MouseUp(core.Point{X: 3, Y: 2})
	assert.Less(t, c.Scene().Z(c.Connection(conn)), tooltipZ)
}

func TestSelectedConnectionPaintsHighlight(t *testing.T) {
	c, m := newTestCanvas(t)
	src := m.Create(core.Point{X: 0, Y: 0}, "a", 0, 1)
	dst := m.Create(core.Point{X: 20, Y: 0}, "b", 1, 0)
	conn, ok := m.Connect(src, 0, dst, 0)
	require.True(t, ok)
	c.selectOnlyConnection(c.Connection(conn))

	cv := canvas.New(40, 10)
	c.Paint(cv)
	got := cv.Get(core.Point{X: 11, Y: 4})
	assert.Equal(t, canvas.ColorGray, got.Style.Bg,
		"selected wire fills its span with a highlight")
}

func TestTooltipTruncatesLongTypeLabels(t *testing.T) {
	c, m := newTestCanvas(t)
	c.SetHoverMode(HoverTooltips)
	mn := m.Create(core.Point{X: 0, Y: 2}, "osc~", 1, 0)
	mn.Inlet(0).SetType(strings.Repeat("signal-", 6))
	in := c.Node(mn).InletAt(0)

	c.MouseMove(in.origin())
	require.True(t, in.tooltip.Visible())
	assert.LessOrEqual(t, in.tooltip.Bounds().Width(), tooltipMaxWidth)
}

func TestModelPosChangeSnapsToGrid(t *testing.T) {
	c, m := newTestCanvas(t)
	c.SetGridSize(4)
	mn := m.Create(core.Point{X: 0, Y: 0}, "osc~", 0, 0)

	mn.SetPos(core.Point{X: 9, Y: 6})
	assert.Equal(t, core.Point{X: 8, Y: 8}, c.Node(mn).Pos(),
		"externally set positions land grid-snapped")
}

func TestRemovingNodeRemovesItsConnections(t *testing.T) {
	c, m := newTestCanvas(t)
	src := m.Create(core.Point{X: 0, Y: 0}, "a", 0, 1)
	dst := m.Create(core.Point{X: 20, Y: 0}, "b", 1, 0)
	conn, ok := m.Connect(src, 0, dst, 0)
	require.True(t, ok)

	m.Remove(src)
	assert.Nil(t, c.Connection(conn))
	assert.NotNil(t, c.Node(dst))
	assert.Empty(t, c.Node(dst).InletAt(0).Connections())
}
