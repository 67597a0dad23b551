package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patcher/core"
)

// recorder collects event kinds in delivery order.
type recorder struct {
	kinds []EventKind
}

func (r *recorder) listen(ev Event) {
	r.kinds = append(r.kinds, ev.Kind)
}

func TestCreateFiresNodeAdded(t *testing.T) {
	m := New()
	rec := &recorder{}
	m.Subscribe(rec.listen)

	n := m.Create(core.Point{X: 3, Y: 4}, "osc~", 2, 1)
	require.NotNil(t, n)
	assert.Equal(t, core.Point{X: 3, Y: 4}, n.Pos())
	assert.Equal(t, "osc~", n.Text())
	assert.True(t, n.Valid())
	assert.Equal(t, 2, n.InletCount())
	assert.Equal(t, 1, n.OutletCount())
	assert.Equal(t, []EventKind{NodeAdded}, rec.kinds)
}

func TestRemoveDropsIncidentConnectionsFirst(t *testing.T) {
	m := New()
	a := m.Create(core.Point{}, "a", 0, 1)
	b := m.Create(core.Point{X: 10}, "b", 1, 1)
	c := m.Create(core.Point{X: 20}, "c", 1, 0)
	_, ok := m.Connect(a, 0, b, 0)
	require.True(t, ok)
	_, ok = m.Connect(b, 0, c, 0)
	require.True(t, ok)

	rec := &recorder{}
	m.Subscribe(rec.listen)
	m.Remove(b)

	assert.Equal(t, []EventKind{ConnectionRemoved, ConnectionRemoved, NodeRemoved}, rec.kinds)
	assert.Len(t, m.Connections(), 0)
	assert.Len(t, m.Nodes(), 2)
}

func TestConnectValidation(t *testing.T) {
	m := New()
	a := m.Create(core.Point{}, "a", 0, 1)
	b := m.Create(core.Point{X: 10}, "b", 1, 0)

	_, ok := m.Connect(a, 1, b, 0)
	assert.False(t, ok, "out-of-range outlet index")
	_, ok = m.Connect(a, 0, b, 2)
	assert.False(t, ok, "out-of-range inlet index")
	_, ok = m.Connect(nil, 0, b, 0)
	assert.False(t, ok, "nil source node")

	conn, ok := m.Connect(a, 0, b, 0)
	require.True(t, ok)
	require.NotNil(t, conn)
	assert.Same(t, a, conn.Source().Node())
	assert.Same(t, b, conn.Dest().Node())

	_, ok = m.Connect(a, 0, b, 0)
	assert.False(t, ok, "duplicate connection")
}

func TestConnectConsultsBothPredicates(t *testing.T) {
	m := New()
	a := m.Create(core.Point{}, "a", 0, 1)
	b := m.Create(core.Point{X: 10}, "b", 1, 0)
	a.Outlet(0).SetType("signal")
	b.Inlet(0).SetType("bang")

	match := func(src *Outlet, dst *Inlet) bool {
		return src.Type() == dst.Type()
	}

	m.CanConnect = match
	_, ok := m.Connect(a, 0, b, 0)
	assert.False(t, ok, "outlet-side predicate rejects")

	m.CanConnect = nil
	m.CanAccept = match
	_, ok = m.Connect(a, 0, b, 0)
	assert.False(t, ok, "inlet-side predicate rejects")

	b.Inlet(0).SetType("signal")
	m.CanConnect = match
	_, ok = m.Connect(a, 0, b, 0)
	assert.True(t, ok, "both predicates agree")
}

func TestDisconnectByExactSignature(t *testing.T) {
	m := New()
	a := m.Create(core.Point{}, "a", 0, 2)
	b := m.Create(core.Point{X: 10}, "b", 2, 0)
	_, ok := m.Connect(a, 0, b, 1)
	require.True(t, ok)

	assert.False(t, m.Disconnect(a, 0, b, 0), "different inlet index")
	assert.False(t, m.Disconnect(a, 1, b, 1), "different outlet index")
	assert.True(t, m.Disconnect(a, 0, b, 1))
	assert.False(t, m.Disconnect(a, 0, b, 1), "already removed")
	assert.Len(t, m.Connections(), 0)
}

func TestSettersFireOnlyOnChange(t *testing.T) {
	m := New()
	n := m.Create(core.Point{}, "a", 1, 1)
	rec := &recorder{}
	m.Subscribe(rec.listen)

	n.SetText("a")
	n.SetPos(core.Point{})
	n.SetValid(true)
	n.SetInletCount(1)
	n.SetOutletCount(1)
	assert.Empty(t, rec.kinds, "same-value sets are silent")

	n.SetText("b")
	n.SetPos(core.Point{X: 5})
	n.SetValid(false)
	n.SetInletCount(2)
	n.SetOutletCount(0)
	assert.Equal(t, []EventKind{
		NodeTextChanged, NodePosChanged, NodeValidChanged,
		InletCountChanged, OutletCountChanged,
	}, rec.kinds)
}

func TestShrinkingPinCountRemovesConnectionsFirst(t *testing.T) {
	m := New()
	a := m.Create(core.Point{}, "a", 0, 2)
	b := m.Create(core.Point{X: 10}, "b", 2, 0)
	_, ok := m.Connect(a, 1, b, 0)
	require.True(t, ok)
	_, ok = m.Connect(a, 0, b, 1)
	require.True(t, ok)

	var kinds []EventKind
	var countAtRemoval int
	m.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == ConnectionRemoved {
			countAtRemoval = ev.Conn.Source().Node().OutletCount()
		}
	})

	// Dropping outlet 1 must remove its connection before the count
	// event announces the smaller pin row.
	a.SetOutletCount(1)
	assert.Equal(t, []EventKind{ConnectionRemoved, OutletCountChanged}, kinds)
	assert.Equal(t, 2, countAtRemoval, "pins still present while their connections go")
	assert.Len(t, m.Connections(), 1, "connection on a surviving pin stays")
}

func TestEventsAreSynchronous(t *testing.T) {
	m := New()
	var sawNodes int
	m.Subscribe(func(ev Event) {
		if ev.Kind == NodeAdded {
			sawNodes = len(m.Nodes())
		}
	})
	m.Create(core.Point{}, "a", 0, 0)
	assert.Equal(t, 1, sawNodes, "listener observes the committed mutation")
}
