package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patcher/core"
	"patcher/model"
)

func TestWordListCompleter(t *testing.T) {
	w := newWordListCompleter([]string{"print", "osc~", "phasor~", "+"})

	assert.Nil(t, w.Complete(""), "empty input gets no candidates")
	assert.Equal(t, []string{"osc~"}, w.Complete("o"))
	assert.Equal(t, []string{"phasor~", "print"}, w.Complete("p"), "candidates come out sorted")
	assert.Nil(t, w.Complete("print"), "exact match is not offered again")
	assert.Nil(t, w.Complete("zzz"))
}

func TestClassifierShapesNodeOnCommit(t *testing.T) {
	m := model.New()
	m.Subscribe(classifier())

	n := m.Create(core.Point{}, "", 0, 0)
	assert.False(t, n.Valid(), "empty text is not a known class")

	n.SetText("osc~ 440")
	require.True(t, n.Valid())
	assert.Equal(t, 2, n.InletCount())
	assert.Equal(t, 1, n.OutletCount())
	assert.Equal(t, "signal", n.Inlet(0).Type())
	assert.Equal(t, "float", n.Inlet(1).Type())
	assert.Equal(t, "signal", n.Outlet(0).Type())

	n.SetText("garbage")
	assert.False(t, n.Valid())
	assert.Equal(t, 0, n.InletCount())
	assert.Equal(t, 0, n.OutletCount())
}

func TestClassifierDropsConnectionsOfRetypedNode(t *testing.T) {
	m := model.New()
	m.Subscribe(classifier())

	osc := m.Create(core.Point{}, "x", 0, 0)
	osc.SetText("osc~")
	dac := m.Create(core.Point{X: 20}, "x", 0, 0)
	dac.SetText("dac~")
	_, ok := m.Connect(osc, 0, dac, 0)
	require.True(t, ok)

	osc.SetText("print")
	assert.Empty(t, m.Connections(), "losing the outlet drops its connection")
}

func TestTypesCompatible(t *testing.T) {
	m := model.New()
	a := m.Create(core.Point{}, "a", 0, 1)
	b := m.Create(core.Point{X: 10}, "b", 1, 0)
	src, dst := a.Outlet(0), b.Inlet(0)

	tests := []struct {
		name    string
		srcType string
		dstType string
		want    bool
	}{
		{"both untyped", "", "", true},
		{"any inlet takes signal", "signal", "any", true},
		{"matching types", "signal", "signal", true},
		{"mismatched types", "signal", "bang", false},
		{"untyped outlet", "", "bang", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src.SetType(tt.srcType)
			dst.SetType(tt.dstType)
			if got := typesCompatible(src, dst); got != tt.want {
				t.Errorf("typesCompatible(%q, %q) = %v, want %v", tt.srcType, tt.dstType, got, tt.want)
			}
		})
	}
}
