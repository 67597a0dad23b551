package dataflow

import (
	"io"
	"log/slog"
	"testing"

	"patcher/core"
	"patcher/model"
)

func newEditingLabel(t *testing.T, text string) (*Canvas, *TextLabel) {
	t.Helper()
	c := NewCanvas(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := model.New()
	c.SetModel(m)
	mn := m.Create(core.Point{X: 1, Y: 1}, text, 0, 0)
	vn := c.Node(mn)
	if !vn.isInEditMode() {
		vn.enterEditMode()
	}
	return c, vn.label
}

func TestLabelCursorEditing(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		keys    []Key
		want    string
		cursor  int
	}{
		{
			name:    "first rune replaces selected text",
			initial: "osc~",
			keys:    []Key{{Kind: KeyRune, Rune: 'x'}},
			want:    "x",
			cursor:  1,
		},
		{
			name:    "home then insert",
			initial: "sc~",
			keys:    []Key{{Kind: KeyHome}, {Kind: KeyRune, Rune: 'o'}},
			want:    "osc~",
			cursor:  1,
		},
		{
			name:    "left moves before selection start",
			initial: "ab",
			keys:    []Key{{Kind: KeyLeft}, {Kind: KeyRune, Rune: 'x'}},
			want:    "xab",
			cursor:  1,
		},
		{
			name:    "backspace collapses selection",
			initial: "metro",
			keys:    []Key{{Kind: KeyBackspace}},
			want:    "",
			cursor:  0,
		},
		{
			name:    "delete at cursor",
			initial: "abc",
			keys:    []Key{{Kind: KeyHome}, {Kind: KeyDelete}},
			want:    "bc",
			cursor:  0,
		},
		{
			name:    "delete at end is a no-op",
			initial: "abc",
			keys:    []Key{{Kind: KeyEnd}, {Kind: KeyDelete}},
			want:    "abc",
			cursor:  3,
		},
		{
			name:    "right clamps at end",
			initial: "ab",
			keys:    []Key{{Kind: KeyEnd}, {Kind: KeyRight}, {Kind: KeyRune, Rune: 'c'}},
			want:    "abc",
			cursor:  3,
		},
		{
			name:    "tab is swallowed",
			initial: "osc~",
			keys:    []Key{{Kind: KeyTab}},
			want:    "osc~",
			cursor:  4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, l := newEditingLabel(t, tt.initial)
			for _, k := range tt.keys {
				if !l.handleKey(k) {
					t.Fatalf("handleKey(%v) not consumed", k)
				}
			}
			if got := l.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if l.cursor != tt.cursor {
				t.Errorf("cursor = %d, want %d", l.cursor, tt.cursor)
			}
		})
	}
}

func TestCursorPosFollowsEdits(t *testing.T) {
	c, l := newEditingLabel(t, "")
	if _, ok := c.CursorPos(); !ok {
		t.Fatal("no cursor while editing")
	}
	l.handleKey(Key{Kind: KeyRune, Rune: 'a'})
	l.handleKey(Key{Kind: KeyRune, Rune: 'b'})
	p, ok := c.CursorPos()
	if !ok {
		t.Fatal("no cursor while editing")
	}
	origin := c.EditingNode().labelOrigin()
	if p.X != origin.X+2 || p.Y != origin.Y {
		t.Errorf("cursor at %v, want %v shifted by 2", p, origin)
	}

	l.node.exitEditMode(false)
	if _, ok := c.CursorPos(); ok {
		t.Error("cursor still reported after edit mode ended")
	}
}
