package dataflow

import (
	"patcher/canvas"
	"patcher/core"
	"patcher/scene"
)

// TextLabel is the editable text inside a node's body. It keeps a rune
// buffer with a cursor, a select-all flag so the first printable
// keystroke after entering edit mode replaces the whole text, and an
// optional completion overlay fed by the canvas's Completer.
type TextLabel struct {
	node   *Node
	buf    []rune
	cursor int

	editable    bool
	focused     bool
	selectedAll bool

	overlay *completionOverlay
}

func newTextLabel(n *Node, text string) *TextLabel {
	return &TextLabel{node: n, buf: []rune(text), cursor: len([]rune(text))}
}

// Text returns the buffer as a string.
func (l *TextLabel) Text() string { return string(l.buf) }

// Len returns the buffer length in runes.
func (l *TextLabel) Len() int { return len(l.buf) }

// setText replaces the buffer and parks the cursor at the end.
func (l *TextLabel) setText(text string) {
	l.buf = []rune(text)
	l.cursor = len(l.buf)
	l.selectedAll = false
}

// startEdit focuses the label with the whole text selected and asks the
// completion provider about the current text.
func (l *TextLabel) startEdit() {
	l.editable = true
	l.focused = true
	l.selectedAll = true
	l.cursor = len(l.buf)
	l.refreshCompletion()
}

// endEdit drops focus and selection. Completion is cleared separately so
// exitEditMode controls the ordering.
func (l *TextLabel) endEdit() {
	l.editable = false
	l.focused = false
	l.selectedAll = false
}

// refreshCompletion re-queries the provider for the current text. An
// empty candidate list removes the overlay; otherwise the overlay shows
// the fresh list with no highlighted row yet.
func (l *TextLabel) refreshCompletion() {
	provider := l.node.canvas.completion
	var candidates []string
	if provider != nil {
		candidates = provider.Complete(l.Text())
	}
	if len(candidates) == 0 {
		l.clearCompletion()
		return
	}
	if l.overlay == nil {
		l.overlay = &completionOverlay{label: l}
		s := l.node.canvas.scene
		s.Add(l.overlay)
		s.SetZ(l.overlay, overlayZ)
	}
	l.overlay.candidates = candidates
	l.overlay.index = -1
}

// clearCompletion removes the overlay from the scene, if present.
func (l *TextLabel) clearCompletion() {
	if l.overlay == nil {
		return
	}
	l.node.canvas.scene.Remove(l.overlay)
	l.overlay = nil
}

// handleKey processes one keystroke while the label is focused. Every
// key is consumed; editing owns the keyboard until it ends.
func (l *TextLabel) handleKey(k Key) bool {
	switch k.Kind {
	case KeyRune:
		if l.selectedAll {
			l.buf = l.buf[:0]
			l.cursor = 0
			l.selectedAll = false
		}
		l.buf = append(l.buf[:l.cursor], append([]rune{k.Rune}, l.buf[l.cursor:]...)...)
		l.cursor++
		l.refreshCompletion()
	case KeyBackspace:
		if l.selectedAll {
			l.setText("")
		} else if l.cursor > 0 {
			l.buf = append(l.buf[:l.cursor-1], l.buf[l.cursor:]...)
			l.cursor--
		}
		l.refreshCompletion()
	case KeyDelete:
		if l.selectedAll {
			l.setText("")
		} else if l.cursor < len(l.buf) {
			l.buf = append(l.buf[:l.cursor], l.buf[l.cursor+1:]...)
		}
		l.refreshCompletion()
	case KeyLeft:
		if l.selectedAll {
			l.selectedAll = false
			l.cursor = 0
		} else if l.cursor > 0 {
			l.cursor--
		}
	case KeyRight:
		if l.selectedAll {
			l.selectedAll = false
			l.cursor = len(l.buf)
		} else if l.cursor < len(l.buf) {
			l.cursor++
		}
	case KeyHome:
		l.selectedAll = false
		l.cursor = 0
	case KeyEnd:
		l.selectedAll = false
		l.cursor = len(l.buf)
	case KeyDown:
		if l.overlay != nil {
			l.overlay.cycle(1)
		}
	case KeyUp:
		if l.overlay != nil {
			l.overlay.cycle(-1)
		}
	case KeyEnter:
		if l.overlay != nil && l.overlay.index >= 0 {
			l.setText(l.overlay.candidates[l.overlay.index])
			l.refreshCompletion()
			return true
		}
		l.node.exitEditMode(false)
	case KeyEscape:
		if l.overlay != nil {
			l.clearCompletion()
			return true
		}
		l.node.exitEditMode(true)
	case KeyTab:
		// Swallowed so focus never leaves a half-edited label.
	}
	return true
}

// completionOverlay is the candidate list shown under an edited label.
// It sits in its own z band above nodes and wires so a long list stays
// readable over whatever the node overlaps.
type completionOverlay struct {
	label      *TextLabel
	candidates []string
	index      int
}

// cycle moves the highlight circularly. From the initial -1, stepping
// down lands on the first row and stepping up on the last.
func (o *completionOverlay) cycle(step int) {
	n := len(o.candidates)
	if n == 0 {
		return
	}
	if o.index < 0 {
		if step > 0 {
			o.index = 0
		} else {
			o.index = n - 1
		}
		return
	}
	o.index = ((o.index+step)%n + n) % n
}

// origin returns the overlay's top-left cell, directly under the body
// box of the owning node.
func (o *completionOverlay) origin() core.Point {
	n := o.label.node
	return core.Point{X: n.labelOrigin().X, Y: n.pos.Y + headerHeight + bodyHeight}
}

func (o *completionOverlay) width() int {
	w := 0
	for _, cand := range o.candidates {
		if cw := canvas.StringWidth(cand); cw > w {
			w = cw
		}
	}
	return w
}

// Kind implements scene.Item.
func (o *completionOverlay) Kind() scene.ItemKind { return scene.KindOverlay }

// Visible implements scene.Item.
func (o *completionOverlay) Visible() bool { return len(o.candidates) > 0 }

// Bounds implements scene.Item.
func (o *completionOverlay) Bounds() core.Rect {
	p := o.origin()
	return core.NewRect(p.X, p.Y, o.width(), len(o.candidates))
}

// Paint implements scene.Item.
func (o *completionOverlay) Paint(cv *canvas.Canvas) {
	p := o.origin()
	w := o.width()
	for i, cand := range o.candidates {
		style := canvas.Style{Fg: canvas.ColorBlack, Bg: canvas.ColorWhite}
		if i == o.index {
			style.Reverse = true
		}
		row := core.NewRect(p.X, p.Y+i, w, 1)
		cv.Fill(row, ' ', style)
		cv.DrawText(core.Point{X: p.X, Y: p.Y + i}, cand, style)
	}
}
