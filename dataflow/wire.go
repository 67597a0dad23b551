package dataflow

import (
	"patcher/canvas"
	"patcher/core"
	"patcher/scene"
)

// WireStyle is the live feedback shown while dragging a wire from an
// outlet: neutral over empty space, valid or invalid over an inlet.
type WireStyle int

const (
	WireNeutral WireStyle = iota
	WireValid
	WireInvalid
)

// TempWire is the transient line drawn during a wire-drag gesture. It
// exists only between MouseDown on an outlet and the matching MouseUp.
type TempWire struct {
	from  core.Point
	to    core.Point
	style WireStyle
}

// Kind implements scene.Item.
func (w *TempWire) Kind() scene.ItemKind { return scene.KindTempWire }

// Visible implements scene.Item.
func (w *TempWire) Visible() bool { return true }

// Bounds implements scene.Item.
func (w *TempWire) Bounds() core.Rect {
	return core.RectFromPoints(w.from, w.to)
}

// Paint implements scene.Item.
func (w *TempWire) Paint(cv *canvas.Canvas) {
	style := canvas.Style{}
	dashed := false
	switch w.style {
	case WireValid:
		style.Fg = canvas.ColorCyan
	case WireInvalid:
		style.Fg = canvas.ColorRed
		dashed = true
	}
	cv.DrawLine(w.from, w.to, style, dashed)
}
