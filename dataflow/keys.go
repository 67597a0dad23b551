package dataflow

// KeyKind identifies a decoded keyboard input.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
)

// Key is a keyboard input already decoded from the terminal layer.
// Rune is only meaningful for KeyRune.
type Key struct {
	Kind KeyKind
	Rune rune
}
