package canvas

import (
	"github.com/mattn/go-runewidth"
)

// StringWidth returns the display width of a string in terminal cells,
// accounting for wide (CJK, emoji) runes.
func StringWidth(text string) int {
	return runewidth.StringWidth(text)
}

// RuneWidth returns the display width of a single rune.
func RuneWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		// Combining marks still occupy the cell they merge into.
		return 1
	}
	return w
}

// Truncate shortens a string to fit maxWidth cells, appending an ellipsis
// when anything was cut.
func Truncate(text string, maxWidth int) string {
	if StringWidth(text) <= maxWidth {
		return text
	}
	return runewidth.Truncate(text, maxWidth, "…")
}
