package dataflow

// Completer supplies autocomplete candidates for a node label being
// edited. An empty result means no suggestions.
type Completer interface {
	Complete(text string) []string
}
