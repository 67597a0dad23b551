// Command patcher is an interactive terminal editor for dataflow
// patches: boxes with typed inlets and outlets, wired together by
// dragging connections between pins.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"patcher/dataflow"
	"patcher/model"
	"patcher/terminal"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		gridSize int
		showGrid bool
		tooltips bool
		hover    bool
		logPath  string
	)
	cmd := &cobra.Command{
		Use:   "patcher",
		Short: "Interactive dataflow patch editor",
		Long: `patcher edits dataflow patches in the terminal: double-click to
create a box, type its class name, drag from an outlet to an inlet to
wire boxes together.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := newLogger(logPath)
			if err != nil {
				return err
			}
			defer closeLog()
			return run(logger, gridSize, showGrid, tooltips, hover)
		},
	}
	cmd.Flags().IntVar(&gridSize, "grid", 1, "snap grid size in cells (1 disables snapping)")
	cmd.Flags().BoolVar(&showGrid, "show-grid", false, "draw grid dots")
	cmd.Flags().BoolVar(&tooltips, "tooltips", false, "show pin type tooltips on hover")
	cmd.Flags().BoolVar(&hover, "hover", false, "highlight hovered nodes and wires")
	cmd.Flags().StringVar(&logPath, "log", "", "append logs to this file instead of stderr")
	return cmd
}

func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }, nil
}

func run(logger *slog.Logger, gridSize int, showGrid, tooltips, hover bool) error {
	m := model.New()
	m.CanConnect = typesCompatible
	m.CanAccept = typesCompatible

	c := dataflow.NewCanvas(logger)
	c.SetGridSize(gridSize)
	c.SetShowGrid(showGrid)
	switch {
	case tooltips:
		c.SetHoverMode(dataflow.HoverTooltips)
	case hover:
		c.SetHoverMode(dataflow.HoverFeedback)
	}
	c.SetCompletion(newWordListCompleter(classNames()))
	c.SetModel(m)
	// The canvas subscribes first so its view node exists before the
	// classifier starts reshaping a freshly added node's pins.
	m.Subscribe(classifier())

	s, err := terminal.NewSession(c, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	s.OnDump = func() { dumpModel(logger, m) }
	return s.Run()
}

// class describes a known box class: its pin layout and the type label
// carried by each pin.
type class struct {
	inletTypes  []string
	outletTypes []string
}

// classes is the built-in box vocabulary.
var classes = map[string]class{
	"osc~":    {inletTypes: []string{"signal", "float"}, outletTypes: []string{"signal"}},
	"phasor~": {inletTypes: []string{"signal", "float"}, outletTypes: []string{"signal"}},
	"dac~":    {inletTypes: []string{"signal", "signal"}},
	"adc~":    {outletTypes: []string{"signal", "signal"}},
	"*~":      {inletTypes: []string{"signal", "signal"}, outletTypes: []string{"signal"}},
	"+~":      {inletTypes: []string{"signal", "signal"}, outletTypes: []string{"signal"}},
	"metro":   {inletTypes: []string{"any", "float"}, outletTypes: []string{"bang"}},
	"delay":   {inletTypes: []string{"any", "float"}, outletTypes: []string{"bang"}},
	"print":   {inletTypes: []string{"any"}},
	"+":       {inletTypes: []string{"any", "float"}, outletTypes: []string{"float"}},
	"*":       {inletTypes: []string{"any", "float"}, outletTypes: []string{"float"}},
}

func classNames() []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// classifier assigns pin layout and validity whenever a node's text is
// committed: the first word of the text selects the class. Unknown
// classes mark the node invalid and strip its pins.
func classifier() model.Listener {
	return func(ev model.Event) {
		switch ev.Kind {
		case model.NodeAdded, model.NodeTextChanged:
		default:
			return
		}
		n := ev.Node
		name, _, _ := strings.Cut(strings.TrimSpace(n.Text()), " ")
		cl, ok := classes[name]
		if !ok {
			n.SetInletCount(0)
			n.SetOutletCount(0)
			n.SetValid(false)
			return
		}
		n.SetInletCount(len(cl.inletTypes))
		n.SetOutletCount(len(cl.outletTypes))
		for i, typ := range cl.inletTypes {
			n.Inlet(i).SetType(typ)
		}
		for i, typ := range cl.outletTypes {
			n.Outlet(i).SetType(typ)
		}
		n.SetValid(true)
	}
}

// typesCompatible is the pin compatibility rule: "any" inlets take
// everything, untyped pins connect freely, and typed pins must match.
func typesCompatible(src *model.Outlet, dst *model.Inlet) bool {
	st, dt := src.Type(), dst.Type()
	if st == "" || dt == "" || dt == "any" {
		return true
	}
	return st == dt
}

// dumpModel logs every node and connection, for inspecting a patch
// without leaving the session.
func dumpModel(logger *slog.Logger, m *model.Model) {
	for _, n := range m.Nodes() {
		logger.Info("node",
			"id", n.ID(),
			"text", n.Text(),
			"pos", fmt.Sprintf("%d,%d", n.Pos().X, n.Pos().Y),
			"inlets", n.InletCount(),
			"outlets", n.OutletCount(),
			"valid", n.Valid(),
		)
	}
	for _, conn := range m.Connections() {
		logger.Info("connection",
			"id", conn.ID(),
			"src", fmt.Sprintf("%d:%d", conn.Source().Node().ID(), conn.Source().Index()),
			"dst", fmt.Sprintf("%d:%d", conn.Dest().Node().ID(), conn.Dest().Index()),
		)
	}
}

// wordListCompleter offers prefix matches over a fixed sorted word
// list. Empty input gets no candidates so a fresh box starts without an
// overlay in the way.
type wordListCompleter struct {
	words []string
}

func newWordListCompleter(words []string) *wordListCompleter {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Strings(sorted)
	return &wordListCompleter{words: sorted}
}

// Complete implements dataflow.Completer.
func (w *wordListCompleter) Complete(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, word := range w.words {
		if strings.HasPrefix(word, text) && word != text {
			out = append(out, word)
		}
	}
	return out
}
