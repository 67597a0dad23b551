// Package terminal owns the interactive screen session: it decodes
// tcell input into canvas gestures and blits the painted cell canvas
// back to the terminal each frame.
package terminal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"patcher/canvas"
	"patcher/core"
	"patcher/dataflow"
)

// doubleClickWindow is how close two presses on the same cell must be
// to count as a double click.
const doubleClickWindow = 350 * time.Millisecond

// Session runs the interactive event loop for one dataflow canvas.
type Session struct {
	screen tcell.Screen
	canvas *dataflow.Canvas
	logger *slog.Logger

	// OnDump, when set, is invoked on Ctrl+D.
	OnDump func()

	buttonDown bool
	lastPos    core.Point
	lastPress  core.Point
	lastTime   time.Time
}

// NewSession initializes the terminal screen and enables mouse
// reporting. Call Run to enter the event loop and Close to restore the
// terminal.
func NewSession(c *dataflow.Canvas, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	return &Session{screen: screen, canvas: c, logger: logger}, nil
}

// Close restores the terminal.
func (s *Session) Close() {
	s.screen.Fini()
}

// Run processes events until the user quits with Ctrl+C.
func (s *Session) Run() error {
	s.logger.Info("session started")
	s.render()
	for {
		ev := s.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			s.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				s.logger.Info("session closed")
				return nil
			}
			if ev.Key() == tcell.KeyCtrlD {
				if s.OnDump != nil {
					s.OnDump()
				}
				continue
			}
			if k, ok := decodeKey(ev); ok {
				s.canvas.KeyPress(k)
			}
		case *tcell.EventMouse:
			s.handleMouse(ev)
		case *tcell.EventError:
			s.logger.Error("terminal event error", "err", ev.Error())
		}
		s.render()
	}
}

// handleMouse turns raw button state transitions into the canvas's
// press/drag/release/move gestures, synthesizing double clicks from two
// quick presses on the same cell.
func (s *Session) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	p := core.Point{X: x, Y: y}
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && !s.buttonDown:
		s.buttonDown = true
		now := time.Now()
		if p == s.lastPress && now.Sub(s.lastTime) <= doubleClickWindow {
			s.lastTime = time.Time{}
			s.canvas.DoubleClick(p)
		} else {
			s.lastPress = p
			s.lastTime = now
			s.canvas.MouseDown(p)
		}
	case pressed && s.buttonDown:
		if p != s.lastPos {
			s.canvas.MouseDrag(p)
		}
	case !pressed && s.buttonDown:
		s.buttonDown = false
		s.canvas.MouseUp(p)
	default:
		if p != s.lastPos {
			s.canvas.MouseMove(p)
		}
	}
	s.lastPos = p
}

// render paints the scene into a fresh cell canvas sized one row short
// of the screen, blits it, and draws the status line on the spare row.
func (s *Session) render() {
	w, h := s.screen.Size()
	if w <= 0 || h <= 1 {
		return
	}
	cv := canvas.New(w, h-1)
	s.canvas.Paint(cv)
	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			cell := cv.Get(core.Point{X: x, Y: y})
			ch := cell.Ch
			if ch == 0 {
				ch = ' '
			}
			s.screen.SetContent(x, y, ch, nil, toTcell(cell.Style))
		}
	}
	s.drawStatus(w, h-1)
	if p, ok := s.canvas.CursorPos(); ok {
		s.screen.ShowCursor(p.X, p.Y)
	} else {
		s.screen.HideCursor()
	}
	s.screen.Show()
}

func (s *Session) drawStatus(w, row int) {
	style := tcell.StyleDefault.Reverse(true)
	text := " double-click: new node   backspace: delete   ctrl+d: dump   ctrl+c: quit "
	if s.canvas.IsSomeNodeInEditMode() {
		text = " editing   enter: commit   esc: revert   up/down: completion "
	}
	for x := 0; x < w; x++ {
		ch := ' '
		if x < len(text) {
			ch = rune(text[x])
		}
		s.screen.SetContent(x, row, ch, nil, style)
	}
}

// decodeKey maps a tcell key event onto the canvas key vocabulary.
func decodeKey(ev *tcell.EventKey) (dataflow.Key, bool) {
	switch ev.Key() {
	case tcell.KeyRune:
		return dataflow.Key{Kind: dataflow.KeyRune, Rune: ev.Rune()}, true
	case tcell.KeyEnter:
		return dataflow.Key{Kind: dataflow.KeyEnter}, true
	case tcell.KeyEscape:
		return dataflow.Key{Kind: dataflow.KeyEscape}, true
	case tcell.KeyTab:
		return dataflow.Key{Kind: dataflow.KeyTab}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return dataflow.Key{Kind: dataflow.KeyBackspace}, true
	case tcell.KeyDelete:
		return dataflow.Key{Kind: dataflow.KeyDelete}, true
	case tcell.KeyUp:
		return dataflow.Key{Kind: dataflow.KeyUp}, true
	case tcell.KeyDown:
		return dataflow.Key{Kind: dataflow.KeyDown}, true
	case tcell.KeyLeft:
		return dataflow.Key{Kind: dataflow.KeyLeft}, true
	case tcell.KeyRight:
		return dataflow.Key{Kind: dataflow.KeyRight}, true
	case tcell.KeyHome:
		return dataflow.Key{Kind: dataflow.KeyHome}, true
	case tcell.KeyEnd:
		return dataflow.Key{Kind: dataflow.KeyEnd}, true
	}
	return dataflow.Key{}, false
}

// toTcell converts a canvas style to the terminal's.
func toTcell(st canvas.Style) tcell.Style {
	out := tcell.StyleDefault.
		Foreground(toTcellColor(st.Fg, tcell.ColorDefault)).
		Background(toTcellColor(st.Bg, tcell.ColorDefault))
	if st.Bold {
		out = out.Bold(true)
	}
	if st.Reverse {
		out = out.Reverse(true)
	}
	return out
}

func toTcellColor(c canvas.Color, fallback tcell.Color) tcell.Color {
	switch c {
	case canvas.ColorBlack:
		return tcell.ColorBlack
	case canvas.ColorWhite:
		return tcell.ColorWhite
	case canvas.ColorGray:
		return tcell.ColorGray
	case canvas.ColorBlue:
		return tcell.ColorBlue
	case canvas.ColorCyan:
		return tcell.ColorTeal
	case canvas.ColorRed:
		return tcell.ColorRed
	case canvas.ColorYellow:
		return tcell.ColorYellow
	}
	return fallback
}
