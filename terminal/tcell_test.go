package terminal

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestConvertTcellKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		key  Key
		r    rune
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), KeyRune, 'q'},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), KeyEnter, 0},
		{"ctrl c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), KeyCtrlC, 0},
		{"page down", tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), KeyPageDown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertTcellKey(tt.ev)
			if got.Type != EventKey || got.Key != tt.key || got.Rune != tt.r || got.Kind != KeyPress {
				t.Errorf("got %+v, want key=%v rune=%q press", got, tt.key, tt.r)
			}
		})
	}
}

func TestConvertTcellFocusAndResize(t *testing.T) {
	ev, ok := convertTcellEvent(&tcell.EventFocus{Focused: false})
	if !ok || ev.Type != EventFocus || ev.Focused {
		t.Errorf("focus lost: got %+v ok=%v", ev, ok)
	}

	ev, ok = convertTcellEvent(tcell.NewEventResize(120, 40))
	if !ok || ev.Type != EventResize || ev.Width != 120 || ev.Height != 40 {
		t.Errorf("resize: got %+v ok=%v", ev, ok)
	}

	posted := Event{Type: EventKey, Key: KeyRune, Rune: 'z'}
	ev, ok = convertTcellEvent(tcell.NewEventInterrupt(posted))
	if !ok || ev != posted {
		t.Errorf("interrupt: got %+v ok=%v", ev, ok)
	}
}

func TestTcellTerminalSimulation(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	term := newTcellWithScreen(screen, ColorModeTrueColor)
	if err := term.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer term.Fini()

	screen.SetSize(4, 2)
	w, h := term.Size()
	cells := make([]Cell, w*h)
	for i := range cells {
		cells[i] = Cell{Rune: '█', Fg: RGB{10, 20, 30}}
	}
	term.Flush(cells, w, h)

	r, _, style, _ := screen.GetContent(1, 1)
	if r != '█' {
		t.Errorf("cell (1,1) = %q, want block", r)
	}
	fg, _, _ := style.Decompose()
	if fg != tcell.NewRGBColor(10, 20, 30) {
		t.Errorf("cell fg = %v, want rgb(10,20,30)", fg)
	}

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	for {
		ev := term.PollEvent()
		if ev.Type == EventResize {
			continue
		}
		if ev.Type != EventKey || ev.Rune != 'q' {
			t.Fatalf("got %+v, want q key", ev)
		}
		break
	}
}

func TestConvertTcellError(t *testing.T) {
	ev, ok := convertTcellEvent(tcell.NewEventError(errors.New("tty gone")))
	if !ok || ev.Type != EventError || ev.Err == nil {
		t.Errorf("got %+v ok=%v", ev, ok)
	}
}
