package terminal

import (
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// tcellTerm implements Terminal on a tcell screen. tcell never reports key
// releases, so every key event it produces is a KeyPress.
type tcellTerm struct {
	screen    tcell.Screen
	colorMode ColorMode

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// NewTcell creates a Terminal backed by github.com/gdamore/tcell/v2
func NewTcell(colorMode ColorMode) (Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newTcellWithScreen(screen, colorMode), nil
}

func newTcellWithScreen(screen tcell.Screen, colorMode ColorMode) *tcellTerm {
	return &tcellTerm{screen: screen, colorMode: colorMode}
}

func (t *tcellTerm) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableFocus()
	t.screen.HideCursor()
	t.screen.Clear()
	t.initialized = true
	return nil
}

func (t *tcellTerm) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}
	t.screen.DisableFocus()
	t.screen.Fini()
	t.finalized = true
}

func (t *tcellTerm) Size() (int, int) {
	return t.screen.Size()
}

func (t *tcellTerm) ColorMode() ColorMode {
	return t.colorMode
}

func (t *tcellTerm) Flush(cells []Cell, width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized || len(cells) < width*height {
		return
	}
	if w, h := t.screen.Size(); w != width || h != height {
		return
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := cells[y*width+x]
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			style := tcell.StyleDefault.Foreground(t.color(c.Fg)).Background(t.color(c.Bg))
			t.screen.SetContent(x, y, r, nil, style)
		}
	}
	t.screen.Show()
}

func (t *tcellTerm) color(c RGB) tcell.Color {
	if t.colorMode == ColorModeTrueColor {
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}
	return tcell.PaletteColor(int(RGBTo256(c)))
}

// PollEvent skips tcell events with no counterpart here (mouse, paste, clipboard)
func (t *tcellTerm) PollEvent() Event {
	for {
		raw := t.screen.PollEvent()
		if raw == nil {
			return Event{Type: EventClosed}
		}
		if ev, ok := convertTcellEvent(raw); ok {
			return ev
		}
	}
}

func (t *tcellTerm) PostEvent(ev Event) {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(ev))
}

func convertTcellEvent(raw tcell.Event) (Event, bool) {
	switch ev := raw.(type) {
	case *tcell.EventKey:
		return convertTcellKey(ev), true
	case *tcell.EventResize:
		w, h := ev.Size()
		return Event{Type: EventResize, Width: w, Height: h}, true
	case *tcell.EventFocus:
		return Event{Type: EventFocus, Focused: ev.Focused}, true
	case *tcell.EventError:
		return Event{Type: EventError, Err: ev}, true
	case *tcell.EventInterrupt:
		if posted, ok := ev.Data().(Event); ok {
			return posted, true
		}
	}
	return Event{}, false
}

var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBacktab:    KeyBacktab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyF1:         KeyF1,
	tcell.KeyF2:         KeyF2,
	tcell.KeyF3:         KeyF3,
	tcell.KeyF4:         KeyF4,
	tcell.KeyF5:         KeyF5,
	tcell.KeyF6:         KeyF6,
	tcell.KeyF7:         KeyF7,
	tcell.KeyF8:         KeyF8,
	tcell.KeyF9:         KeyF9,
	tcell.KeyF10:        KeyF10,
	tcell.KeyF11:        KeyF11,
	tcell.KeyF12:        KeyF12,
}

func convertTcellKey(ev *tcell.EventKey) Event {
	out := Event{Type: EventKey, Kind: KeyPress}

	mods := ev.Modifiers()
	if mods&tcell.ModShift != 0 {
		out.Modifiers |= ModShift
	}
	if mods&tcell.ModAlt != 0 {
		out.Modifiers |= ModAlt
	}
	if mods&tcell.ModCtrl != 0 {
		out.Modifiers |= ModCtrl
	}

	k := ev.Key()
	switch {
	case k == tcell.KeyRune:
		r := ev.Rune()
		if out.Modifiers&ModCtrl != 0 {
			r = unicode.ToLower(r)
		}
		if out.Modifiers&ModCtrl != 0 && r >= 'a' && r <= 'z' {
			out.Key = KeyCtrlA + Key(r-'a')
			return out
		}
		out.Key = KeyRune
		out.Rune = ev.Rune()
	case tcellKeys[k] != KeyNone:
		out.Key = tcellKeys[k]
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		out.Key = KeyCtrlA + Key(k-tcell.KeyCtrlA)
	case k == tcell.KeyCtrlSpace:
		out.Key = KeyCtrlSpace
	default:
		out.Key = KeyOther
	}
	return out
}
