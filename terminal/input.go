package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// EventType distinguishes input event categories
type EventType uint8

const (
	EventKey EventType = iota
	EventResize
	EventFocus
	EventError  // Read error, Err is set
	EventClosed // Input closed
)

func (t EventType) String() string {
	switch t {
	case EventKey:
		return "key"
	case EventResize:
		return "resize"
	case EventFocus:
		return "focus"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// Event represents a terminal input event
type Event struct {
	Type      EventType
	Key       Key
	Rune      rune
	Modifiers Modifier
	Kind      KeyKind // For EventKey
	Focused   bool    // For EventFocus
	Width     int     // For EventResize
	Height    int     // For EventResize
	Err       error   // For EventError
}

// inputReader turns raw stdin bytes into events
type inputReader struct {
	backend Backend
	eventCh chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool

	// Stream assembly buffer; partial escape and UTF-8 sequences wait here for more bytes
	buf []byte
}

// maxCSILen bounds how long an unterminated CSI sequence may grow before it is discarded
const maxCSILen = 32

func newInputReader(backend Backend) *inputReader {
	return &inputReader{
		backend: backend,
		eventCh: make(chan Event, 256),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		buf:     make([]byte, 0, 256),
	}
}

func (r *inputReader) start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.readLoop()
}

// stop signals the reader to stop and waits briefly for it
func (r *inputReader) stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	select {
	case <-r.doneCh:
	case <-time.After(2 * pollIntervalMs * time.Millisecond):
	}
}

func (r *inputReader) events() <-chan Event {
	if r == nil {
		return nil
	}
	return r.eventCh
}

func (r *inputReader) readLoop() {
	defer close(r.doneCh)

	defer func() {
		if rec := recover(); rec != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mINPUT READER CRASHED: %v\x1b[0m\r\n", rec)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		data, err := r.backend.Read(r.stopCh)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.sendEvent(Event{Type: EventClosed})
			} else {
				r.sendEvent(Event{Type: EventError, Err: err})
			}
			return
		}

		if len(data) == 0 {
			// Poll timeout: a lone buffered ESC is the Escape key
			if len(r.buf) == 1 && r.buf[0] == 0x1b {
				r.sendEvent(Event{Type: EventKey, Key: KeyEscape})
				r.buf = r.buf[:0]
			}
			select {
			case <-r.stopCh:
				r.sendEvent(Event{Type: EventClosed})
				return
			default:
				continue
			}
		}

		r.buf = append(r.buf, data...)
		consumed := r.parseInput(r.buf)
		if consumed >= len(r.buf) {
			r.buf = r.buf[:0]
		} else if consumed > 0 {
			n := copy(r.buf, r.buf[consumed:])
			r.buf = r.buf[:n]
		}
	}
}

// parseInput emits every complete event in data and returns bytes consumed
func (r *inputReader) parseInput(data []byte) int {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		switch {
		case b >= 0x20 && b < 0x7f:
			r.sendEvent(Event{Type: EventKey, Key: KeyRune, Rune: rune(b)})
			i++

		case b == 0x1b:
			if i+1 >= n {
				return i
			}
			consumed, ev := parseEscape(data[i:])
			if consumed == 0 {
				return i
			}
			if ev.Type != EventKey || ev.Key != KeyNone {
				r.sendEvent(ev)
			}
			i += consumed

		case b < 0x20:
			r.sendEvent(parseControl(b))
			i++

		case b == 0x7f:
			r.sendEvent(Event{Type: EventKey, Key: KeyBackspace})
			i++

		default:
			if !utf8.FullRune(data[i:]) {
				return i
			}
			rn, size := utf8.DecodeRune(data[i:])
			if rn != utf8.RuneError {
				r.sendEvent(Event{Type: EventKey, Key: KeyRune, Rune: rn})
			}
			i += size
		}
	}
	return i
}

// parseEscape parses a sequence starting with ESC; returns 0 when incomplete
func parseEscape(data []byte) (int, Event) {
	if len(data) < 2 {
		return 0, Event{}
	}

	switch {
	case data[1] == 0x1b:
		return 2, Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}
	case data[1] == '[':
		return parseCSI(data)
	case data[1] == 'O':
		if len(data) < 3 {
			return 0, Event{}
		}
		if key, ok := ss3Keys[data[2]]; ok {
			return 3, Event{Type: EventKey, Key: key}
		}
		return 3, Event{Type: EventKey, Key: KeyNone}
	case data[1] < 0x20:
		ev := parseControl(data[1])
		ev.Modifiers |= ModAlt
		return 2, ev
	case data[1] < 0x7f:
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(data[1]), Modifiers: ModAlt}
	}
	return 1, Event{Type: EventKey, Key: KeyEscape}
}

// parseCSI parses "ESC [ params final". Unknown but well-formed sequences are
// consumed and returned as KeyNone so they never leak as text.
func parseCSI(data []byte) (int, Event) {
	end := 2
	for ; end < len(data); end++ {
		b := data[end]
		if b >= 0x40 && b <= 0x7e {
			break
		}
		if b < 0x20 || b > 0x3f {
			// Not a CSI body; drop the introducer
			return end, Event{Type: EventKey, Key: KeyNone}
		}
	}
	if end >= len(data) {
		if len(data) >= maxCSILen {
			return len(data), Event{Type: EventKey, Key: KeyNone}
		}
		return 0, Event{}
	}

	params := data[2:end]
	final := data[end]
	consumed := end + 1
	swallow := Event{Type: EventKey, Key: KeyNone}

	if len(params) == 0 {
		switch final {
		case 'I':
			return consumed, Event{Type: EventFocus, Focused: true}
		case 'O':
			return consumed, Event{Type: EventFocus, Focused: false}
		}
	}
	// Private-marker replies (mouse, device attributes, kitty flag queries)
	if len(params) > 0 && params[0] >= '<' && params[0] <= '?' {
		return consumed, swallow
	}

	groups, ok := parseParams(params)
	if !ok {
		return consumed, swallow
	}

	ev := Event{Type: EventKey}
	if len(groups) > 1 {
		ev.Modifiers = decodeModifiers(groups[1][0])
		if len(groups[1]) > 1 {
			ev.Kind = decodeKind(groups[1][1])
		}
	}

	switch final {
	case 'u':
		if len(groups) == 0 {
			return consumed, swallow
		}
		kittyKey(&ev, groups[0])
	case '~':
		if len(groups) == 0 {
			return consumed, swallow
		}
		ev.Key = csiTildeKeys[groups[0][0]]
	default:
		ev.Key = csiFinalKeys[final]
	}

	if ev.Key == KeyNone {
		return consumed, swallow
	}
	return consumed, ev
}

// parseParams splits "1;5:3" into [[1] [5 3]]; empty fields read as 0
func parseParams(params []byte) ([][]int, bool) {
	if len(params) == 0 {
		return nil, true
	}
	groups := [][]int{{0}}
	for _, b := range params {
		last := groups[len(groups)-1]
		switch {
		case b >= '0' && b <= '9':
			v := last[len(last)-1]*10 + int(b-'0')
			if v > 0x10ffff {
				return nil, false
			}
			last[len(last)-1] = v
		case b == ':':
			groups[len(groups)-1] = append(last, 0)
		case b == ';':
			groups = append(groups, []int{0})
		default:
			return nil, false
		}
	}
	return groups, true
}

// kittyKey resolves a kitty keyboard protocol key field "code[:shifted[:base]]"
// into ev
func kittyKey(ev *Event, codes []int) {
	code := codes[0]
	if k, ok := kittyFunctionalKeys[code]; ok {
		ev.Key = k
		if k == KeyTab && ev.Modifiers&ModShift != 0 {
			ev.Key = KeyBacktab
		}
		return
	}
	if code >= kittyPrivateUseStart {
		ev.Key = KeyOther
		return
	}
	if ev.Modifiers&ModCtrl != 0 {
		switch {
		case code >= 'a' && code <= 'z':
			ev.Key = KeyCtrlA + Key(code-'a')
			return
		case code == ' ':
			ev.Key = KeyCtrlSpace
			return
		}
	}
	if code < 0x20 || !utf8.ValidRune(rune(code)) {
		ev.Key = KeyOther
		return
	}
	ev.Key = KeyRune
	ev.Rune = rune(code)
	if ev.Modifiers&ModShift == 0 {
		return
	}
	// Terminals without alternate key reporting send only the base key
	if len(codes) > 1 && codes[1] >= 0x20 && utf8.ValidRune(rune(codes[1])) {
		ev.Rune = rune(codes[1])
	} else {
		ev.Rune = unicode.ToUpper(ev.Rune)
	}
}

// parseControl maps C0 control bytes to keys
func parseControl(b byte) Event {
	ev := Event{Type: EventKey}
	switch b {
	case 0x00:
		ev.Key = KeyCtrlSpace
	case 0x08:
		ev.Key = KeyBackspace
	case 0x09:
		ev.Key = KeyTab
	case 0x0a, 0x0d:
		ev.Key = KeyEnter
	case 0x1b:
		ev.Key = KeyEscape
	case 0x1c:
		ev.Key = KeyCtrlBackslash
	case 0x1d:
		ev.Key = KeyCtrlBracketRight
	case 0x1e:
		ev.Key = KeyCtrlCaret
	case 0x1f:
		ev.Key = KeyCtrlUnderscore
	default:
		ev.Key = KeyCtrlA + Key(b-0x01)
	}
	return ev
}

// sendEvent blocks until the event is queued or the reader is stopped
func (r *inputReader) sendEvent(ev Event) {
	select {
	case r.eventCh <- ev:
	case <-r.stopCh:
	}
}
