package terminal

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// scriptedBackend replays canned reads, then reports err
type scriptedBackend struct {
	mu     sync.Mutex
	chunks [][]byte
	err    error
}

func (b *scriptedBackend) Init() error                     { return nil }
func (b *scriptedBackend) Fini()                           {}
func (b *scriptedBackend) Size() (int, int)                { return 80, 24 }
func (b *scriptedBackend) Write([]byte) error              { return nil }
func (b *scriptedBackend) SetResizeHandler(func(int, int)) {}

func (b *scriptedBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) == 0 {
		return nil, b.err
	}
	c := b.chunks[0]
	b.chunks = b.chunks[1:]
	return c, nil
}

func collect(t *testing.T, r *inputReader, n int) []Event {
	t.Helper()
	out := make([]Event, 0, n)
	for len(out) < n {
		select {
		case ev := <-r.events():
			out = append(out, ev)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d events: %+v", len(out), n, out)
		}
	}
	return out
}

func TestParseCSIFocus(t *testing.T) {
	n, ev := parseEscape([]byte("\x1b[I"))
	if n != 3 || ev.Type != EventFocus || !ev.Focused {
		t.Errorf("focus in: got n=%d ev=%+v", n, ev)
	}

	n, ev = parseEscape([]byte("\x1b[O"))
	if n != 3 || ev.Type != EventFocus || ev.Focused {
		t.Errorf("focus out: got n=%d ev=%+v", n, ev)
	}
}

func TestParseCSIKeys(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		key  Key
		r    rune
		mod  Modifier
		kind KeyKind
	}{
		{"up", "\x1b[A", KeyUp, 0, ModNone, KeyPress},
		{"ctrl up", "\x1b[1;5A", KeyUp, 0, ModCtrl, KeyPress},
		{"page up", "\x1b[5~", KeyPageUp, 0, ModNone, KeyPress},
		{"f12 shift", "\x1b[24;2~", KeyF12, 0, ModShift, KeyPress},
		{"backtab", "\x1b[Z", KeyBacktab, 0, ModNone, KeyPress},
		{"kitty q press", "\x1b[113u", KeyRune, 'q', ModNone, KeyPress},
		{"kitty q repeat", "\x1b[113;1:2u", KeyRune, 'q', ModNone, KeyRepeat},
		{"kitty q release", "\x1b[113;1:3u", KeyRune, 'q', ModNone, KeyRelease},
		{"kitty shift a", "\x1b[97;2u", KeyRune, 'A', ModShift, KeyPress},
		{"kitty shift a alternate", "\x1b[97:65;2u", KeyRune, 'A', ModShift, KeyPress},
		{"kitty shift slash alternate", "\x1b[47:63;2u", KeyRune, '?', ModShift, KeyPress},
		{"kitty shift one alternate", "\x1b[49:33;2:3u", KeyRune, '!', ModShift, KeyRelease},
		{"kitty shift slash base layout", "\x1b[47:63:47;2u", KeyRune, '?', ModShift, KeyPress},
		{"kitty alternate without shift", "\x1b[47:63;1u", KeyRune, '/', ModNone, KeyPress},
		{"kitty ctrl c", "\x1b[99;5u", KeyCtrlC, 0, ModCtrl, KeyPress},
		{"kitty escape release", "\x1b[27;1:3u", KeyEscape, 0, ModNone, KeyRelease},
		{"kitty left shift", "\x1b[57441;2u", KeyOther, 0, ModShift, KeyPress},
		{"kitty arrow release", "\x1b[1;1:3A", KeyUp, 0, ModNone, KeyRelease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ev := parseEscape([]byte(tt.seq))
			if n != len(tt.seq) {
				t.Fatalf("consumed %d, want %d", n, len(tt.seq))
			}
			if ev.Type != EventKey || ev.Key != tt.key || ev.Rune != tt.r || ev.Modifiers != tt.mod || ev.Kind != tt.kind {
				t.Errorf("got %+v, want key=%v rune=%q mod=%v kind=%v", ev, tt.key, tt.r, tt.mod, tt.kind)
			}
		})
	}
}

func TestParseCSIIncomplete(t *testing.T) {
	for _, seq := range []string{"\x1b[", "\x1b[1;", "\x1b[113;1:"} {
		if n, _ := parseEscape([]byte(seq)); n != 0 {
			t.Errorf("%q: consumed %d, want 0 (incomplete)", seq, n)
		}
	}
}

func TestParseCSISwallowsUnknown(t *testing.T) {
	n, ev := parseEscape([]byte("\x1b[?62;22cX"))
	if n != 9 {
		t.Errorf("consumed %d, want 9", n)
	}
	if ev.Key != KeyNone {
		t.Errorf("expected swallowed reply, got %+v", ev)
	}
}

func TestParseParams(t *testing.T) {
	groups, ok := parseParams([]byte("113;1:3"))
	if !ok {
		t.Fatal("expected valid params")
	}
	if len(groups) != 2 || groups[0][0] != 113 || groups[1][0] != 1 || groups[1][1] != 3 {
		t.Errorf("got %v", groups)
	}

	if _, ok := parseParams([]byte("1;x")); ok {
		t.Error("expected invalid params")
	}
}

func TestParseControl(t *testing.T) {
	if ev := parseControl(0x03); ev.Key != KeyCtrlC {
		t.Errorf("0x03: got %v, want KeyCtrlC", ev.Key)
	}
	if ev := parseControl(0x0d); ev.Key != KeyEnter {
		t.Errorf("0x0d: got %v, want KeyEnter", ev.Key)
	}
	if ev := parseControl(0x1a); ev.Key != KeyCtrlZ {
		t.Errorf("0x1a: got %v, want KeyCtrlZ", ev.Key)
	}
}

func TestReadLoopSplitSequences(t *testing.T) {
	b := &scriptedBackend{
		chunks: [][]byte{
			[]byte("x\x1b[11"),
			[]byte("3;1:3u\xc3"),
			[]byte("\xa9\x1b[O"),
		},
		err: io.EOF,
	}
	r := newInputReader(b)
	r.start()
	defer r.stop()

	got := collect(t, r, 5)

	if got[0].Key != KeyRune || got[0].Rune != 'x' {
		t.Errorf("event 0: got %+v, want rune x", got[0])
	}
	if got[1].Rune != 'q' || got[1].Kind != KeyRelease {
		t.Errorf("event 1: got %+v, want q release", got[1])
	}
	if got[2].Rune != 'é' {
		t.Errorf("event 2: got %+v, want é", got[2])
	}
	if got[3].Type != EventFocus || got[3].Focused {
		t.Errorf("event 3: got %+v, want focus out", got[3])
	}
	if got[4].Type != EventClosed {
		t.Errorf("event 4: got %+v, want closed", got[4])
	}
}

func TestReadLoopReportsError(t *testing.T) {
	readErr := errors.New("read failed")
	r := newInputReader(&scriptedBackend{err: readErr})
	r.start()
	defer r.stop()

	got := collect(t, r, 1)
	if got[0].Type != EventError || !errors.Is(got[0].Err, readErr) {
		t.Errorf("got %+v, want EventError wrapping read error", got[0])
	}
}
