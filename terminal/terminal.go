package terminal

import (
	"io"
	"os"
	"sync"
)

// Cell represents a single terminal cell
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
}

// Terminal provides low-level terminal access
type Terminal interface {
	// Init enters raw mode and the alternate screen, hides the cursor and
	// enables focus reporting
	Init() error

	// Fini restores terminal state. Safe to call multiple times
	Fini()

	// Size returns current terminal dimensions
	Size() (width, height int)

	// ColorMode returns the color capability output is encoded for
	ColorMode() ColorMode

	// Flush writes a row-major cell buffer (cells[y*width+x]) to the terminal
	Flush(cells []Cell, width, height int)

	// PollEvent blocks until the next input event. Loss of input is reported
	// as an EventClosed or EventError event; after Fini it returns EventClosed.
	PollEvent() Event

	// PostEvent injects a synthetic event
	PostEvent(Event)
}

// Options tune the native terminal
type Options struct {
	ColorMode ColorMode
	// KittyKeyboard asks the terminal to report key release and repeat
	KittyKeyboard bool
}

// termImpl implements Terminal on a Backend with ANSI sequences
type termImpl struct {
	backend Backend
	opts    Options

	output      *outputBuffer
	input       *inputReader
	resizeCh    chan Event
	syntheticCh chan Event
	closedCh    chan struct{}

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// New creates the native ANSI terminal
func New(opts Options) Terminal {
	return newWithBackend(newBackend(), opts)
}

func newWithBackend(b Backend, opts Options) *termImpl {
	return &termImpl{
		backend:     b,
		opts:        opts,
		output:      newOutputBuffer(backendWriter{b}, opts.ColorMode),
		resizeCh:    make(chan Event, 1),
		syntheticCh: make(chan Event, 16),
		closedCh:    make(chan struct{}),
	}
}

// backendWriter adapts Backend.Write to io.Writer for the output buffer
type backendWriter struct{ b Backend }

func (w backendWriter) Write(p []byte) (int, error) {
	if err := w.b.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (t *termImpl) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	if err := t.backend.Init(); err != nil {
		return err
	}

	w, h := t.backend.Size()
	t.output.resize(w, h)

	t.input = newInputReader(t.backend)

	t.backend.SetResizeHandler(func(w, h int) {
		ev := Event{Type: EventResize, Width: w, Height: h}
		// Keep only the latest size pending
		select {
		case t.resizeCh <- ev:
		default:
			select {
			case <-t.resizeCh:
			default:
			}
			select {
			case t.resizeCh <- ev:
			default:
			}
		}
	})

	t.writeRaw(csiAltScreenEnter)
	t.writeRaw(csiCursorHide)
	t.writeRaw(csiAutoWrapOff)
	t.writeRaw(csiFocusOn)
	if t.opts.KittyKeyboard {
		t.writeRaw(csiKittyPush)
	}
	t.output.clear()

	t.input.start()

	t.initialized = true
	return nil
}

func (t *termImpl) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	if t.input != nil {
		t.input.stop()
	}

	if t.opts.KittyKeyboard {
		t.writeRaw(csiKittyPop)
	}
	t.writeRaw(csiFocusOff)
	t.writeRaw(csiCursorShow)
	t.writeRaw(csiAltScreenExit)
	// Re-enable wrap after leaving the alternate screen so the main buffer keeps it
	t.writeRaw(csiAutoWrapOn)
	t.writeRaw(csiSGR0)

	t.backend.Fini()

	t.finalized = true
	close(t.closedCh)
}

func (t *termImpl) Size() (int, int) {
	return t.backend.Size()
}

func (t *termImpl) ColorMode() ColorMode {
	return t.output.colorMode
}

// Flush drops frames whose size no longer matches the terminal; the pending
// resize event will trigger a redraw at the new size
func (t *termImpl) Flush(cells []Cell, width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	currW, currH := t.backend.Size()
	if currW != width || currH != height {
		return
	}

	t.output.flush(cells, width, height)
}

func (t *termImpl) PollEvent() Event {
	select {
	case ev := <-t.syntheticCh:
		return ev
	default:
	}

	select {
	case ev := <-t.syntheticCh:
		return ev
	case ev := <-t.input.events():
		return ev
	case ev := <-t.resizeCh:
		return ev
	case <-t.closedCh:
		return Event{Type: EventClosed}
	}
}

// PostEvent drops the event when the synthetic queue is full
func (t *termImpl) PostEvent(ev Event) {
	select {
	case t.syntheticCh <- ev:
	default:
	}
}

func (t *termImpl) writeRaw(data []byte) {
	t.backend.Write(data)
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiKittyPop)
	w.Write(csiFocusOff)
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiSGR0)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
