// Package termtest provides an in-memory terminal.Terminal for tests
package termtest

import (
	"sync"

	"github.com/lixenwraith/color-wall/terminal"
)

// Frame is one Flush call
type Frame struct {
	Cells  []terminal.Cell
	Width  int
	Height int
}

// Fake replays queued events and records flushed frames. PollEvent blocks
// until an event is pushed or Fini is called.
type Fake struct {
	Width, Height int
	Mode          terminal.ColorMode

	events chan terminal.Event
	done   chan struct{}

	mu       sync.Mutex
	frames   []Frame
	inits    int
	finis    int
	finiOnce sync.Once
	onFlush  func(Frame)
}

// New returns a width x height fake with room for queued events
func New(width, height int) *Fake {
	return &Fake{
		Width:  width,
		Height: height,
		Mode:   terminal.ColorModeTrueColor,
		events: make(chan terminal.Event, 64),
		done:   make(chan struct{}),
	}
}

func (f *Fake) Init() error {
	f.mu.Lock()
	f.inits++
	f.mu.Unlock()
	return nil
}

func (f *Fake) Fini() {
	f.mu.Lock()
	f.finis++
	f.mu.Unlock()
	f.finiOnce.Do(func() { close(f.done) })
}

func (f *Fake) Size() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Width, f.Height
}

// Resize changes the reported size; it does not queue a resize event
func (f *Fake) Resize(width, height int) {
	f.mu.Lock()
	f.Width, f.Height = width, height
	f.mu.Unlock()
}

func (f *Fake) ColorMode() terminal.ColorMode {
	return f.Mode
}

func (f *Fake) Flush(cells []terminal.Cell, width, height int) {
	frame := Frame{Cells: append([]terminal.Cell(nil), cells...), Width: width, Height: height}
	f.mu.Lock()
	f.frames = append(f.frames, frame)
	hook := f.onFlush
	f.mu.Unlock()
	if hook != nil {
		hook(frame)
	}
}

// OnFlush registers a callback run after every Flush
func (f *Fake) OnFlush(fn func(Frame)) {
	f.mu.Lock()
	f.onFlush = fn
	f.mu.Unlock()
}

func (f *Fake) PollEvent() terminal.Event {
	select {
	case ev := <-f.events:
		return ev
	case <-f.done:
		return terminal.Event{Type: terminal.EventClosed}
	}
}

// PostEvent queues ev for PollEvent
func (f *Fake) PostEvent(ev terminal.Event) {
	select {
	case f.events <- ev:
	case <-f.done:
	}
}

// Frames returns a copy of every flushed frame
func (f *Fake) Frames() []Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Frame(nil), f.frames...)
}

// Finis reports how many times Fini was called
func (f *Fake) Finis() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finis
}
