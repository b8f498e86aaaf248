package input

import "sync/atomic"

// ControlState holds the two flags shared by producers and the dispatcher.
// Each flag has a single writer (the terminal listener); both are read by
// every producer. The flags are independent cells so neither write contends
// with the other.
type ControlState struct {
	quitting atomic.Bool
	focused  atomic.Bool
}

// NewControlState returns state initialized to not quitting, focused
func NewControlState() *ControlState {
	s := &ControlState{}
	s.focused.Store(true)
	return s
}

// Quitting reports whether the quit key has been seen
func (s *ControlState) Quitting() bool {
	return s.quitting.Load()
}

// MarkQuitting sets quitting. It returns true only for the call that made the
// false to true transition; the flag is never reset.
func (s *ControlState) MarkQuitting() bool {
	return s.quitting.CompareAndSwap(false, true)
}

// Focused reports whether the terminal window is the active input target
func (s *ControlState) Focused() bool {
	return s.focused.Load()
}

// SetFocused records a focus change
func (s *ControlState) SetFocused(focused bool) {
	s.focused.Store(focused)
}
