package input

import (
	"pkt.systems/pslog"

	"github.com/lixenwraith/color-wall/terminal"
)

// EventSource yields terminal events; terminal.Terminal satisfies it.
// Loss of the stream is reported as EventClosed or EventError.
type EventSource interface {
	PollEvent() terminal.Event
}

// TerminalListener turns the terminal's own event stream into actions and
// owns both ControlState flags
type TerminalListener struct {
	source EventSource
	state  *ControlState
	sender *Sender
	log    pslog.Logger

	// GlobalCapture hands render triggering to the device listener: terminal
	// keys then only quit, and only while the terminal has focus
	GlobalCapture bool
	QuitKeys      KeySet
}

// NewTerminalListener creates a listener with the default quit keys
func NewTerminalListener(source EventSource, state *ControlState, sender *Sender, globalCapture bool, logger pslog.Logger) *TerminalListener {
	return &TerminalListener{
		source:        source,
		state:         state,
		sender:        sender,
		log:           logger.With("producer", "terminal"),
		GlobalCapture: globalCapture,
		QuitKeys:      DefaultQuitKeys(),
	}
}

// Run reads events until quitting is set, the source goes away or the
// dispatcher drops the channel. It closes its sender on return.
func (l *TerminalListener) Run() {
	defer l.sender.Close()

	for {
		ev := l.source.PollEvent()
		switch ev.Type {
		case terminal.EventClosed:
			l.log.Debug("terminal input closed")
			return
		case terminal.EventError:
			l.log.Debug("terminal input failed", "err", ev.Err)
			return
		}

		if action, ok := l.handle(ev); ok {
			if err := l.sender.Send(action); err != nil {
				l.log.Debug("terminal listener stopping", "reason", err)
				return
			}
		}

		if l.state.Quitting() {
			return
		}
	}
}

// handle applies the key, focus and resize policy to one event
func (l *TerminalListener) handle(ev terminal.Event) (Action, bool) {
	switch ev.Type {
	case terminal.EventFocus:
		l.state.SetFocused(ev.Focused)
		l.log.Debug("focus changed", "focused", ev.Focused)
		return 0, false

	case terminal.EventResize:
		return ActionRender, true

	case terminal.EventKey:
		if ev.Kind == terminal.KeyRelease {
			return 0, false
		}
		if l.GlobalCapture && !l.state.Focused() {
			return 0, false
		}
		if l.QuitKeys.Match(ev) {
			l.state.MarkQuitting()
			l.log.Info("quit requested", "key", ev.Key, "rune", string(ev.Rune))
			return ActionQuit, true
		}
		if l.GlobalCapture {
			return 0, false
		}
		return ActionRender, true
	}
	return 0, false
}
