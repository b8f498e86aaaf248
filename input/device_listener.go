package input

import (
	"pkt.systems/pslog"

	"github.com/lixenwraith/color-wall/device"
)

// DeviceSource is a privileged keyboard session; *device.Session satisfies it
type DeviceSource interface {
	Wait() error
	Dispatch() ([]device.KeyEvent, error)
	Close() error
}

// DeviceListener emits one Render per physical key press seen on the raw
// keyboard devices, whichever window has focus
type DeviceListener struct {
	open   func() (DeviceSource, error)
	state  *ControlState
	sender *Sender
	log    pslog.Logger

	// OnlyWhenFocused suppresses emission while the terminal is unfocused
	OnlyWhenFocused bool
	// OnFatal receives the session open failure, for reporting after teardown
	OnFatal func(error)

	// released is diagnostic: whether the last transition seen was a release
	released bool
}

// NewDeviceListener creates a listener that opens its session with open
// once Run starts
func NewDeviceListener(open func() (DeviceSource, error), state *ControlState, sender *Sender, onlyWhenFocused bool, logger pslog.Logger) *DeviceListener {
	return &DeviceListener{
		open:            open,
		state:           state,
		sender:          sender,
		log:             logger.With("producer", "device"),
		OnlyWhenFocused: onlyWhenFocused,
		released:        true,
	}
}

// Run opens the session and forwards presses until quitting is observed,
// the session fails or the dispatcher drops the channel. An open failure
// only stops this listener. The sender is closed on return.
func (l *DeviceListener) Run() {
	defer l.sender.Close()

	src, err := l.open()
	if err != nil {
		l.log.Error("global key capture unavailable", "err", err)
		if l.OnFatal != nil {
			l.OnFatal(err)
		}
		return
	}
	defer func() {
		if err := src.Close(); err != nil {
			l.log.Warn("closing keyboard devices", "err", err)
		}
	}()

	for {
		if err := src.Wait(); err != nil {
			l.log.Debug("device wait failed", "err", err)
			return
		}
		if l.state.Quitting() {
			return
		}

		events, err := src.Dispatch()
		if err != nil {
			l.log.Debug("device dispatch failed", "err", err)
			return
		}

		emit := !(l.OnlyWhenFocused && !l.state.Focused())
		for _, ev := range events {
			if !l.observe(ev) || !emit {
				continue
			}
			if err := l.sender.Send(ActionRender); err != nil {
				l.log.Debug("device listener stopping", "reason", err)
				return
			}
		}

		if l.state.Quitting() {
			return
		}
	}
}

// observe reports whether ev is a new press. Every press counts, with or
// without an intervening release; released only feeds the trace log that
// flags such presses and never changes what is emitted.
func (l *DeviceListener) observe(ev device.KeyEvent) bool {
	switch ev.State {
	case device.Pressed:
		if !l.released {
			l.log.Trace("press without release", "code", ev.Code, "device", ev.Device)
		}
		l.released = false
		return true
	case device.Released:
		l.released = true
	}
	return false
}
