// Package device reads key events directly from Linux evdev keyboards, so
// presses are seen no matter which window has focus. Reading /dev/input
// needs root or membership in the input group.
package device

import (
	"errors"
	"fmt"
	"time"
)

// KeyState is the evdev value of an EV_KEY event
type KeyState int32

const (
	Released KeyState = 0
	Pressed  KeyState = 1
	Repeated KeyState = 2
)

func (s KeyState) String() string {
	switch s {
	case Released:
		return "released"
	case Pressed:
		return "pressed"
	case Repeated:
		return "repeated"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// KeyEvent is one keyboard key transition
type KeyEvent struct {
	Code   uint16
	State  KeyState
	Device string
	Time   time.Time
}

var (
	// ErrUnsupported is returned by Open on platforms without evdev
	ErrUnsupported = errors.New("global key capture is only supported on linux")
	// ErrNoKeyboards is returned when no keyboard device exists on the seat
	ErrNoKeyboards = errors.New("no keyboard devices found")
	// ErrPermission is returned when keyboards exist but none could be opened
	ErrPermission = errors.New("permission denied opening keyboard devices")
	// ErrClosed is returned by Wait and Dispatch after Close
	ErrClosed = errors.New("device session closed")
)

// DefaultSeat is the seat udev assigns devices to when ID_SEAT is unset
const DefaultSeat = "seat0"

// Options locate the device nodes. Zero values mean the standard paths.
type Options struct {
	Seat        string
	Dir         string // evdev nodes, default /dev/input
	SysDir      string // sysfs input class, default /sys/class/input
	UdevDataDir string // udev database, default /run/udev/data
}

func (o Options) withDefaults() Options {
	if o.Seat == "" {
		o.Seat = DefaultSeat
	}
	if o.Dir == "" {
		o.Dir = "/dev/input"
	}
	if o.SysDir == "" {
		o.SysDir = "/sys/class/input"
	}
	if o.UdevDataDir == "" {
		o.UdevDataDir = "/run/udev/data"
	}
	return o
}
