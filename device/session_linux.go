package device

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

// openDevice opens an event node and reads its capabilities
var openDevice = evdev.Open

// Session holds every keyboard on one seat in a single epoll set
type Session struct {
	epfd int

	mu      sync.Mutex
	devices map[int32]*keyboard
	ready   []int32
	closed  bool

	events []unix.EpollEvent
}

type keyboard struct {
	dev *evdev.InputDevice
	fd  int
}

// Open finds the keyboards on opts.Seat and opens them for reading.
// It fails with ErrPermission when no keyboard opened and at least one
// node on the seat refused access, and with ErrNoKeyboards when every
// node opened but none is a keyboard.
func Open(opts Options) (*Session, error) {
	opts = opts.withDefaults()

	paths, err := filepath.Glob(filepath.Join(opts.Dir, "event*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	s := &Session{
		epfd:    epfd,
		devices: make(map[int32]*keyboard),
		events:  make([]unix.EpollEvent, 16),
	}

	var (
		denied  string
		openErr error
	)
	for _, path := range paths {
		if nodeSeat(opts, filepath.Base(path)) != opts.Seat {
			continue
		}

		dev, err := openDevice(path)
		if err != nil {
			if errors.Is(err, unix.EACCES) || errors.Is(err, unix.EPERM) {
				denied = path
			} else {
				openErr = err
			}
			continue
		}
		if !isKeyboard(dev) {
			dev.File.Close()
			continue
		}
		if err := s.add(dev); err != nil {
			openErr = err
		}
	}

	if len(s.devices) > 0 {
		return s, nil
	}
	unix.Close(epfd)

	switch {
	case denied != "":
		return nil, fmt.Errorf("%w: %s: %w", ErrPermission, denied, unix.EACCES)
	case openErr != nil:
		return nil, openErr
	default:
		return nil, fmt.Errorf("%w on %s", ErrNoKeyboards, opts.Seat)
	}
}

// add registers an opened keyboard with epoll. Reads only happen after
// epoll reports the device readable, so the file stays in blocking mode.
func (s *Session) add(dev *evdev.InputDevice) error {
	fd := int(dev.File.Fd())
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		dev.File.Close()
		return &os.PathError{Op: "epoll_ctl", Path: dev.Fn, Err: err}
	}

	s.mu.Lock()
	s.devices[int32(fd)] = &keyboard{dev: dev, fd: fd}
	s.mu.Unlock()
	return nil
}

// Devices lists the opened device paths
func (s *Session) Devices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.devices))
	for _, kb := range s.devices {
		out = append(out, kb.dev.Fn)
	}
	sort.Strings(out)
	return out
}

// Wait blocks until at least one device has input or hung up. It has no
// timeout and is not interrupted by Close.
func (s *Session) Wait() error {
	for {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return ErrClosed
		}

		n, err := unix.EpollWait(s.epfd, s.events, -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("epoll_wait: %w", err)
		}

		s.mu.Lock()
		s.ready = s.ready[:0]
		for _, ev := range s.events[:n] {
			s.ready = append(s.ready, ev.Fd)
		}
		s.mu.Unlock()
		if n > 0 {
			return nil
		}
	}
}

// Dispatch reads the devices Wait reported ready. Without a preceding Wait
// it polls the set once without blocking. Devices that vanished are
// dropped; once none remain Dispatch returns ErrNoKeyboards.
func (s *Session) Dispatch() ([]KeyEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	fds := s.ready
	if len(fds) == 0 {
		fds = s.pollReady()
	}

	var out []KeyEvent
	for _, fd := range fds {
		kb, ok := s.devices[fd]
		if !ok {
			continue
		}
		events, gone := s.read(kb)
		out = append(out, events...)
		if gone {
			s.remove(kb)
		}
	}
	s.ready = s.ready[:0]

	if len(s.devices) == 0 {
		return out, fmt.Errorf("%w: all keyboards removed", ErrNoKeyboards)
	}
	return out, nil
}

func (s *Session) pollReady() []int32 {
	events := make([]unix.EpollEvent, len(s.devices))
	if len(events) == 0 {
		return nil
	}
	n, err := unix.EpollWait(s.epfd, events, 0)
	if err != nil {
		return nil
	}
	fds := make([]int32, 0, n)
	for _, ev := range events[:n] {
		fds = append(fds, ev.Fd)
	}
	return fds
}

// read takes one batch from a readable device; gone reports a hang-up or
// removal
func (s *Session) read(kb *keyboard) (events []KeyEvent, gone bool) {
	raw, err := kb.dev.Read()
	switch {
	case errors.Is(err, unix.EAGAIN):
		return nil, false
	case err != nil:
		return nil, true
	}
	return keyEvents(raw, kb.dev.Fn), false
}

func (s *Session) remove(kb *keyboard) {
	unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, kb.fd, nil)
	kb.dev.File.Close()
	delete(s.devices, int32(kb.fd))
}

// Close releases every device and the epoll instance
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, kb := range s.devices {
		if err := kb.dev.File.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	clear(s.devices)
	if err := unix.Close(s.epfd); err != nil {
		errs = append(errs, fmt.Errorf("close epoll: %w", err))
	}
	return errors.Join(errs...)
}

// keyEvents keeps keyboard key transitions; sync, relative and button
// events are skipped
func keyEvents(raw []evdev.InputEvent, device string) []KeyEvent {
	var out []KeyEvent
	for _, ev := range raw {
		if ev.Type != evdev.EV_KEY || ev.Code >= evdev.BTN_MISC {
			continue
		}
		out = append(out, KeyEvent{
			Code:   ev.Code,
			State:  KeyState(ev.Value),
			Device: device,
			Time:   time.Unix(0, ev.Time.Nano()),
		})
	}
	return out
}
