//go:build !linux

package device

// Session is unavailable outside linux; Open always fails
type Session struct{}

func Open(opts Options) (*Session, error) {
	return nil, ErrUnsupported
}

func (s *Session) Devices() []string { return nil }

func (s *Session) Wait() error { return ErrUnsupported }

func (s *Session) Dispatch() ([]KeyEvent, error) { return nil, ErrUnsupported }

func (s *Session) Close() error { return nil }
