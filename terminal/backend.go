package terminal

// pollIntervalMs bounds how long Read blocks before re-checking the stop channel
const pollIntervalMs = 100

// Backend abstracts the platform terminal device behind the native Terminal.
type Backend interface {
	// Init enters raw mode
	Init() error
	// Fini restores the saved terminal mode
	Fini()

	Size() (width, height int)

	// Write writes raw bytes to the terminal output
	Write(p []byte) error

	// Read blocks until input is available, the stop channel is closed, or an error occurs.
	// A closed input stream is reported as io.EOF.
	Read(stopCh <-chan struct{}) ([]byte, error)

	// SetResizeHandler registers a callback for terminal resize events
	SetResizeHandler(handler func(width, height int))
}
