//go:build !unix

package terminal

import "errors"

// DetectColorMode assumes the 256-color palette off unix
func DetectColorMode() ColorMode {
	return ColorMode256
}

type unsupportedBackend struct{}

func newBackend() Backend { return unsupportedBackend{} }

func (unsupportedBackend) Init() error {
	return errors.New("native terminal backend requires a unix system; use --backend tcell")
}
func (unsupportedBackend) Fini() {}

func (unsupportedBackend) Size() (int, int) { return 80, 24 }

func (unsupportedBackend) Write([]byte) error { return nil }

func (unsupportedBackend) Read(<-chan struct{}) ([]byte, error) { return nil, nil }

func (unsupportedBackend) SetResizeHandler(func(width, height int)) {}
