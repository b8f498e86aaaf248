package engine

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/pslog"

	"github.com/lixenwraith/color-wall/core"
	"github.com/lixenwraith/color-wall/input"
	"github.com/lixenwraith/color-wall/terminal"
)

// ErrNoDeviceSource is reported when global capture is requested without a
// way to open the keyboard devices
var ErrNoDeviceSource = errors.New("global capture enabled without a device source")

// Options select which producers run and how they behave
type Options struct {
	// GlobalCapture starts the device listener and leaves render triggering to it
	GlobalCapture bool
	// OnlyWhenFocused gates device renders on terminal focus
	OnlyWhenFocused bool
	// QuitKeys overrides input.DefaultQuitKeys when non-empty
	QuitKeys input.KeySet
	// OpenDevices opens the keyboard session. GlobalCapture without it only
	// records ErrNoDeviceSource.
	OpenDevices func() (input.DeviceSource, error)
}

// App wires the producers, the action channel and the dispatcher around an
// initialized terminal. The caller owns Init and Fini.
type App struct {
	term     terminal.Terminal
	renderer Renderer
	opts     Options
	log      pslog.Logger

	mu       sync.Mutex
	warnings []error
}

// NewApp creates an app drawing renderer's frames on term
func NewApp(term terminal.Terminal, renderer Renderer, opts Options, logger pslog.Logger) *App {
	return &App{
		term:     term,
		renderer: renderer,
		opts:     opts,
		log:      logger,
	}
}

// Run starts the producers and runs the dispatcher on the calling goroutine
// until it stops. Producers still blocked on their source are left to die
// with the process.
func (a *App) Run(ctx context.Context) StopReason {
	state := input.NewControlState()
	actions := input.NewActionChannel()

	// Register every sender before any producer can exit and seal the channel
	tl := input.NewTerminalListener(a.term, state, actions.NewSender(), a.opts.GlobalCapture, a.log)
	if len(a.opts.QuitKeys) > 0 {
		tl.QuitKeys = a.opts.QuitKeys
	}

	var dl *input.DeviceListener
	switch {
	case !a.opts.GlobalCapture:
	case a.opts.OpenDevices == nil:
		// Terminal keys still only quit, so the wall stays frozen; say why
		a.log.Error("global key capture unavailable", "err", ErrNoDeviceSource)
		a.warn(ErrNoDeviceSource)
	default:
		dl = input.NewDeviceListener(a.opts.OpenDevices, state, actions.NewSender(), a.opts.OnlyWhenFocused, a.log)
		dl.OnFatal = a.warn
	}

	core.Go(tl.Run)
	if dl != nil {
		core.Go(dl.Run)
	}

	a.log.Info("color wall running",
		"global", a.opts.GlobalCapture,
		"only_when_focused", a.opts.OnlyWhenFocused,
	)

	d := NewDispatcher(a.term, a.renderer, actions, a.log)
	reason := d.Run(ctx)
	a.log.Info("color wall stopped", "reason", reason, "frames", d.Frames())
	return reason
}

// Warnings returns non-fatal errors to show the operator once the terminal
// is restored
func (a *App) Warnings() []error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]error(nil), a.warnings...)
}

func (a *App) warn(err error) {
	a.mu.Lock()
	a.warnings = append(a.warnings, err)
	a.mu.Unlock()
}
