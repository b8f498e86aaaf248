package engine

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/pslog"

	"github.com/lixenwraith/color-wall/input"
	"github.com/lixenwraith/color-wall/terminal"
)

// Renderer produces a full frame for the given area, row-major
type Renderer interface {
	Frame(width, height int) []terminal.Cell
}

// StopReason says why the dispatch loop ended
type StopReason uint8

const (
	StopQuit          StopReason = iota // Quit action received
	StopProducersGone                   // every producer went away
	StopCancelled                       // context cancelled, usually by a signal
)

func (r StopReason) String() string {
	switch r {
	case StopQuit:
		return "quit"
	case StopProducersGone:
		return "producers gone"
	case StopCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("stop(%d)", uint8(r))
}

// Dispatcher is the render loop: it draws once, then once per Render action
type Dispatcher struct {
	term     terminal.Terminal
	renderer Renderer
	actions  *input.ActionChannel
	log      pslog.Logger

	frames uint64
}

// NewDispatcher creates a dispatcher consuming actions
func NewDispatcher(term terminal.Terminal, renderer Renderer, actions *input.ActionChannel, logger pslog.Logger) *Dispatcher {
	return &Dispatcher{
		term:     term,
		renderer: renderer,
		actions:  actions,
		log:      logger.With("component", "dispatcher"),
	}
}

// Run blocks until Quit, producer exhaustion or ctx cancellation. It drops
// the receiver on return so producers blocked in Send wake up and exit.
func (d *Dispatcher) Run(ctx context.Context) StopReason {
	defer d.actions.CloseReceiver()

	d.draw()
	for {
		action, err := d.actions.RecvContext(ctx)
		switch {
		case errors.Is(err, input.ErrNoProducers):
			d.log.Debug("dispatcher stopping", "reason", StopProducersGone, "frames", d.frames)
			return StopProducersGone
		case err != nil:
			d.log.Debug("dispatcher stopping", "reason", StopCancelled, "err", err, "frames", d.frames)
			return StopCancelled
		}

		if action == input.ActionQuit {
			d.log.Debug("dispatcher stopping", "reason", StopQuit, "frames", d.frames)
			return StopQuit
		}
		d.draw()
	}
}

// Frames is the number of frames drawn so far; only meaningful after Run
func (d *Dispatcher) Frames() uint64 {
	return d.frames
}

func (d *Dispatcher) draw() {
	w, h := d.term.Size()
	if w <= 0 || h <= 0 {
		return
	}
	d.term.Flush(d.renderer.Frame(w, h), w, h)
	d.frames++
}
