package input

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrReceiverGone is returned by Send once the dispatcher has dropped the channel
	ErrReceiverGone = errors.New("action receiver dropped")
	// ErrNoProducers is returned by Recv once every sender is closed and nothing is queued
	ErrNoProducers = errors.New("all action producers dropped")
	// ErrSenderClosed is returned by Send on a sender that was already closed
	ErrSenderClosed = errors.New("action sender closed")
)

// ActionChannel is a single-slot handoff from producers to the dispatcher.
// At most one action is pending at any time; a producer sending while the
// slot is full blocks until the dispatcher takes the pending action, so input
// bursts coalesce at the dispatcher's pace instead of queueing.
type ActionChannel struct {
	ch   chan Action
	done chan struct{}

	dropOnce sync.Once

	mu        sync.Mutex
	producers int
	sealed    bool // ch closed after the last sender went away
}

// NewActionChannel creates an empty channel with no registered producers.
// Register every producer with NewSender before the first Recv.
func NewActionChannel() *ActionChannel {
	return &ActionChannel{
		ch:   make(chan Action, 1),
		done: make(chan struct{}),
	}
}

// Sender is one producer's handle on an ActionChannel
type Sender struct {
	c      *ActionChannel
	closed atomic.Bool
}

// NewSender registers a producer. Once every sender is closed the channel
// closes and Recv fails after the pending action, if any, is taken.
func (c *ActionChannel) NewSender() *Sender {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &Sender{c: c}
	if c.sealed {
		s.closed.Store(true)
		return s
	}
	c.producers++
	return s
}

// Send blocks until the slot is free. It fails when the receiver has been
// dropped, which tells the producer to stop.
func (s *Sender) Send(a Action) error {
	if s.closed.Load() {
		return ErrSenderClosed
	}
	select {
	case <-s.c.done:
		return ErrReceiverGone
	default:
	}

	select {
	case s.c.ch <- a:
		return nil
	case <-s.c.done:
		return ErrReceiverGone
	}
}

// Close unregisters the producer; safe to call more than once.
// Must not race with a Send on the same sender.
func (s *Sender) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.c.release()
}

func (c *ActionChannel) release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.producers--
	if c.producers == 0 && !c.sealed {
		c.sealed = true
		close(c.ch)
	}
}

// Recv blocks until an action is available
func (c *ActionChannel) Recv() (Action, error) {
	a, ok := <-c.ch
	if !ok {
		return 0, ErrNoProducers
	}
	return a, nil
}

// RecvContext is Recv that also returns ctx.Err() when ctx is done first
func (c *ActionChannel) RecvContext(ctx context.Context) (Action, error) {
	select {
	case a, ok := <-c.ch:
		if !ok {
			return 0, ErrNoProducers
		}
		return a, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// CloseReceiver drops the consumer side; blocked and future sends fail
// with ErrReceiverGone. Safe to call more than once.
func (c *ActionChannel) CloseReceiver() {
	c.dropOnce.Do(func() { close(c.done) })
}
