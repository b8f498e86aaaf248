package input

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestChannelSendRecv(t *testing.T) {
	ch := NewActionChannel()
	s := ch.NewSender()

	if err := s.Send(ActionQuit); err != nil {
		t.Fatalf("Send: %v", err)
	}
	a, err := ch.Recv()
	if err != nil || a != ActionQuit {
		t.Fatalf("Recv = %v, %v; want quit", a, err)
	}
}

func TestChannelSingleSlot(t *testing.T) {
	ch := NewActionChannel()
	s := ch.NewSender()

	if err := s.Send(ActionRender); err != nil {
		t.Fatalf("first Send: %v", err)
	}

	sent := make(chan error, 1)
	go func() { sent <- s.Send(ActionQuit) }()

	select {
	case <-sent:
		t.Fatal("second Send completed while slot was full")
	case <-time.After(50 * time.Millisecond):
	}

	if a, _ := ch.Recv(); a != ActionRender {
		t.Fatalf("first Recv = %v, want render", a)
	}
	select {
	case err := <-sent:
		if err != nil {
			t.Fatalf("second Send: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second Send still blocked after Recv")
	}
	if a, _ := ch.Recv(); a != ActionQuit {
		t.Fatalf("second Recv = %v, want quit", a)
	}
}

func TestChannelConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 200

	ch := NewActionChannel()
	senders := make([]*Sender, producers)
	for i := range senders {
		senders[i] = ch.NewSender()
	}

	for i, s := range senders {
		go func(s *Sender, quitLast bool) {
			defer s.Close()
			for j := 0; j < perProducer; j++ {
				a := ActionRender
				if quitLast && j == perProducer-1 {
					a = ActionQuit
				}
				if err := s.Send(a); err != nil {
					t.Errorf("Send: %v", err)
					return
				}
				if n := len(ch.ch); n > 1 {
					t.Errorf("%d actions pending", n)
				}
			}
		}(s, i == 0)
	}

	got := drain(t, ch)
	if len(got) != producers*perProducer {
		t.Fatalf("received %d actions, want %d", len(got), producers*perProducer)
	}
	quits := 0
	for _, a := range got {
		switch a {
		case ActionQuit:
			quits++
		case ActionRender:
		default:
			t.Fatalf("unexpected action %v", a)
		}
	}
	if quits != 1 {
		t.Errorf("received %d quits, want 1", quits)
	}
}

func TestChannelClosesWithLastSender(t *testing.T) {
	ch := NewActionChannel()
	a, b := ch.NewSender(), ch.NewSender()

	if err := a.Send(ActionRender); err != nil {
		t.Fatal(err)
	}
	a.Close()
	a.Close()
	b.Close()

	// Pending action survives closure
	if got, err := ch.Recv(); err != nil || got != ActionRender {
		t.Fatalf("Recv = %v, %v; want pending render", got, err)
	}
	if _, err := ch.Recv(); !errors.Is(err, ErrNoProducers) {
		t.Fatalf("Recv err = %v, want ErrNoProducers", err)
	}

	late := ch.NewSender()
	if err := late.Send(ActionRender); !errors.Is(err, ErrSenderClosed) {
		t.Errorf("late Send err = %v, want ErrSenderClosed", err)
	}
	late.Close()
}

func TestChannelReceiverGone(t *testing.T) {
	ch := NewActionChannel()
	s := ch.NewSender()
	defer s.Close()

	if err := s.Send(ActionRender); err != nil {
		t.Fatal(err)
	}

	blocked := make(chan error, 1)
	go func() { blocked <- s.Send(ActionRender) }()
	time.Sleep(20 * time.Millisecond)

	ch.CloseReceiver()
	ch.CloseReceiver()

	select {
	case err := <-blocked:
		if !errors.Is(err, ErrReceiverGone) {
			t.Fatalf("blocked Send err = %v, want ErrReceiverGone", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked Send not released by CloseReceiver")
	}

	if err := s.Send(ActionQuit); !errors.Is(err, ErrReceiverGone) {
		t.Errorf("Send after CloseReceiver err = %v, want ErrReceiverGone", err)
	}
}

func TestChannelRecvContext(t *testing.T) {
	ch := NewActionChannel()
	s := ch.NewSender()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var err error
	go func() {
		defer wg.Done()
		_, err = ch.RecvContext(ctx)
	}()

	cancel()
	wg.Wait()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RecvContext err = %v, want context.Canceled", err)
	}

	if err := s.Send(ActionQuit); err != nil {
		t.Fatal(err)
	}
	if a, err := ch.RecvContext(context.Background()); err != nil || a != ActionQuit {
		t.Fatalf("RecvContext = %v, %v; want quit", a, err)
	}
}
