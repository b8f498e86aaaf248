package input

import (
	"errors"
	"io"
	"testing"
	"time"

	"pkt.systems/pslog"
)

func testLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.TraceLevel,
	})
}

// drain receives until every producer is gone and returns what arrived
func drain(t *testing.T, ch *ActionChannel) []Action {
	t.Helper()

	type result struct {
		actions []Action
		err     error
	}
	done := make(chan result, 1)
	go func() {
		var got []Action
		for {
			a, err := ch.Recv()
			if err != nil {
				done <- result{got, err}
				return
			}
			got = append(got, a)
		}
	}()

	select {
	case r := <-done:
		if !errors.Is(r.err, ErrNoProducers) {
			t.Fatalf("Recv err = %v, want ErrNoProducers", r.err)
		}
		return r.actions
	case <-time.After(2 * time.Second):
		t.Fatal("producers did not finish")
		return nil
	}
}

func equalActions(a, b []Action) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
