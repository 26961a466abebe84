package bridge

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haldorsen/breakwater/internal/model"
)

func TestGateExactlyOneWinner(t *testing.T) {
	const attempts = 100

	g := newGate()
	var wins atomic.Int32
	var actions atomic.Int32

	outcomes := []string{
		model.OutcomeSuccess,
		model.OutcomeFailure,
		model.OutcomeTimeout,
		model.OutcomeSaturated,
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if g.tryFinalize(outcomes[i%len(outcomes)], func() { actions.Add(1) }) {
				wins.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Errorf("winners = %d, want exactly 1", got)
	}
	if got := actions.Load(); got != 1 {
		t.Errorf("finalization actions = %d, want exactly 1", got)
	}
	if !model.ValidOutcome(g.Outcome()) {
		t.Errorf("Outcome() = %q, not a valid outcome", g.Outcome())
	}
}

func TestGateDoneClosesAfterAction(t *testing.T) {
	g := newGate()
	ran := false

	go g.tryFinalize(model.OutcomeSuccess, func() {
		// Widen the window so a premature Done close would be observable.
		time.Sleep(20 * time.Millisecond)
		ran = true
	})

	select {
	case <-g.Done():
		if !ran {
			t.Error("Done closed before the finalization action ran")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Done never closed")
	}

	if g.Outcome() != model.OutcomeSuccess {
		t.Errorf("Outcome() = %q, want %q", g.Outcome(), model.OutcomeSuccess)
	}
}

func TestGateLoserIsNoOp(t *testing.T) {
	g := newGate()

	if !g.tryFinalize(model.OutcomeTimeout, nil) {
		t.Fatal("first tryFinalize lost")
	}
	if g.tryFinalize(model.OutcomeSuccess, func() { t.Error("loser action ran") }) {
		t.Error("second tryFinalize won")
	}
	if g.Outcome() != model.OutcomeTimeout {
		t.Errorf("Outcome() = %q, want %q", g.Outcome(), model.OutcomeTimeout)
	}
}
