package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/next-trace/scg-dispatch/dispatch"
)

type orderShipped struct{ ID string }

// trace records listener events in arrival order, shared across listeners.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (tr *trace) add(ev string) {
	tr.mu.Lock()
	tr.events = append(tr.events, ev)
	tr.mu.Unlock()
}

func (tr *trace) index(ev string) int {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	for i, e := range tr.events {
		if e == ev {
			return i
		}
	}

	return -1
}

type traceListener struct {
	name  string
	safe  bool
	delay time.Duration
	err   error
	tr    *trace
}

func (l traceListener) Handle(ctx context.Context, n orderShipped) error {
	l.tr.add(l.name + "-start")

	if l.delay > 0 {
		time.Sleep(l.delay)
	}

	l.tr.add(l.name + "-done")

	return l.err
}

func (l traceListener) ConcurrencySafe() bool { return l.safe }

func Test_Publish_ConcurrentJoin(t *testing.T) {
	const d = 100 * time.Millisecond

	tr := &trace{}
	disp := dispatch.NewDispatcher[orderShipped](
		traceListener{name: "a", safe: true, delay: d, tr: tr},
		traceListener{name: "b", safe: true, delay: d, tr: tr},
	)

	start := time.Now()

	if err := disp.Publish(context.Background(), orderShipped{ID: "o1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	elapsed := time.Since(start)
	if elapsed >= 2*d-10*time.Millisecond {
		t.Fatalf("no overlap observed: elapsed=%v", elapsed)
	}

	if tr.index("a-done") < 0 || tr.index("b-done") < 0 {
		t.Fatalf("both listeners must have run: %v", tr.events)
	}
}

func Test_Publish_SequentialOrdering(t *testing.T) {
	tr := &trace{}
	disp := dispatch.NewDispatcher[orderShipped](
		traceListener{name: "a", safe: false, delay: 20 * time.Millisecond, tr: tr},
		traceListener{name: "b", safe: false, tr: tr},
	)

	if err := disp.Publish(context.Background(), orderShipped{}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if tr.index("a-done") > tr.index("b-start") {
		t.Fatalf("b started before a finished: %v", tr.events)
	}

	if len(tr.events) != 4 {
		t.Fatalf("events=%v", tr.events)
	}
}

func Test_Publish_PhaseBarrier(t *testing.T) {
	tr := &trace{}
	disp := dispatch.NewDispatcher[orderShipped](
		traceListener{name: "seq", safe: false, tr: tr},
		traceListener{name: "par", safe: true, delay: 60 * time.Millisecond, tr: tr},
	)

	if err := disp.Publish(context.Background(), orderShipped{}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Registration order places seq first, but the concurrent phase still
	// finishes before any sequential listener starts.
	if tr.index("par-done") > tr.index("seq-start") {
		t.Fatalf("sequential listener overlapped the concurrent phase: %v", tr.events)
	}
}

func Test_Publish_EmptySet(t *testing.T) {
	disp := dispatch.NewDispatcher[orderShipped]()

	if err := disp.Publish(context.Background(), orderShipped{}); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func Test_Publish_ConcurrentFaultAbortsSequentialPhase(t *testing.T) {
	boom := errors.New("smtp down")
	tr := &trace{}
	disp := dispatch.NewDispatcher[orderShipped](
		traceListener{name: "par", safe: true, err: boom, tr: tr},
		traceListener{name: "seq", safe: false, tr: tr},
	)

	err := disp.Publish(context.Background(), orderShipped{})
	if !errors.Is(err, boom) {
		t.Fatalf("want fault, got %v", err)
	}

	if tr.index("seq-start") != -1 {
		t.Fatalf("sequential listener ran after concurrent fault: %v", tr.events)
	}
}

func Test_Publish_ConcurrentFaultsAggregated(t *testing.T) {
	e1 := errors.New("first")
	e2 := errors.New("second")
	tr := &trace{}
	disp := dispatch.NewDispatcher[orderShipped](
		traceListener{name: "a", safe: true, err: e1, tr: tr},
		traceListener{name: "b", safe: true, err: e2, tr: tr},
	)

	err := disp.Publish(context.Background(), orderShipped{})
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("want both faults joined, got %v", err)
	}
}

func Test_Publish_SequentialFaultStopsRemainder(t *testing.T) {
	boom := errors.New("ledger conflict")
	tr := &trace{}
	disp := dispatch.NewDispatcher[orderShipped](
		traceListener{name: "a", safe: false, err: boom, tr: tr},
		traceListener{name: "b", safe: false, tr: tr},
	)

	err := disp.Publish(context.Background(), orderShipped{})
	if !errors.Is(err, boom) {
		t.Fatalf("want fault, got %v", err)
	}

	if tr.index("b-start") != -1 {
		t.Fatalf("later sequential listener ran after fault: %v", tr.events)
	}
}

func Test_Publish_JoinBarrierSurvivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &trace{}
	disp := dispatch.NewDispatcher[orderShipped](
		traceListener{name: "a", safe: true, delay: 20 * time.Millisecond, tr: tr},
		cancelAwareListener{tr: tr},
	)

	err := disp.Publish(ctx, orderShipped{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled from the listener, got %v", err)
	}

	// Even with ctx already cancelled, the barrier waited for the slow
	// listener to finish.
	if tr.index("a-done") < 0 {
		t.Fatalf("barrier released before all listeners finished: %v", tr.events)
	}
}

type cancelAwareListener struct{ tr *trace }

func (l cancelAwareListener) Handle(ctx context.Context, n orderShipped) error {
	l.tr.add("cancel-aware")
	return ctx.Err()
}

func (l cancelAwareListener) ConcurrencySafe() bool { return true }
