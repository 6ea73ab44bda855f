package inmemory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/next-trace/scg-dispatch/adapters/inmemory"
	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
)

type pingEvent struct{ N int }

func TestRelay_RecordsForwards(t *testing.T) {
	r := inmemory.New()

	opts := cmed.ForwardOptions{TopicOverride: "pings", Key: "1"}
	if err := r.Forward(context.Background(), pingEvent{N: 1}, opts); err != nil {
		t.Fatalf("forward: %v", err)
	}

	if len(r.Notifications) != 1 || r.Notifications[0].(pingEvent).N != 1 {
		t.Fatalf("notifications=%v", r.Notifications)
	}

	if r.Opts[0].TopicOverride != "pings" {
		t.Fatalf("opts=%v", r.Opts)
	}
}

func TestListener_RecordsAndFaults(t *testing.T) {
	l := inmemory.NewListener[pingEvent](true)
	if !l.ConcurrencySafe() {
		t.Fatalf("want concurrency-safe listener")
	}

	if err := l.Handle(context.Background(), pingEvent{N: 2}); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if seen := l.Seen(); len(seen) != 1 || seen[0].N != 2 {
		t.Fatalf("seen=%v", seen)
	}

	boom := errors.New("boom")
	l2 := inmemory.NewListener[pingEvent](false)
	l2.Fault = boom

	if err := l2.Handle(context.Background(), pingEvent{N: 3}); !errors.Is(err, boom) {
		t.Fatalf("want fault, got %v", err)
	}
}
