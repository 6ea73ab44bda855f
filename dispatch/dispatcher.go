package dispatch

import (
	"context"
	"errors"
	"sync"

	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
)

// Dispatcher fans one notification type out to its bound listeners.
// Listeners that report ConcurrencySafe run simultaneously in their own
// goroutines; the rest run one at a time in registration order, only after
// every concurrent listener has finished. A Dispatcher is immutable after
// construction and safe for concurrent publishers.
type Dispatcher[N cmed.Notification] struct {
	listeners []cmed.Listener[N]
}

// NewDispatcher binds the given listeners in registration order.
func NewDispatcher[N cmed.Notification](listeners ...cmed.Listener[N]) *Dispatcher[N] {
	return &Dispatcher[N]{listeners: append([]cmed.Listener[N](nil), listeners...)}
}

// Publish runs all bound listeners for the notification and returns once
// every invoked listener has reached a terminal state.
//
// The concurrent partition is launched first and joined regardless of
// individual outcomes or context cancellation; cancelling ctx never unwinds
// the join barrier early. Faults from the concurrent phase are aggregated
// with errors.Join in registration order and abort the sequential phase
// entirely. Sequential listeners then run FIFO; the first fault stops the
// remainder. Zero listeners completes immediately.
//
// ctx is propagated unchanged to every listener; honoring it promptly is each
// listener's own responsibility.
func (d *Dispatcher[N]) Publish(ctx context.Context, n N) error {
	if len(d.listeners) == 0 {
		return nil
	}

	var concurrent, sequential []cmed.Listener[N]

	// ConcurrencySafe is read exactly once per listener per publish.
	for _, l := range d.listeners {
		if l.ConcurrencySafe() {
			concurrent = append(concurrent, l)
		} else {
			sequential = append(sequential, l)
		}
	}

	if len(concurrent) > 0 {
		errs := make([]error, len(concurrent))

		var wg sync.WaitGroup
		for i, l := range concurrent {
			wg.Add(1)

			go func(i int, l cmed.Listener[N]) {
				defer wg.Done()

				errs[i] = l.Handle(ctx, n)
			}(i, l)
		}

		// Join barrier: sequential listeners never overlap a concurrent one.
		wg.Wait()

		if err := errors.Join(errs...); err != nil {
			return err
		}
	}

	for _, l := range sequential {
		if err := l.Handle(ctx, n); err != nil {
			return err
		}
	}

	return nil
}
