package mediator

import "context"

// Handler handles requests of type R producing a payload of type T.
// Implementations must be safe for concurrent use by multiple goroutines.
// Business success/failure is reported through the Outcome; a returned error
// is a fault and propagates to the caller untranslated.
type Handler[R Request, T any] interface {
	Handle(ctx context.Context, r R) (Outcome[T], error)
}

// Violation is a single validation finding for one field of a request.
type Violation struct {
	Field   string
	Message string
}

// Validator inspects a request of type R before its handler runs.
// Returning violations reports a business-level validation failure; returning
// an error reports a fault in the validator itself.
type Validator[R Request] interface {
	Validate(ctx context.Context, r R) ([]Violation, error)
}

// Listener reacts to notifications of type N with a side effect.
// ConcurrencySafe must return the same value for the lifetime of the listener
// instance; dispatchers read it once per listener per publish. Listeners that
// report true may run in parallel with other concurrency-safe listeners for
// the same notification.
type Listener[N Notification] interface {
	Handle(ctx context.Context, n N) error
	ConcurrencySafe() bool
}

// ListenerFunc adapts a plain function to the Listener contract with an
// explicit concurrency-safety flag.
func ListenerFunc[N Notification](safe bool, fn func(ctx context.Context, n N) error) Listener[N] {
	return listenerFunc[N]{safe: safe, fn: fn}
}

type listenerFunc[N Notification] struct {
	safe bool
	fn   func(ctx context.Context, n N) error
}

func (l listenerFunc[N]) Handle(ctx context.Context, n N) error { return l.fn(ctx, n) }

func (l listenerFunc[N]) ConcurrencySafe() bool { return l.safe }
