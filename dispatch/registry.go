package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	berr "github.com/next-trace/scg-dispatch/contract/errors"
	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
)

// Registry wires pipelines and dispatchers per request/notification type and
// exposes them for lookup. Wiring is explicit: callers bind handlers,
// validators, and listeners at startup; there is no catalog scanning and no
// ambient global state.
//
// Binds take the write lock, Execute/Publish take the read lock only. Each
// listener bind rebuilds that notification type's immutable Dispatcher, so
// in-flight publishes always see a consistent listener set.
type Registry struct {
	mu sync.RWMutex

	exec map[reflect.Type]func(ctx context.Context, r any) (any, error)
	pub  map[reflect.Type]func(ctx context.Context, n any) error
	lst  map[reflect.Type][]cmed.Listener[cmed.Notification]

	// global execution middleware executed in registration order
	execMW []ExecutionMiddleware

	relay  cmed.Relay
	logger *slog.Logger
}

// Option configures a Registry instance.
type Option func(*Registry)

// ExecutionMiddleware wraps request execution with cross-cutting concerns
// (logging, metrics, retries added by an outer layer). Middlewares run in
// registration order around the pipeline; they see and may replace the
// untyped outcome.
type ExecutionMiddleware func(next func(ctx context.Context, r any) (any, error)) func(ctx context.Context, r any) (any, error)

// WithExecutionMiddleware registers global execution middleware via an option.
func WithExecutionMiddleware(mw ...ExecutionMiddleware) Option {
	return func(g *Registry) { g.execMW = append(g.execMW, mw...) }
}

// Ensure Registry satisfies the contract facade.
var _ cmed.Mediator = (*Registry)(nil)

// New constructs a new Registry with an optional relay and logger.
func New(relay cmed.Relay, logger *slog.Logger) *Registry {
	return &Registry{
		exec:   make(map[reflect.Type]func(context.Context, any) (any, error)),
		pub:    make(map[reflect.Type]func(context.Context, any) error),
		lst:    make(map[reflect.Type][]cmed.Listener[cmed.Notification]),
		relay:  relay,
		logger: logger,
	}
}

// BindRequestOf registers an untyped executor for a specific request type.
// Provide a zero value of the request type via sample. Duplicate bindings are
// rejected.
func (g *Registry) BindRequestOf(sample any, exec func(ctx context.Context, r any) (any, error)) error {
	t := reflect.TypeOf(sample)
	if exec == nil {
		return fmt.Errorf("bind request %s: %w", t.String(), berr.ErrNilHandler)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.exec[t]; exists {
		return fmt.Errorf("bind request %s: %w", t.String(), berr.ErrHandlerExists)
	}

	g.exec[t] = exec

	if g.logger != nil {
		g.logger.Debug("request bound", "request", t.String())
	}

	return nil
}

// BindListenerOf registers an untyped listener for a specific notification
// type. Multiple listeners are allowed; registration order is preserved and
// is significant for the non-concurrency-safe subset.
func (g *Registry) BindListenerOf(sample any, concurrencySafe bool, fn func(ctx context.Context, n any) error) error {
	t := reflect.TypeOf(sample)
	if fn == nil {
		return fmt.Errorf("bind listener %s: %w", t.String(), berr.ErrNilHandler)
	}

	g.bindListeners(t, cmed.ListenerFunc(concurrencySafe, func(ctx context.Context, n cmed.Notification) error {
		return fn(ctx, n)
	}))

	return nil
}

func (g *Registry) bindListeners(t reflect.Type, ls ...cmed.Listener[cmed.Notification]) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lst[t] = append(g.lst[t], ls...)

	d := NewDispatcher(g.lst[t]...)
	g.pub[t] = func(ctx context.Context, n any) error { return d.Publish(ctx, n) }

	if g.logger != nil {
		g.logger.Debug("listener bound", "notification", t.String(), "listeners", len(g.lst[t]))
	}
}

// Execute runs the pipeline bound to the request's type (with middleware) and
// returns its outcome untyped. Use the generic Execute helper for a typed
// result.
func (g *Registry) Execute(ctx context.Context, r cmed.Request) (any, error) {
	return g.executeWithMiddleware(ctx, r)
}

// ExecuteWith executes a request with additional per-call middleware.
func (g *Registry) ExecuteWith(ctx context.Context, r cmed.Request, mws ...ExecutionMiddleware) (any, error) {
	return g.executeWithMiddleware(ctx, r, mws...)
}

func (g *Registry) executeWithMiddleware(ctx context.Context, r cmed.Request, mws ...ExecutionMiddleware) (any, error) {
	g.mu.RLock()
	f, ok := g.exec[reflect.TypeOf(r)]
	g.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("execute %s: %w", reflect.TypeOf(r).String(), berr.ErrHandlerNotFound)
	}

	// Combine global and per-call middleware
	chain := make([]ExecutionMiddleware, 0, len(g.execMW)+len(mws))
	chain = append(chain, g.execMW...)
	chain = append(chain, mws...)

	// Build chain so the first registered middleware runs first
	final := f
	for i := len(chain) - 1; i >= 0; i-- {
		final = chain[i](final)
	}

	return final(ctx, r)
}

// Publish fans the notification out to all bound listeners and returns once
// they have all run. A notification type with no listeners completes
// immediately with no work performed.
func (g *Registry) Publish(ctx context.Context, n cmed.Notification) error {
	g.mu.RLock()
	f, ok := g.pub[reflect.TypeOf(n)]
	g.mu.RUnlock()

	if !ok {
		return nil
	}

	return f(ctx, n)
}

// Forward sends the notification outward via the configured relay.
func (g *Registry) Forward(ctx context.Context, n cmed.Notification, opts cmed.ForwardOptions) error {
	if g.relay == nil {
		return fmt.Errorf("forward %T: %w", n, berr.ErrRelayNotConfigured)
	}

	return g.relay.Forward(ctx, n, opts)
}

// Close releases nothing today; the Registry holds no connections. It exists
// for parity with the Mediator contract so callers can defer cleanup
// uniformly.
func (g *Registry) Close() error { return nil }

// BindRequest registers a handler and an optional validator for request type
// R. A nil validator skips the validation step. Duplicate bindings are
// rejected.
func BindRequest[R cmed.Request, T any](reg *Registry, h cmed.Handler[R, T], v cmed.Validator[R]) error {
	var zero R

	t := reflect.TypeOf(zero)
	if h == nil {
		return fmt.Errorf("bind request %s: %w", t.String(), berr.ErrNilHandler)
	}

	p := NewPipeline(h, v)

	return reg.BindRequestOf(zero, func(ctx context.Context, val any) (any, error) {
		r, ok := val.(R)
		if !ok {
			return nil, fmt.Errorf("execute %s: %w", reflect.TypeOf(val).String(), berr.ErrRequestTypeMismatch)
		}

		out, err := p.Execute(ctx, r)

		return out, err
	})
}

// BindListener registers listeners for notification type N in the given
// order, appending to any previously bound listeners.
func BindListener[N cmed.Notification](reg *Registry, ls ...cmed.Listener[N]) error {
	var zero N

	t := reflect.TypeOf(zero)

	wrapped := make([]cmed.Listener[cmed.Notification], 0, len(ls))
	for _, l := range ls {
		if l == nil {
			return fmt.Errorf("bind listener %s: %w", t.String(), berr.ErrNilHandler)
		}

		wrapped = append(wrapped, typedListener[N]{l: l})
	}

	reg.bindListeners(t, wrapped...)

	return nil
}

// typedListener adapts a Listener[N] to the untyped dispatcher entry while
// deferring the ConcurrencySafe read to the wrapped listener.
type typedListener[N cmed.Notification] struct {
	l cmed.Listener[N]
}

func (w typedListener[N]) Handle(ctx context.Context, n cmed.Notification) error {
	v, ok := n.(N)
	if !ok {
		return fmt.Errorf("publish %s: %w", reflect.TypeOf(n).String(), berr.ErrListenerTypeMismatch)
	}

	return w.l.Handle(ctx, v)
}

func (w typedListener[N]) ConcurrencySafe() bool { return w.l.ConcurrencySafe() }

// Execute is a typed helper running the pipeline bound to R and asserting its
// outcome payload type.
func Execute[R cmed.Request, T any](ctx context.Context, reg *Registry, r R) (cmed.Outcome[T], error) {
	res, err := reg.Execute(ctx, r)
	if err != nil {
		return cmed.Outcome[T]{}, err
	}

	out, ok := res.(cmed.Outcome[T])
	if !ok {
		return cmed.Outcome[T]{}, fmt.Errorf("execute %s: %w", reflect.TypeOf(r).String(), berr.ErrOutcomeTypeMismatch)
	}

	return out, nil
}
