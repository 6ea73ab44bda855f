package inmemory

import (
	"context"
	"sync"
	"time"

	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
)

// Relay is a thread-safe in-memory implementation of mediator.Relay.
// It records forwarded notifications for testing and examples.
type Relay struct {
	mu            sync.Mutex
	Notifications []cmed.Notification
	Opts          []cmed.ForwardOptions
}

// Ensure Relay implements the contract.
var _ cmed.Relay = (*Relay)(nil)

// New creates a new in-memory relay instance.
func New() *Relay { return &Relay{} }

func (r *Relay) Forward(ctx context.Context, n cmed.Notification, opts cmed.ForwardOptions) error {
	r.mu.Lock()
	r.Notifications = append(r.Notifications, n)
	r.Opts = append(r.Opts, opts)
	r.mu.Unlock()

	return nil
}

// Listener is a thread-safe recording listener for notifications of type N.
// Safe, Delay, and Fault configure its behavior and must be set before the
// listener is bound.
type Listener[N cmed.Notification] struct {
	Safe  bool
	Delay time.Duration
	Fault error

	mu   sync.Mutex
	seen []N
}

// NewListener creates a recording listener with the given concurrency flag.
func NewListener[N cmed.Notification](concurrencySafe bool) *Listener[N] {
	return &Listener[N]{Safe: concurrencySafe}
}

func (l *Listener[N]) Handle(ctx context.Context, n N) error {
	if l.Delay > 0 {
		time.Sleep(l.Delay)
	}

	l.mu.Lock()
	l.seen = append(l.seen, n)
	l.mu.Unlock()

	return l.Fault
}

func (l *Listener[N]) ConcurrencySafe() bool { return l.Safe }

// Seen returns a copy of the notifications handled so far.
func (l *Listener[N]) Seen() []N {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]N(nil), l.seen...)
}
