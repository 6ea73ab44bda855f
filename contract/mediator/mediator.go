package mediator

import "context"

// Mediator is a minimal, tech-agnostic interface that mirrors the capabilities
// of the concrete registry while remaining non-generic for interface
// compatibility.
//
// Typed helpers remain available via generic helper functions in the dispatch
// package. This interface is intended for consumers that want to depend only
// on contracts.
type Mediator interface {
	// Bind (untyped) – type-safe bindings continue via helper funcs in dispatch.
	BindRequestOf(sample any, exec func(ctx context.Context, r any) (any, error)) error
	BindListenerOf(sample any, concurrencySafe bool, fn func(ctx context.Context, n any) error) error

	// Exec
	Execute(ctx context.Context, r Request) (any, error)

	// Events
	Publish(ctx context.Context, n Notification) error
	Forward(ctx context.Context, n Notification, opts ForwardOptions) error

	// Lifecycle
	Close() error
}
