package dispatch

import (
	"context"

	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
)

// Pipeline runs an optional validation step, then a handler, for a single
// request type. It is immutable after construction and safe for concurrent
// use; it holds no per-call state.
type Pipeline[R cmed.Request, T any] struct {
	handler   cmed.Handler[R, T]
	validator cmed.Validator[R]
}

// NewPipeline binds a handler and an optional validator. A nil validator
// means no validation step runs. The handler must be non-nil; registry-level
// binds enforce this, direct construction leaves it to the caller.
func NewPipeline[R cmed.Request, T any](h cmed.Handler[R, T], v cmed.Validator[R]) *Pipeline[R, T] {
	return &Pipeline[R, T]{handler: h, validator: v}
}

// Execute validates the request if a validator is bound, then invokes the
// handler. One or more violations short-circuit: the handler is never invoked
// and the returned outcome is Failure carrying each violation's message in
// the validator's emission order. A fault (non-nil error) from the validator
// or the handler propagates unchanged; the pipeline performs no fault
// suppression, retries, or timeouts, and never re-interprets the handler's
// outcome.
func (p *Pipeline[R, T]) Execute(ctx context.Context, r R) (cmed.Outcome[T], error) {
	if p.validator != nil {
		violations, err := p.validator.Validate(ctx, r)
		if err != nil {
			return cmed.Outcome[T]{}, err
		}

		if len(violations) > 0 {
			msgs := make([]string, len(violations))
			for i, v := range violations {
				msgs[i] = v.Message
			}

			return cmed.Failure[T](msgs...), nil
		}
	}

	return p.handler.Handle(ctx, r)
}
