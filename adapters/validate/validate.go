// Package validate adapts go-playground/validator struct-tag validation to
// the mediator.Validator contract.
package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
)

// Struct validates requests of type R against their `validate` struct tags.
// A Struct is safe for concurrent use.
type Struct[R cmed.Request] struct {
	validate *validator.Validate
}

// New creates a struct-tag validator for request type R.
func New[R cmed.Request]() *Struct[R] {
	return &Struct[R]{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate reports one violation per failed field, in tag evaluation order.
// Anything other than field-level validation errors (e.g. validating a
// non-struct value) is a fault and is returned on the error channel.
func (s *Struct[R]) Validate(ctx context.Context, r R) ([]cmed.Violation, error) {
	err := s.validate.StructCtx(ctx, r)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	violations := make([]cmed.Violation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, cmed.Violation{
			Field:   fe.Field(),
			Message: fmt.Sprintf("field '%s' failed validation: %s", fe.Field(), fe.Tag()),
		})
	}

	return violations, nil
}
