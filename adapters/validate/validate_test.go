package validate_test

import (
	"context"
	"testing"

	"github.com/next-trace/scg-dispatch/adapters/validate"
)

type registerUser struct {
	Email string `validate:"required,email"`
	Age   int    `validate:"gte=18"`
}

func TestStruct_Violations(t *testing.T) {
	v := validate.New[registerUser]()

	violations, err := v.Validate(context.Background(), registerUser{Email: "not-an-email", Age: 12})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if len(violations) != 2 {
		t.Fatalf("violations=%v", violations)
	}

	if violations[0].Field != "Email" || violations[1].Field != "Age" {
		t.Fatalf("field order=%v", violations)
	}

	if violations[0].Message == "" || violations[1].Message == "" {
		t.Fatalf("messages must be populated: %v", violations)
	}
}

func TestStruct_Clean(t *testing.T) {
	v := validate.New[registerUser]()

	violations, err := v.Validate(context.Background(), registerUser{Email: "a@b.co", Age: 30})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if len(violations) != 0 {
		t.Fatalf("violations=%v", violations)
	}
}

func TestStruct_NonStructIsFault(t *testing.T) {
	v := validate.New[int]()

	if _, err := v.Validate(context.Background(), 7); err == nil {
		t.Fatalf("want fault for non-struct value")
	}
}
