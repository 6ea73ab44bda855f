package errors_test

import (
	"errors"
	"testing"

	berr "github.com/next-trace/scg-dispatch/contract/errors"
)

func TestCodeAndVars(t *testing.T) {
	e := berr.Code(berr.ErrCodeForwardFailed)
	if e.Error() != berr.ErrCodeForwardFailed {
		t.Fatalf("unexpected error string: %s", e.Error())
	}

	// exported variables must carry their codes
	tests := []struct {
		err  error
		code string
	}{
		{berr.ErrHandlerExists, berr.ErrCodeHandlerExists},
		{berr.ErrHandlerNotFound, berr.ErrCodeHandlerNotFound},
		{berr.ErrNilHandler, berr.ErrCodeNilHandler},
		{berr.ErrRequestTypeMismatch, berr.ErrCodeRequestTypeMismatch},
		{berr.ErrListenerTypeMismatch, berr.ErrCodeListenerTypeMismatch},
		{berr.ErrOutcomeTypeMismatch, berr.ErrCodeOutcomeTypeMismatch},
		{berr.ErrRelayNotConfigured, berr.ErrCodeRelayNotConfigured},
		{berr.ErrForwardFailed, berr.ErrCodeForwardFailed},
		{berr.ErrSerializationFailed, berr.ErrCodeSerializationFailed},
	}

	for _, tc := range tests {
		if !errors.Is(tc.err, berr.Code(tc.code)) {
			t.Fatalf("expected %s to be %s", tc.err, tc.code)
		}
	}
}
