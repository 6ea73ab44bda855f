package errors

// Error codes for the mediator contracts. Keep stable; used across adapters and registry.
const (
	ErrCodeHandlerExists        = "scgdispatch.handler_exists"
	ErrCodeHandlerNotFound      = "scgdispatch.handler_not_found"
	ErrCodeNilHandler           = "scgdispatch.nil_handler"
	ErrCodeRequestTypeMismatch  = "scgdispatch.request_type_mismatch"
	ErrCodeListenerTypeMismatch = "scgdispatch.listener_type_mismatch"
	ErrCodeOutcomeTypeMismatch  = "scgdispatch.outcome_type_mismatch"
	ErrCodeRelayNotConfigured   = "scgdispatch.relay_not_configured"
	ErrCodeForwardFailed        = "scgdispatch.forward_failed"
	ErrCodeSerializationFailed  = "scgdispatch.serialization_failed"
)

// Code returns an error value that carries only a code string.
// It implements error by returning the code string in Error().
func Code(code string) error { return codedError(code) }

type codedError string

func (e codedError) Error() string { return string(e) }

var (
	ErrHandlerExists        = Code(ErrCodeHandlerExists)
	ErrHandlerNotFound      = Code(ErrCodeHandlerNotFound)
	ErrNilHandler           = Code(ErrCodeNilHandler)
	ErrRequestTypeMismatch  = Code(ErrCodeRequestTypeMismatch)
	ErrListenerTypeMismatch = Code(ErrCodeListenerTypeMismatch)
	ErrOutcomeTypeMismatch  = Code(ErrCodeOutcomeTypeMismatch)
	ErrRelayNotConfigured   = Code(ErrCodeRelayNotConfigured)
	ErrForwardFailed        = Code(ErrCodeForwardFailed)
	ErrSerializationFailed  = Code(ErrCodeSerializationFailed)
)
