package mediator

// Outcome is the tagged result of handling a request: either a success payload
// or an ordered list of failure messages, never both. Business-level failures
// travel through Outcome; faults travel through the error channel of the
// handler signature.
type Outcome[T any] struct {
	value    T
	messages []string
	success  bool
}

// Success builds a successful outcome carrying value.
func Success[T any](value T) Outcome[T] {
	return Outcome[T]{value: value, success: true}
}

// Failure builds a failed outcome carrying messages in the given order.
// Zero messages is a degenerate but legal failure.
func Failure[T any](messages ...string) Outcome[T] {
	return Outcome[T]{messages: messages}
}

// Succeeded reports whether the outcome is the success variant.
func (o Outcome[T]) Succeeded() bool { return o.success }

// Value returns the success payload. It is the zero value of T on failure.
func (o Outcome[T]) Value() T { return o.value }

// Messages returns the failure messages in emission order. Nil on success.
func (o Outcome[T]) Messages() []string { return o.messages }

// Unit is the payload of requests with no meaningful response; the outcome of
// such a request is effectively boolean.
type Unit struct{}

// Done is the canonical successful Outcome[Unit].
func Done() Outcome[Unit] { return Success(Unit{}) }
