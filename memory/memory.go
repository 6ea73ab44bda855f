package memory

import (
	"github.com/next-trace/scg-dispatch/adapters/inmemory"
	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
	"github.com/next-trace/scg-dispatch/dispatch"
)

// New constructs a registry backed by the in-memory relay and returns it as a
// contract.Mediator along with a cleanup function that closes it.
func New() (cmed.Mediator, func()) { //nolint:ireturn
	relay := inmemory.New()
	reg := dispatch.New(relay, nil)
	cleanup := func() { _ = reg.Close() }
	return reg, cleanup
}
