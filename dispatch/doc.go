/*
Package dispatch provides a thin, opinionated request-dispatch and
notification fan-out layer. A Pipeline validates and executes a single
request, a Dispatcher fans a notification out to its listeners, and a
Registry wires both per type while remaining decoupled from concrete
transports via interfaces.
*/
package dispatch
