package mediator

// Request is a marker interface for requests: an immutable description of one
// unit of work to perform. A request should have a single handler.
type Request interface{}

// Notification is a marker interface for notifications: an immutable
// description of an event that already occurred. A notification may have any
// number of listeners.
type Notification interface{}

// Topical lets a notification guide outward routing. Relays use Topic() when
// no explicit override is provided.
type Topical interface{ Topic() string }
