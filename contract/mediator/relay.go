package mediator

import "context"

// Relay forwards notifications outward to a broker/transport after they have
// been handled in-process. Library users provide an implementation that maps
// to Kafka/NATS/RabbitMQ etc.; the core never serializes anything itself.
type Relay interface {
	Forward(ctx context.Context, n Notification, opts ForwardOptions) error
}

// ForwardOptions controls outward notification forwarding.
type ForwardOptions struct {
	TopicOverride string
	Key           string
	Headers       map[string]string
}
