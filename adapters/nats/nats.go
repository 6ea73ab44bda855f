package nats

import (
	"context"
	"errors"
	"fmt"

	berr "github.com/next-trace/scg-dispatch/contract/errors"
	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
)

const notifyPrefix = "notify."

// Client is a minimal NATS-like publisher interface decoupled from any concrete library.
// Users can provide a wrapper around their NATS connection to satisfy this.
type Client interface {
	// Publish publishes a message to a subject with optional headers.
	Publish(subject string, data []byte, headers map[string]string) error
}

// Relay implements mediator.Relay using an injected NATS-like Client.
// Forwarded notifications are wrapped in a JSON envelope and published to
// `notify.<TypeName>` unless the notification or options say otherwise.
type Relay struct {
	Client Client
}

// Ensure Relay implements the contract.
var _ cmed.Relay = (*Relay)(nil)

// New creates a new NATS relay instance with the provided client.
func New(c Client) *Relay { return &Relay{Client: c} }

func (r *Relay) Forward(ctx context.Context, n cmed.Notification, opts cmed.ForwardOptions) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	body, err := marshalEnvelope(n)
	if err != nil {
		return fmt.Errorf("nats forward serialize: %w", errors.Join(berr.ErrSerializationFailed, err))
	}

	subj := subjectForNotification(n, opts)
	headers := forwardHeaders(n, opts)

	if err := r.Client.Publish(subj, body, headers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("nats forward publish: %w", errors.Join(berr.ErrForwardFailed, err))
	}

	return nil
}

func (r *Relay) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.Client == nil {
		return fmt.Errorf("nats forward: %w", berr.ErrForwardFailed)
	}

	return nil
}

// helpers

func subjectForNotification(n cmed.Notification, o cmed.ForwardOptions) string {
	if o.TopicOverride != "" {
		return o.TopicOverride
	}

	if tp, ok := n.(cmed.Topical); ok {
		return tp.Topic()
	}

	return notifyPrefix + typeName(n)
}

func forwardHeaders(n cmed.Notification, o cmed.ForwardOptions) map[string]string {
	h := make(map[string]string, len(o.Headers)+2)
	for k, v := range o.Headers {
		h[k] = v
	}

	h["notification"] = typeName(n)

	if o.Key != "" {
		h["key"] = o.Key
	}

	return h
}
