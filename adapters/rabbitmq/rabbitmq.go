package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	berr "github.com/next-trace/scg-dispatch/contract/errors"
	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
)

const notifyPrefix = "notify."

type PubMsg struct {
	Exchange   string
	RoutingKey string
	Body       []byte
	Headers    map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, m PubMsg) error
}

// Relay implements mediator.Relay using an injected AMQP-like Publisher.
type Relay struct {
	Publisher  Publisher
	Propagator cmed.HeaderPropagator // optional, for context propagation into headers
}

var _ cmed.Relay = (*Relay)(nil)

func New(p Publisher) *Relay { return &Relay{Publisher: p} }

// NewWithPropagator allows configuring a HeaderPropagator for context propagation.
func NewWithPropagator(p Publisher, hp cmed.HeaderPropagator) *Relay {
	return &Relay{Publisher: p, Propagator: hp}
}

func (r *Relay) Forward(ctx context.Context, n cmed.Notification, opts cmed.ForwardOptions) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	body, err := marshalEnvelope(n)
	if err != nil {
		return fmt.Errorf("rabbitmq forward serialize: %w", errors.Join(berr.ErrSerializationFailed, err))
	}

	headers := forwardHeaders(n, opts)
	if r.Propagator != nil {
		r.Propagator.Inject(ctx, headers)
	}

	msg := PubMsg{
		Exchange:   "",
		RoutingKey: routingForNotification(n, opts),
		Body:       body,
		Headers:    headers,
	}

	if err := r.Publisher.Publish(ctx, msg); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("rabbitmq forward publish: %w", errors.Join(berr.ErrForwardFailed, err))
	}

	return nil
}

func (r *Relay) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.Publisher == nil {
		return fmt.Errorf("rabbitmq forward: %w", berr.ErrForwardFailed)
	}

	return nil
}

// helpers

type envelope struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EmittedAt time.Time `json:"emitted_at"`
	Payload   any       `json:"payload"`
}

func marshalEnvelope(n cmed.Notification) ([]byte, error) {
	return json.Marshal(envelope{
		ID:        uuid.NewString(),
		Name:      typeName(n),
		EmittedAt: time.Now().UTC(),
		Payload:   n,
	})
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		name = t.String()
	}

	return name
}

func routingForNotification(n cmed.Notification, o cmed.ForwardOptions) string {
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
