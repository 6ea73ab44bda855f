package kafka

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

// Writer is a minimal Kafka-like writer interface.
// Users can adapt segmentio/kafka-go or any other client to this.
type Writer interface {
	Write(topic string, key, value []byte, headers map[string]string) error
}

// Relay implements mediator.Relay using an injected Writer.
type Relay struct {
	Writer Writer
}

var _ cmed.Relay = (*Relay)(nil)

// New creates a new Kafka relay instance with the provided writer.
func New(w Writer) *Relay { return &Relay{Writer: w} }

func (r *Relay) Forward(ctx context.Context, n cmed.Notification, opts cmed.ForwardOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.Writer == nil {
		return fmt.Errorf("kafka forward: %w", berr.ErrForwardFailed)
	}

	val, err := marshalEnvelope(n)
	if err != nil {
		return fmt.Errorf("kafka forward serialize: %w", errors.Join(berr.ErrSerializationFailed, err))
	}

	topic := topicForNotification(n, opts)
	key := []byte(opts.Key)
	headers := forwardHeaders(n, opts)

	if err = r.Writer.Write(topic, key, val, headers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// separate return from preceding multi-line block (wsl)
		return fmt.Errorf("kafka forward write: %w", errors.Join(berr.ErrForwardFailed, err))
	}

	return nil
}

// helpers (duplicated across adapters for simplicity and test isolation)

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

func topicForNotification(n cmed.Notification, o cmed.ForwardOptions) string {
	if o.TopicOverride != "" {
		return o.TopicOverride
	}

	if tp, ok := n.(cmed.Topical); ok {
		return tp.Topic()
	}

	return notifyPrefix + typeName(n)
}

func forwardHeaders(n cmed.Notification, o cmed.ForwardOptions) map[string]string {
	h := make(map[string]string, len(o.Headers)+1)
	for k, v := range o.Headers {
		h[k] = v
	}

	h["notification"] = typeName(n)

	return h
}
