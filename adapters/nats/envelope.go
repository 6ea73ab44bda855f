package nats

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"

	cmed "github.com/next-trace/scg-dispatch/contract/mediator"
)

// envelope is the wire shape of a forwarded notification.
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
	if name == "" { // unnamed (e.g., map/struct literal)
		name = t.String()
	}

	return name
}
