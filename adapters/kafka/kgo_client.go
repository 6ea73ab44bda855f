//go:build franz

package kafka

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/scram"

	berr "github.com/next-trace/scg-dispatch/contract/errors"
)

// Concrete franz-go producer.
//
// The writer produces synchronously with acks from all in-sync replicas and
// the idempotent producer left on, which is what a notification relay wants:
// Forward reports a fault when the record did not land, and retries cannot
// duplicate it. Every produce runs under a bounded deadline so a partitioned
// broker cannot stall the forwarding call forever.

const defaultProduceTimeout = 10 * time.Second

// SCRAMAuth carries SASL SCRAM-SHA-256 credentials.
type SCRAMAuth struct {
	User string
	Pass string
}

type Config struct {
	Brokers        []string
	ClientID       string
	TLS            *tls.Config
	SCRAM          *SCRAMAuth
	ProduceTimeout time.Duration
}

type kgoWriter struct {
	cl      *kgo.Client
	timeout time.Duration
}

func (w kgoWriter) Write(topic string, key, value []byte, headers map[string]string) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	rec := kgo.KeySliceRecord(key, value)
	rec.Topic = topic

	for k, v := range headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	return w.cl.ProduceSync(ctx, rec).FirstErr()
}

func clientOptions(cfg Config) []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}

	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	if cfg.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(cfg.TLS))
	}

	if cfg.SCRAM != nil {
		auth := scram.Auth{User: cfg.SCRAM.User, Pass: cfg.SCRAM.Pass}
		opts = append(opts, kgo.SASL(auth.AsSha256Mechanism()))
	}

	return opts
}

// NewWithKgo builds a Kafka-backed Relay on a franz-go client and returns it
// with a cleanup that flushes and closes the client.
func NewWithKgo(cfg Config) (*Relay, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("%w: kafka brokers required", berr.ErrForwardFailed)
	}

	timeout := cfg.ProduceTimeout
	if timeout <= 0 {
		timeout = defaultProduceTimeout
	}

	cl, err := kgo.NewClient(clientOptions(cfg)...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: kafka client init: %w", berr.ErrForwardFailed, err)
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		_ = cl.Flush(ctx)
		cl.Close()
	}

	return New(kgoWriter{cl: cl, timeout: timeout}), cleanup, nil
}
