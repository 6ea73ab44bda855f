package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	berr "github.com/next-trace/scg-dispatch/contract/errors"
)

// Concrete NATS-backed Client.
//
// Core NATS buffers writes, so a publish alone proves nothing about delivery.
// The client flushes after every publish with a bounded deadline; a dead
// connection surfaces as a fault on the forwarding call instead of a silently
// queued message.

const defaultFlushTimeout = 5 * time.Second

type Config struct {
	URL           string
	Name          string
	ConnTimeout   time.Duration
	FlushTimeout  time.Duration
	MaxReconnects int
}

type flushingClient struct {
	nc    *nats.Conn
	flush time.Duration
}

func (c flushingClient) Publish(subject string, data []byte, headers map[string]string) error {
	msg := nats.NewMsg(subject)
	msg.Data = data

	for k, v := range headers {
		msg.Header.Set(k, v)
	}

	if err := c.nc.PublishMsg(msg); err != nil {
		return err
	}

	return c.nc.FlushTimeout(c.flush)
}

func connectOptions(cfg Config) []nats.Option {
	opts := make([]nats.Option, 0, 3)

	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}

	if cfg.ConnTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnTimeout))
	}

	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}

	return opts
}

// NewWithNATS connects to the given server and returns a Relay and a cleanup
// that drains the connection. Draining lets in-flight publishes finish before
// the socket closes.
func NewWithNATS(cfg Config) (*Relay, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: nats url required", berr.ErrForwardFailed)
	}

	flush := cfg.FlushTimeout
	if flush <= 0 {
		flush = defaultFlushTimeout
	}

	nc, err := nats.Connect(cfg.URL, connectOptions(cfg)...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: nats connect: %w", berr.ErrForwardFailed, err)
	}

	cleanup := func() {
		if !nc.IsClosed() {
			_ = nc.Drain()
		}
	}

	return New(flushingClient{nc: nc, flush: flush}), cleanup, nil
}
