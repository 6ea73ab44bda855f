package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	berr "github.com/next-trace/scg-dispatch/contract/errors"
)

// Concrete AMQP-backed Publisher.
//
// The publisher dials lazily and publishes in confirm mode: Forward returns
// only after the broker acks the message, so a lost notification surfaces as
// a fault on the forwarding call instead of disappearing. A broken channel is
// dropped and the next publish redials; retry policy stays with the caller.

const (
	notifyExchange   = "notifications"
	notifyExchangeTy = "topic"
)

type Config struct {
	URL         string
	ConnTimeout time.Duration
}

type amqpPublisher struct {
	cfg Config

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

func (p *amqpPublisher) Publish(ctx context.Context, m PubMsg) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}

	exchange := m.Exchange
	if exchange == "" {
		exchange = notifyExchange
	}

	var h amqp.Table
	if len(m.Headers) > 0 {
		h = amqp.Table{}
		for k, v := range m.Headers {
			h[k] = v
		}
	}

	dc, err := ch.PublishWithDeferredConfirmWithContext(
		ctx,
		exchange,
		m.RoutingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Headers:      h,
			ContentType:  "application/json",
			Body:         m.Body,
		},
	)
	if err != nil {
		p.drop(ch)
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-dc.Done():
	}

	if !dc.Acked() {
		return fmt.Errorf("%w: rabbitmq nacked delivery %d", berr.ErrForwardFailed, dc.DeliveryTag)
	}

	return nil
}

// channel returns the current channel, dialing a fresh connection when none
// is open. The exchange is declared and confirm mode enabled on every new
// channel.
func (p *amqpPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("%w: rabbitmq publisher closed", berr.ErrForwardFailed)
	}

	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	p.teardownLocked()

	conn, err := amqp.DialConfig(p.cfg.URL, amqp.Config{
		Properties: amqp.Table{"product": "scg-dispatch"},
		Dial:       amqp.DefaultDial(p.cfg.ConnTimeout),
	})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, err
	}

	if err := ch.ExchangeDeclare(notifyExchange, notifyExchangeTy, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, err
	}

	p.conn = conn
	p.ch = ch

	return ch, nil
}

// drop discards a channel that failed mid-publish so the next call redials.
// Another goroutine may have replaced it already; only drop our own.
func (p *amqpPublisher) drop(ch *amqp.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == ch {
		p.teardownLocked()
	}
}

func (p *amqpPublisher) teardownLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}

	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *amqpPublisher) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	p.teardownLocked()
}

// NewWithAMQPConn builds a confirm-mode AMQP publisher for the notifications
// exchange and returns a Relay and cleanup. The connection is dialed on first
// forward, not here.
func NewWithAMQPConn(cfg Config) (*Relay, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: rabbitmq url required", berr.ErrForwardFailed)
	}

	pub := &amqpPublisher{cfg: cfg}
	cleanup := func() { pub.close() }

	return New(pub), cleanup, nil
}
