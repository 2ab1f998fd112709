package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/projwiz/internal/core/domain"
)

// Subscriber implements ports.OutputSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	prefix  string
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own connection. An empty durable
// name creates an ephemeral consumer.
func NewSubscriber(url, prefix, durable string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, prefix: prefix, durable: durable}, nil
}

// SubscribeRegions delivers every region summary to handler. Messages the
// handler rejects are redelivered up to three times; undecodable ones are dropped.
func (s *Subscriber) SubscribeRegions(ctx context.Context, handler func(ctx context.Context, summary *domain.RegionSummary) error) error {
	opts := []nats.SubOpt{
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.DeliverNew(),
	}
	if s.durable != "" {
		opts = append(opts, nats.Durable(s.durable))
	}

	sub, err := s.js.Subscribe(s.prefix+".region.>", func(msg *nats.Msg) {
		var summary domain.RegionSummary
		if err := json.Unmarshal(msg.Data, &summary); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &summary); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, opts...)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
