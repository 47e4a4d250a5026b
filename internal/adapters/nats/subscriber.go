package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hotspotmap/internal/core/ports"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// Connection steps, replaced in tests.
var (
	dial      = RawConn
	jetStream = func(c *nats.Conn) (nats.JetStreamContext, error) { return c.JetStream() }
	closeConn = func(c *nats.Conn) { c.Close() }
)

// NewSubscriber connects to NATS. durable names the push consumer; each API
// replica should use its own so every replica sees every event.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetStream(conn)
	if err != nil {
		closeConn(conn)
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeDatasetLoaded attaches a durable push consumer to the dataset
// stream. Handler errors are redelivered up to three times.
func (s *Subscriber) SubscribeDatasetLoaded(ctx context.Context, handler func(ctx context.Context, ev *ports.DatasetLoaded) error) error {
	sub, err := s.js.Subscribe(SubjectDatasetLoaded, func(msg *nats.Msg) {
		var ev ports.DatasetLoaded
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("drop malformed dataset event", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.DeliverNew(),
	)
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
