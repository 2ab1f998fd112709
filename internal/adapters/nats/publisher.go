package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/projwiz/internal/core/domain"
)

// StreamName is the JetStream stream holding region notifications.
const StreamName = "PROJWIZ_REGIONS"

// publishTimeout bounds a single publish when the caller's context has no
// earlier deadline.
const publishTimeout = 2 * time.Second

// Publisher implements ports.OutputPublisher using NATS JetStream.
type Publisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	prefix  string
	timeout time.Duration
}

// connect opens a connection that keeps retrying in the background.
func connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("projwiz"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// NewPublisher connects to NATS and ensures the region stream exists.
func NewPublisher(url, prefix string) (*Publisher, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{prefix + ".region.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    10 * time.Minute,
		Storage:   nats.MemoryStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, prefix: prefix, timeout: publishTimeout}, nil
}

// RegionSubject returns the subject a session's summaries are published on.
func RegionSubject(prefix, sessionID string) string {
	if sessionID == "" {
		sessionID = "anonymous"
	}
	// Subject tokens cannot contain dots or wildcards.
	token := strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(sessionID)
	return prefix + ".region." + token
}

// PublishRegion publishes a region summary as JSON and waits for the stream
// acknowledgement, giving up after the publish timeout.
func (p *Publisher) PublishRegion(ctx context.Context, summary *domain.RegionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	timeout := p.timeout
	if timeout <= 0 {
		timeout = publishTimeout
	}
	// While disconnected the message sits in the reconnect buffer and the ack never comes.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err = p.js.Publish(RegionSubject(p.prefix, summary.SessionID), data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("publish region: %w", err)
	}
	return nil
}

// Conn exposes the underlying connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
