package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/projwiz/internal/core/ports"
	"github.com/samirrijal/projwiz/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Angles *usecases.AngleService
	// Output receives region summaries of every WebSocket session, in addition
	// to the session's own client. Optional.
	Output ports.OutputPublisher
	NATS   *nats.Conn
}
