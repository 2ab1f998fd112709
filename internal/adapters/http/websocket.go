package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/projwiz/internal/pkg/logging"
	"github.com/samirrijal/projwiz/internal/pkg/metrics"
)

const pingInterval = 30 * time.Second

// WebSocketHandler returns a handler that upgrades to WebSocket and runs
// one region-selection session per connection.
// The server first sends {"type":"session","session":"<id>"} followed by the
// full-world region. Clients then send events such as
// {"type":"input_commit","fields":{"north":"10° 0' 0.0\" N",...}}.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := uuid.NewString()
		remoteAddr := c.RemoteAddr().String()
		log := logging.Session(slog.Default(), id, remoteAddr)
		log.Info("ws client connected")

		metrics.ActiveSessions.Inc()
		defer metrics.ActiveSessions.Dec()

		var mu sync.Mutex
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		session := NewSession(id, writeJSON, deps, log)
		if err := session.Start(ctx); err != nil {
			log.Warn("ws session start failed", "error", err)
			return
		}

		// Keep-alive ping
		go func() {
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			if err := session.HandleMessage(ctx, msg); err != nil {
				break
			}
		}

		log.Info("ws client disconnected")
	}
}
