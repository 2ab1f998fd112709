// Command regionwatch follows the region summaries published by the API and
// logs each one. It stands in for the projection recommender that consumes
// the same subjects.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/projwiz/internal/adapters/nats"
	"github.com/samirrijal/projwiz/internal/core/domain"
	"github.com/samirrijal/projwiz/internal/pkg/config"
	"github.com/samirrijal/projwiz/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("projwiz-regionwatch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	durable := os.Getenv("REGIONWATCH_DURABLE")

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.NATS.SubjectPrefix, durable)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = sub.SubscribeRegions(ctx, func(ctx context.Context, s *domain.RegionSummary) error {
		slog.Info("region",
			"session_id", s.SessionID,
			"source", s.Source,
			"north", s.Fields.North,
			"south", s.Fields.South,
			"east", s.Fields.East,
			"west", s.Fields.West,
			"width_km", s.WidthMeters/1000,
			"height_km", s.HeightMeters/1000,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("watching region summaries", "prefix", cfg.NATS.SubjectPrefix, "durable", durable)
	<-ctx.Done()
	slog.Info("regionwatch stopped")
}
