package ports

import (
	"context"

	"github.com/samirrijal/projwiz/internal/core/domain"
)

// OutputPublisher hands region summaries to the projection recommender.
type OutputPublisher interface {
	PublishRegion(ctx context.Context, summary *domain.RegionSummary) error
}

// OutputSubscriber receives region summaries published by API sessions.
type OutputSubscriber interface {
	SubscribeRegions(ctx context.Context, handler func(ctx context.Context, summary *domain.RegionSummary) error) error
}
