package ports

import (
	"context"

	"github.com/samirrijal/projwiz/internal/core/domain"
)

// MapWidget is the slice of the map widget the region controller drives.
type MapWidget interface {
	// SetEditableRegion moves the editable rectangle to box.
	SetEditableRegion(ctx context.Context, box domain.BoundingBox) error
	// SetEditing turns the rectangle's drag/resize handles on or off.
	// Self-intersection is always disallowed while enabled.
	SetEditing(ctx context.Context, enabled bool) error
	// Viewport reports the currently visible part of the map.
	Viewport(ctx context.Context) (domain.Viewport, error)
	// SetView centers the map on center at the given zoom level.
	SetView(ctx context.Context, center domain.GeoPoint, zoom float64) error
	// FitView zooms the map so box fills the view.
	FitView(ctx context.Context, box domain.BoundingBox) error
}

// InputForm holds the four bound text boxes.
type InputForm interface {
	SetFields(ctx context.Context, fields domain.BoundsFields) error
}

// StatusLine shows the pointer position. An empty text clears it.
type StatusLine interface {
	SetStatus(ctx context.Context, text string) error
}
