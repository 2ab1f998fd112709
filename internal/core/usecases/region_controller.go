package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/projwiz/internal/core/domain"
	"github.com/samirrijal/projwiz/internal/core/ports"
	"github.com/samirrijal/projwiz/internal/pkg/geospatial"
	"github.com/samirrijal/projwiz/internal/pkg/metrics"
	"github.com/samirrijal/projwiz/internal/pkg/telemetry"
)

// RegionPorts are the collaborators a RegionController drives.
type RegionPorts struct {
	Widget ports.MapWidget
	Form   ports.InputForm
	Status ports.StatusLine
	Output ports.OutputPublisher
}

// RegionController handles the events of one map page. It is not safe for
// concurrent use; callers feed it events one at a time.
type RegionController struct {
	id     string
	opts   RegionOptions
	bounds *BoundsNormalizer
	ports  RegionPorts
	log    *slog.Logger
	now    func() time.Time
}

// NewRegionController creates a controller holding the full-world region.
func NewRegionController(id string, p RegionPorts, opts RegionOptions, logger *slog.Logger) *RegionController {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegionController{
		id:     id,
		opts:   opts,
		bounds: NewBoundsNormalizer(opts.Format),
		ports:  p,
		log:    logger.With("session_id", id),
		now:    time.Now,
	}
}

// ID returns the session identifier.
func (rc *RegionController) ID() string { return rc.id }

// Bounds returns the current region.
func (rc *RegionController) Bounds() domain.BoundingBox { return rc.bounds.Bounds() }

// Fields returns the current region as DMS text.
func (rc *RegionController) Fields() domain.BoundsFields { return rc.bounds.Fields() }

// Start shows the full-world region and enables editing.
func (rc *RegionController) Start(ctx context.Context) error {
	world := domain.WorldBounds()
	rc.bounds.SetBounds(world.North, world.South, world.East, world.West)
	return rc.refresh(ctx, domain.SourceStart)
}

// CommitInputs applies the text of the four input boxes. Fields that do not
// parse keep their previous value; the boxes are always re-rendered from the
// stored region, so bad text never survives a commit.
func (rc *RegionController) CommitInputs(ctx context.Context, fields domain.BoundsFields) error {
	box, fallbacks := rc.bounds.ParseFields(fields)
	for _, name := range fallbacks {
		axis := "latitude"
		if name == FieldEast || name == FieldWest {
			axis = "longitude"
		}
		metrics.ParseFallbacks.WithLabelValues(axis).Inc()
		rc.log.Warn("unparseable bound, keeping previous value", "field", name)
	}

	box.North, box.South = snapPolar(box.North, box.South, rc.opts.PolarSnap)
	rc.bounds.SetBounds(box.North, box.South, box.East, box.West)
	return rc.refresh(ctx, domain.SourceInput)
}

// RegionEdited applies corners reported by the rectangle editor after a drag or
// resize. The rectangle already shows them, so only the inputs are refreshed.
// Latitudes are clamped to the poles.
func (rc *RegionController) RegionEdited(ctx context.Context, southWest, northEast domain.GeoPoint) error {
	north := geospatial.ClampLatitude(northEast.Lat)
	south := geospatial.ClampLatitude(southWest.Lat)
	rc.bounds.SetBounds(north, south, northEast.Lon, southWest.Lon)
	if err := rc.ports.Form.SetFields(ctx, rc.bounds.Fields()); err != nil {
		return fmt.Errorf("set fields: %w", err)
	}
	rc.publish(ctx, domain.SourceEdit)
	return nil
}

// DragStarted hides the edit handles while the rectangle is moved.
func (rc *RegionController) DragStarted(ctx context.Context) error {
	return rc.setEditing(ctx, false)
}

// DragEnded restores the edit handles.
func (rc *RegionController) DragEnded(ctx context.Context) error {
	return rc.setEditing(ctx, true)
}

// FitToView replaces the region with one inset from the visible map.
func (rc *RegionController) FitToView(ctx context.Context) error {
	vp, err := rc.ports.Widget.Viewport(ctx)
	if err != nil {
		return fmt.Errorf("viewport: %w", err)
	}
	box := FitToView(vp, rc.opts.Fit)
	rc.bounds.SetBounds(box.North, box.South, box.East, box.West)
	return rc.refresh(ctx, domain.SourceFit)
}

// Reset returns to the full-world region and zooms the map all the way out.
func (rc *RegionController) Reset(ctx context.Context) error {
	world := domain.WorldBounds()
	rc.bounds.SetBounds(world.North, world.South, world.East, world.West)
	if err := rc.refresh(ctx, domain.SourceReset); err != nil {
		return err
	}
	if err := rc.ports.Widget.SetView(ctx, domain.GeoPoint{}, 0); err != nil {
		return fmt.Errorf("set view: %w", err)
	}
	return nil
}

// CenterView zooms out and centers the map on the region's central meridian.
func (rc *RegionController) CenterView(ctx context.Context) error {
	center := domain.GeoPoint{Lat: 0, Lon: rc.bounds.Bounds().Center().Lon}
	if err := rc.ports.Widget.SetView(ctx, center, 0); err != nil {
		return fmt.Errorf("set view: %w", err)
	}
	return nil
}

// ZoomToRegion fits the map view to the region.
func (rc *RegionController) ZoomToRegion(ctx context.Context) error {
	if err := rc.ports.Widget.FitView(ctx, rc.bounds.Bounds()); err != nil {
		return fmt.Errorf("fit view: %w", err)
	}
	return nil
}

// PointerMoved shows the position under the pointer in the status line.
func (rc *RegionController) PointerMoved(ctx context.Context, lat, lon float64) error {
	return rc.ports.Status.SetStatus(ctx, rc.opts.Format.Readout(lat, lon))
}

// PointerLeft clears the status line.
func (rc *RegionController) PointerLeft(ctx context.Context) error {
	return rc.ports.Status.SetStatus(ctx, "")
}

// refresh pushes the stored region to the inputs and the rectangle, then to the output.
func (rc *RegionController) refresh(ctx context.Context, source domain.UpdateSource) error {
	if err := rc.ports.Form.SetFields(ctx, rc.bounds.Fields()); err != nil {
		return fmt.Errorf("set fields: %w", err)
	}
	if err := rc.setEditing(ctx, false); err != nil {
		return err
	}
	if err := rc.ports.Widget.SetEditableRegion(ctx, rc.bounds.Bounds()); err != nil {
		return fmt.Errorf("set region: %w", err)
	}
	if err := rc.setEditing(ctx, true); err != nil {
		return err
	}
	rc.publish(ctx, source)
	return nil
}

func (rc *RegionController) setEditing(ctx context.Context, enabled bool) error {
	if err := rc.ports.Widget.SetEditing(ctx, enabled); err != nil {
		return fmt.Errorf("set editing %t: %w", enabled, err)
	}
	return nil
}

// publish logs delivery errors instead of returning them.
func (rc *RegionController) publish(ctx context.Context, source domain.UpdateSource) {
	metrics.RegionUpdates.WithLabelValues(string(source)).Inc()
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(telemetry.AttrSource, string(source)))
	if rc.ports.Output == nil {
		return
	}
	summary := Summarize(rc.id, source, rc.bounds.Bounds(), rc.bounds.Fields(), rc.now())
	if err := rc.ports.Output.PublishRegion(ctx, summary); err != nil {
		metrics.OutputPublishErrors.Inc()
		rc.log.Warn("publish region failed", "source", source, "error", err)
	}
}
