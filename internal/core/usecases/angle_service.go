package usecases

import (
	"github.com/samirrijal/projwiz/internal/core/domain"
	"github.com/samirrijal/projwiz/internal/pkg/geospatial"
)

// AngleService exposes the region arithmetic without any session state.
type AngleService struct {
	opts RegionOptions
}

// NewAngleService creates a new AngleService.
func NewAngleService(opts RegionOptions) *AngleService {
	return &AngleService{opts: opts}
}

// Options returns the configured options.
func (s *AngleService) Options() RegionOptions { return s.opts }

// FormatLatitude renders a latitude as DMS text.
func (s *AngleService) FormatLatitude(lat float64) string {
	return s.opts.Format.Latitude(lat)
}

// FormatLongitude renders a longitude as DMS text, wrapping it first.
func (s *AngleService) FormatLongitude(lon float64) string {
	return s.opts.Format.Longitude(lon)
}

// Parse reads DMS or decimal text for the given axis.
func (s *AngleService) Parse(axis geospatial.Axis, text string) (float64, error) {
	return geospatial.Parse(axis, text)
}

// Readout renders the status-line text for a pointer position.
func (s *AngleService) Readout(lat, lon float64) string {
	return s.opts.Format.Readout(lat, lon)
}

// Default returns the full-world region with its fields.
func (s *AngleService) Default() (domain.BoundingBox, domain.BoundsFields) {
	box := domain.WorldBounds()
	return box, RenderFields(s.opts.Format, box)
}

// Normalize swaps reversed bounds and, when snap is set, pushes near-polar
// latitudes to the poles the way input commits do.
func (s *AngleService) Normalize(box domain.BoundingBox, snap bool) (domain.BoundingBox, domain.BoundsFields) {
	if snap {
		box.North, box.South = snapPolar(box.North, box.South, s.opts.PolarSnap)
	}
	n := NewBoundsNormalizer(s.opts.Format)
	n.SetBounds(box.North, box.South, box.East, box.West)
	return n.Bounds(), n.Fields()
}

// Fit derives a region inset from the given viewport.
func (s *AngleService) Fit(vp domain.Viewport) (domain.BoundingBox, domain.BoundsFields) {
	box := FitToView(vp, s.opts.Fit).Normalized()
	return box, RenderFields(s.opts.Format, box)
}

// Around returns the region within radiusMeters of a point.
func (s *AngleService) Around(lat, lon, radiusMeters float64) (domain.BoundingBox, domain.BoundsFields) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	if maxLon-minLon > 360 {
		minLon, maxLon = lon-180, lon+180
	}
	box := domain.BoundingBox{
		North: geospatial.ClampLatitude(maxLat),
		South: geospatial.ClampLatitude(minLat),
		East:  maxLon,
		West:  minLon,
	}.Normalized()
	return box, RenderFields(s.opts.Format, box)
}

func snapPolar(north, south, threshold float64) (float64, float64) {
	if threshold <= 0 {
		threshold = geospatial.DefaultPolarSnap
	}
	return geospatial.SnapPolar(north, south, threshold)
}
