package usecases

import (
	"math"
	"time"

	"github.com/samirrijal/projwiz/internal/core/domain"
	"github.com/samirrijal/projwiz/internal/pkg/geospatial"
)

// FitParams tunes FitToView. The defaults are empirical.
type FitParams struct {
	LatFactor      float64 `json:"lat_factor"`
	LonDivisor     float64 `json:"lon_divisor"`
	MaxLonHalfSpan float64 `json:"max_lon_half_span"`
}

// DefaultFitParams returns LatFactor 0.8, LonDivisor 2.5 and MaxLonHalfSpan 180.
func DefaultFitParams() FitParams {
	return FitParams{LatFactor: 0.8, LonDivisor: 2.5, MaxLonHalfSpan: 180}
}

// RegionOptions configures region sessions and the stateless angle service.
type RegionOptions struct {
	Format    geospatial.Formatter
	Fit       FitParams
	PolarSnap float64
}

// DefaultRegionOptions mirrors the defaults of the config package.
func DefaultRegionOptions() RegionOptions {
	return RegionOptions{
		Format:    geospatial.DefaultFormatter,
		Fit:       DefaultFitParams(),
		PolarSnap: geospatial.DefaultPolarSnap,
	}
}

// FitToView derives a region inset from the visible map: the latitude half-span
// is LatFactor times the shorter distance from the center to the top or bottom
// edge, the longitude half-span is the visible longitude span divided by
// LonDivisor, capped at MaxLonHalfSpan. Latitudes are clamped to the poles.
func FitToView(vp domain.Viewport, p FitParams) domain.BoundingBox {
	def := DefaultFitParams()
	if p.LatFactor <= 0 {
		p.LatFactor = def.LatFactor
	}
	if p.LonDivisor <= 0 {
		p.LonDivisor = def.LonDivisor
	}
	if p.MaxLonHalfSpan <= 0 {
		p.MaxLonHalfSpan = def.MaxLonHalfSpan
	}

	c := vp.Center
	dLat := math.Min(math.Abs(vp.NorthEast.Lat-c.Lat), math.Abs(c.Lat-vp.SouthWest.Lat)) * p.LatFactor
	dLon := math.Min((vp.NorthEast.Lon-vp.SouthWest.Lon)/p.LonDivisor, p.MaxLonHalfSpan)

	return domain.BoundingBox{
		North: geospatial.ClampLatitude(c.Lat + dLat),
		South: geospatial.ClampLatitude(c.Lat - dLat),
		East:  c.Lon + dLon,
		West:  c.Lon - dLon,
	}
}

// Summarize builds the payload handed to the projection recommender.
func Summarize(sessionID string, source domain.UpdateSource, box domain.BoundingBox, fields domain.BoundsFields, at time.Time) *domain.RegionSummary {
	center := box.Center()
	return &domain.RegionSummary{
		SessionID:    sessionID,
		Source:       source,
		Bounds:       box,
		Fields:       fields,
		Center:       center,
		LatSpan:      box.LatSpan(),
		LonSpan:      box.LonSpan(),
		WidthMeters:  geospatial.ParallelLength(center.Lat, box.LonSpan()),
		HeightMeters: geospatial.MeridianLength(box.South, box.North),
		UpdatedAt:    at,
	}
}
