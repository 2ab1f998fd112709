package usecases

import (
	"github.com/samirrijal/projwiz/internal/core/domain"
	"github.com/samirrijal/projwiz/internal/pkg/geospatial"
)

// Field names reported by ParseFields when a value fell back.
const (
	FieldNorth = "north"
	FieldSouth = "south"
	FieldEast  = "east"
	FieldWest  = "west"
)

// BoundsNormalizer owns the region of one session. SetBounds is the only way
// to change it, and it keeps North >= South and East >= West.
type BoundsNormalizer struct {
	box    domain.BoundingBox
	format geospatial.Formatter
}

// NewBoundsNormalizer starts with the full-world region.
func NewBoundsNormalizer(format geospatial.Formatter) *BoundsNormalizer {
	return &BoundsNormalizer{box: domain.WorldBounds(), format: format}
}

// SetBounds stores the four limits, swapping reversed pairs. It never fails;
// zero-area boxes are allowed.
func (n *BoundsNormalizer) SetBounds(north, south, east, west float64) domain.BoundingBox {
	n.box = domain.BoundingBox{North: north, South: south, East: east, West: west}.Normalized()
	return n.box
}

// Bounds returns the current region.
func (n *BoundsNormalizer) Bounds() domain.BoundingBox {
	return n.box
}

// Fields renders the current region as DMS text.
func (n *BoundsNormalizer) Fields() domain.BoundsFields {
	return RenderFields(n.format, n.box)
}

// ParseFields reads the four input boxes. A field that does not parse keeps the
// currently stored value and its name is returned in fallbacks. The result is
// not normalized.
func (n *BoundsNormalizer) ParseFields(f domain.BoundsFields) (box domain.BoundingBox, fallbacks []string) {
	parse := func(name, text string, axis geospatial.Axis, current float64) float64 {
		v, err := geospatial.Parse(axis, text)
		if err != nil {
			fallbacks = append(fallbacks, name)
			return current
		}
		return v
	}

	box.North = parse(FieldNorth, f.North, geospatial.AxisLatitude, n.box.North)
	box.South = parse(FieldSouth, f.South, geospatial.AxisLatitude, n.box.South)
	box.East = parse(FieldEast, f.East, geospatial.AxisLongitude, n.box.East)
	box.West = parse(FieldWest, f.West, geospatial.AxisLongitude, n.box.West)
	return box, fallbacks
}

// RenderFields formats a region for the input boxes.
func RenderFields(format geospatial.Formatter, box domain.BoundingBox) domain.BoundsFields {
	return domain.BoundsFields{
		North: format.Latitude(box.North),
		South: format.Latitude(box.South),
		East:  format.Longitude(box.East),
		West:  format.Longitude(box.West),
	}
}
