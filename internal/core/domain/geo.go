package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is the region of interest selected on the map.
// Latitudes are in [-90, 90]; longitudes are usually in [-180, 180] but a box
// dragged across the antimeridian may extend past it.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// WorldBounds returns the full-world default region.
func WorldBounds() BoundingBox {
	return BoundingBox{North: 90, South: -90, East: 180, West: -180}
}

// Normalized returns a copy with west/east and north/south swapped when reversed.
func (b BoundingBox) Normalized() BoundingBox {
	if b.West > b.East {
		b.West, b.East = b.East, b.West
	}
	if b.North < b.South {
		b.North, b.South = b.South, b.North
	}
	return b
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() GeoPoint {
	return GeoPoint{Lat: (b.North + b.South) / 2, Lon: (b.East + b.West) / 2}
}

// LatSpan returns the north-south extent in degrees.
func (b BoundingBox) LatSpan() float64 { return b.North - b.South }

// LonSpan returns the west-east extent in degrees.
func (b BoundingBox) LonSpan() float64 { return b.East - b.West }

// SouthWest returns the south-west corner.
func (b BoundingBox) SouthWest() GeoPoint { return GeoPoint{Lat: b.South, Lon: b.West} }

// NorthEast returns the north-east corner.
func (b BoundingBox) NorthEast() GeoPoint { return GeoPoint{Lat: b.North, Lon: b.East} }

// Viewport is the part of the map currently visible in the widget.
type Viewport struct {
	Center    GeoPoint `json:"center"`
	NorthEast GeoPoint `json:"north_east"`
	SouthWest GeoPoint `json:"south_west"`
	Zoom      float64  `json:"zoom"`
}
