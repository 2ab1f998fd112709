package geospatial

import "math"

// DefaultPolarSnap is the latitude beyond which rectangle edits snap to the pole.
const DefaultPolarSnap = 85.0

// WrapLongitude brings a longitude outside [-180, 180] back into (-180, 180]
// by whole turns. Values already inside the range, including -180, are kept.
func WrapLongitude(lon float64) float64 {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return lon
	}
	if lon >= -180 && lon <= 180 {
		return lon
	}
	// Remainder lands in [-180, 180]; the open end of the range is -180.
	lon = math.Remainder(lon, 360)
	if lon == -180 {
		lon = 180
	}
	return lon
}

// ClampLatitude limits a latitude to [-90, 90].
func ClampLatitude(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// SnapPolar pushes a north bound above threshold to 90 and a south bound below
// -threshold to -90. The rectangle editor misbehaves close to the poles.
func SnapPolar(north, south, threshold float64) (float64, float64) {
	if north > threshold {
		north = 90
	}
	if south < -threshold {
		south = -90
	}
	return north, south
}
