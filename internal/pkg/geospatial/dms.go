package geospatial

import (
	"fmt"
	"math"
)

// DefaultPrecision is the number of decimals shown for arc-seconds.
const DefaultPrecision = 1

// MaxPrecision bounds Formatter.Precision so that the arc-second count fits an int64.
const MaxPrecision = 6

// Formatter renders decimal degrees as degrees-minutes-seconds text such as
// 43° 15' 47.2" N.
//
// The absolute value is rounded once, half away from zero, to a whole number of
// 10^-Precision arc-seconds and then split by integer division, so a value like
// 44.99999 renders as 45° 0' 0.0" N and never as 44° 59' 60.0" N.
type Formatter struct {
	Precision int
}

// DefaultFormatter uses one decimal of arc-second.
var DefaultFormatter = Formatter{Precision: DefaultPrecision}

// Latitude renders lat with an N or S hemisphere letter.
func (f Formatter) Latitude(lat float64) string {
	return f.format(lat, 'N', 'S')
}

// Longitude renders lon with an E or W hemisphere letter after wrapping it
// around the antimeridian.
func (f Formatter) Longitude(lon float64) string {
	return f.format(WrapLongitude(lon), 'E', 'W')
}

func (f Formatter) precision() int {
	switch {
	case f.Precision < 0:
		return 0
	case f.Precision > MaxPrecision:
		return MaxPrecision
	}
	return f.Precision
}

func (f Formatter) format(v float64, pos, neg byte) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	p := f.precision()
	var scale int64 = 1
	for i := 0; i < p; i++ {
		scale *= 10
	}

	units := int64(math.Round(math.Abs(v) * 3600 * float64(scale)))
	hemi := pos
	if v < 0 && units > 0 {
		hemi = neg
	}

	perMinute := 60 * scale
	perDegree := 60 * perMinute
	deg := units / perDegree
	rem := units % perDegree
	mins := rem / perMinute
	sec := float64(rem%perMinute) / float64(scale)

	return fmt.Sprintf("%d° %d' %.*f\" %c", deg, mins, p, sec, hemi)
}

// LatitudeToDMS renders a latitude with DefaultFormatter.
func LatitudeToDMS(lat float64) string {
	return DefaultFormatter.Latitude(lat)
}

// LongitudeToDMS renders a longitude with DefaultFormatter.
func LongitudeToDMS(lon float64) string {
	return DefaultFormatter.Longitude(lon)
}

// Readout is the status-line text for the map position under the pointer.
func (f Formatter) Readout(lat, lon float64) string {
	return f.Latitude(lat) + "  |  " + f.Longitude(lon)
}
