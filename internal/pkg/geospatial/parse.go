package geospatial

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var (
	// ErrMalformedAngle is returned for text that is not a DMS or decimal angle.
	ErrMalformedAngle = errors.New("malformed angle")
	// ErrLatitudeRange is returned for latitudes beyond the poles.
	ErrLatitudeRange = errors.New("latitude out of range")
)

// Axis tells the parser which hemisphere letters are valid.
type Axis int

const (
	AxisLatitude Axis = iota
	AxisLongitude
)

func (a Axis) String() string {
	if a == AxisLongitude {
		return "longitude"
	}
	return "latitude"
}

// ParseAxis maps "latitude"/"lat" and "longitude"/"lon"/"lng" to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latitude", "lat":
		return AxisLatitude, nil
	case "longitude", "lon", "lng":
		return AxisLongitude, nil
	}
	return AxisLatitude, fmt.Errorf("unknown axis %q", s)
}

func isSeparator(r rune) bool {
	switch r {
	case '°', 'º', '\'', '′', '´', '’', '"', '″', '”', ':', ',', ';':
		return true
	}
	return unicode.IsSpace(r)
}

// ParseLatitude reads a latitude such as `43° 15' 47.2" N`, `43 15 47.2 n`,
// `S 12 30`, `-12.5` or `12.5S`. South is negative.
func ParseLatitude(text string) (float64, error) {
	v, err := parseAngle(text, AxisLatitude)
	if err != nil {
		return 0, err
	}
	if v > 90 || v < -90 {
		return 0, fmt.Errorf("%w: %q", ErrLatitudeRange, text)
	}
	return v, nil
}

// MaxLongitude is the largest longitude magnitude ParseLongitude accepts.
const MaxLongitude = 3600.0

// ParseLongitude reads a longitude in the same forms as ParseLatitude with E/W
// hemisphere letters. West is negative. The value is not wrapped, but anything
// beyond ten turns is rejected as malformed.
func ParseLongitude(text string) (float64, error) {
	v, err := parseAngle(text, AxisLongitude)
	if err != nil {
		return 0, err
	}
	if v > MaxLongitude || v < -MaxLongitude {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAngle, text)
	}
	return v, nil
}

// Parse dispatches on axis.
func Parse(axis Axis, text string) (float64, error) {
	if axis == AxisLongitude {
		return ParseLongitude(text)
	}
	return ParseLatitude(text)
}

// LatitudeOr parses text as a latitude and returns fallback when it cannot.
func LatitudeOr(text string, fallback float64) float64 {
	v, err := ParseLatitude(text)
	if err != nil {
		return fallback
	}
	return v
}

// LongitudeOr parses text as a longitude and returns fallback when it cannot.
func LongitudeOr(text string, fallback float64) float64 {
	v, err := ParseLongitude(text)
	if err != nil {
		return fallback
	}
	return v
}

func parseAngle(text string, axis Axis) (float64, error) {
	malformed := func() (float64, error) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAngle, text)
	}

	var (
		numbers []string
		current strings.Builder
		hemi    rune
		signed  bool
		sign    = 1.0
	)
	flush := func() {
		if current.Len() > 0 {
			numbers = append(numbers, current.String())
			current.Reset()
		}
	}

	// Fullwidth digits, letters and signs from East Asian keyboards read as ASCII.
	for _, r := range width.Fold.String(text) {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			current.WriteRune(r)
		case r == '-' || r == '+':
			if signed || len(numbers) > 0 || current.Len() > 0 {
				return malformed()
			}
			signed = true
			if r == '-' {
				sign = -1
			}
		case isSeparator(r):
			flush()
		default:
			flush()
			letter := unicode.ToUpper(r)
			if hemi != 0 {
				return malformed()
			}
			switch {
			case axis == AxisLatitude && (letter == 'N' || letter == 'S'),
				axis == AxisLongitude && (letter == 'E' || letter == 'W'):
				hemi = letter
			default:
				return malformed()
			}
		}
	}
	flush()

	if len(numbers) == 0 || len(numbers) > 3 {
		return malformed()
	}
	if signed && hemi != 0 {
		return malformed()
	}

	var parts [3]float64
	for i, n := range numbers {
		if i < len(numbers)-1 && strings.Contains(n, ".") {
			return malformed()
		}
		v, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return malformed()
		}
		parts[i] = v
	}

	if hemi == 'S' || hemi == 'W' {
		sign = -1
	}
	return sign * (parts[0] + parts[1]/60 + parts[2]/3600), nil
}
