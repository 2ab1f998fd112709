package domain

import "time"

// BoundsFields holds the DMS text shown in the four bound input boxes.
type BoundsFields struct {
	North string `json:"north"`
	South string `json:"south"`
	East  string `json:"east"`
	West  string `json:"west"`
}

// UpdateSource tells what kind of user action produced a bounds change.
type UpdateSource string

const (
	SourceStart UpdateSource = "start"
	SourceInput UpdateSource = "input"
	SourceEdit  UpdateSource = "edit"
	SourceFit   UpdateSource = "fit"
	SourceReset UpdateSource = "reset"
)

// RegionSummary is handed to the projection recommender after every bounds change.
type RegionSummary struct {
	SessionID    string       `json:"session_id,omitempty"`
	Source       UpdateSource `json:"source"`
	Bounds       BoundingBox  `json:"bounds"`
	Fields       BoundsFields `json:"fields"`
	Center       GeoPoint     `json:"center"`
	LatSpan      float64      `json:"lat_span"`
	LonSpan      float64      `json:"lon_span"`
	WidthMeters  float64      `json:"width_m"`
	HeightMeters float64      `json:"height_m"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
