package http

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/projwiz/internal/core/domain"
	"github.com/samirrijal/projwiz/internal/pkg/geospatial"
)

// AngleResponse is a single converted angle.
type AngleResponse struct {
	Axis  string  `json:"axis"`
	Value float64 `json:"value"`
	DMS   string  `json:"dms"`
}

// ParseRequest is the body of POST /v1/dms/parse.
type ParseRequest struct {
	Axis string `json:"axis"`
	Text string `json:"text"`
}

// BoundsRequest is the body of POST /v1/bounds/normalize.
type BoundsRequest struct {
	North     *float64 `json:"north"`
	South     *float64 `json:"south"`
	East      *float64 `json:"east"`
	West      *float64 `json:"west"`
	SnapPolar bool     `json:"snap_polar"`
}

// BoundsResponse is a region with its DMS input-box text.
type BoundsResponse struct {
	Bounds domain.BoundingBox  `json:"bounds"`
	Fields domain.BoundsFields `json:"fields"`
}

// queryCoord reads a required finite float query parameter.
func queryCoord(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errors.New(name + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New(name + " must be a finite number")
	}
	return v, nil
}

func validLatitude(v float64) bool {
	return v >= -90 && v <= 90
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LatitudeDMSHandler renders ?value= as a DMS latitude.
func LatitudeDMSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := queryCoord(c, "value")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if !validLatitude(v) {
			return errBadRequest(c, "value must be between -90 and 90")
		}
		return c.JSON(AngleResponse{Axis: "latitude", Value: v, DMS: deps.Angles.FormatLatitude(v)})
	}
}

// LongitudeDMSHandler renders ?value= as a DMS longitude, wrapping values past
// the antimeridian.
func LongitudeDMSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := queryCoord(c, "value")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(AngleResponse{
			Axis:  "longitude",
			Value: geospatial.WrapLongitude(v),
			DMS:   deps.Angles.FormatLongitude(v),
		})
	}
}

// ParseDMSHandler parses DMS or decimal text into decimal degrees.
func ParseDMSHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ParseRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if len(req.Text) > 100 {
			return errBadRequest(c, "text too long (max 100 characters)")
		}
		axis, err := geospatial.ParseAxis(req.Axis)
		if err != nil {
			return errBadRequest(c, "axis must be latitude or longitude")
		}

		v, err := deps.Angles.Parse(axis, req.Text)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Debug("angle rejected", "axis", axis.String(), "text", req.Text, "error", err)
		}
		switch {
		case errors.Is(err, geospatial.ErrLatitudeRange):
			return errUnprocessable(c, "latitude must be between -90 and 90")
		case err != nil:
			return errUnprocessable(c, err.Error())
		}

		dms := deps.Angles.FormatLatitude(v)
		if axis == geospatial.AxisLongitude {
			dms = deps.Angles.FormatLongitude(v)
		}
		return c.JSON(AngleResponse{Axis: axis.String(), Value: v, DMS: dms})
	}
}

// DefaultBoundsHandler returns the full-world region.
func DefaultBoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		box, fields := deps.Angles.Default()
		return c.JSON(BoundsResponse{Bounds: box, Fields: fields})
	}
}

// NormalizeBoundsHandler swaps reversed limits and optionally snaps near-polar
// latitudes the way the input boxes do.
func NormalizeBoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req BoundsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.North == nil || req.South == nil || req.East == nil || req.West == nil {
			return errBadRequest(c, "north, south, east and west are required")
		}
		box := domain.BoundingBox{North: *req.North, South: *req.South, East: *req.East, West: *req.West}
		if !finite(box.North, box.South, box.East, box.West) {
			return errBadRequest(c, "bounds must be finite numbers")
		}
		if !validLatitude(box.North) || !validLatitude(box.South) {
			return errBadRequest(c, "north and south must be between -90 and 90")
		}

		box, fields := deps.Angles.Normalize(box, req.SnapPolar)
		return c.JSON(BoundsResponse{Bounds: box, Fields: fields})
	}
}

// FitBoundsHandler derives a region inset from a map viewport.
func FitBoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vp domain.Viewport
		if err := c.BodyParser(&vp); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !finite(vp.Center.Lat, vp.Center.Lon, vp.NorthEast.Lat, vp.NorthEast.Lon, vp.SouthWest.Lat, vp.SouthWest.Lon) {
			return errBadRequest(c, "viewport coordinates must be finite numbers")
		}
		if !validLatitude(vp.Center.Lat) {
			return errBadRequest(c, "center latitude must be between -90 and 90")
		}

		box, fields := deps.Angles.Fit(vp)
		return c.JSON(BoundsResponse{Bounds: box, Fields: fields})
	}
}

// AroundBoundsHandler returns the region within ?radius= meters of ?lat=&lon=.
func AroundBoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := queryCoord(c, "lat")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lon, err := queryCoord(c, "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		radius := c.QueryFloat("radius", 10000)

		if lat <= -90 || lat >= 90 {
			return errBadRequest(c, "lat must be strictly between -90 and 90")
		}
		if radius <= 0 || radius > 5000000 {
			return errBadRequest(c, "radius must be greater than 0 and at most 5000000 meters")
		}

		box, fields := deps.Angles.Around(lat, lon, radius)
		return c.JSON(BoundsResponse{Bounds: box, Fields: fields})
	}
}

// ReadoutHandler renders the status-line text for a pointer position.
func ReadoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := queryCoord(c, "lat")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lon, err := queryCoord(c, "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if !validLatitude(lat) {
			return errBadRequest(c, "lat must be between -90 and 90")
		}
		return c.JSON(fiber.Map{"status": deps.Angles.Readout(lat, lon)})
	}
}
