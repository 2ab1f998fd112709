package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/projwiz/internal/core/domain"
	"github.com/samirrijal/projwiz/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to the angle service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	angleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Angle",
		Fields: graphql.Fields{
			"axis":  &graphql.Field{Type: graphql.String},
			"value": &graphql.Field{Type: graphql.Float},
			"dms":   &graphql.Field{Type: graphql.String},
		},
	})

	boxType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"north": &graphql.Field{Type: graphql.Float},
			"south": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
		},
	})

	fieldsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundsFields",
		Fields: graphql.Fields{
			"north": &graphql.Field{Type: graphql.String},
			"south": &graphql.Field{Type: graphql.String},
			"east":  &graphql.Field{Type: graphql.String},
			"west":  &graphql.Field{Type: graphql.String},
		},
	})

	regionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Region",
		Fields: graphql.Fields{
			"bounds": &graphql.Field{Type: boxType},
			"fields": &graphql.Field{Type: fieldsType},
		},
	})

	geoPointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lon": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	nonNullFloat := graphql.NewNonNull(graphql.Float)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"latitudeDMS": &graphql.Field{
				Type:        angleType,
				Description: "Render a decimal latitude as degrees, minutes and seconds",
				Args: graphql.FieldConfigArgument{
					"value": &graphql.ArgumentConfig{Type: nonNullFloat},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := p.Args["value"].(float64)
					if !validLatitude(v) {
						return nil, errors.New("value must be between -90 and 90")
					}
					return AngleResponse{Axis: "latitude", Value: v, DMS: deps.Angles.FormatLatitude(v)}, nil
				},
			},
			"longitudeDMS": &graphql.Field{
				Type:        angleType,
				Description: "Render a decimal longitude as degrees, minutes and seconds",
				Args: graphql.FieldConfigArgument{
					"value": &graphql.ArgumentConfig{Type: nonNullFloat},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := p.Args["value"].(float64)
					return AngleResponse{
						Axis:  "longitude",
						Value: geospatial.WrapLongitude(v),
						DMS:   deps.Angles.FormatLongitude(v),
					}, nil
				},
			},
			"parseAngle": &graphql.Field{
				Type:        angleType,
				Description: "Parse DMS or decimal text for the given axis",
				Args: graphql.FieldConfigArgument{
					"axis": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					axis, err := geospatial.ParseAxis(p.Args["axis"].(string))
					if err != nil {
						return nil, err
					}
					v, err := deps.Angles.Parse(axis, p.Args["text"].(string))
					if err != nil {
						return nil, err
					}
					dms := deps.Angles.FormatLatitude(v)
					if axis == geospatial.AxisLongitude {
						dms = deps.Angles.FormatLongitude(v)
					}
					return AngleResponse{Axis: axis.String(), Value: v, DMS: dms}, nil
				},
			},
			"defaultBounds": &graphql.Field{
				Type:        regionType,
				Description: "The full-world region",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					box, fields := deps.Angles.Default()
					return BoundsResponse{Bounds: box, Fields: fields}, nil
				},
			},
			"normalizeBounds": &graphql.Field{
				Type:        regionType,
				Description: "Order the limits of a region and render its input boxes",
				Args: graphql.FieldConfigArgument{
					"north":     &graphql.ArgumentConfig{Type: nonNullFloat},
					"south":     &graphql.ArgumentConfig{Type: nonNullFloat},
					"east":      &graphql.ArgumentConfig{Type: nonNullFloat},
					"west":      &graphql.ArgumentConfig{Type: nonNullFloat},
					"snapPolar": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					box := domain.BoundingBox{
						North: p.Args["north"].(float64),
						South: p.Args["south"].(float64),
						East:  p.Args["east"].(float64),
						West:  p.Args["west"].(float64),
					}
					if !validLatitude(box.North) || !validLatitude(box.South) {
						return nil, errors.New("north and south must be between -90 and 90")
					}
					snap, _ := p.Args["snapPolar"].(bool)
					box, fields := deps.Angles.Normalize(box, snap)
					return BoundsResponse{Bounds: box, Fields: fields}, nil
				},
			},
			"fitToView": &graphql.Field{
				Type:        regionType,
				Description: "Derive a region inset from a map viewport",
				Args: graphql.FieldConfigArgument{
					"center":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
					"northEast": &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
					"southWest": &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
					"zoom":      &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					vp := domain.Viewport{
						Center:    geoPointArg(p.Args["center"]),
						NorthEast: geoPointArg(p.Args["northEast"]),
						SouthWest: geoPointArg(p.Args["southWest"]),
					}
					vp.Zoom, _ = p.Args["zoom"].(float64)
					if !validLatitude(vp.Center.Lat) {
						return nil, errors.New("center latitude must be between -90 and 90")
					}
					box, fields := deps.Angles.Fit(vp)
					return BoundsResponse{Bounds: box, Fields: fields}, nil
				},
			},
			"boundsAround": &graphql.Field{
				Type:        regionType,
				Description: "The region within radius meters of a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: nonNullFloat},
					"lon":    &graphql.ArgumentConfig{Type: nonNullFloat},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 10000.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius, _ := p.Args["radius"].(float64)
					if lat <= -90 || lat >= 90 {
						return nil, errors.New("lat must be strictly between -90 and 90")
					}
					if radius <= 0 || radius > 5000000 {
						return nil, fmt.Errorf("radius %g out of range", radius)
					}
					box, fields := deps.Angles.Around(lat, lon, radius)
					return BoundsResponse{Bounds: box, Fields: fields}, nil
				},
			},
			"readout": &graphql.Field{
				Type:        graphql.String,
				Description: "Status-line text for a pointer position",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: nonNullFloat},
					"lon": &graphql.ArgumentConfig{Type: nonNullFloat},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					if !validLatitude(lat) {
						return nil, errors.New("lat must be between -90 and 90")
					}
					return deps.Angles.Readout(lat, p.Args["lon"].(float64)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func geoPointArg(v interface{}) domain.GeoPoint {
	m, _ := v.(map[string]interface{})
	lat, _ := m["lat"].(float64)
	lon, _ := m["lon"].(float64)
	return domain.GeoPoint{Lat: lat, Lon: lon}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
