package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/projwiz/internal/core/domain"
	"github.com/samirrijal/projwiz/internal/core/usecases"
	"github.com/samirrijal/projwiz/internal/pkg/metrics"
	"github.com/samirrijal/projwiz/internal/pkg/telemetry"
)

// Client event types.
const (
	EventViewport     = "viewport"
	EventInputCommit  = "input_commit"
	EventRegionEdited = "region_edited"
	EventDragStart    = "drag_start"
	EventDragEnd      = "drag_end"
	EventDoubleClick  = "dblclick"
	EventFit          = "fit"
	EventReset        = "reset"
	EventView         = "view"
	EventPointerMove  = "pointer_move"
	EventPointerOut   = "pointer_out"
)

// Server command types.
const (
	CommandSession     = "session"
	CommandSetRegion   = "set_region"
	CommandEditHandles = "edit_handles"
	CommandFields      = "fields"
	CommandSetView     = "set_view"
	CommandFitView     = "fit_view"
	CommandStatus      = "status"
	CommandOutput      = "output"
	CommandError       = "error"
)

var errNoViewport = errors.New("viewport not reported yet")

// Event is a message from the map page.
// Example: {"type":"region_edited","south_west":{"lat":-5,"lon":100},"north_east":{"lat":25,"lon":190}}
type Event struct {
	Type      string               `json:"type"`
	Fields    *domain.BoundsFields `json:"fields,omitempty"`
	SouthWest *domain.GeoPoint     `json:"south_west,omitempty"`
	NorthEast *domain.GeoPoint     `json:"north_east,omitempty"`
	Viewport  *domain.Viewport     `json:"viewport,omitempty"`
	Position  *domain.GeoPoint     `json:"position,omitempty"`
}

// Command is a message to the map page.
type Command struct {
	Type                  string                `json:"type"`
	Session               string                `json:"session,omitempty"`
	Region                *domain.BoundingBox   `json:"region,omitempty"`
	Enabled               *bool                 `json:"enabled,omitempty"`
	AllowSelfIntersection *bool                 `json:"allow_self_intersection,omitempty"`
	Fields                *domain.BoundsFields  `json:"fields,omitempty"`
	Center                *domain.GeoPoint      `json:"center,omitempty"`
	Zoom                  *float64              `json:"zoom,omitempty"`
	Text                  *string               `json:"text,omitempty"`
	Output                *domain.RegionSummary `json:"output,omitempty"`
	Error                 string                `json:"error,omitempty"`
}

// Session binds one map page to a RegionController. It implements the
// controller's ports by sending commands back to the page. Events must be
// handled one at a time.
type Session struct {
	id       string
	send     func(v any) error
	forward  func(ctx context.Context, s *domain.RegionSummary) error
	log      *slog.Logger
	rc       *usecases.RegionController
	viewport *domain.Viewport
}

// NewSession creates a session writing commands through send.
func NewSession(id string, send func(v any) error, deps *Dependencies, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{id: id, send: send, log: logger}
	if deps.Output != nil {
		s.forward = deps.Output.PublishRegion
	}
	s.rc = usecases.NewRegionController(id, usecases.RegionPorts{
		Widget: s,
		Form:   s,
		Status: s,
		Output: s,
	}, deps.Angles.Options(), logger)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Controller exposes the session's region controller.
func (s *Session) Controller() *usecases.RegionController { return s.rc }

// Start announces the session id and shows the full-world region.
func (s *Session) Start(ctx context.Context) error {
	if err := s.send(Command{Type: CommandSession, Session: s.id}); err != nil {
		return err
	}
	return s.rc.Start(ctx)
}

// HandleMessage decodes and applies one client message. Problems with the
// message itself are reported to the client; the returned error means the
// connection can no longer be written to.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) error {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return s.sendError("invalid JSON")
	}

	metrics.SessionEvents.WithLabelValues(eventLabel(ev.Type)).Inc()
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSessionEvent, trace.WithAttributes(
		attribute.String(telemetry.AttrSessionID, s.id),
		attribute.String(telemetry.AttrEventType, ev.Type),
	))
	defer span.End()

	err := s.dispatch(ctx, ev)
	var bad badEventError
	switch {
	case errors.As(err, &bad):
		return s.sendError(bad.msg)
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("session event failed", "type", ev.Type, "error", err)
		return err
	}
	return nil
}

type badEventError struct{ msg string }

func (e badEventError) Error() string { return e.msg }

func badEvent(format string, args ...any) error {
	return badEventError{msg: fmt.Sprintf(format, args...)}
}

func (s *Session) dispatch(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventViewport:
		if ev.Viewport == nil {
			return badEvent("viewport event requires viewport")
		}
		vp := *ev.Viewport
		s.viewport = &vp
		return nil

	case EventInputCommit:
		if ev.Fields == nil {
			return badEvent("input_commit event requires fields")
		}
		return s.rc.CommitInputs(ctx, *ev.Fields)

	case EventRegionEdited:
		if ev.SouthWest == nil || ev.NorthEast == nil {
			return badEvent("region_edited event requires south_west and north_east")
		}
		return s.rc.RegionEdited(ctx, *ev.SouthWest, *ev.NorthEast)

	case EventDragStart:
		return s.rc.DragStarted(ctx)

	case EventDragEnd:
		return s.rc.DragEnded(ctx)

	case EventDoubleClick:
		return s.rc.ZoomToRegion(ctx)

	case EventFit:
		if ev.Viewport != nil {
			vp := *ev.Viewport
			s.viewport = &vp
		}
		if s.viewport == nil {
			return badEvent("fit needs a viewport; send a viewport event first")
		}
		return s.rc.FitToView(ctx)

	case EventReset:
		return s.rc.Reset(ctx)

	case EventView:
		return s.rc.CenterView(ctx)

	case EventPointerMove:
		if ev.Position == nil {
			return badEvent("pointer_move event requires position")
		}
		return s.rc.PointerMoved(ctx, ev.Position.Lat, ev.Position.Lon)

	case EventPointerOut:
		return s.rc.PointerLeft(ctx)

	default:
		return badEvent("unknown event type: %s", ev.Type)
	}
}

func (s *Session) sendError(msg string) error {
	return s.send(Command{Type: CommandError, Error: msg})
}

// eventLabel keeps metric cardinality bounded.
func eventLabel(t string) string {
	switch t {
	case EventViewport, EventInputCommit, EventRegionEdited, EventDragStart, EventDragEnd,
		EventDoubleClick, EventFit, EventReset, EventView, EventPointerMove, EventPointerOut:
		return t
	}
	return "unknown"
}

// --- ports.MapWidget ---

func (s *Session) SetEditableRegion(ctx context.Context, box domain.BoundingBox) error {
	return s.send(Command{Type: CommandSetRegion, Region: &box})
}

func (s *Session) SetEditing(ctx context.Context, enabled bool) error {
	cmd := Command{Type: CommandEditHandles, Enabled: &enabled}
	if enabled {
		allow := false
		cmd.AllowSelfIntersection = &allow
	}
	return s.send(cmd)
}

func (s *Session) Viewport(ctx context.Context) (domain.Viewport, error) {
	if s.viewport == nil {
		return domain.Viewport{}, errNoViewport
	}
	return *s.viewport, nil
}

func (s *Session) SetView(ctx context.Context, center domain.GeoPoint, zoom float64) error {
	return s.send(Command{Type: CommandSetView, Center: &center, Zoom: &zoom})
}

func (s *Session) FitView(ctx context.Context, box domain.BoundingBox) error {
	return s.send(Command{Type: CommandFitView, Region: &box})
}

// --- ports.InputForm ---

func (s *Session) SetFields(ctx context.Context, fields domain.BoundsFields) error {
	return s.send(Command{Type: CommandFields, Fields: &fields})
}

// --- ports.StatusLine ---

func (s *Session) SetStatus(ctx context.Context, text string) error {
	return s.send(Command{Type: CommandStatus, Text: &text})
}

// --- ports.OutputPublisher ---

// PublishRegion sends the summary to the page and forwards it to the shared
// output publisher when one is configured.
func (s *Session) PublishRegion(ctx context.Context, summary *domain.RegionSummary) error {
	if err := s.send(Command{Type: CommandOutput, Output: summary}); err != nil {
		return err
	}
	if s.forward != nil {
		return s.forward(ctx, summary)
	}
	return nil
}
