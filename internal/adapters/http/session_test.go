package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	handler "github.com/samirrijal/projwiz/internal/adapters/http"
	"github.com/samirrijal/projwiz/internal/core/domain"
)

type recorder struct {
	cmds []handler.Command
	err  error
}

func (r *recorder) send(v any) error {
	if r.err != nil {
		return r.err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var cmd handler.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return err
	}
	r.cmds = append(r.cmds, cmd)
	return nil
}

func (r *recorder) types() []string {
	out := make([]string, len(r.cmds))
	for i, c := range r.cmds {
		out[i] = c.Type
	}
	return out
}

func (r *recorder) last(typ string) *handler.Command {
	for i := len(r.cmds) - 1; i >= 0; i-- {
		if r.cmds[i].Type == typ {
			return &r.cmds[i]
		}
	}
	return nil
}

func (r *recorder) reset() { r.cmds = nil }

type forwardSpy struct {
	summaries []*domain.RegionSummary
	err       error
}

func (f *forwardSpy) PublishRegion(ctx context.Context, s *domain.RegionSummary) error {
	f.summaries = append(f.summaries, s)
	return f.err
}

func startSession(t *testing.T, opts ...func(*handler.Dependencies)) (*handler.Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := handler.NewSession("sess-1", rec.send, makeDeps(opts...), nil)
	require.NoError(t, s.Start(context.Background()))
	return s, rec
}

func handle(t *testing.T, s *handler.Session, msg string) {
	t.Helper()
	require.NoError(t, s.HandleMessage(context.Background(), []byte(msg)))
}

func TestSession_Start(t *testing.T) {
	_, rec := startSession(t)

	require.Equal(t, []string{"session", "fields", "edit_handles", "set_region", "edit_handles", "output"}, rec.types())
	require.Equal(t, "sess-1", rec.cmds[0].Session)

	require.NotNil(t, rec.cmds[2].Enabled)
	require.False(t, *rec.cmds[2].Enabled)
	require.True(t, *rec.cmds[4].Enabled)
	require.NotNil(t, rec.cmds[4].AllowSelfIntersection)
	require.False(t, *rec.cmds[4].AllowSelfIntersection)

	require.Equal(t, domain.WorldBounds(), *rec.cmds[3].Region)
	require.Equal(t, `180° 0' 0.0" W`, rec.cmds[1].Fields.West)

	out := rec.last("output").Output
	require.Equal(t, domain.SourceStart, out.Source)
	require.Equal(t, "sess-1", out.SessionID)
}

func TestSession_InputCommit(t *testing.T) {
	s, rec := startSession(t)
	rec.reset()

	handle(t, s, `{"type":"input_commit","fields":{"north":"60 N","south":"10 S","east":"40 E","west":"20 W"}}`)

	region := rec.last("set_region").Region
	require.Equal(t, domain.BoundingBox{North: 60, South: -10, East: 40, West: -20}, *region)
	require.Equal(t, `60° 0' 0.0" N`, rec.last("fields").Fields.North)
	require.Equal(t, domain.SourceInput, rec.last("output").Output.Source)
}

func TestSession_InputCommit_KeepsPreviousOnGarbage(t *testing.T) {
	s, rec := startSession(t)
	handle(t, s, `{"type":"input_commit","fields":{"north":"60","south":"10","east":"40","west":"20"}}`)
	rec.reset()

	handle(t, s, `{"type":"input_commit","fields":{"north":"banana","south":"10","east":"40","west":"20"}}`)

	require.Equal(t, 60.0, rec.last("set_region").Region.North)
	require.Equal(t, `60° 0' 0.0" N`, rec.last("fields").Fields.North)
}

func TestSession_RegionEdited(t *testing.T) {
	s, rec := startSession(t)
	rec.reset()

	handle(t, s, `{"type":"region_edited","south_west":{"lat":-5,"lon":100},"north_east":{"lat":25,"lon":190}}`)

	require.Equal(t, []string{"fields", "output"}, rec.types())
	require.Equal(t, `170° 0' 0.0" W`, rec.cmds[0].Fields.East)
	require.Equal(t, 190.0, rec.cmds[1].Output.Bounds.East)
	require.Equal(t, domain.SourceEdit, rec.cmds[1].Output.Source)
}

func TestSession_InputCommit_HugeLongitudeKeepsPrevious(t *testing.T) {
	s, rec := startSession(t)
	handle(t, s, `{"type":"input_commit","fields":{"north":"60","south":"10","east":"40","west":"20"}}`)
	rec.reset()

	handle(t, s, `{"type":"input_commit","fields":{"north":"60","south":"10","east":"100000000000000000000000 E","west":"20"}}`)

	require.Equal(t, 40.0, rec.last("set_region").Region.East)
	require.Equal(t, `40° 0' 0.0" E`, rec.last("fields").Fields.East)
}

func TestSession_RegionEdited_HugeLongitude(t *testing.T) {
	s, rec := startSession(t)
	rec.reset()

	handle(t, s, `{"type":"region_edited","south_west":{"lat":-5,"lon":-1e300},"north_east":{"lat":25,"lon":1e20}}`)

	fields := rec.last("fields").Fields
	require.Regexp(t, `^1?\d{1,2}° \d{1,2}' \d{1,2}\.\d" [EW]$`, fields.East)
	require.Regexp(t, `^1?\d{1,2}° \d{1,2}' \d{1,2}\.\d" [EW]$`, fields.West)
}

func TestSession_RegionEdited_ClampsLatitude(t *testing.T) {
	s, rec := startSession(t)
	rec.reset()

	handle(t, s, `{"type":"region_edited","south_west":{"lat":-500,"lon":10},"north_east":{"lat":500,"lon":20}}`)

	require.Equal(t, `90° 0' 0.0" N`, rec.last("fields").Fields.North)
	require.Equal(t, `90° 0' 0.0" S`, rec.last("fields").Fields.South)
	require.Equal(t, 90.0, rec.last("output").Output.Bounds.North)
	require.Equal(t, -90.0, rec.last("output").Output.Bounds.South)
}

func TestSession_Drag(t *testing.T) {
	s, rec := startSession(t)
	rec.reset()

	handle(t, s, `{"type":"drag_start"}`)
	handle(t, s, `{"type":"drag_end"}`)

	require.Equal(t, []string{"edit_handles", "edit_handles"}, rec.types())
	require.False(t, *rec.cmds[0].Enabled)
	require.True(t, *rec.cmds[1].Enabled)
}

func TestSession_Fit(t *testing.T) {
	s, rec := startSession(t)

	handle(t, s, `{"type":"fit"}`)
	errCmd := rec.last("error")
	require.NotNil(t, errCmd)
	require.Contains(t, errCmd.Error, "viewport")

	rec.reset()
	handle(t, s, `{"type":"viewport","viewport":{"center":{"lat":10,"lon":20},"north_east":{"lat":50,"lon":70},"south_west":{"lat":-20,"lon":-30},"zoom":3}}`)
	require.Empty(t, rec.cmds)

	handle(t, s, `{"type":"fit"}`)
	require.Equal(t, domain.BoundingBox{North: 34, South: -14, East: 60, West: -20}, *rec.last("set_region").Region)
	require.Equal(t, domain.SourceFit, rec.last("output").Output.Source)
}

func TestSession_FitWithInlineViewport(t *testing.T) {
	s, rec := startSession(t)
	rec.reset()

	handle(t, s, `{"type":"fit","viewport":{"center":{"lat":0,"lon":0},"north_east":{"lat":10,"lon":10},"south_west":{"lat":-10,"lon":-10}}}`)
	require.Equal(t, domain.BoundingBox{North: 8, South: -8, East: 8, West: -8}, *rec.last("set_region").Region)
}

func TestSession_ResetAndView(t *testing.T) {
	s, rec := startSession(t)
	handle(t, s, `{"type":"input_commit","fields":{"north":"60","south":"10","east":"40","west":"20"}}`)
	rec.reset()

	handle(t, s, `{"type":"view"}`)
	view := rec.last("set_view")
	require.Equal(t, domain.GeoPoint{Lat: 0, Lon: 30}, *view.Center)
	require.Equal(t, 0.0, *view.Zoom)

	rec.reset()
	handle(t, s, `{"type":"reset"}`)
	require.Equal(t, domain.WorldBounds(), *rec.last("set_region").Region)
	require.Equal(t, domain.GeoPoint{}, *rec.last("set_view").Center)
	require.Equal(t, "set_view", rec.cmds[len(rec.cmds)-1].Type)
}

func TestSession_DoubleClick(t *testing.T) {
	s, rec := startSession(t)
	rec.reset()

	handle(t, s, `{"type":"dblclick"}`)
	require.Equal(t, []string{"fit_view"}, rec.types())
	require.Equal(t, domain.WorldBounds(), *rec.cmds[0].Region)
}

func TestSession_Pointer(t *testing.T) {
	s, rec := startSession(t)
	rec.reset()

	handle(t, s, `{"type":"pointer_move","position":{"lat":-33.5,"lon":-70.25}}`)
	require.Equal(t, `33° 30' 0.0" S  |  70° 15' 0.0" W`, *rec.last("status").Text)

	handle(t, s, `{"type":"pointer_out"}`)
	text := rec.last("status").Text
	require.NotNil(t, text)
	require.Equal(t, "", *text)
}

func TestSession_BadMessages(t *testing.T) {
	s, rec := startSession(t)

	for _, msg := range []string{
		`{not json`,
		`{"type":"teleport"}`,
		`{"type":"input_commit"}`,
		`{"type":"region_edited","south_west":{"lat":0,"lon":0}}`,
		`{"type":"pointer_move"}`,
		`{"type":"viewport"}`,
	} {
		rec.reset()
		handle(t, s, msg)
		require.Equal(t, []string{"error"}, rec.types(), msg)
		require.NotEmpty(t, rec.cmds[0].Error, msg)
	}
}

func TestSession_ForwardsOutput(t *testing.T) {
	spy := &forwardSpy{}
	s, _ := startSession(t, func(d *handler.Dependencies) { d.Output = spy })

	handle(t, s, `{"type":"region_edited","south_west":{"lat":1,"lon":2},"north_east":{"lat":3,"lon":4}}`)

	require.Len(t, spy.summaries, 2)
	require.Equal(t, domain.SourceStart, spy.summaries[0].Source)
	require.Equal(t, domain.BoundingBox{North: 3, South: 1, East: 4, West: 2}, spy.summaries[1].Bounds)
}

func TestSession_ForwardFailureIsNotFatal(t *testing.T) {
	spy := &forwardSpy{err: errors.New("broker down")}
	s, rec := startSession(t, func(d *handler.Dependencies) { d.Output = spy })
	rec.reset()

	handle(t, s, `{"type":"reset"}`)
	require.NotNil(t, rec.last("set_view"))
}

func TestSession_SendFailure(t *testing.T) {
	s, rec := startSession(t)
	rec.err = errors.New("closed")

	err := s.HandleMessage(context.Background(), []byte(`{"type":"reset"}`))
	require.Error(t, err)
}
