package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/projwiz/internal/core/domain"
	"github.com/samirrijal/projwiz/internal/core/usecases"
)

// --- Mock ports ---

type mockWidget struct {
	calls    []string
	regions  []domain.BoundingBox
	editing  bool
	viewport domain.Viewport
	view     domain.GeoPoint
	zoom     float64
	fitted   *domain.BoundingBox

	setRegionFn func(ctx context.Context, box domain.BoundingBox) error
}

func (m *mockWidget) SetEditableRegion(ctx context.Context, box domain.BoundingBox) error {
	m.calls = append(m.calls, "region")
	m.regions = append(m.regions, box)
	if m.setRegionFn != nil {
		return m.setRegionFn(ctx, box)
	}
	return nil
}

func (m *mockWidget) SetEditing(ctx context.Context, enabled bool) error {
	if enabled {
		m.calls = append(m.calls, "enable")
	} else {
		m.calls = append(m.calls, "disable")
	}
	m.editing = enabled
	return nil
}

func (m *mockWidget) Viewport(ctx context.Context) (domain.Viewport, error) {
	return m.viewport, nil
}

func (m *mockWidget) SetView(ctx context.Context, center domain.GeoPoint, zoom float64) error {
	m.calls = append(m.calls, "view")
	m.view, m.zoom = center, zoom
	return nil
}

func (m *mockWidget) FitView(ctx context.Context, box domain.BoundingBox) error {
	m.calls = append(m.calls, "fit")
	m.fitted = &box
	return nil
}

type mockForm struct {
	last  domain.BoundsFields
	count int
}

func (m *mockForm) SetFields(ctx context.Context, f domain.BoundsFields) error {
	m.last = f
	m.count++
	return nil
}

type mockStatus struct {
	text string
}

func (m *mockStatus) SetStatus(ctx context.Context, text string) error {
	m.text = text
	return nil
}

type mockOutput struct {
	summaries []*domain.RegionSummary
	err       error
}

func (m *mockOutput) PublishRegion(ctx context.Context, s *domain.RegionSummary) error {
	m.summaries = append(m.summaries, s)
	return m.err
}

type fixture struct {
	widget *mockWidget
	form   *mockForm
	status *mockStatus
	output *mockOutput
	rc     *usecases.RegionController
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		widget: &mockWidget{},
		form:   &mockForm{},
		status: &mockStatus{},
		output: &mockOutput{},
	}
	f.rc = usecases.NewRegionController("test-session", usecases.RegionPorts{
		Widget: f.widget,
		Form:   f.form,
		Status: f.status,
		Output: f.output,
	}, usecases.DefaultRegionOptions(), nil)
	if err := f.rc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return f
}

// --- Tests ---

func TestRegionController_Start(t *testing.T) {
	f := newFixture(t)

	if f.rc.Bounds() != domain.WorldBounds() {
		t.Fatalf("expected world bounds, got %+v", f.rc.Bounds())
	}
	if got := strings.Join(f.widget.calls, ","); got != "disable,region,enable" {
		t.Errorf("unexpected widget calls %q", got)
	}
	if f.form.last.North != `90° 0' 0.0" N` {
		t.Errorf("unexpected north field %q", f.form.last.North)
	}
	if len(f.output.summaries) != 1 || f.output.summaries[0].Source != domain.SourceStart {
		t.Fatalf("expected one start summary, got %+v", f.output.summaries)
	}
	if f.output.summaries[0].SessionID != "test-session" {
		t.Errorf("unexpected session id %q", f.output.summaries[0].SessionID)
	}
}

func TestRegionController_CommitInputs(t *testing.T) {
	f := newFixture(t)

	err := f.rc.CommitInputs(context.Background(), domain.BoundsFields{
		North: `10° 0' 0" S`,
		South: `40 N`,
		East:  `10 W`,
		West:  `20 E`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.BoundingBox{North: 40, South: -10, East: 20, West: -10}
	if f.rc.Bounds() != want {
		t.Fatalf("expected %+v, got %+v", want, f.rc.Bounds())
	}
	last := f.widget.regions[len(f.widget.regions)-1]
	if last != want {
		t.Errorf("rectangle not updated: %+v", last)
	}
	if !f.widget.editing {
		t.Error("expected editing re-enabled")
	}
	if f.form.last.North != `40° 0' 0.0" N` || f.form.last.West != `10° 0' 0.0" W` {
		t.Errorf("fields not re-rendered: %+v", f.form.last)
	}
	if got := f.output.summaries[len(f.output.summaries)-1].Source; got != domain.SourceInput {
		t.Errorf("expected input source, got %s", got)
	}
}

func TestRegionController_CommitInputs_SnapsPoles(t *testing.T) {
	f := newFixture(t)

	_ = f.rc.CommitInputs(context.Background(), domain.BoundsFields{
		North: "86 N", South: "86 S", East: "10 E", West: "10 W",
	})
	if b := f.rc.Bounds(); b.North != 90 || b.South != -90 {
		t.Errorf("expected poles, got %+v", b)
	}

	_ = f.rc.CommitInputs(context.Background(), domain.BoundsFields{
		North: "80 N", South: "80 S", East: "10 E", West: "10 W",
	})
	if b := f.rc.Bounds(); b.North != 80 || b.South != -80 {
		t.Errorf("expected 80/-80, got %+v", b)
	}
}

func TestRegionController_CommitInputs_Malformed(t *testing.T) {
	f := newFixture(t)
	_ = f.rc.CommitInputs(context.Background(), domain.BoundsFields{
		North: "50 N", South: "10 N", East: "30 E", West: "5 E",
	})

	err := f.rc.CommitInputs(context.Background(), domain.BoundsFields{
		North: "abc", South: "10 N", East: "??", West: "5 E",
	})
	if err != nil {
		t.Fatalf("malformed input must not fail: %v", err)
	}

	want := domain.BoundingBox{North: 50, South: 10, East: 30, West: 5}
	if f.rc.Bounds() != want {
		t.Fatalf("expected previous values kept, got %+v", f.rc.Bounds())
	}
	if f.form.last.North != `50° 0' 0.0" N` || f.form.last.East != `30° 0' 0.0" E` {
		t.Errorf("fields not restored: %+v", f.form.last)
	}
}

func TestRegionController_RegionEdited(t *testing.T) {
	f := newFixture(t)
	calls := len(f.widget.calls)

	err := f.rc.RegionEdited(context.Background(),
		domain.GeoPoint{Lat: -5, Lon: 100},
		domain.GeoPoint{Lat: 25, Lon: 190},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.BoundingBox{North: 25, South: -5, East: 190, West: 100}
	if f.rc.Bounds() != want {
		t.Fatalf("expected %+v, got %+v", want, f.rc.Bounds())
	}
	if len(f.widget.calls) != calls {
		t.Errorf("edit must not echo to the widget, got %v", f.widget.calls[calls:])
	}
	if f.form.last.East != `170° 0' 0.0" W` {
		t.Errorf("expected wrapped east field, got %q", f.form.last.East)
	}
	if got := f.output.summaries[len(f.output.summaries)-1].Source; got != domain.SourceEdit {
		t.Errorf("expected edit source, got %s", got)
	}
}

func TestRegionController_RegionEdited_ClampsLatitude(t *testing.T) {
	f := newFixture(t)

	err := f.rc.RegionEdited(context.Background(),
		domain.GeoPoint{Lat: -500, Lon: 10},
		domain.GeoPoint{Lat: 500, Lon: 20},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.BoundingBox{North: 90, South: -90, East: 20, West: 10}
	if f.rc.Bounds() != want {
		t.Fatalf("expected %+v, got %+v", want, f.rc.Bounds())
	}
	if f.form.last.North != `90° 0' 0.0" N` {
		t.Errorf("expected clamped north field, got %q", f.form.last.North)
	}
	if f.form.last.South != `90° 0' 0.0" S` {
		t.Errorf("expected clamped south field, got %q", f.form.last.South)
	}
}

func TestRegionController_Drag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_ = f.rc.DragStarted(ctx)
	if f.widget.editing {
		t.Error("expected editing disabled during drag")
	}
	_ = f.rc.DragEnded(ctx)
	if !f.widget.editing {
		t.Error("expected editing enabled after drag")
	}
}

func TestRegionController_FitToView(t *testing.T) {
	f := newFixture(t)
	f.widget.viewport = domain.Viewport{
		Center:    domain.GeoPoint{Lat: 0, Lon: 0},
		NorthEast: domain.GeoPoint{Lat: 40, Lon: 80},
		SouthWest: domain.GeoPoint{Lat: -40, Lon: -80},
	}

	if err := f.rc.FitToView(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.BoundingBox{North: 32, South: -32, East: 64, West: -64}
	if f.rc.Bounds() != want {
		t.Fatalf("expected %+v, got %+v", want, f.rc.Bounds())
	}
}

func TestRegionController_Reset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.rc.RegionEdited(ctx, domain.GeoPoint{Lat: 1, Lon: 2}, domain.GeoPoint{Lat: 3, Lon: 4})

	if err := f.rc.Reset(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.BoundingBox{North: 90, South: -90, East: 180, West: -180}
	if f.rc.Bounds() != want {
		t.Fatalf("expected %+v, got %+v", want, f.rc.Bounds())
	}
	if f.widget.view != (domain.GeoPoint{}) || f.widget.zoom != 0 {
		t.Errorf("expected view reset to 0,0 zoom 0, got %+v zoom %v", f.widget.view, f.widget.zoom)
	}
}

func TestRegionController_CenterAndZoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.rc.RegionEdited(ctx, domain.GeoPoint{Lat: 10, Lon: 20}, domain.GeoPoint{Lat: 30, Lon: 60})

	_ = f.rc.CenterView(ctx)
	if f.widget.view != (domain.GeoPoint{Lat: 0, Lon: 40}) {
		t.Errorf("unexpected view center %+v", f.widget.view)
	}

	_ = f.rc.ZoomToRegion(ctx)
	if f.widget.fitted == nil || *f.widget.fitted != f.rc.Bounds() {
		t.Errorf("expected view fitted to region, got %+v", f.widget.fitted)
	}
}

func TestRegionController_Pointer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_ = f.rc.PointerMoved(ctx, 43.263, 357.065)
	if f.status.text != `43° 15' 46.8" N  |  2° 56' 6.0" W` {
		t.Errorf("unexpected status %q", f.status.text)
	}
	_ = f.rc.PointerLeft(ctx)
	if f.status.text != "" {
		t.Errorf("expected cleared status, got %q", f.status.text)
	}
}

func TestRegionController_OutputErrorIgnored(t *testing.T) {
	f := newFixture(t)
	f.output.err = errors.New("broker down")

	if err := f.rc.Reset(context.Background()); err != nil {
		t.Fatalf("output failure must not fail the event: %v", err)
	}
}

func TestRegionController_WidgetErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.widget.setRegionFn = func(ctx context.Context, box domain.BoundingBox) error {
		return errors.New("closed")
	}

	err := f.rc.Reset(context.Background())
	if err == nil || !strings.Contains(err.Error(), "set region") {
		t.Fatalf("expected wrapped widget error, got %v", err)
	}
}
