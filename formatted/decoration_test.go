package formatted

import (
	"errors"
	"testing"

	"github.com/ByLCY/folio/surface"
)

// failingSurface fails every rectangle primitive.
type failingSurface struct {
	*surface.Recorder
	err error
}

func (f *failingSurface) FillRectangle(surface.Point, float64, float64) error { return f.err }
func (f *failingSurface) StrokeRectangle(surface.Point, float64, float64) error { return f.err }
func (f *failingSurface) FillAndStrokeRectangle(surface.Point, float64, float64) error {
	return f.err
}

func TestUnderlineAndLinkShareBoundingBox(t *testing.T) {
	r := surface.NewRecorder(surface.Rect{X0: 36, Y0: 36, X1: 236, Y1: 436})
	spans := []Span{{Text: "docs", Format: Format{Styles: Underline, Link: "https://example.com/docs"}}}
	b := mustBox(t, r, spans, Options{At: &surface.Point{X: 5, Y: 300}})
	if _, err := b.Render(false); err != nil {
		t.Fatal(err)
	}
	f := b.Fragments()[0]

	lines := r.OpsOf(surface.OpStrokeLine)
	if len(lines) != 1 {
		t.Fatalf("expected one underline, got %d", len(lines))
	}
	from, to := f.UnderlinePoints()
	if lines[0].At != from || *lines[0].To != to {
		t.Fatalf("underline at %+v-%+v want %+v-%+v", lines[0].At, *lines[0].To, from, to)
	}
	if from.X != f.BoundingBox().X0 || to.X != f.BoundingBox().X1 {
		t.Fatalf("underline does not span the bounding box")
	}

	links := r.OpsOf(surface.OpLink)
	if len(links) != 1 {
		t.Fatalf("expected one link annotation, got %d", len(links))
	}
	want := f.BoundingBox().Translate(36, 36)
	if *links[0].Rect != want || links[0].Target.URI != "https://example.com/docs" {
		t.Fatalf("link over %+v (%+v) want %+v", *links[0].Rect, links[0].Target, want)
	}
}

func TestOverlaysAreIndependent(t *testing.T) {
	r := newRecorder()
	spans := []Span{
		{Text: "gone", Format: Format{Styles: Strikethrough | Underline, Anchor: "chapter-2", Link: "https://x.test"}},
		Plain(" plain"),
	}
	b := mustBox(t, r, spans, Options{})
	if _, err := b.Render(false); err != nil {
		t.Fatal(err)
	}
	if got := len(r.OpsOf(surface.OpStrokeLine)); got != 2 {
		t.Fatalf("expected underline and strikethrough, got %d strokes", got)
	}
	links := r.OpsOf(surface.OpLink)
	if len(links) != 2 || links[0].Target.URI == "" || links[1].Target.Dest != "chapter-2" {
		t.Fatalf("expected URI and anchor annotations, got %+v", links)
	}
	f := b.Fragments()[0]
	_, to := f.StrikethroughPoints()
	if !approx(to.Y, f.Baseline+0.3*f.Ascender) {
		t.Fatalf("strikethrough at %g", to.Y)
	}
}

func TestBoxUnderlayFillAndBorder(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want string
	}{
		{"fill only", Options{FillColor: surface.Ptr(surface.White)}, surface.OpFillRect},
		{"fill and border", Options{FillColor: surface.Ptr(surface.White), BorderWidth: 1}, surface.OpFillStrokeRect},
		{"border only", Options{BorderWidth: 2, BorderStyle: surface.BorderDashed}, surface.OpStrokeRect},
		{"hidden border", Options{BorderWidth: 2, BorderStyle: surface.BorderHidden}, ""},
		{"nothing", Options{}, ""},
	}
	for _, tc := range cases {
		r := newRecorder()
		b := mustBox(t, r, []Span{Plain("hello world")}, tc.opts)
		if err := NewDrawer(r, b).Draw(); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		ops := r.Ops()
		if tc.want == "" {
			if len(ops) != 0 {
				t.Fatalf("%s: expected no underlay, got %+v", tc.name, ops)
			}
			continue
		}
		if len(ops) != 1 || ops[0].Kind != tc.want {
			t.Fatalf("%s: got %+v", tc.name, ops)
		}
		op := ops[0]
		if op.At != (surface.Point{X: 0, Y: 400}) || op.Width != 66 || !approx(op.Height, 12) {
			t.Fatalf("%s: underlay geometry %+v", tc.name, op)
		}
		if tc.opts.BorderStyle == surface.BorderDashed && (!op.State.Dashed || op.State.Dash != 2) {
			t.Fatalf("%s: dash not applied: %+v", tc.name, op.State)
		}
		if _, on := r.Dash(); on {
			t.Fatalf("%s: dash not cleared", tc.name)
		}
	}
}

func TestFragmentUnderlayPosition(t *testing.T) {
	r := newRecorder()
	blue := surface.MustColor("#0000ff")
	spans := []Span{
		Plain("plain "),
		{Text: "boxed", Format: Format{Fill: surface.Ptr(surface.White), BorderWidth: 0.5, BorderColor: &blue, BorderStyle: surface.BorderDotted}},
	}
	b := mustBox(t, r, spans, Options{At: &surface.Point{Y: 300}})
	if err := NewDrawer(r, b).Draw(); err != nil {
		t.Fatal(err)
	}
	ops := r.OpsOf(surface.OpFillStrokeRect)
	if len(ops) != 1 {
		t.Fatalf("expected one fragment underlay, got %+v", r.Ops())
	}
	f := b.Fragments()[1]
	bb := f.BoundingBox()
	op := ops[0]
	if op.At.X != bb.X0 || !approx(op.At.Y, bb.Y0+f.Height()) || op.Width != bb.Width() || !approx(op.Height, bb.Height()) {
		t.Fatalf("underlay %+v for box %+v", op, bb)
	}
	st := op.State
	if st.JoinStyle != surface.JoinMiter || st.LineWidth != 0.5 || st.StrokeColor != blue || st.FillColor != surface.White || st.Dash != 1 {
		t.Fatalf("underlay drawn with %+v", st)
	}
	if got := r.State(); got.LineWidth != 1 || got.StrokeColor != surface.Black || got.Dashed {
		t.Fatalf("state leaked: %+v", got)
	}
}

func TestFailedUnderlayRestoresState(t *testing.T) {
	boom := errors.New("rectangle failed")
	fs := &failingSurface{Recorder: newRecorder(), err: boom}
	fs.SetFillColor(surface.MustColor("#111111"))
	fs.SetStrokeColor(surface.MustColor("#222222"))
	fs.SetLineWidth(0.7)
	before := fs.State()

	red := surface.MustColor("#ff0000")
	spans := []Span{{Text: "alert", Format: Format{Fill: &red, BorderWidth: 3, BorderColor: &red, BorderStyle: surface.BorderDashed}}}
	b := mustBox(t, fs, spans, Options{})
	err := NewDrawer(fs, b).Draw()
	if !errors.Is(err, boom) {
		t.Fatalf("expected the draw failure, got %v", err)
	}
	if got := fs.State(); got != before {
		t.Fatalf("state not restored: got %+v want %+v", got, before)
	}
}

func TestTextBoxMarginsAndUnderlay(t *testing.T) {
	r := newRecorder()
	r.MoveDown(100)
	rest, err := TextBox(r, []Span{Plain("hello")}, Options{
		Margin:    Margin{Top: 10, Left: 20, Right: 30},
		Underlay:  true,
		FillColor: surface.Ptr(surface.MustColor("#eeeeee")),
	})
	if err != nil || len(rest) != 0 {
		t.Fatalf("TextBox: %v %v", rest, err)
	}
	ops := r.Ops()
	if len(ops) != 2 || ops[0].Kind != surface.OpFillRect || ops[1].Kind != surface.OpText {
		t.Fatalf("expected underlay then text, got %+v", ops)
	}
	if ops[0].At != (surface.Point{X: 20, Y: 290}) {
		t.Fatalf("underlay at %+v", ops[0].At)
	}
	if ops[1].At.X != 20 || !approx(ops[1].At.Y, 290-9.6) {
		t.Fatalf("text at %+v", ops[1].At)
	}
	if r.Cursor() != 300 {
		t.Fatalf("TextBox must not move the cursor")
	}

	box, err := NewTextBox(r, []Span{Plain("x")}, Options{Margin: UniformMargin(4)})
	if err != nil {
		t.Fatal(err)
	}
	if box.AvailableWidth() != 200-8 {
		t.Fatalf("width less margins = %g", box.AvailableWidth())
	}
	if _, err := box.Draw(); err != nil {
		t.Fatal(err)
	}
	if !approx(box.OuterHeight(), 12+8) {
		t.Fatalf("outer height = %g", box.OuterHeight())
	}
}
