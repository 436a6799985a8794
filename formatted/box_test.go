package formatted

import (
	"errors"
	"math"
	"testing"

	"github.com/ByLCY/folio/surface"
)

// The recorder measures every glyph as 0.5·size wide with ascender 0.8·size
// and descender −0.2·size, so at 12pt a glyph is 6pt and a line 12pt.

func newRecorder() *surface.Recorder {
	return surface.NewRecorder(surface.Rect{X1: 200, Y1: 400})
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func mustBox(t *testing.T, s surface.Surface, spans []Span, opts Options) *Box {
	t.Helper()
	b, err := NewBox(s, spans, opts)
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	return b
}

func TestEllipsesRejectedAtConstruction(t *testing.T) {
	r := newRecorder()
	_, err := NewBox(r, []Span{Plain("hello")}, Options{Overflow: OverflowEllipses})
	if !errors.Is(err, ErrUnsupportedOverflow) {
		t.Fatalf("expected ErrUnsupportedOverflow, got %v", err)
	}
	if len(r.Ops()) != 0 {
		t.Fatalf("nothing may be drawn")
	}
}

func TestDryRunThenRealRenderIsIdempotent(t *testing.T) {
	r := newRecorder()
	spans := []Span{
		Plain("The quick brown "),
		{Text: "fox jumps", Format: Format{Styles: Bold | Underline}},
		{Text: " over the lazy dog", Format: Format{Size: 16}},
	}
	b := mustBox(t, r, spans, Options{Width: 90, Align: AlignCenter})

	if _, err := b.Render(true); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	first := b.Fragments()
	if _, err := b.Render(true); err != nil {
		t.Fatalf("second dry run: %v", err)
	}
	if b.State() != StateMeasured {
		t.Fatalf("state after dry run = %s", b.State())
	}
	if len(r.OpsOf(surface.OpText)) != 0 {
		t.Fatalf("dry run must not draw")
	}
	if _, err := b.Render(false); err != nil {
		t.Fatalf("render: %v", err)
	}
	second := b.Fragments()
	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("fragment count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].BoundingBox() != second[i].BoundingBox() {
			t.Fatalf("fragment %d moved: %+v vs %+v", i, first[i].BoundingBox(), second[i].BoundingBox())
		}
	}
	if got := len(r.OpsOf(surface.OpText)); got != len(second) {
		t.Fatalf("expected one draw_text per fragment, got %d for %d", got, len(second))
	}
	if _, err := b.Render(true); !errors.Is(err, ErrAlreadyDrawn) {
		t.Fatalf("render after draw should fail with ErrAlreadyDrawn, got %v", err)
	}
}

func TestAlignmentAnchors(t *testing.T) {
	cases := []struct {
		align Align
		want  float64
	}{
		{AlignLeft, 10},
		{AlignJustify, 10},
		{AlignCenter, 10 + 50 - 9},
		{AlignRight, 10 + 100 - 18},
	}
	for _, tc := range cases {
		r := newRecorder()
		b := mustBox(t, r, []Span{Plain("abc")}, Options{At: &surface.Point{X: 10, Y: 300}, Width: 100, Align: tc.align})
		if _, err := b.Render(true); err != nil {
			t.Fatal(err)
		}
		frags := b.Fragments()
		if len(frags) != 1 || frags[0].Left != tc.want {
			t.Fatalf("%s: left = %+v want %g", tc.align, frags, tc.want)
		}
	}
}

func TestBaselinesAndHeight(t *testing.T) {
	r := newRecorder()
	b := mustBox(t, r, []Span{Plain("aaaa bbbb cccc")}, Options{At: &surface.Point{Y: 300}, Width: 60, Leading: 2})
	if _, err := b.Render(true); err != nil {
		t.Fatal(err)
	}
	frags := b.Fragments()
	if len(frags) != 2 {
		t.Fatalf("expected two lines, got %+v", frags)
	}
	if frags[0].Text != "aaaa bbbb" || frags[1].Text != "cccc" {
		t.Fatalf("unexpected wrapping %q / %q", frags[0].Text, frags[1].Text)
	}
	if !approx(frags[0].Baseline, 300-9.6) {
		t.Fatalf("first baseline = %g", frags[0].Baseline)
	}
	if !approx(frags[1].Baseline, 300-9.6-12-2) {
		t.Fatalf("second baseline = %g", frags[1].Baseline)
	}
	// |−23.6| + 12 − 9.6
	if !approx(b.Height(), 26) {
		t.Fatalf("height = %g", b.Height())
	}
	if b.Width() != 54+24 {
		t.Fatalf("width = %g", b.Width())
	}
}

func TestEmptyBoxHasNoHeight(t *testing.T) {
	r := newRecorder()
	b := mustBox(t, r, nil, Options{})
	rest, err := b.Render(false)
	if err != nil || rest != nil {
		t.Fatalf("empty render: %v %v", rest, err)
	}
	if b.Height() != 0 || b.Width() != 0 {
		t.Fatalf("empty box must be 0x0, got %gx%g", b.Width(), b.Height())
	}
}

func TestJustifySpacing(t *testing.T) {
	r := newRecorder()
	b := mustBox(t, r, []Span{Plain("aa bb cc dd\nee ff")}, Options{At: &surface.Point{Y: 300}, Width: 60, Align: AlignJustify})
	if _, err := b.Render(false); err != nil {
		t.Fatal(err)
	}
	ops := r.OpsOf(surface.OpText)
	if len(ops) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(ops))
	}
	if ops[0].Text != "aa bb cc" || ops[0].Options.WordSpacing != 6 {
		t.Fatalf("first line not justified: %q ws=%g", ops[0].Text, ops[0].Options.WordSpacing)
	}
	if ops[1].Text != "dd" || ops[1].Options.WordSpacing != 0 {
		t.Fatalf("line ended by a newline must not be justified: %+v", ops[1])
	}
	if ops[2].Text != "ee ff" || ops[2].Options.WordSpacing != 0 {
		t.Fatalf("last line must not be justified: %+v", ops[2])
	}
	if frags := b.Fragments(); frags[0].Width != 60 {
		t.Fatalf("justified line should fill the width, got %g", frags[0].Width)
	}
}

func TestLongWordIsSplit(t *testing.T) {
	r := newRecorder()
	b := mustBox(t, r, []Span{Plain("abcdefghij")}, Options{Width: 30})
	if _, err := b.Render(true); err != nil {
		t.Fatal(err)
	}
	frags := b.Fragments()
	if len(frags) != 2 || frags[0].Text != "abcde" || frags[1].Text != "fghij" {
		t.Fatalf("unexpected split %+v", frags)
	}
}

func TestCannotFitDrawsNothing(t *testing.T) {
	r := newRecorder()
	b := mustBox(t, r, []Span{{Text: "hello", Format: Format{Fill: surface.Ptr(surface.White)}}}, Options{Width: 3, Underlay: true})
	_, err := b.Draw()
	if !errors.Is(err, ErrCannotFit) {
		t.Fatalf("expected ErrCannotFit, got %v", err)
	}
	if len(r.Ops()) != 0 {
		t.Fatalf("nothing may be drawn, got %+v", r.Ops())
	}
}

func TestTruncateReturnsRemainder(t *testing.T) {
	r := newRecorder()
	spans := []Span{
		Plain("one two "),
		{Text: "three four", Format: Format{Styles: Italic, Link: "https://example.com"}},
	}
	// 5 glyphs per line: "one", "two", "three", "four"; room for two lines.
	b := mustBox(t, r, spans, Options{At: &surface.Point{Y: 300}, Width: 30, Height: 30})
	rest, err := b.Render(false)
	if err != nil {
		t.Fatal(err)
	}
	if b.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %d", b.LineCount())
	}
	if len(rest) != 1 || rest[0].Text != "three four" || rest[0].Styles != Italic || rest[0].Link != "https://example.com" {
		t.Fatalf("unexpected remainder %+v", rest)
	}
}

func TestExpandIgnoresHeight(t *testing.T) {
	r := newRecorder()
	b := mustBox(t, r, []Span{Plain("one two three four")}, Options{Width: 30, Height: 12, Overflow: OverflowExpand})
	rest, err := b.Render(true)
	if err != nil || len(rest) != 0 {
		t.Fatalf("expand should place everything: %v %v", rest, err)
	}
	if b.LineCount() != 4 {
		t.Fatalf("expected 4 lines, got %d", b.LineCount())
	}
}

func TestShrinkToFit(t *testing.T) {
	r := newRecorder()
	b := mustBox(t, r, []Span{Plain("one two three four")}, Options{Width: 60, Height: 12, Overflow: OverflowShrinkToFit})
	rest, err := b.Render(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("shrink to fit left %+v", rest)
	}
	if b.FontSize() >= 12 || b.FontSize() < defaultMinFontSize {
		t.Fatalf("font size not reduced: %g", b.FontSize())
	}

	tiny := mustBox(t, r, []Span{Plain("one two three four five six seven")}, Options{Width: 10, Height: 5, Overflow: OverflowShrinkToFit, MinFontSize: 6})
	if _, err := tiny.Render(true); err != nil {
		t.Fatal(err)
	}
	if tiny.FontSize() != 6 {
		t.Fatalf("shrinking must stop at the minimum, got %g", tiny.FontSize())
	}
}

func TestScriptsAreSmallerAndShifted(t *testing.T) {
	r := newRecorder()
	spans := []Span{
		Plain("H"),
		{Text: "2", Format: Format{Styles: Subscript}},
		Plain("O x"),
		{Text: "2", Format: Format{Styles: Superscript}},
	}
	b := mustBox(t, r, spans, Options{At: &surface.Point{Y: 300}})
	if _, err := b.Render(true); err != nil {
		t.Fatal(err)
	}
	frags := b.Fragments()
	if len(frags) != 4 {
		t.Fatalf("expected 4 fragments, got %+v", frags)
	}
	size := 12 * scriptSizeRatio
	if !approx(frags[1].Font.Size, size) || !approx(frags[1].YOffset, -0.2*size) {
		t.Fatalf("subscript: %+v", frags[1])
	}
	if !approx(frags[3].YOffset, 0.85*0.8*size) {
		t.Fatalf("superscript: %+v", frags[3])
	}
	if !approx(frags[1].Baseline, frags[0].Baseline+frags[1].YOffset) {
		t.Fatalf("subscript baseline not shifted")
	}
}

func TestBadFontFamilyPropagates(t *testing.T) {
	r := newRecorder()
	b := mustBox(t, r, []Span{{Text: "x", Format: Format{Font: "Missing"}}}, Options{})
	_, err := b.Render(false)
	var bad *surface.BadFontFamilyError
	if !errors.As(err, &bad) || bad.Family != "Missing" {
		t.Fatalf("expected BadFontFamilyError, got %v", err)
	}
	if len(r.Ops()) != 0 {
		t.Fatalf("nothing may be drawn")
	}
	if r.Font().Family != surface.DefaultFamily {
		t.Fatalf("font not restored: %+v", r.Font())
	}
}

func TestDrawRestoresFont(t *testing.T) {
	r := newRecorder()
	r.SetFillColor(surface.MustColor("#123456"))
	before := r.State()
	red := surface.MustColor("#ff0000")
	b := mustBox(t, r, []Span{{Text: "big red", Format: Format{Size: 20, Styles: Bold, Color: &red}}}, Options{})
	if _, err := b.Render(false); err != nil {
		t.Fatal(err)
	}
	op := r.OpsOf(surface.OpText)[0]
	if op.State.FillColor != red || op.State.Font.Size != 20 || op.State.Font.Style != surface.StyleBold {
		t.Fatalf("text drawn with wrong state: %+v", op.State)
	}
	if r.State() != before {
		t.Fatalf("state leaked: %+v vs %+v", r.State(), before)
	}
}

// textFailsAfter draws n texts, then fails every DrawText.
type textFailsAfter struct {
	*surface.Recorder
	n int
}

func (f *textFailsAfter) DrawText(s string, at surface.Point, opts surface.TextOptions) error {
	if f.n == 0 {
		return errors.New("out of ink")
	}
	f.n--
	return f.Recorder.DrawText(s, at, opts)
}

func TestFailedDrawIsFinal(t *testing.T) {
	fs := &textFailsAfter{Recorder: newRecorder(), n: 1}
	b := mustBox(t, fs, []Span{Plain("one "), {Text: "two", Format: Format{Styles: Bold}}}, Options{})
	if _, err := b.Render(false); err == nil {
		t.Fatal("expected the second fragment to fail")
	}
	if b.State() != StateDrawn {
		t.Fatalf("state %v after a partial draw", b.State())
	}
	fs.n = 10
	if _, err := b.Render(false); !errors.Is(err, ErrAlreadyDrawn) {
		t.Fatalf("retry should fail with ErrAlreadyDrawn, got %v", err)
	}
	if got := len(fs.OpsOf(surface.OpText)); got != 1 {
		t.Fatalf("fragments drawn %d times, want 1", got)
	}
}
