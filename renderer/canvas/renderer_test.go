package canvasrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/formatted"
	"github.com/ByLCY/folio/surface"
	"github.com/ByLCY/folio/table"
)

func newRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDefaults(t *testing.T) {
	if b := newRenderer(t, Options{}).Bounds(); b != (surface.Rect{X1: DefaultPageWidth, Y1: DefaultPageHeight}) {
		t.Fatalf("zero margin bounds %+v", b)
	}
	r := newRenderer(t, Options{Margin: 36})
	b := r.Bounds()
	if b.X0 != 36 || math.Abs(b.Y1-(DefaultPageHeight-36)) > 1e-9 {
		t.Fatalf("bounds %+v", b)
	}
	if r.Cursor() != b.Height() {
		t.Fatalf("cursor should start at the top, got %g", r.Cursor())
	}
	if f := r.Font(); f.Family != fonts.Family || f.Size != DefaultFontSize {
		t.Fatalf("initial font %+v", f)
	}
	if _, err := New(Options{Margin: 400}); err == nil {
		t.Fatal("oversized margin accepted")
	}
}

func TestSetFontRejectsUnknownFamily(t *testing.T) {
	r := newRenderer(t, Options{})
	err := r.SetFont(surface.Font{Family: "Nope", Size: 10})
	if !errors.Is(err, surface.ErrBadFontFamily) {
		t.Fatalf("expected ErrBadFontFamily, got %v", err)
	}
	if r.Font().Family != fonts.Family {
		t.Fatal("failed SetFont changed the font")
	}
	if err := r.SetFont(surface.Font{Family: fonts.Family, Style: surface.StyleBoldItalic, Size: 10}); err != nil {
		t.Fatal(err)
	}
}

func TestMetricsScaleWithSize(t *testing.T) {
	r := newRenderer(t, Options{})
	small := r.TextWidth("hello world", true)
	m := r.FontMetrics()
	if small <= 0 || m.Ascender <= 0 || m.Descender >= 0 {
		t.Fatalf("width %g metrics %+v", small, m)
	}
	if err := r.SetFont(surface.Font{Family: fonts.Family, Size: 24}); err != nil {
		t.Fatal(err)
	}
	// 字号翻倍，宽度与度量也应翻倍
	if got := r.TextWidth("hello world", true); math.Abs(got-2*small) > 0.01 {
		t.Fatalf("width at 24pt = %g, want %g", got, 2*small)
	}
	if got := r.FontMetrics().Ascender; math.Abs(got-2*m.Ascender) > 0.01 {
		t.Fatalf("ascender at 24pt = %g, want %g", got, 2*m.Ascender)
	}
}

func TestBuiltInImage(t *testing.T) {
	r := newRenderer(t, Options{Images: map[string]Resource{"dot": {Bytes: pngBytes(t, 40, 20)}}})
	w, h, err := r.ImageSize("built-in:dot")
	if err != nil {
		t.Fatal(err)
	}
	// 40px / 4 = 10mm
	if math.Abs(w-10*surface.MmToPt) > 1e-9 || math.Abs(h-5*surface.MmToPt) > 1e-9 {
		t.Fatalf("image size %gx%g", w, h)
	}
	if err := r.PlaceImage("built-in:dot", surface.Point{X: 0, Y: 100}, w, h); err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.ImageSize("built-in:missing"); err == nil {
		t.Fatal("missing built-in image accepted")
	}
}

func TestRelativePathNeedsBaseDir(t *testing.T) {
	r := newRenderer(t, Options{})
	_, _, err := r.ImageSize("logo.png")
	if err == nil || !strings.Contains(err.Error(), "built-in:") {
		t.Fatalf("expected a base dir error, got %v", err)
	}
}

func TestLinkAnnotations(t *testing.T) {
	r := newRenderer(t, Options{})
	rect := surface.Rect{X0: 10, Y0: 10, X1: 50, Y1: 22}
	if err := r.LinkAnnotation(rect, surface.Target{URI: "https://example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := r.LinkAnnotation(rect, surface.Target{}); err == nil {
		t.Fatal("empty target accepted")
	}
	got := r.Annotations()
	if len(got) != 1 || got[0].Rect != rect || got[0].Target.URI != "https://example.com" {
		t.Fatalf("annotations %+v", got)
	}
}

func TestRenderTableAndText(t *testing.T) {
	r := newRenderer(t, Options{Meta: Meta{Title: "folio", Keywords: []string{"table"}}})
	tbl, err := table.New(r, [][]any{{"Name", "Qty"}, {"apples", "3"}}, table.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := tbl.Draw(); err != nil {
		t.Fatal(err)
	}
	if r.Cursor() >= r.Bounds().Height() {
		t.Fatal("table did not move the cursor")
	}
	spans, err := formatted.ParseMarkup("under the <b>table</b>, see <link href=\"https://example.com\">example</link>")
	if err != nil {
		t.Fatal(err)
	}
	rest, err := formatted.TextBox(r, spans, formatted.Options{Underlay: true, FillColor: &surface.White})
	if err != nil || len(rest) != 0 {
		t.Fatalf("text box left %v, %v", rest, err)
	}
	if len(r.Annotations()) != 1 {
		t.Fatalf("expected the link to be annotated, got %+v", r.Annotations())
	}
	pdf, err := r.Render()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", pdf[:min(len(pdf), 8)])
	}
}
