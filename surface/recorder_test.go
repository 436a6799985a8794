package surface

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#fff":      White,
		"000":       Black,
		"#0F62FE":   {R: 0x0f, G: 0x62, B: 0xfe},
		"336699":    {R: 0x33, G: 0x66, B: 0x99},
		"#11223344": {R: 0x11, G: 0x22, B: 0x33},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %v want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "#12", "zzzzzz", "#1234567"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) should fail", bad)
		}
	}
}

func TestParseBorderStyle(t *testing.T) {
	for _, name := range []string{"solid", "dotted", "dashed", "none", "hidden"} {
		s, err := ParseBorderStyle(name)
		if err != nil {
			t.Fatalf("ParseBorderStyle(%q): %v", name, err)
		}
		if s.String() != name {
			t.Fatalf("round trip %q -> %q", name, s)
		}
	}
	if BorderNone.Visible() || BorderHidden.Visible() || !BorderDashed.Visible() {
		t.Fatalf("visibility rules broken")
	}
}

func TestRecorderMetrics(t *testing.T) {
	r := NewRecorder(Rect{X0: 36, Y0: 36, X1: 576, Y1: 756})
	if r.Cursor() != 720 {
		t.Fatalf("cursor should start at bounds height, got %g", r.Cursor())
	}
	r.MoveDown(20)
	if r.Cursor() != 700 {
		t.Fatalf("cursor after MoveDown = %g", r.Cursor())
	}
	m := r.FontMetrics()
	if !approx(m.Ascender, 9.6) || !approx(m.Descender, -2.4) || !approx(m.Height(), 12) {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if w := r.TextWidth("héllo", false); w != 30 {
		t.Fatalf("TextWidth counts runes: got %g", w)
	}
}

func TestRecorderRecordsState(t *testing.T) {
	r := NewRecorder(Rect{X1: 100, Y1: 100})
	r.SetFillColor(MustColor("#abcdef"))
	if err := r.FillRectangle(Point{X: 1, Y: 90}, 10, 5); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawText("hi", Point{X: 2, Y: 80}, TextOptions{WordSpacing: 1.5}); err != nil {
		t.Fatal(err)
	}
	ops := r.Ops()
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(ops))
	}
	if ops[0].Kind != OpFillRect || ops[0].State.FillColor != MustColor("#abcdef") {
		t.Fatalf("fill op not recorded with state: %+v", ops[0])
	}
	if ops[1].Options == nil || ops[1].Options.WordSpacing != 1.5 || ops[1].Width != 12 {
		t.Fatalf("text op not recorded: %+v", ops[1])
	}
	if len(r.OpsOf(OpText)) != 1 {
		t.Fatalf("OpsOf should filter by kind")
	}
	r.Reset()
	if len(r.Ops()) != 0 {
		t.Fatalf("Reset should drop ops")
	}
}

func TestRecorderImageSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dot.png")
	img := image.NewRGBA(image.Rect(0, 0, 24, 16))
	img.Set(0, 0, color.Black)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	r := NewRecorder(Rect{X1: 100, Y1: 100})
	w, h, err := r.ImageSize(path)
	if err != nil {
		t.Fatalf("ImageSize: %v", err)
	}
	if w != 24 || h != 16 {
		t.Fatalf("ImageSize = %gx%g", w, h)
	}

	r.RegisterImage("logo", 50, 20)
	if w, h, _ := r.ImageSize("logo"); w != 50 || h != 20 {
		t.Fatalf("registered size ignored: %gx%g", w, h)
	}
	if _, _, err := r.ImageSize(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("missing image should fail")
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
