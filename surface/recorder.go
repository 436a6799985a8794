package surface

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"unicode/utf8"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Recorder glyph metrics, as fractions of the font size.
const (
	recorderAdvance   = 0.5
	recorderAscender  = 0.8
	recorderDescender = -0.2
)

// Op is one recorded primitive together with the graphics state it was
// painted with.
type Op struct {
	Kind    string       `json:"kind"`
	Text    string       `json:"text,omitempty"`
	At      Point        `json:"at"`
	To      *Point       `json:"to,omitempty"`
	Width   float64      `json:"width,omitempty"`
	Height  float64      `json:"height,omitempty"`
	Rect    *Rect        `json:"rect,omitempty"`
	Target  *Target      `json:"target,omitempty"`
	Path    string       `json:"path,omitempty"`
	Options *TextOptions `json:"options,omitempty"`
	State   State        `json:"state"`
}

// Op kinds.
const (
	OpFillRect       = "fill_rectangle"
	OpStrokeRect     = "stroke_rectangle"
	OpFillStrokeRect = "fill_and_stroke_rectangle"
	OpStrokeLine     = "stroke_line"
	OpText           = "draw_text"
	OpImage          = "place_image"
	OpLink           = "link_annotation"
)

// State is a snapshot of the recorder's graphics state.
type State struct {
	FillColor   Color     `json:"fillColor"`
	StrokeColor Color     `json:"strokeColor"`
	LineWidth   float64   `json:"lineWidth"`
	JoinStyle   JoinStyle `json:"joinStyle"`
	Dash        float64   `json:"dash"`
	Dashed      bool      `json:"dashed"`
	Font        Font      `json:"font"`
}

// Recorder is an in-memory Surface. It measures every glyph with the same
// advance, which keeps layout results predictable, and records each
// primitive instead of painting it.
type Recorder struct {
	bounds   Rect
	cursor   float64
	state    State
	ops      []Op
	families map[string]map[FontStyle]bool
	images   map[string][2]float64
}

var _ Surface = (*Recorder)(nil)

// DefaultFamily is the family a new Recorder starts with; it has all styles.
const DefaultFamily = "Helvetica"

// NewRecorder creates a recorder drawing into bounds with the cursor at
// the top of them.
func NewRecorder(bounds Rect) *Recorder {
	r := &Recorder{
		bounds:   bounds,
		cursor:   bounds.Height(),
		families: map[string]map[FontStyle]bool{},
		images:   map[string][2]float64{},
		state: State{
			LineWidth: 1,
			Font:      Font{Family: DefaultFamily, Size: 12},
		},
	}
	r.RegisterFamily(DefaultFamily, StyleNormal, StyleBold, StyleItalic, StyleBoldItalic)
	return r
}

// RegisterFamily makes family available in the given styles.
func (r *Recorder) RegisterFamily(family string, styles ...FontStyle) {
	set := r.families[family]
	if set == nil {
		set = map[FontStyle]bool{}
		r.families[family] = set
	}
	for _, s := range styles {
		set[s] = true
	}
}

// RegisterImage fixes the intrinsic size reported for path.
func (r *Recorder) RegisterImage(path string, w, h float64) {
	r.images[path] = [2]float64{w, h}
}

// Ops returns a copy of the recorded primitives.
func (r *Recorder) Ops() []Op {
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// OpsOf returns the recorded primitives of one kind.
func (r *Recorder) OpsOf(kind string) []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Reset drops the recorded primitives but keeps state and cursor.
func (r *Recorder) Reset() { r.ops = nil }

// State returns the current graphics state.
func (r *Recorder) State() State { return r.state }

func (r *Recorder) record(op Op) error {
	op.State = r.state
	r.ops = append(r.ops, op)
	return nil
}

func (r *Recorder) FillRectangle(at Point, w, h float64) error {
	return r.record(Op{Kind: OpFillRect, At: at, Width: w, Height: h})
}

func (r *Recorder) StrokeRectangle(at Point, w, h float64) error {
	return r.record(Op{Kind: OpStrokeRect, At: at, Width: w, Height: h})
}

func (r *Recorder) FillAndStrokeRectangle(at Point, w, h float64) error {
	return r.record(Op{Kind: OpFillStrokeRect, At: at, Width: w, Height: h})
}

func (r *Recorder) StrokeLine(from, to Point) error {
	return r.record(Op{Kind: OpStrokeLine, At: from, To: &to})
}

func (r *Recorder) DrawText(s string, at Point, opts TextOptions) error {
	return r.record(Op{Kind: OpText, Text: s, At: at, Width: r.TextWidth(s, opts.Kerning), Options: &opts})
}

func (r *Recorder) PlaceImage(path string, at Point, w, h float64) error {
	return r.record(Op{Kind: OpImage, Path: path, At: at, Width: w, Height: h})
}

func (r *Recorder) LinkAnnotation(rect Rect, target Target) error {
	return r.record(Op{Kind: OpLink, At: rect.At(), Rect: &rect, Target: &target})
}

func (r *Recorder) FillColor() Color { return r.state.FillColor }
func (r *Recorder) SetFillColor(c Color) { r.state.FillColor = c }
func (r *Recorder) StrokeColor() Color { return r.state.StrokeColor }
func (r *Recorder) SetStrokeColor(c Color) { r.state.StrokeColor = c }
func (r *Recorder) LineWidth() float64 { return r.state.LineWidth }
func (r *Recorder) SetLineWidth(w float64) { r.state.LineWidth = w }
func (r *Recorder) JoinStyle() JoinStyle { return r.state.JoinStyle }
func (r *Recorder) SetJoinStyle(j JoinStyle) { r.state.JoinStyle = j }

func (r *Recorder) Dash() (float64, bool) { return r.state.Dash, r.state.Dashed }

func (r *Recorder) SetDash(length float64) {
	r.state.Dash = length
	r.state.Dashed = true
}

func (r *Recorder) Undash() {
	r.state.Dash = 0
	r.state.Dashed = false
}

func (r *Recorder) Font() Font { return r.state.Font }

func (r *Recorder) SetFont(f Font) error {
	styles, ok := r.families[f.Family]
	if !ok || !styles[f.Style] {
		return &BadFontFamilyError{Family: f.Family, Style: f.Style}
	}
	if f.Size <= 0 {
		f.Size = r.state.Font.Size
	}
	r.state.Font = f
	return nil
}

func (r *Recorder) FontMetrics() Metrics {
	size := r.state.Font.Size
	return Metrics{Ascender: recorderAscender * size, Descender: recorderDescender * size}
}

func (r *Recorder) TextWidth(s string, _ bool) float64 {
	return float64(utf8.RuneCountInString(s)) * recorderAdvance * r.state.Font.Size
}

func (r *Recorder) Cursor() float64 { return r.cursor }
func (r *Recorder) MoveDown(dy float64) { r.cursor -= dy }
func (r *Recorder) Bounds() Rect { return r.bounds }

// ImageSize prefers sizes registered with RegisterImage and otherwise
// decodes the image header, one pixel per point.
func (r *Recorder) ImageSize(path string) (float64, float64, error) {
	if size, ok := r.images[path]; ok {
		return size[0], size[1], nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image %s: %w", path, err)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}
