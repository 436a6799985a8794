package formatted

import "github.com/ByLCY/folio/surface"

// Sub- and superscript geometry.
const (
	scriptSizeRatio   = 0.583
	superscriptRaise  = 0.85
	underlineDrop     = 1.25
	strikethroughRise = 0.3
)

// Fragment is a run of text that shares one format on one line. Its
// geometry is only meaningful after the owning Box has been rendered.
type Fragment struct {
	Text string
	Format
	// Font is the resolved face the fragment is measured and drawn with.
	Font surface.Font

	// Left and Baseline are relative to the surface bounds; Baseline already
	// includes YOffset.
	Left        float64
	Baseline    float64
	Width       float64
	Ascender    float64
	Descender   float64
	YOffset     float64
	WordSpacing float64
}

// Height spans ascender to descender.
func (f *Fragment) Height() float64 { return f.Ascender - f.Descender }

// BoundingBox is the ink box of the fragment relative to the surface bounds.
func (f *Fragment) BoundingBox() surface.Rect {
	return surface.Rect{
		X0: f.Left,
		Y0: f.Baseline + f.Descender,
		X1: f.Left + f.Width,
		Y1: f.Baseline + f.Ascender,
	}
}

// AbsoluteBoundingBox translates the bounding box by origin, the lower-left
// corner of the bounds in page space.
func (f *Fragment) AbsoluteBoundingBox(origin surface.Point) surface.Rect {
	return f.BoundingBox().Translate(origin.X, origin.Y)
}

func (f *Fragment) UnderlinePoints() (surface.Point, surface.Point) {
	y := f.Baseline - underlineDrop
	return surface.Point{X: f.Left, Y: y}, surface.Point{X: f.Left + f.Width, Y: y}
}

func (f *Fragment) StrikethroughPoints() (surface.Point, surface.Point) {
	y := f.Baseline + f.Ascender*strikethroughRise
	return surface.Point{X: f.Left, Y: y}, surface.Point{X: f.Left + f.Width, Y: y}
}

// scriptOffset returns the baseline shift for sub- and superscript text
// measured with metrics m. Descender is negative, so subscript drops.
func scriptOffset(styles Style, m surface.Metrics) float64 {
	switch {
	case styles.Has(Subscript):
		return m.Descender
	case styles.Has(Superscript):
		return superscriptRaise * m.Ascender
	default:
		return 0
	}
}
