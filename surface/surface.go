// Package surface defines the drawing surface the table and formatted-text
// packages paint on, together with scoped graphics-state overrides and an
// in-memory Recorder implementation.
//
// Coordinates handed to Painter methods are relative to the current bounds
// (origin at their lower-left corner, y growing upwards). Rectangle and
// image primitives are anchored at their top-left corner and extend
// downwards, the way text boxes are placed. DrawText takes the baseline
// origin. LinkAnnotation takes absolute page coordinates.
//
// Surfaces are not safe for concurrent use.
package surface

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadFontFamily is matched by errors returned from SetFont when the
// family or the requested style of it is not known to the surface.
var ErrBadFontFamily = errors.New("bad font family")

// BadFontFamilyError reports an unresolvable family/style combination.
type BadFontFamilyError struct {
	Family string
	Style  FontStyle
}

func (e *BadFontFamilyError) Error() string {
	return fmt.Sprintf("bad font family %q (style %s)", e.Family, e.Style)
}

func (e *BadFontFamilyError) Is(target error) bool { return target == ErrBadFontFamily }

// FontStyle is a bit set of bold and italic.
type FontStyle int

const (
	StyleNormal     FontStyle = 0
	StyleBold       FontStyle = 1
	StyleItalic     FontStyle = 2
	StyleBoldItalic           = StyleBold | StyleItalic
)

func (s FontStyle) String() string {
	switch s {
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBoldItalic:
		return "bold_italic"
	default:
		return "normal"
	}
}

// ParseFontStyle understands "normal", "bold", "italic" and "bold_italic"
// (also "bold-italic" and "bolditalic").
func ParseFontStyle(name string) (FontStyle, error) {
	n := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(name))
	switch n {
	case "", "normal", "regular":
		return StyleNormal, nil
	case "bold":
		return StyleBold, nil
	case "italic":
		return StyleItalic, nil
	case "bolditalic", "italicbold":
		return StyleBoldItalic, nil
	default:
		return StyleNormal, fmt.Errorf("unknown font style %q", name)
	}
}

// Font identifies a face at a size in points.
type Font struct {
	Family string    `json:"family"`
	Style  FontStyle `json:"style"`
	Size   float64   `json:"size"`
}

// Metrics are vertical font metrics in points for the current font size.
// Descender is negative below the baseline.
type Metrics struct {
	Ascender  float64 `json:"ascender"`
	Descender float64 `json:"descender"`
	LineGap   float64 `json:"lineGap"`
}

// Height is the distance between two baselines without extra leading.
func (m Metrics) Height() float64 { return m.Ascender - m.Descender + m.LineGap }

// TextOptions tune a single DrawText call.
type TextOptions struct {
	Kerning     bool    `json:"kerning"`
	WordSpacing float64 `json:"wordSpacing,omitempty"`
}

// Target is the destination of a link annotation: either an external URI or
// a named destination inside the document.
type Target struct {
	URI  string `json:"uri,omitempty"`
	Dest string `json:"dest,omitempty"`
}

// Painter emits drawing primitives.
type Painter interface {
	FillRectangle(at Point, w, h float64) error
	StrokeRectangle(at Point, w, h float64) error
	FillAndStrokeRectangle(at Point, w, h float64) error
	StrokeLine(from, to Point) error
	DrawText(s string, at Point, opts TextOptions) error
	PlaceImage(path string, at Point, w, h float64) error
	LinkAnnotation(rect Rect, target Target) error
}

// GraphicsState holds the attributes primitives are painted with.
type GraphicsState interface {
	FillColor() Color
	SetFillColor(Color)
	StrokeColor() Color
	SetStrokeColor(Color)
	LineWidth() float64
	SetLineWidth(float64)
	JoinStyle() JoinStyle
	SetJoinStyle(JoinStyle)
	// Dash reports the active dash unit, if any.
	Dash() (float64, bool)
	SetDash(length float64)
	Undash()
}

// Typesetter selects fonts and answers text measurement queries.
type Typesetter interface {
	Font() Font
	SetFont(Font) error
	FontMetrics() Metrics
	TextWidth(s string, kerning bool) float64
}

// Geometry exposes the flow position and the region being drawn into.
type Geometry interface {
	// Cursor is the current y position relative to the bounds bottom.
	Cursor() float64
	MoveDown(dy float64)
	// Bounds is the drawable region in absolute page coordinates.
	Bounds() Rect
	// ImageSize returns the intrinsic size of an image in points.
	ImageSize(path string) (w, h float64, err error)
}

// Surface is everything the composition engine needs from its host.
type Surface interface {
	Painter
	GraphicsState
	Typesetter
	Geometry
}
