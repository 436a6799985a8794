package surface

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a position in PDF user space (points, y grows upwards).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box stored as its two corners: (X0, Y0) is the
// lower-left corner and (X1, Y1) the upper-right one.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (r Rect) Width() float64 { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// At returns the lower-left corner.
func (r Rect) At() Point { return Point{X: r.X0, Y: r.Y0} }

// TopLeft returns the corner rectangle primitives are anchored at.
func (r Rect) TopLeft() Point { return Point{X: r.X0, Y: r.Y1} }

// Translate moves the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X0: r.X0 + dx, Y0: r.Y0 + dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// Color uses 0-255 RGB components.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// Hex returns the colour as a six digit lowercase hex string without '#'.
func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return "#" + c.Hex() }

// ParseColor accepts "#rgb", "rgb", "#rrggbb", "rrggbb" and "#rrggbbaa" (alpha ignored).
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		v = strings.Repeat(v[0:1], 2) + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2)
	case 6, 8:
		v = v[:6]
	default:
		return Color{}, fmt.Errorf("colour %q cannot be parsed", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("colour %q cannot be parsed: %w", value, err)
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// MustColor is ParseColor for literals; it panics on malformed input.
func MustColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

// BorderStyle selects how a border is stroked.
type BorderStyle int

const (
	BorderSolid BorderStyle = iota
	BorderDotted
	BorderDashed
	BorderNone
	BorderHidden
)

// DashWidth maps a border style onto the dash unit applied while stroking.
func (b BorderStyle) DashWidth() float64 {
	switch b {
	case BorderDotted:
		return 1
	case BorderDashed:
		return 2
	default:
		return 0
	}
}

// Visible reports whether a border in this style is ever stroked.
func (b BorderStyle) Visible() bool { return b != BorderNone && b != BorderHidden }

func (b BorderStyle) String() string {
	switch b {
	case BorderDotted:
		return "dotted"
	case BorderDashed:
		return "dashed"
	case BorderNone:
		return "none"
	case BorderHidden:
		return "hidden"
	default:
		return "solid"
	}
}

// ParseBorderStyle resolves a border style name.
func ParseBorderStyle(name string) (BorderStyle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "solid":
		return BorderSolid, nil
	case "dotted":
		return BorderDotted, nil
	case "dashed":
		return BorderDashed, nil
	case "none":
		return BorderNone, nil
	case "hidden":
		return BorderHidden, nil
	default:
		return BorderSolid, fmt.Errorf("unknown border style %q", name)
	}
}

// JoinStyle is the line join used when stroking paths.
type JoinStyle int

const (
	JoinMiter JoinStyle = iota
	JoinRound
	JoinBevel
)

func (j JoinStyle) String() string {
	switch j {
	case JoinRound:
		return "round"
	case JoinBevel:
		return "bevel"
	default:
		return "miter"
	}
}

// Ptr returns a pointer to v; handy for optional style fields.
func Ptr[T any](v T) *T { return &v }
