package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/folio/formatted"
	"github.com/ByLCY/folio/surface"
)

// ErrUnknownAttr is returned for style attribute names that have no setter.
var ErrUnknownAttr = errors.New("unknown style attribute")

// Padding is the space between a cell's border and its content, in points.
type Padding struct {
	Top, Right, Bottom, Left float64
}

func UniformPadding(v float64) Padding { return Padding{Top: v, Right: v, Bottom: v, Left: v} }

func (p Padding) Horizontal() float64 { return p.Left + p.Right }
func (p Padding) Vertical() float64 { return p.Top + p.Bottom }

// Sides selects which borders of a cell are stroked.
type Sides int

const (
	SideTop Sides = 1 << iota
	SideRight
	SideBottom
	SideLeft

	NoSides  Sides = 0
	AllSides       = SideTop | SideRight | SideBottom | SideLeft
)

func (s Sides) Has(x Sides) bool { return s&x == x }

func (s Sides) String() string {
	switch s {
	case NoSides:
		return "none"
	case AllSides:
		return "all"
	}
	var names []string
	for _, side := range []struct {
		s    Sides
		name string
	}{{SideTop, "top"}, {SideRight, "right"}, {SideBottom, "bottom"}, {SideLeft, "left"}} {
		if s.Has(side.s) {
			names = append(names, side.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseSides reads "all", "none" or a comma separated list of sides.
func ParseSides(v string) (Sides, error) {
	var s Sides
	for _, part := range strings.FieldsFunc(strings.ToLower(v), func(r rune) bool { return r == ',' || r == ' ' }) {
		switch part {
		case "all":
			s |= AllSides
		case "none":
		case "top":
			s |= SideTop
		case "right":
			s |= SideRight
		case "bottom":
			s |= SideBottom
		case "left":
			s |= SideLeft
		default:
			return NoSides, fmt.Errorf("unknown border side %q", part)
		}
	}
	return s, nil
}

// Options is the closed set of style attributes a cell carries. Nil fields
// are unset; Style on a selection only copies the non-nil ones.
type Options struct {
	Width     *float64
	Height    *float64
	MinWidth  *float64
	MaxWidth  *float64
	MinHeight *float64
	MaxHeight *float64

	Padding         *Padding
	BackgroundColor *surface.Color
	BorderWidth     *float64
	BorderColor     *surface.Color
	BorderStyle     *surface.BorderStyle
	Borders         *Sides

	TextColor *surface.Color
	Font      *string
	FontSize  *float64
	FontStyle *surface.FontStyle
	Align     *formatted.Align
}

// Merge returns o with every non-nil field of over applied on top.
func (o Options) Merge(over Options) Options {
	mergePtr(&o.Width, over.Width)
	mergePtr(&o.Height, over.Height)
	mergePtr(&o.MinWidth, over.MinWidth)
	mergePtr(&o.MaxWidth, over.MaxWidth)
	mergePtr(&o.MinHeight, over.MinHeight)
	mergePtr(&o.MaxHeight, over.MaxHeight)
	mergePtr(&o.Padding, over.Padding)
	mergePtr(&o.BackgroundColor, over.BackgroundColor)
	mergePtr(&o.BorderWidth, over.BorderWidth)
	mergePtr(&o.BorderColor, over.BorderColor)
	mergePtr(&o.BorderStyle, over.BorderStyle)
	mergePtr(&o.Borders, over.Borders)
	mergePtr(&o.TextColor, over.TextColor)
	mergePtr(&o.Font, over.Font)
	mergePtr(&o.FontSize, over.FontSize)
	mergePtr(&o.FontStyle, over.FontStyle)
	mergePtr(&o.Align, over.Align)
	return o
}

// mergePtr copies the value so cells never share style storage.
func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// Attr names one field of Options.
type Attr int

const (
	AttrWidth Attr = iota
	AttrHeight
	AttrMinWidth
	AttrMaxWidth
	AttrMinHeight
	AttrMaxHeight
	AttrPadding
	AttrBackgroundColor
	AttrBorderWidth
	AttrBorderColor
	AttrBorderStyle
	AttrBorders
	AttrTextColor
	AttrFont
	AttrFontSize
	AttrFontStyle
	AttrAlign

	attrCount
)

var attrNames = [attrCount]string{
	AttrWidth:           "width",
	AttrHeight:          "height",
	AttrMinWidth:        "min-width",
	AttrMaxWidth:        "max-width",
	AttrMinHeight:       "min-height",
	AttrMaxHeight:       "max-height",
	AttrPadding:         "padding",
	AttrBackgroundColor: "background-color",
	AttrBorderWidth:     "border-width",
	AttrBorderColor:     "border-color",
	AttrBorderStyle:     "border-style",
	AttrBorders:         "borders",
	AttrTextColor:       "text-color",
	AttrFont:            "font",
	AttrFontSize:        "font-size",
	AttrFontStyle:       "font-style",
	AttrAlign:           "align",
}

// attrSetters is indexed by Attr. Every slot must be filled.
var attrSetters = [attrCount]func(o *Options, v string) error{
	AttrWidth:     lengthSetter(func(o *Options) **float64 { return &o.Width }),
	AttrHeight:    lengthSetter(func(o *Options) **float64 { return &o.Height }),
	AttrMinWidth:  lengthSetter(func(o *Options) **float64 { return &o.MinWidth }),
	AttrMaxWidth:  lengthSetter(func(o *Options) **float64 { return &o.MaxWidth }),
	AttrMinHeight: lengthSetter(func(o *Options) **float64 { return &o.MinHeight }),
	AttrMaxHeight: lengthSetter(func(o *Options) **float64 { return &o.MaxHeight }),
	AttrPadding: func(o *Options, v string) error {
		p, err := ParsePadding(v)
		if err != nil {
			return err
		}
		o.Padding = &p
		return nil
	},
	AttrBackgroundColor: colorSetter(func(o *Options) **surface.Color { return &o.BackgroundColor }),
	AttrBorderWidth:     lengthSetter(func(o *Options) **float64 { return &o.BorderWidth }),
	AttrBorderColor:     colorSetter(func(o *Options) **surface.Color { return &o.BorderColor }),
	AttrBorderStyle: func(o *Options, v string) error {
		bs, err := surface.ParseBorderStyle(v)
		if err != nil {
			return err
		}
		o.BorderStyle = &bs
		return nil
	},
	AttrBorders: func(o *Options, v string) error {
		s, err := ParseSides(v)
		if err != nil {
			return err
		}
		o.Borders = &s
		return nil
	},
	AttrTextColor: colorSetter(func(o *Options) **surface.Color { return &o.TextColor }),
	AttrFont: func(o *Options, v string) error {
		v = strings.TrimSpace(v)
		if v == "" {
			return fmt.Errorf("empty font name")
		}
		o.Font = &v
		return nil
	},
	AttrFontSize: lengthSetter(func(o *Options) **float64 { return &o.FontSize }),
	AttrFontStyle: func(o *Options, v string) error {
		fs, err := surface.ParseFontStyle(v)
		if err != nil {
			return err
		}
		o.FontStyle = &fs
		return nil
	},
	AttrAlign: func(o *Options, v string) error {
		a, err := formatted.ParseAlign(v)
		if err != nil {
			return err
		}
		o.Align = &a
		return nil
	},
}

func lengthSetter(field func(*Options) **float64) func(*Options, string) error {
	return func(o *Options, v string) error {
		pt, err := surface.ParseLength(v)
		if err != nil {
			return err
		}
		*field(o) = &pt
		return nil
	}
}

func colorSetter(field func(*Options) **surface.Color) func(*Options, string) error {
	return func(o *Options, v string) error {
		c, err := surface.ParseColor(v)
		if err != nil {
			return err
		}
		*field(o) = &c
		return nil
	}
}

func (a Attr) String() string {
	if a < 0 || a >= attrCount {
		return fmt.Sprintf("Attr(%d)", int(a))
	}
	return attrNames[a]
}

// ParseAttr maps "background-color", "background_color" or
// "backgroundColor" to AttrBackgroundColor, and so on.
func ParseAttr(name string) (Attr, error) {
	key := normalizeAttr(name)
	for a, n := range attrNames {
		if normalizeAttr(n) == key {
			return Attr(a), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownAttr, name)
}

func normalizeAttr(name string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(name)))
}

// Set parses value and stores it in the field named by attr.
func (o *Options) Set(attr Attr, value string) error {
	if attr < 0 || attr >= attrCount || attrSetters[attr] == nil {
		return fmt.Errorf("%w %s", ErrUnknownAttr, attr)
	}
	if err := attrSetters[attr](o, value); err != nil {
		return fmt.Errorf("%s: %w", attr, err)
	}
	return nil
}

// ParsePadding accepts one to four lengths in CSS order.
func ParsePadding(v string) (Padding, error) {
	fields := strings.Fields(strings.ReplaceAll(v, ",", " "))
	vals := make([]float64, len(fields))
	for i, f := range fields {
		pt, err := surface.ParseLength(f)
		if err != nil {
			return Padding{}, err
		}
		vals[i] = pt
	}
	switch len(vals) {
	case 1:
		return UniformPadding(vals[0]), nil
	case 2:
		return Padding{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 3:
		return Padding{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, nil
	case 4:
		return Padding{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	default:
		return Padding{}, fmt.Errorf("padding %q needs 1 to 4 lengths", v)
	}
}
