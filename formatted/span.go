package formatted

import (
	"fmt"
	"strings"

	"github.com/ByLCY/folio/surface"
)

// Style is a set of inline text styles.
type Style uint8

const (
	Bold Style = 1 << iota
	Italic
	Underline
	Strikethrough
	Subscript
	Superscript
)

var styleNames = []struct {
	style Style
	name  string
}{
	{Bold, "bold"},
	{Italic, "italic"},
	{Underline, "underline"},
	{Strikethrough, "strikethrough"},
	{Subscript, "subscript"},
	{Superscript, "superscript"},
}

// Has reports whether every style in x is set.
func (s Style) Has(x Style) bool { return s&x == x }

func (s Style) String() string {
	var parts []string
	for _, n := range styleNames {
		if s.Has(n.style) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// FontStyle maps the bold and italic bits onto a face style.
func (s Style) FontStyle() surface.FontStyle {
	fs := surface.StyleNormal
	if s.Has(Bold) {
		fs |= surface.StyleBold
	}
	if s.Has(Italic) {
		fs |= surface.StyleItalic
	}
	return fs
}

// ParseStyle resolves one style name; "sub" and "sup" are accepted as short forms.
func ParseStyle(name string) (Style, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "sub":
		return Subscript, nil
	case "sup":
		return Superscript, nil
	case "strike", "s", "del":
		return Strikethrough, nil
	}
	for _, sn := range styleNames {
		if sn.name == n {
			return sn.style, nil
		}
	}
	return 0, fmt.Errorf("unknown text style %q", name)
}

// Format is everything about a run of text except the text itself.
type Format struct {
	Styles Style
	// Font is a family name; empty uses the box font.
	Font string
	// Size in points; zero uses the box size.
	Size  float64
	Color *surface.Color

	// Underlay attributes, drawn behind the fragment by a Drawer.
	Fill        *surface.Color
	BorderWidth float64
	BorderColor *surface.Color
	BorderStyle surface.BorderStyle

	// Link is an external URI; Anchor a named destination.
	Link   string
	Anchor string
}

// Span is one element of a formatted text array.
type Span struct {
	Text string
	Format
}

// Plain builds an unstyled span.
func Plain(text string) Span { return Span{Text: text} }

// Text concatenates the text of spans.
func Text(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
