package table

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/folio/formatted"
	"github.com/ByLCY/folio/surface"
)

// Kind discriminates cell content.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	if k == KindImage {
		return "image"
	}
	return "text"
}

// ImageSource is an image cell's payload. Width and Height override the
// intrinsic size; when only one is given the other keeps the aspect ratio.
type ImageSource struct {
	Path   string
	Width  float64
	Height float64
}

// Content is either text or an image.
type Content struct {
	Text  string
	Image *ImageSource
}

func TextContent(s string) Content { return Content{Text: s} }

func ImageContent(src ImageSource) Content { return Content{Image: &src} }

func (c Content) Kind() Kind {
	if c.Image != nil {
		return KindImage
	}
	return KindText
}

func (c Content) String() string {
	if c.Image != nil {
		return "image:" + c.Image.Path
	}
	return c.Text
}

// Cell is one styleable unit of a table. Its coordinate and natural content
// size are fixed when it is created; Style may change at any time.
type Cell struct {
	row, column int
	content     Content

	Style Options

	naturalW, naturalH float64
	minContentW        float64
	lineH              float64
	boundsW, boundsH   float64
}

// NewCell measures content with the surface's fonts and returns the cell.
// Fonts named by style must be known to the surface.
func NewCell(s surface.Surface, row, column int, content Content, style Options) (*Cell, error) {
	c := &Cell{
		row:     row,
		column:  column,
		content: content,
		Style:   Options{}.Merge(style),
		boundsW: s.Bounds().Width(),
		boundsH: s.Bounds().Height(),
	}
	var err error
	if content.Kind() == KindImage {
		err = c.measureImage(s)
	} else {
		err = c.measureText(s)
	}
	if err != nil {
		return nil, fmt.Errorf("cell (%d, %d): %w", row, column, err)
	}
	return c, nil
}

func (c *Cell) Row() int { return c.row }
func (c *Cell) Column() int { return c.column }
func (c *Cell) Content() Content { return c.content }
func (c *Cell) Kind() Kind { return c.content.Kind() }
func (c *Cell) Text() string { return c.content.Text }

// NaturalContentWidth and NaturalContentHeight are the unpadded content size
// measured when the cell was created.
func (c *Cell) NaturalContentWidth() float64 { return c.naturalW }
func (c *Cell) NaturalContentHeight() float64 { return c.naturalH }

func (c *Cell) Padding() Padding {
	if c.Style.Padding != nil {
		return *c.Style.Padding
	}
	return Padding{}
}

func (c *Cell) Width() float64 {
	if c.Style.Width != nil {
		return *c.Style.Width
	}
	return c.naturalW + c.Padding().Horizontal()
}

// MinWidth is the explicit minimum or room for one character of text (the
// whole image for image cells).
func (c *Cell) MinWidth() float64 {
	if c.Style.MinWidth != nil {
		return *c.Style.MinWidth
	}
	return c.Padding().Horizontal() + c.minContentW
}

func (c *Cell) MaxWidth() float64 {
	if c.Style.MaxWidth != nil {
		return *c.Style.MaxWidth
	}
	return c.boundsW
}

func (c *Cell) Height() float64 {
	if c.Style.Height != nil {
		return *c.Style.Height
	}
	return c.naturalH + c.Padding().Vertical()
}

func (c *Cell) MinHeight() float64 {
	if c.Style.MinHeight != nil {
		return *c.Style.MinHeight
	}
	return c.Padding().Vertical() + c.lineH
}

func (c *Cell) MaxHeight() float64 {
	if c.Style.MaxHeight != nil {
		return *c.Style.MaxHeight
	}
	return c.boundsH
}

// Set parses value into the style attribute attr.
func (c *Cell) Set(attr Attr, value string) error { return c.Style.Set(attr, value) }

// font resolves the cell font against the surface's current one.
func (c *Cell) font(s surface.Surface) surface.Font {
	f := s.Font()
	f.Style = surface.StyleNormal
	if c.Style.Font != nil {
		f.Family = *c.Style.Font
	}
	if c.Style.FontSize != nil {
		f.Size = *c.Style.FontSize
	}
	if c.Style.FontStyle != nil {
		f.Style = *c.Style.FontStyle
	}
	return f
}

func (c *Cell) measureText(s surface.Surface) error {
	f := c.font(s)
	var widest, minW float64
	err := surface.WithFont(s, f, func() error {
		for _, line := range strings.Split(c.content.Text, "\n") {
			widest = math.Max(widest, s.TextWidth(line, false))
		}
		minW = s.TextWidth("M", false)
		c.lineH = s.FontMetrics().Height()
		return nil
	})
	if err != nil {
		return err
	}
	c.naturalW = math.Min(widest, c.boundsW)
	c.minContentW = minW
	c.naturalH, err = c.textHeight(s, c.naturalW)
	return err
}

// textHeight lays the text out at width without drawing it.
func (c *Cell) textHeight(s surface.Surface, width float64) (float64, error) {
	if c.content.Text == "" {
		return 0, nil
	}
	if width <= 0 {
		width = c.minContentW
	}
	f := c.font(s)
	box, err := formatted.NewBox(s, c.spans(f), formatted.Options{
		At:       &surface.Point{X: 0, Y: c.boundsH},
		Width:    width,
		Overflow: formatted.OverflowExpand,
		Font:     f.Family,
		Size:     f.Size,
	})
	if err != nil {
		return 0, err
	}
	if _, err := box.Render(true); err != nil {
		return 0, err
	}
	return box.Height(), nil
}

func (c *Cell) spans(f surface.Font) []formatted.Span {
	var styles formatted.Style
	if f.Style&surface.StyleBold != 0 {
		styles |= formatted.Bold
	}
	if f.Style&surface.StyleItalic != 0 {
		styles |= formatted.Italic
	}
	return []formatted.Span{{Text: c.content.Text, Format: formatted.Format{Styles: styles}}}
}

func (c *Cell) measureImage(s surface.Surface) error {
	src := c.content.Image
	w, h := src.Width, src.Height
	if w <= 0 || h <= 0 {
		iw, ih, err := s.ImageSize(src.Path)
		if err != nil {
			return err
		}
		switch {
		case w > 0 && iw > 0:
			h = w * ih / iw
		case h > 0 && ih > 0:
			w = h * iw / ih
		default:
			w, h = iw, ih
		}
	}
	c.naturalW = math.Min(w, c.boundsW)
	c.naturalH = math.Min(h, c.boundsH)
	c.minContentW = c.naturalW
	c.lineH = c.naturalH
	return nil
}

// HeightAt is the padded height the cell needs when its column is width
// wide, clamped to its min and max heights.
func (c *Cell) HeightAt(s surface.Surface, width float64) (float64, error) {
	if c.Style.Height != nil {
		return *c.Style.Height, nil
	}
	pad := c.Padding()
	inner := width - pad.Horizontal()
	var h float64
	if c.Kind() == KindImage {
		_, h = c.imageSize(inner, c.MaxHeight()-pad.Vertical())
	} else {
		var err error
		if h, err = c.textHeight(s, inner); err != nil {
			return 0, fmt.Errorf("cell (%d, %d): %w", c.row, c.column, err)
		}
	}
	h += pad.Vertical()
	return math.Min(math.Max(h, c.MinHeight()), c.MaxHeight()), nil
}

// imageSize scales the natural image size down to fit w×h.
func (c *Cell) imageSize(w, h float64) (float64, float64) {
	nw, nh := c.naturalW, c.naturalH
	if nw <= 0 || nh <= 0 {
		return 0, 0
	}
	scale := math.Min(1, math.Min(w/nw, h/nh))
	if scale < 0 {
		scale = 0
	}
	return nw * scale, nh * scale
}

// Draw paints background, borders and content into the w×h rectangle whose
// top-left corner is at. background is used when the cell has none of its
// own.
func (c *Cell) Draw(s surface.Surface, at surface.Point, w, h float64, background *surface.Color) error {
	fill := c.Style.BackgroundColor
	if fill == nil {
		fill = background
	}
	if fill != nil {
		err := surface.WithFillColor(s, fill, func() error {
			return s.FillRectangle(at, w, h)
		})
		if err != nil {
			return err
		}
	}
	if err := c.drawBorders(s, at, w, h); err != nil {
		return err
	}
	return c.drawContent(s, at, w, h)
}

func (c *Cell) drawBorders(s surface.Surface, at surface.Point, w, h float64) error {
	width := 0.0
	if c.Style.BorderWidth != nil {
		width = *c.Style.BorderWidth
	}
	style := surface.BorderSolid
	if c.Style.BorderStyle != nil {
		style = *c.Style.BorderStyle
	}
	sides := AllSides
	if c.Style.Borders != nil {
		sides = *c.Style.Borders
	}
	if width <= 0 || !style.Visible() || sides == NoSides {
		return nil
	}
	tl := at
	tr := surface.Point{X: at.X + w, Y: at.Y}
	bl := surface.Point{X: at.X, Y: at.Y - h}
	br := surface.Point{X: at.X + w, Y: at.Y - h}
	edges := []struct {
		side     Sides
		from, to surface.Point
	}{
		{SideTop, tl, tr},
		{SideRight, tr, br},
		{SideBottom, bl, br},
		{SideLeft, tl, bl},
	}
	o := surface.Overrides{StrokeColor: c.Style.BorderColor, LineWidth: &width}
	return surface.With(s, o, func() error {
		return surface.WithDashStyle(s, style, func() error {
			for _, e := range edges {
				if !sides.Has(e.side) {
					continue
				}
				if err := s.StrokeLine(e.from, e.to); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func (c *Cell) drawContent(s surface.Surface, at surface.Point, w, h float64) error {
	pad := c.Padding()
	inner := surface.Point{X: at.X + pad.Left, Y: at.Y - pad.Top}
	innerW, innerH := w-pad.Horizontal(), h-pad.Vertical()
	if innerW <= 0 || innerH <= 0 {
		return nil
	}
	if c.Kind() == KindImage {
		iw, ih := c.imageSize(innerW, innerH)
		if iw <= 0 || ih <= 0 {
			return nil
		}
		return s.PlaceImage(c.content.Image.Path, inner, iw, ih)
	}
	if c.content.Text == "" {
		return nil
	}
	f := c.font(s)
	opts := formatted.Options{
		At:     &inner,
		Width:  innerW,
		Height: innerH,
		Font:   f.Family,
		Size:   f.Size,
		Color:  c.Style.TextColor,
	}
	if c.Style.Align != nil {
		opts.Align = *c.Style.Align
	}
	box, err := formatted.NewBox(s, c.spans(f), opts)
	if err != nil {
		return err
	}
	_, err = box.Render(false)
	return err
}
