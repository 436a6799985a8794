package formatted

import (
	"math"

	"github.com/ByLCY/folio/surface"
)

// Drawer paints the underlay of a box: a background and border for the box
// itself, then one for every fragment. It runs before the box is drawn and
// measures it with a dry run first.
type Drawer struct {
	Surface surface.Surface
	Box     *Box
	// At overrides the position of the box underlay; nil uses the box's own.
	At *surface.Point
}

func NewDrawer(s surface.Surface, box *Box) *Drawer {
	return &Drawer{Surface: s, Box: box}
}

func (d *Drawer) Draw() error {
	if _, err := d.Box.Render(true); err != nil {
		return err
	}
	if err := d.drawBoxUnderlay(); err != nil {
		return err
	}
	return d.drawFragmentUnderlays()
}

func (d *Drawer) at() surface.Point {
	if d.At != nil {
		return *d.At
	}
	return d.Box.At()
}

func (d *Drawer) drawBoxUnderlay() error {
	opts := d.Box.Options()
	width := math.Min(d.Box.Width(), d.Surface.Bounds().Width())
	r := underlay{
		at:          d.at(),
		width:       width,
		height:      d.Box.Height(),
		fill:        opts.FillColor,
		borderWidth: opts.BorderWidth,
		borderColor: opts.BorderColor,
		borderStyle: opts.BorderStyle,
	}
	if !r.visible() {
		return nil
	}
	o := surface.Overrides{StrokeColor: r.borderColor}
	if r.bordered() {
		o.LineWidth = &r.borderWidth
	}
	return surface.With(d.Surface, o, func() error {
		return surface.WithDashStyle(d.Surface, r.borderStyle, func() error {
			return r.paint(d.Surface)
		})
	})
}

func (d *Drawer) drawFragmentUnderlays() error {
	for _, f := range d.Box.Fragments() {
		if err := drawFragmentUnderlay(d.Surface, &f); err != nil {
			return err
		}
	}
	return nil
}

// drawFragmentUnderlay paints behind one fragment. Its rectangle starts at
// the bounding box origin raised by the fragment height, which makes it the
// top-left corner primitives are anchored at.
func drawFragmentUnderlay(s surface.Surface, f *Fragment) error {
	bb := f.BoundingBox()
	r := underlay{
		at:          surface.Point{X: bb.X0, Y: bb.Y0 + f.Height()},
		width:       bb.Width(),
		height:      bb.Height(),
		fill:        f.Fill,
		borderWidth: f.BorderWidth,
		borderColor: f.BorderColor,
		borderStyle: f.BorderStyle,
	}
	if !r.visible() {
		return nil
	}
	o := surface.Overrides{
		JoinStyle:   surface.Ptr(surface.JoinMiter),
		LineWidth:   &r.borderWidth,
		StrokeColor: r.borderColor,
	}
	return surface.With(s, o, func() error {
		return surface.WithDashStyle(s, r.borderStyle, func() error {
			return r.paint(s)
		})
	})
}

// underlay is a decoration rectangle with the fill-versus-stroke rule.
type underlay struct {
	at            surface.Point
	width, height float64
	fill          *surface.Color
	borderWidth   float64
	borderColor   *surface.Color
	borderStyle   surface.BorderStyle
}

func (u underlay) bordered() bool {
	return u.borderWidth > 0 && u.borderStyle.Visible()
}

func (u underlay) visible() bool { return u.fill != nil || u.bordered() }

func (u underlay) paint(s surface.Surface) error {
	if u.fill == nil {
		return s.StrokeRectangle(u.at, u.width, u.height)
	}
	return surface.WithFillColor(s, u.fill, func() error {
		if u.bordered() {
			return s.FillAndStrokeRectangle(u.at, u.width, u.height)
		}
		return s.FillRectangle(u.at, u.width, u.height)
	})
}

// drawOverlays strokes underline and strikethrough and adds link and anchor
// annotations for f. Any combination may apply.
func drawOverlays(s surface.Surface, f *Fragment, color *surface.Color) error {
	if f.Styles.Has(Underline) || f.Styles.Has(Strikethrough) {
		err := surface.WithStrokeColor(s, color, func() error {
			if f.Styles.Has(Underline) {
				if err := s.StrokeLine(f.UnderlinePoints()); err != nil {
					return err
				}
			}
			if f.Styles.Has(Strikethrough) {
				if err := s.StrokeLine(f.StrikethroughPoints()); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	origin := s.Bounds().At()
	if f.Link != "" {
		if err := s.LinkAnnotation(f.AbsoluteBoundingBox(origin), surface.Target{URI: f.Link}); err != nil {
			return err
		}
	}
	if f.Anchor != "" {
		if err := s.LinkAnnotation(f.AbsoluteBoundingBox(origin), surface.Target{Dest: f.Anchor}); err != nil {
			return err
		}
	}
	return nil
}
