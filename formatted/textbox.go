package formatted

import "github.com/ByLCY/folio/surface"

// NewTextBox builds a box inside opts.Margin. Without opts.At the box starts
// at the cursor; the width defaults to the bounds width less both
// horizontal margins.
func NewTextBox(s surface.Surface, spans []Span, opts Options) (*Box, error) {
	origin := surface.Point{X: 0, Y: s.Cursor()}
	if opts.At != nil {
		origin = *opts.At
	}
	m := opts.Margin
	at := surface.Point{X: origin.X + m.Left, Y: origin.Y - m.Top}
	opts.At = &at
	if opts.Width <= 0 {
		opts.Width = s.Bounds().Width() - origin.X - m.Left - m.Right
	}
	if opts.Height <= 0 {
		opts.Height = at.Y - m.Bottom
	}
	return NewBox(s, spans, opts)
}

// Draw paints the underlay when the box asks for one, then renders the text
// and returns what did not fit.
func (b *Box) Draw() ([]Span, error) {
	if b.opts.Underlay {
		if err := NewDrawer(b.s, b).Draw(); err != nil {
			return nil, err
		}
	}
	return b.Render(false)
}

// OuterHeight is the rendered height plus the vertical margins.
func (b *Box) OuterHeight() float64 {
	return b.Height() + b.opts.Margin.Top + b.opts.Margin.Bottom
}

// TextBox draws spans as a formatted text box at the cursor. The cursor is
// not moved. It returns the spans that did not fit.
func TextBox(s surface.Surface, spans []Span, opts Options) ([]Span, error) {
	box, err := NewTextBox(s, spans, opts)
	if err != nil {
		return nil, err
	}
	return box.Draw()
}
