// Package formatted lays out arrays of independently styled text spans into
// a bounded box and decorates them with underlays and overlays.
package formatted

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/folio/surface"
)

var (
	// ErrCannotFit is returned when the box is too narrow for a single
	// character. Nothing has been drawn when it is returned.
	ErrCannotFit = errors.New("formatted: box is too narrow to fit any text")
	// ErrUnsupportedOverflow is returned by NewBox for OverflowEllipses.
	ErrUnsupportedOverflow = errors.New("formatted: unsupported overflow policy")
	// ErrAlreadyDrawn is returned by Render once the box has been drawn.
	ErrAlreadyDrawn = errors.New("formatted: box already drawn")
)

const (
	defaultMinFontSize = 5
	shrinkStep         = 0.5
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// ParseAlign accepts left/start, center, right/end and justify.
func ParseAlign(v string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	case "justify":
		return AlignJustify, nil
	default:
		return AlignLeft, fmt.Errorf("unknown alignment %q", v)
	}
}

// Overflow decides what happens to text that does not fit the height.
type Overflow int

const (
	// OverflowTruncate stops at the last line that fits and returns the rest.
	OverflowTruncate Overflow = iota
	// OverflowExpand ignores the height budget.
	OverflowExpand
	// OverflowShrinkToFit reduces the font size until the text fits or the
	// minimum font size is reached.
	OverflowShrinkToFit
	// OverflowEllipses is not available for formatted text.
	OverflowEllipses
)

func (o Overflow) String() string {
	switch o {
	case OverflowExpand:
		return "expand"
	case OverflowShrinkToFit:
		return "shrink_to_fit"
	case OverflowEllipses:
		return "ellipses"
	default:
		return "truncate"
	}
}

func ParseOverflow(v string) (Overflow, error) {
	switch strings.NewReplacer("-", "_").Replace(strings.ToLower(strings.TrimSpace(v))) {
	case "", "truncate":
		return OverflowTruncate, nil
	case "expand":
		return OverflowExpand, nil
	case "shrink_to_fit", "shrink":
		return OverflowShrinkToFit, nil
	case "ellipses", "ellipsis":
		return OverflowEllipses, nil
	default:
		return OverflowTruncate, fmt.Errorf("unknown overflow %q", v)
	}
}

// Margin is applied around a box by NewTextBox.
type Margin struct {
	Top, Right, Bottom, Left float64
}

func UniformMargin(v float64) Margin { return Margin{Top: v, Right: v, Bottom: v, Left: v} }

// Options configure a Box. Lengths are points.
type Options struct {
	// At is the top-left corner relative to the bounds; nil means
	// (0, cursor).
	At *surface.Point
	// Width defaults to the space right of At, Height to the space below it.
	Width  float64
	Height float64

	Align       Align
	Overflow    Overflow
	MinFontSize float64
	Leading     float64
	Kerning     bool

	// Font and Size default to the surface's current font.
	Font  string
	Size  float64
	Color *surface.Color

	// Box underlay, drawn by a Drawer.
	FillColor   *surface.Color
	BorderWidth float64
	BorderColor *surface.Color
	BorderStyle surface.BorderStyle

	Underlay bool
	Margin   Margin
}

// State tracks the render lifecycle of a Box.
type State int

const (
	StateCreated State = iota
	StateMeasured
	StateDrawn
)

func (s State) String() string {
	switch s {
	case StateMeasured:
		return "measured"
	case StateDrawn:
		return "drawn"
	default:
		return "created"
	}
}

// Box lays formatted text out inside a rectangle. Dry runs may be repeated;
// the first real render is final.
type Box struct {
	s      surface.Surface
	spans  []Span
	opts   Options
	at     surface.Point
	width  float64
	height float64
	family string
	size   float64

	state     State
	fragments []Fragment
	lines     int
	usedSize  float64
	textH     float64
}

// NewBox prepares a box for spans. It fails for OverflowEllipses before any
// layout happens.
func NewBox(s surface.Surface, spans []Span, opts Options) (*Box, error) {
	if opts.Overflow == OverflowEllipses {
		return nil, fmt.Errorf("%w: ellipses are not available for formatted text", ErrUnsupportedOverflow)
	}
	bounds := s.Bounds()
	at := surface.Point{X: 0, Y: s.Cursor()}
	if opts.At != nil {
		at = *opts.At
	}
	b := &Box{
		s:      s,
		spans:  append([]Span(nil), spans...),
		opts:   opts,
		at:     at,
		width:  opts.Width,
		height: opts.Height,
		family: opts.Font,
		size:   opts.Size,
	}
	if b.width <= 0 {
		b.width = bounds.Width() - at.X
	}
	if b.height <= 0 {
		b.height = at.Y
	}
	current := s.Font()
	if b.family == "" {
		b.family = current.Family
	}
	if b.size <= 0 {
		b.size = current.Size
	}
	if b.opts.MinFontSize <= 0 {
		b.opts.MinFontSize = defaultMinFontSize
	}
	b.usedSize = b.size
	return b, nil
}

func (b *Box) At() surface.Point { return b.at }
func (b *Box) State() State { return b.state }
func (b *Box) Options() Options { return b.opts }
func (b *Box) Spans() []Span { return append([]Span(nil), b.spans...) }

// AvailableWidth and AvailableHeight are the resolved layout budget.
func (b *Box) AvailableWidth() float64 { return b.width }
func (b *Box) AvailableHeight() float64 { return b.height }

// FontSize is the base size used by the last render; it is below the
// configured size after a shrink-to-fit pass.
func (b *Box) FontSize() float64 { return b.usedSize }

// LineCount is the number of lines laid out by the last render.
func (b *Box) LineCount() int { return b.lines }

// Fragments returns the fragments realized by the last render.
func (b *Box) Fragments() []Fragment { return append([]Fragment(nil), b.fragments...) }

// Width is the total fragment width capped at the bounds width.
func (b *Box) Width() float64 {
	total := 0.0
	for i := range b.fragments {
		total += b.fragments[i].Width
	}
	return math.Min(total, b.s.Bounds().Width())
}

// Height is the height used by the last render, 0 before it.
func (b *Box) Height() float64 { return b.textH }

// Render lays the text out. With dryRun nothing is drawn; otherwise every
// fragment is drawn followed by its overlays and the box becomes final.
// The spans that did not fit are returned.
func (b *Box) Render(dryRun bool) ([]Span, error) {
	if b.state == StateDrawn {
		return nil, ErrAlreadyDrawn
	}
	p, err := b.layout()
	if err != nil {
		return nil, err
	}
	b.place(p)
	rest := remainder(b.spans, p.tokens, p.restFrom)
	if dryRun {
		b.state = StateMeasured
		return rest, nil
	}
	// A failed real draw is final as well.
	b.state = StateDrawn
	for i := range b.fragments {
		if err := b.drawFragment(&b.fragments[i]); err != nil {
			return nil, err
		}
	}
	return rest, nil
}

// pass is the outcome of one layout attempt at one base size.
type pass struct {
	size      float64
	tokens    []token
	faces     []face
	lines     []line
	baselines []float64
	placed    int
	restFrom  int
}

func (b *Box) layout() (*pass, error) {
	size := b.size
	for {
		p, err := b.layoutAt(size)
		if err != nil {
			return nil, err
		}
		if b.opts.Overflow != OverflowShrinkToFit || p.placed == len(p.lines) || size-shrinkStep < b.opts.MinFontSize {
			return p, nil
		}
		size -= shrinkStep
	}
}

func (b *Box) layoutAt(size float64) (*pass, error) {
	faces, err := b.resolveFaces(size)
	if err != nil {
		return nil, err
	}
	tokens := tokenize(b.spans)
	if err := b.measureTokens(tokens, faces); err != nil {
		return nil, err
	}
	tokens, lines, err := b.wrap(tokens, faces, b.width)
	if err != nil {
		return nil, err
	}
	p := &pass{size: size, tokens: tokens, faces: faces, lines: lines, restFrom: len(tokens)}
	baseline := 0.0
	for i, l := range lines {
		if i == 0 {
			baseline = -l.metrics.Ascender
		} else {
			baseline -= l.height() + b.opts.Leading
		}
		used := math.Abs(baseline) + l.height() - l.metrics.Ascender
		if b.opts.Overflow != OverflowExpand && used > b.height+fitEpsilon {
			p.restFrom = l.start
			break
		}
		p.baselines = append(p.baselines, baseline)
		p.placed++
	}
	return p, nil
}

// resolveFaces picks the font and metrics of every span at base size size.
func (b *Box) resolveFaces(size float64) ([]face, error) {
	faces := make([]face, len(b.spans))
	shrink := b.size - size
	for i, sp := range b.spans {
		f := surface.Font{Family: b.family, Style: sp.Styles.FontStyle(), Size: size}
		if sp.Font != "" {
			f.Family = sp.Font
		}
		if sp.Size > 0 {
			f.Size = math.Max(sp.Size-shrink, b.opts.MinFontSize)
		}
		if sp.Styles.Has(Subscript) || sp.Styles.Has(Superscript) {
			f.Size *= scriptSizeRatio
		}
		var m surface.Metrics
		err := surface.WithFont(b.s, f, func() error {
			m = b.s.FontMetrics()
			return nil
		})
		if err != nil {
			return nil, err
		}
		faces[i] = face{font: f, metrics: m, yOffset: scriptOffset(sp.Styles, m)}
	}
	return faces, nil
}

// place turns the placed lines of p into positioned fragments.
func (b *Box) place(p *pass) {
	b.fragments = b.fragments[:0]
	b.usedSize = p.size
	b.lines = p.placed
	b.textH = 0
	for i := 0; i < p.placed; i++ {
		l := p.lines[i]
		lineWidth := l.width
		wordSpacing := 0.0
		if b.opts.Align == AlignJustify && !l.hard && i < len(p.lines)-1 && l.spaces > 0 {
			wordSpacing = (b.width - l.width) / float64(l.spaces)
			lineWidth = b.width
		}
		anchor := b.at.X
		switch b.opts.Align {
		case AlignCenter:
			anchor = b.at.X + b.width/2 - lineWidth/2
		case AlignRight:
			anchor = b.at.X + b.width - lineWidth
		}
		accumulated := 0.0
		for k := l.start; k < l.end; {
			span := p.tokens[k].span
			var text strings.Builder
			width := 0.0
			for ; k < l.end && p.tokens[k].span == span; k++ {
				t := p.tokens[k]
				text.WriteString(t.text)
				width += t.width
				if t.kind == tokenSpace {
					width += wordSpacing * float64(utf8.RuneCountInString(t.text))
				}
			}
			fc := p.faces[span]
			frag := Fragment{
				Text:        text.String(),
				Format:      b.spans[span].Format,
				Font:        fc.font,
				Left:        anchor + accumulated,
				Baseline:    b.at.Y + p.baselines[i] + fc.yOffset,
				Width:       width,
				Ascender:    fc.metrics.Ascender,
				Descender:   fc.metrics.Descender,
				YOffset:     fc.yOffset,
				WordSpacing: wordSpacing,
			}
			b.fragments = append(b.fragments, frag)
			accumulated += width
		}
	}
	if p.placed > 0 {
		last := p.lines[p.placed-1]
		b.textH = math.Abs(p.baselines[p.placed-1]) + last.height() - last.metrics.Ascender
	}
}

func (b *Box) fragmentColor(f *Fragment) *surface.Color {
	if f.Color != nil {
		return f.Color
	}
	return b.opts.Color
}

func (b *Box) drawFragment(f *Fragment) error {
	return surface.WithFont(b.s, f.Font, func() error {
		return surface.WithFillColor(b.s, b.fragmentColor(f), func() error {
			opts := surface.TextOptions{Kerning: b.opts.Kerning, WordSpacing: f.WordSpacing}
			if err := b.s.DrawText(f.Text, surface.Point{X: f.Left, Y: f.Baseline}, opts); err != nil {
				return err
			}
			return drawOverlays(b.s, f, b.fragmentColor(f))
		})
	})
}
