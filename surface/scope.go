package surface

// Overrides lists graphics attributes to replace for the duration of a
// callback. Nil fields are left untouched.
type Overrides struct {
	FillColor   *Color
	StrokeColor *Color
	LineWidth   *float64
	JoinStyle   *JoinStyle
}

// With applies o, runs fn and restores every overridden attribute to its
// previous value before returning, whether fn fails, succeeds or panics.
func With(gs GraphicsState, o Overrides, fn func() error) error {
	if o.JoinStyle != nil {
		prev := gs.JoinStyle()
		gs.SetJoinStyle(*o.JoinStyle)
		defer gs.SetJoinStyle(prev)
	}
	if o.LineWidth != nil {
		prev := gs.LineWidth()
		gs.SetLineWidth(*o.LineWidth)
		defer gs.SetLineWidth(prev)
	}
	if o.StrokeColor != nil {
		prev := gs.StrokeColor()
		gs.SetStrokeColor(*o.StrokeColor)
		defer gs.SetStrokeColor(prev)
	}
	if o.FillColor != nil {
		prev := gs.FillColor()
		gs.SetFillColor(*o.FillColor)
		defer gs.SetFillColor(prev)
	}
	return fn()
}

func WithFillColor(gs GraphicsState, c *Color, fn func() error) error {
	return With(gs, Overrides{FillColor: c}, fn)
}

func WithStrokeColor(gs GraphicsState, c *Color, fn func() error) error {
	return With(gs, Overrides{StrokeColor: c}, fn)
}

func WithLineWidth(gs GraphicsState, w *float64, fn func() error) error {
	return With(gs, Overrides{LineWidth: w}, fn)
}

func WithJoinStyle(gs GraphicsState, j *JoinStyle, fn func() error) error {
	return With(gs, Overrides{JoinStyle: j}, fn)
}

// WithDashStyle dashes according to style while fn runs, then puts the
// previous dash setting back (clearing it when there was none).
func WithDashStyle(gs GraphicsState, style BorderStyle, fn func() error) error {
	prev, dashed := gs.Dash()
	gs.SetDash(style.DashWidth())
	defer func() {
		if dashed {
			gs.SetDash(prev)
			return
		}
		gs.Undash()
	}()
	return fn()
}

// WithFont switches to f while fn runs. A font the typesetter cannot
// resolve is reported before fn is called and leaves the current font as is.
func WithFont(ts Typesetter, f Font, fn func() error) error {
	prev := ts.Font()
	if prev == f {
		return fn()
	}
	if err := ts.SetFont(f); err != nil {
		return err
	}
	defer func() { _ = ts.SetFont(prev) }()
	return fn()
}
