package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/formatted"
	"github.com/ByLCY/folio/surface"
)

// Build 将 DSL AST 的第一个 page 段落自上而下绘制到 opts.Surface 上，
// 并返回每个块的几何信息。文本中的 ${path} 按 data 插值。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Surface == nil {
		return nil, fmt.Errorf("layout: 缺少绘制表面 Surface")
	}

	res, err := CollectResources(doc)
	if err != nil {
		return nil, err
	}
	section := firstPage(doc)
	if section == nil {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}
	if section.Block == nil {
		return nil, fmt.Errorf("page 段落缺少内容")
	}
	fallback := opts.Defaults.Page
	if fallback.Width <= 0 || fallback.Height <= 0 {
		fallback = DefaultPage()
	}
	page, err := ResolvePage(doc, fallback)
	if err != nil {
		return nil, err
	}

	ctx := &flowContext{
		s:        opts.Surface,
		res:      res,
		data:     data,
		defaults: opts.Defaults,
		debug:    opts.Debug,
	}
	if err := ctx.processBlock(section.Block); err != nil {
		return nil, err
	}

	return &Result{
		Page:      page,
		Resources: res,
		Meta:      CollectMeta(doc),
		Blocks:    ctx.blocks,
	}, nil
}

type flowContext struct {
	s        surface.Surface
	res      ResourceSet
	data     any
	defaults Defaults
	debug    DebugOptions
	blocks   []Block
}

// processBlock 会依次处理 block 内的命令，支持 text、markup、table、image、move-down。
func (ctx *flowContext) processBlock(block *dsl.Block) error {
	for _, cmd := range block.Commands("") {
		var err error
		switch cmd.Name {
		case "text":
			err = ctx.handleText(cmd, false)
		case "markup":
			err = ctx.handleText(cmd, true)
		case "table":
			err = ctx.handleTable(cmd)
		case "image":
			err = ctx.handleImage(cmd)
		case "move-down":
			err = ctx.handleMoveDown(cmd)
		default:
			err = fmt.Errorf("未知命令 %s", cmd.Name)
		}
		if err != nil {
			return fmt.Errorf("第 %d 行 %s: %w", cmd.Pos.Line, cmd.Name, err)
		}
	}
	return nil
}

// spacing is left below every block drawn in the flow.
func (ctx *flowContext) spacing() float64 {
	if ctx.defaults.BlockSpacing < 0 {
		return 0
	}
	return ctx.defaults.BlockSpacing
}

// attrs reads the command options and merges the named style under them.
func (ctx *flowContext) attrs(cmd *dsl.Command, flags ...string) (map[string]string, error) {
	inline, err := cmd.Options(flags...)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if name := inline["style"]; name != "" {
		style, ok := ctx.res.Styles[name]
		if !ok {
			return nil, fmt.Errorf("style %s 未定义", name)
		}
		for k, v := range style.Props {
			out[k] = v
		}
		delete(inline, "style")
	}
	for k, v := range inline {
		out[k] = v
	}
	return out, nil
}

func (ctx *flowContext) interpolate(s string) string {
	return binding.Interpolate(s, ctx.data)
}

func (ctx *flowContext) handleText(cmd *dsl.Command, markup bool) error {
	if cmd.Block == nil {
		return fmt.Errorf("缺少文本块")
	}
	attrs, err := ctx.attrs(cmd)
	if err != nil {
		return err
	}
	opts, err := ctx.textOptions(attrs)
	if err != nil {
		return err
	}

	var spans []formatted.Span
	if markup {
		spans, err = formatted.ParseMarkup(ctx.interpolate(cmd.Block.Text()))
		if err != nil {
			return err
		}
	} else {
		spans, err = ctx.spans(cmd.Block)
		if err != nil {
			return err
		}
	}
	if len(spans) == 0 {
		return fmt.Errorf("缺少文本内容")
	}

	origin := surface.Point{X: 0, Y: ctx.s.Cursor()}
	if opts.At != nil {
		origin = *opts.At
	}
	box, err := formatted.NewTextBox(ctx.s, spans, opts)
	if err != nil {
		return err
	}
	rest, err := box.Draw()
	if err != nil {
		return err
	}

	kind := "text"
	if markup {
		kind = "markup"
	}
	b := Block{
		Kind:      kind,
		Line:      cmd.Pos.Line,
		At:        origin,
		Width:     box.AvailableWidth() + opts.Margin.Left + opts.Margin.Right,
		Height:    box.OuterHeight(),
		Lines:     box.LineCount(),
		FontSize:  box.FontSize(),
		Remainder: formatted.Text(rest),
	}
	ctx.record(b, attrs)
	if opts.At == nil {
		ctx.s.MoveDown(b.Height + ctx.spacing())
	}
	return nil
}

// textOptions layers the command attributes over the configured defaults.
func (ctx *flowContext) textOptions(attrs map[string]string) (formatted.Options, error) {
	opts := ctx.defaults.Text
	bounds := ctx.s.Bounds()
	var x, y *float64
	for key, v := range attrs {
		var err error
		switch key {
		case "align":
			opts.Align, err = formatted.ParseAlign(v)
		case "overflow":
			opts.Overflow, err = formatted.ParseOverflow(v)
		case "underlay":
			opts.Underlay, err = strconv.ParseBool(v)
		case "kerning":
			opts.Kerning, err = strconv.ParseBool(v)
		case "font":
			opts.Font = v
		case "size":
			opts.Size, err = surface.ParseLength(v)
		case "min-font-size":
			opts.MinFontSize, err = surface.ParseLength(v)
		case "leading":
			opts.Leading, err = surface.ParseLength(v)
		case "width":
			opts.Width, err = parseDimension(v, bounds.Width())
		case "height":
			opts.Height, err = parseDimension(v, bounds.Height())
		case "margin":
			var m float64
			m, err = surface.ParseLength(v)
			opts.Margin = formatted.UniformMargin(m)
		case "color":
			opts.Color, err = ctx.colorPtr(v)
		case "fill":
			opts.FillColor, err = ctx.colorPtr(v)
		case "border-color":
			opts.BorderColor, err = ctx.colorPtr(v)
		case "border-width":
			opts.BorderWidth, err = surface.ParseLength(v)
		case "border-style":
			opts.BorderStyle, err = surface.ParseBorderStyle(v)
		case "x":
			x, err = lengthPtr(v, bounds.Width())
		case "y":
			y, err = lengthPtr(v, bounds.Height())
		default:
			err = fmt.Errorf("未知属性")
		}
		if err != nil {
			return opts, fmt.Errorf("%s %q: %w", key, v, err)
		}
	}
	if x != nil || y != nil {
		at := surface.Point{X: 0, Y: ctx.s.Cursor()}
		if x != nil {
			at.X = *x
		}
		if y != nil {
			// y counts down from the top of the bounds.
			at.Y = bounds.Height() - *y
		}
		opts.At = &at
	}
	return opts, nil
}

// spans turns the string literals and span commands of a block into
// formatted spans, in order.
func (ctx *flowContext) spans(block *dsl.Block) ([]formatted.Span, error) {
	var out []formatted.Span
	for _, st := range block.Statements {
		switch {
		case st.Text != nil:
			out = append(out, formatted.Plain(ctx.interpolate(string(st.Text.Value))))
		case st.Command != nil && st.Command.Name == "span":
			sp, err := ctx.span(st.Command)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行 span: %w", st.Command.Pos.Line, err)
			}
			out = append(out, sp)
		case st.Command != nil:
			return nil, fmt.Errorf("第 %d 行: 文本块中不支持 %s", st.Command.Pos.Line, st.Command.Name)
		}
	}
	return out, nil
}

var spanFlags = []string{"bold", "italic", "underline", "strikethrough", "sub", "sup"}

func (ctx *flowContext) span(cmd *dsl.Command) (formatted.Span, error) {
	sp := formatted.Span{Text: ctx.interpolate(cmd.Block.Text())}
	attrs, err := ctx.attrs(cmd, spanFlags...)
	if err != nil {
		return sp, err
	}
	for key, v := range attrs {
		switch key {
		case "bold", "italic", "underline", "strikethrough", "sub", "sup":
			on, err := strconv.ParseBool(v)
			if err != nil {
				return sp, fmt.Errorf("%s %q: %w", key, v, err)
			}
			if on {
				style, _ := formatted.ParseStyle(key)
				sp.Styles |= style
			}
			continue
		case "styles":
			for _, name := range strings.Split(v, ",") {
				style, err := formatted.ParseStyle(name)
				if err != nil {
					return sp, err
				}
				sp.Styles |= style
			}
			continue
		}
		switch key {
		case "font":
			sp.Font = v
		case "size":
			sp.Size, err = surface.ParseLength(v)
		case "color":
			sp.Color, err = ctx.colorPtr(v)
		case "fill":
			sp.Fill, err = ctx.colorPtr(v)
		case "border-color":
			sp.BorderColor, err = ctx.colorPtr(v)
		case "border-width":
			sp.BorderWidth, err = surface.ParseLength(v)
		case "border-style":
			sp.BorderStyle, err = surface.ParseBorderStyle(v)
		case "link":
			sp.Link = ctx.interpolate(v)
		case "anchor":
			sp.Anchor = v
		default:
			err = fmt.Errorf("未知属性")
		}
		if err != nil {
			return sp, fmt.Errorf("%s %q: %w", key, v, err)
		}
	}
	return sp, nil
}

func (ctx *flowContext) handleImage(cmd *dsl.Command) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("缺少图片路径")
	}
	src := cmd.Args[0].Value
	if img, ok := ctx.res.Images[src]; ok {
		src = "built-in:" + img.Name
	}
	rest := &dsl.Command{Name: cmd.Name, Pos: cmd.Pos, Args: cmd.Args[1:]}
	attrs, err := ctx.attrs(rest)
	if err != nil {
		return err
	}
	iw, ih, err := ctx.s.ImageSize(src)
	if err != nil {
		return err
	}
	bounds := ctx.s.Bounds()
	w, h := iw, ih
	if v := attrs["width"]; v != "" {
		if w, err = parseDimension(v, bounds.Width()); err != nil {
			return fmt.Errorf("width %q: %w", v, err)
		}
		if attrs["height"] == "" && iw > 0 {
			h = w * ih / iw
		}
	}
	if v := attrs["height"]; v != "" {
		if h, err = parseDimension(v, bounds.Height()); err != nil {
			return fmt.Errorf("height %q: %w", v, err)
		}
		if attrs["width"] == "" && ih > 0 {
			w = h * iw / ih
		}
	}
	if w > bounds.Width() && w > 0 {
		h, w = h*bounds.Width()/w, bounds.Width()
	}
	at := surface.Point{X: alignOffset(bounds.Width(), w, attrs["align"]), Y: ctx.s.Cursor()}
	if err := ctx.s.PlaceImage(src, at, w, h); err != nil {
		return err
	}
	ctx.record(Block{Kind: "image", Line: cmd.Pos.Line, At: at, Width: w, Height: h}, attrs)
	ctx.s.MoveDown(h + ctx.spacing())
	return nil
}

func (ctx *flowContext) handleMoveDown(cmd *dsl.Command) error {
	if len(cmd.Args) != 1 {
		return fmt.Errorf("需要一个长度参数")
	}
	dy, err := surface.ParseLength(cmd.Args[0].Value)
	if err != nil {
		return err
	}
	at := surface.Point{X: 0, Y: ctx.s.Cursor()}
	ctx.s.MoveDown(dy)
	ctx.blocks = append(ctx.blocks, Block{Kind: "move-down", Line: cmd.Pos.Line, At: at, Height: dy})
	return nil
}

// record appends b, attaching the raw options when debugging.
func (ctx *flowContext) record(b Block, attrs map[string]string) {
	if ctx.debug.RawUnits && len(attrs) > 0 {
		d := &BlockDebug{RawOptions: attrs, RawUnits: map[string]RawLengthJSON{}}
		for k, v := range attrs {
			if l, err := surface.ParseRawLength(v); err == nil {
				d.RawUnits[k] = RawLengthJSON{Value: l.Value, Unit: l.Unit.String()}
			}
		}
		b.Debug = d
	}
	ctx.blocks = append(ctx.blocks, b)
}

func (ctx *flowContext) colorPtr(v string) (*surface.Color, error) {
	c, err := ctx.res.resolveColor(v)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// parseDimension reads a length or a percentage of reference.
func parseDimension(value string, reference float64) (float64, error) {
	if num, ok := strings.CutSuffix(strings.TrimSpace(value), "%"); ok {
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid percentage %q", value)
		}
		return reference * f / 100, nil
	}
	return surface.ParseLength(value)
}

func lengthPtr(value string, reference float64) (*float64, error) {
	v, err := parseDimension(value, reference)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch strings.ToLower(align) {
	case "center", "middle":
		return (container - width) / 2
	case "right", "end":
		return container - width
	default:
		return 0
	}
}
