package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/renderer"
	"github.com/ByLCY/folio/surface"
)

// Page defaults, in points.
const (
	DefaultPageWidth  = 595.28 // A4
	DefaultPageHeight = 841.89
	DefaultFontSize   = 12

	// 未指定尺寸的图片按每毫米 4 像素换算。
	defaultPxPerMM = 4.0
)

// Renderer is a one-page surface drawn with github.com/tdewolff/canvas and
// written out as PDF. Lengths at the surface boundary are points; the
// canvas itself works in millimetres.
type Renderer struct {
	baseDir string
	meta    Meta

	// injected resources
	imageBlobs map[string][]byte // by unique name

	canvas *canvas.Canvas
	ctx    *canvas.Context
	page   surface.Rect
	bounds surface.Rect
	cursor float64

	families map[string]*fontFamily
	faces    map[faceKey]*canvas.FontFace
	images   map[string]image.Image

	state       state
	annotations []Annotation
}

var _ renderer.Renderer = (*Renderer)(nil)

type fontFamily struct {
	family *canvas.FontFamily
	styles map[surface.FontStyle]bool
}

type faceKey struct {
	family string
	style  surface.FontStyle
	size   float64
	color  surface.Color
}

type state struct {
	fill, stroke surface.Color
	lineWidth    float64
	join         surface.JoinStyle
	dash         float64
	dashed       bool
	font         surface.Font
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir    string
	// PageWidth and PageHeight are points; zero values take the A4
	// defaults. Margin is points on every side and may be zero.
	PageWidth  float64
	PageHeight float64
	Margin     float64
	Fonts      []Font              // extra families, registered in order
	Images     map[string]Resource // built-in images accessible via built-in:<name>
	Meta       Meta
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// Font registers one face of a family. Path may also be an embed:<name>
// reference to a bundled face.
type Font struct {
	Family string
	Style  surface.FontStyle
	Resource
}

// Meta is written into the PDF info dictionary.
type Meta struct {
	Title    string
	Subject  string
	Keywords []string
	Author   string
	Creator  string
}

// Annotation is a link recorded by LinkAnnotation, in page coordinates.
type Annotation struct {
	Rect   surface.Rect   `json:"rect"`
	Target surface.Target `json:"target"`
}

// New creates a renderer with an empty page. The bundled Latin Modern
// family is always available and is the initial font.
func New(opts Options) (*Renderer, error) {
	if opts.PageWidth <= 0 {
		opts.PageWidth = DefaultPageWidth
	}
	if opts.PageHeight <= 0 {
		opts.PageHeight = DefaultPageHeight
	}
	if opts.Margin < 0 || 2*opts.Margin >= min(opts.PageWidth, opts.PageHeight) {
		return nil, fmt.Errorf("页边距 %gpt 超出页面尺寸", opts.Margin)
	}
	r := &Renderer{
		baseDir:    opts.BaseDir,
		meta:       opts.Meta,
		imageBlobs: map[string][]byte{},
		page:       surface.Rect{X1: opts.PageWidth, Y1: opts.PageHeight},
		families:   map[string]*fontFamily{},
		faces:      map[faceKey]*canvas.FontFace{},
		images:     map[string]image.Image{},
		state: state{
			lineWidth: 1,
			font:      surface.Font{Family: fonts.Family, Size: DefaultFontSize},
		},
	}
	m := opts.Margin
	r.bounds = surface.Rect{X0: m, Y0: m, X1: opts.PageWidth - m, Y1: opts.PageHeight - m}
	r.cursor = r.bounds.Height()

	r.canvas = canvas.New(toMm(opts.PageWidth), toMm(opts.PageHeight))
	r.ctx = canvas.NewContext(r.canvas)
	r.ctx.SetCoordSystem(canvas.CartesianI)

	for _, style := range []surface.FontStyle{surface.StyleNormal, surface.StyleBold, surface.StyleItalic, surface.StyleBoldItalic} {
		if err := r.RegisterFont(fonts.Family, style, Resource{Bytes: fonts.Face(style)}); err != nil {
			return nil, err
		}
	}
	for _, f := range opts.Fonts {
		if err := r.RegisterFont(f.Family, f.Style, f.Resource); err != nil {
			return nil, err
		}
	}
	// ingest images
	for name, res := range opts.Images {
		if name == "" {
			continue
		}
		data, err := r.readResource(res)
		if err != nil {
			return nil, fmt.Errorf("内置图片 %s: %w", name, err)
		}
		r.imageBlobs[name] = data
	}
	return r, nil
}

// RegisterFont loads one face of family.
func (r *Renderer) RegisterFont(family string, style surface.FontStyle, res Resource) error {
	if family == "" {
		return fmt.Errorf("字体缺少 family 名称")
	}
	data, err := r.readResource(res)
	if err != nil {
		return fmt.Errorf("字体 %s (%s): %w", family, style, err)
	}
	fam, ok := r.families[family]
	if !ok {
		fam = &fontFamily{family: canvas.NewFontFamily(family), styles: map[surface.FontStyle]bool{}}
		r.families[family] = fam
	}
	if err := fam.family.LoadFont(data, 0, canvasStyle(style)); err != nil {
		return fmt.Errorf("加载字体 %s (%s) 失败: %w", family, style, err)
	}
	fam.styles[style] = true
	return nil
}

func (r *Renderer) readResource(res Resource) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	if res.Path == "" {
		return nil, fmt.Errorf("资源缺少 bytes 或 path")
	}
	if strings.HasPrefix(res.Path, "embed:") {
		return fonts.Load(res.Path)
	}
	path, err := r.resolvePath(res.Path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (r *Renderer) resolvePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	if r.baseDir == "" {
		return "", fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 built-in: 或绝对路径）", p)
	}
	return filepath.Join(r.baseDir, p), nil
}

// Annotations returns the link annotations drawn so far.
func (r *Renderer) Annotations() []Annotation { return append([]Annotation(nil), r.annotations...) }

// Render writes the page as a PDF document.
func (r *Renderer) Render() ([]byte, error) {
	var buf bytes.Buffer
	writer := pdf.New(&buf, toMm(r.page.Width()), toMm(r.page.Height()), nil)
	writer.SetInfo(r.meta.Title, r.meta.Subject, strings.Join(r.meta.Keywords, ", "), r.meta.Author, r.meta.Creator)
	r.canvas.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// abs converts a point relative to the bounds into page millimetres.
func (r *Renderer) abs(p surface.Point) (float64, float64) {
	return toMm(r.bounds.X0 + p.X), toMm(r.bounds.Y0 + p.Y)
}

// prepare loads the graphics state into the context. fill and stroke pick
// which of the two paints are visible.
func (r *Renderer) prepare(fill, stroke bool) {
	r.ctx.SetFillColor(canvas.Transparent)
	r.ctx.SetStrokeColor(canvas.Transparent)
	if fill {
		r.ctx.SetFillColor(colorOf(r.state.fill))
	}
	if stroke {
		r.ctx.SetStrokeColor(colorOf(r.state.stroke))
		r.ctx.SetStrokeWidth(toMm(r.state.lineWidth))
		r.ctx.SetStrokeJoiner(joinerOf(r.state.join))
		if r.state.dashed && r.state.dash > 0 {
			d := toMm(r.state.dash)
			r.ctx.SetDashes(0, d, d)
		} else {
			r.ctx.SetDashes(0)
		}
	}
}

func (r *Renderer) rectangle(at surface.Point, w, h float64, fill, stroke bool) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("矩形尺寸无效: %gx%g", w, h)
	}
	r.prepare(fill, stroke)
	x, y := r.abs(surface.Point{X: at.X, Y: at.Y - h})
	r.ctx.DrawPath(x, y, canvas.Rectangle(toMm(w), toMm(h)))
	return nil
}

func (r *Renderer) FillRectangle(at surface.Point, w, h float64) error {
	return r.rectangle(at, w, h, true, false)
}

func (r *Renderer) StrokeRectangle(at surface.Point, w, h float64) error {
	return r.rectangle(at, w, h, false, true)
}

func (r *Renderer) FillAndStrokeRectangle(at surface.Point, w, h float64) error {
	return r.rectangle(at, w, h, true, true)
}

func (r *Renderer) StrokeLine(from, to surface.Point) error {
	r.prepare(false, true)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(toMm(to.X-from.X), toMm(to.Y-from.Y))
	x, y := r.abs(from)
	r.ctx.DrawPath(x, y, p)
	return nil
}

// DrawText draws s with its baseline at at. A non-zero word spacing is
// applied by placing each space-separated word on its own.
func (r *Renderer) DrawText(s string, at surface.Point, opts surface.TextOptions) error {
	face, err := r.face(r.state.font, r.state.fill)
	if err != nil {
		return err
	}
	r.ctx.SetFillColor(colorOf(r.state.fill))
	r.ctx.SetStrokeColor(canvas.Transparent)
	x, y := r.abs(at)
	if opts.WordSpacing == 0 || !strings.Contains(s, " ") {
		r.ctx.DrawText(x, y, canvas.NewTextLine(face, s, canvas.Left))
		return nil
	}
	space := face.TextWidth(" ") + toMm(opts.WordSpacing)
	for i, word := range strings.Split(s, " ") {
		if i > 0 {
			x += space
		}
		if word == "" {
			continue
		}
		r.ctx.DrawText(x, y, canvas.NewTextLine(face, word, canvas.Left))
		x += face.TextWidth(word)
	}
	return nil
}

// PlaceImage draws the image with its top-left corner at at. The image keeps
// its aspect ratio and takes width w; h only positions it.
func (r *Renderer) PlaceImage(path string, at surface.Point, w, h float64) error {
	img, err := r.loadImage(path)
	if err != nil {
		return err
	}
	px := float64(img.Bounds().Dx())
	if px <= 0 || w <= 0 {
		return fmt.Errorf("图片 %s 尺寸无效", path)
	}
	x, y := r.abs(surface.Point{X: at.X, Y: at.Y - h})
	r.ctx.DrawImage(x, y, img, canvas.DPMM(px/toMm(w)))
	return nil
}

func (r *Renderer) LinkAnnotation(rect surface.Rect, target surface.Target) error {
	if target.URI == "" && target.Dest == "" {
		return fmt.Errorf("链接缺少目标")
	}
	r.annotations = append(r.annotations, Annotation{Rect: rect, Target: target})
	return nil
}

func (r *Renderer) FillColor() surface.Color { return r.state.fill }
func (r *Renderer) SetFillColor(c surface.Color) { r.state.fill = c }
func (r *Renderer) StrokeColor() surface.Color { return r.state.stroke }
func (r *Renderer) SetStrokeColor(c surface.Color) { r.state.stroke = c }
func (r *Renderer) LineWidth() float64 { return r.state.lineWidth }
func (r *Renderer) SetLineWidth(w float64) { r.state.lineWidth = w }
func (r *Renderer) JoinStyle() surface.JoinStyle { return r.state.join }
func (r *Renderer) SetJoinStyle(j surface.JoinStyle) { r.state.join = j }

func (r *Renderer) Dash() (float64, bool) { return r.state.dash, r.state.dashed }

func (r *Renderer) SetDash(length float64) {
	r.state.dash = length
	r.state.dashed = true
}

func (r *Renderer) Undash() {
	r.state.dash = 0
	r.state.dashed = false
}

func (r *Renderer) Font() surface.Font { return r.state.font }

// SetFont switches to a registered family and style. Unknown combinations
// fail with *surface.BadFontFamilyError.
func (r *Renderer) SetFont(f surface.Font) error {
	fam, ok := r.families[f.Family]
	if !ok || !fam.styles[f.Style] {
		return &surface.BadFontFamilyError{Family: f.Family, Style: f.Style}
	}
	if f.Size <= 0 {
		f.Size = r.state.font.Size
	}
	r.state.font = f
	return nil
}

// FontMetrics 以 pt 返回当前字体的度量，下降部为负值。
func (r *Renderer) FontMetrics() surface.Metrics {
	face, err := r.face(r.state.font, r.state.fill)
	if err != nil {
		return surface.Metrics{}
	}
	m := face.Metrics()
	return surface.Metrics{
		Ascender:  toPt(m.Ascent),
		Descender: -toPt(abs(m.Descent)),
		LineGap:   toPt(m.LineGap),
	}
}

// TextWidth measures s in the current font. Kerning is always applied by
// the canvas shaper, so the flag has no effect.
func (r *Renderer) TextWidth(s string, _ bool) float64 {
	face, err := r.face(r.state.font, r.state.fill)
	if err != nil {
		return 0
	}
	return toPt(face.TextWidth(s))
}

func (r *Renderer) Cursor() float64 { return r.cursor }
func (r *Renderer) MoveDown(dy float64) { r.cursor -= dy }
func (r *Renderer) Bounds() surface.Rect { return r.bounds }

// ImageSize returns the intrinsic size at four pixels per millimetre.
func (r *Renderer) ImageSize(path string) (float64, float64, error) {
	img, err := r.loadImage(path)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return toPt(float64(b.Dx()) / defaultPxPerMM), toPt(float64(b.Dy()) / defaultPxPerMM), nil
}

func (r *Renderer) face(f surface.Font, c surface.Color) (*canvas.FontFace, error) {
	key := faceKey{family: f.Family, style: f.Style, size: f.Size, color: c}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	fam, ok := r.families[f.Family]
	if !ok || !fam.styles[f.Style] {
		return nil, &surface.BadFontFamilyError{Family: f.Family, Style: f.Style}
	}
	face := fam.family.Face(f.Size, colorOf(c), canvasStyle(f.Style), canvas.FontNormal)
	r.faces[key] = face
	return face, nil
}

func (r *Renderer) loadImage(orig string) (image.Image, error) {
	if img, ok := r.images[orig]; ok {
		return img, nil
	}
	var (
		img image.Image
		err error
	)
	// built-in resources take precedence
	if strings.HasPrefix(orig, "built-in:") || strings.HasPrefix(orig, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(orig, "built-in:"), "builtin:")
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		img, _, err = image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 built-in:%s 失败: %w", name, err)
		}
	} else {
		path, err := r.resolvePath(orig)
		if err != nil {
			return nil, err
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("读取图片 %s 失败: %w", orig, err)
		}
		img, _, err = image.Decode(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("解码图片 %s 失败: %w", orig, err)
		}
	}
	r.images[orig] = img
	return img, nil
}

func canvasStyle(s surface.FontStyle) canvas.FontStyle {
	style := canvas.FontRegular
	if s&surface.StyleBold != 0 {
		style = canvas.FontBold
	}
	if s&surface.StyleItalic != 0 {
		style |= canvas.FontItalic
	}
	return style
}

func joinerOf(j surface.JoinStyle) canvas.Joiner {
	switch j {
	case surface.JoinRound:
		return canvas.RoundJoin
	case surface.JoinBevel:
		return canvas.BevelJoin
	default:
		return canvas.MiterJoin
	}
}

func colorOf(c surface.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * surface.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * surface.PtToMm }
