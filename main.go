package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/juju/errgo"

	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	"github.com/ByLCY/folio/surface"
)

func main() {
	input := flag.String("in", "examples/demo.folio", "DSL 文件路径")
	output := flag.String("out", "output/demo.pdf", "PDF 输出路径")
	configPath := flag.String("config", "", "folio.toml 默认配置路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	debugRawUnits := flag.Bool("debug-raw-units", false, "在调试 JSON 中输出 debug.rawUnits 影子字段")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据")
	dryRun := flag.Bool("dry-run", false, "不生成 PDF，将绘制指令以 JSON 输出到 -out")
	flag.Parse()

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalln(errgo.Details(err))
	}

	j := job{
		input:         *input,
		output:        *output,
		debug:         *debug,
		debugRawUnits: *debugRawUnits,
		dryRun:        *dryRun,
		data:          inputData,
		config:        cfg,
	}
	if err := j.run(); err != nil {
		log.Fatalln(errgo.Details(err))
	}
	fmt.Printf("已生成：%s\n", *output)
}

type job struct {
	input, output, debug string
	debugRawUnits        bool
	dryRun               bool
	data                 any
	config               config.Config
}

// run 串联解析、布局与渲染。
func (j job) run() error {
	file, err := os.Open(j.input)
	if err != nil {
		return errgo.Notef(err, "无法打开 DSL 文件 %s", j.input)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return errgo.Notef(err, "解析 DSL 失败")
	}

	defaults, err := j.config.Defaults()
	if err != nil {
		return errgo.Mask(err)
	}
	page, err := layout.ResolvePage(doc, defaults.Page)
	if err != nil {
		return errgo.Notef(err, "页面设置无效")
	}
	res, err := layout.CollectResources(doc)
	if err != nil {
		return errgo.Notef(err, "读取资源失败")
	}

	baseDir := j.config.Page.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(j.input)
	} else if !filepath.IsAbs(baseDir) {
		baseDir = filepath.Join(filepath.Dir(j.input), baseDir)
	}

	var (
		s   surface.Surface
		r   renderer.Renderer
		rec *surface.Recorder
	)
	if j.dryRun {
		rec = dryRunSurface(page, res, j.config, baseDir)
		s = rec
	} else {
		cr, err := canvasrenderer.New(rendererOptions(page, res, j.config, baseDir, layout.CollectMeta(doc)))
		if err != nil {
			return errgo.Notef(err, "初始化渲染器失败")
		}
		s, r = cr, cr
	}

	result, err := layout.Build(doc, j.data, layout.BuildOptions{
		Surface:  s,
		Defaults: defaults,
		Debug:    layout.DebugOptions{RawUnits: j.debugRawUnits},
	})
	if err != nil {
		return errgo.Notef(err, "布局计算失败")
	}
	for _, b := range result.Blocks {
		if b.Remainder != "" {
			log.Printf("第 %d 行 %s 放不下，剩余文本被截断：%q", b.Line, b.Kind, b.Remainder)
		}
	}

	if j.debug != "" {
		if err := writeDebug(result, j.debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(j.output), 0o755); err != nil {
		return errgo.Notef(err, "创建输出目录失败")
	}
	if rec != nil {
		return errgo.Mask(layout.WriteJSON(rec.Ops(), j.output))
	}
	pdfBytes, err := r.Render()
	if err != nil {
		return errgo.Notef(err, "渲染 PDF 失败")
	}
	if err := os.WriteFile(j.output, pdfBytes, 0o644); err != nil {
		return errgo.Notef(err, "写入 PDF 文件失败")
	}
	return nil
}

// rendererOptions merges the config file's fonts and images with the
// document's own resources. Document resources win on name clashes.
func rendererOptions(page layout.Page, res layout.ResourceSet, cfg config.Config, baseDir string, meta layout.DocumentMeta) canvasrenderer.Options {
	opts := canvasrenderer.Options{
		BaseDir:    baseDir,
		PageWidth:  page.Width,
		PageHeight: page.Height,
		Margin:     page.Margin,
		Images:     map[string]canvasrenderer.Resource{},
		Meta: canvasrenderer.Meta{
			Title:    meta.Title,
			Subject:  meta.Subject,
			Keywords: meta.Keywords,
			Author:   meta.Author,
			Creator:  meta.Creator,
		},
	}
	for _, f := range cfg.Fonts {
		// 配置在加载时已校验
		style, _ := f.FontStyle()
		opts.Fonts = append(opts.Fonts, canvasrenderer.Font{Family: f.Family, Style: style, Resource: canvasrenderer.Resource{Path: f.Src}})
	}
	for _, f := range res.Fonts {
		opts.Fonts = append(opts.Fonts, canvasrenderer.Font{Family: f.Family, Style: f.Style, Resource: canvasrenderer.Resource{Path: f.Src}})
	}
	for name, src := range cfg.Images {
		opts.Images[name] = canvasrenderer.Resource{Path: src}
	}
	for name, img := range res.Images {
		opts.Images[name] = canvasrenderer.Resource{Path: img.Src}
	}
	return opts
}

// dryRunSurface returns a recorder sized like the page's drawable area,
// knowing the same font families and built-in images as the PDF renderer.
func dryRunSurface(page layout.Page, res layout.ResourceSet, cfg config.Config, baseDir string) *surface.Recorder {
	rec := surface.NewRecorder(surface.Rect{X1: page.Width - 2*page.Margin, Y1: page.Height - 2*page.Margin})
	for _, f := range cfg.Fonts {
		style, _ := f.FontStyle()
		rec.RegisterFamily(f.Family, style)
	}
	for _, f := range res.Fonts {
		rec.RegisterFamily(f.Family, f.Style)
	}
	images := map[string]string{}
	for name, src := range cfg.Images {
		images[name] = src
	}
	for name, img := range res.Images {
		images[name] = img.Src
	}
	for name, src := range images {
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		w, h, err := rec.ImageSize(src)
		if err != nil {
			log.Printf("图片 %s 无法读取，dry-run 中将报错: %v", name, err)
			continue
		}
		rec.RegisterImage("built-in:"+name, w, h)
	}
	return rec
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return errgo.Notef(err, "创建调试目录失败")
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return errgo.Notef(err, "输出调试 JSON 失败")
	}
	return nil
}
