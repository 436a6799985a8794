package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/surface"
)

// 纸张尺寸，单位 mm。
var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

const defaultMarginMM = 20

// DefaultPage is A4 portrait with 20mm margins.
func DefaultPage() Page {
	p, _ := PresetPage("A4", false)
	return p
}

// PresetPage returns a named paper size in points with the default margin.
func PresetPage(size string, landscape bool) (Page, error) {
	base, ok := pagePresets[strings.ToUpper(size)]
	if !ok {
		return Page{}, fmt.Errorf("暂不支持的纸张尺寸：%s", size)
	}
	w, h := base[0]*surface.MmToPt, base[1]*surface.MmToPt
	if landscape {
		w, h = h, w
	}
	return Page{Size: strings.ToUpper(size), Width: w, Height: h, Margin: defaultMarginMM * surface.MmToPt}, nil
}

// ResolvePage reads the size, orientation and margin of the first page
// section. Without a page section fallback is returned; without a margin
// the fallback margin is kept.
func ResolvePage(doc *dsl.Document, fallback Page) (Page, error) {
	section := firstPage(doc)
	if section == nil {
		return fallback, nil
	}
	landscape := false
	params := section.Spec.Params
	for _, token := range params {
		if token.Value == "landscape" {
			landscape = true
		}
	}
	page, err := PresetPage(section.Spec.Size, landscape)
	if err != nil {
		return Page{}, err
	}
	page.Margin = fallback.Margin
	for i, token := range params {
		if token.Value != "margin" {
			continue
		}
		if i+1 >= len(params) {
			return Page{}, fmt.Errorf("margin 缺少取值")
		}
		m, err := surface.ParseLength(params[i+1].Value)
		if err != nil {
			return Page{}, fmt.Errorf("margin: %w", err)
		}
		page.Margin = m
	}
	return page, nil
}

func firstPage(doc *dsl.Document) *dsl.PageSection {
	for _, section := range doc.Sections {
		if section.Page != nil {
			return section.Page
		}
	}
	return nil
}

// CollectResources gathers font, colour, image and style declarations.
func CollectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Colors: map[string]surface.Color{},
		Images: map[string]ImageResource{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, cmd := range section.Resources.Block.Commands("") {
			if len(cmd.Args) == 0 {
				return res, fmt.Errorf("第 %d 行 %s 资源缺少名称", cmd.Pos.Line, cmd.Name)
			}
			name := cmd.Args[0].Value
			switch cmd.Name {
			case "font":
				font, err := parseFontResource(name, cmd)
				if err != nil {
					return res, err
				}
				res.Fonts = append(res.Fonts, font)
			case "color":
				c, err := surface.ParseColor(cmd.Args[len(cmd.Args)-1].Value)
				if err != nil {
					return res, fmt.Errorf("颜色 %s: %w", name, err)
				}
				res.Colors[name] = c
			case "image":
				props := assignments(cmd.Block)
				if props["src"] == "" {
					return res, fmt.Errorf("图片 %s 缺少 src", name)
				}
				res.Images[name] = ImageResource{Name: name, Src: props["src"]}
			case "style":
				style := Style{Name: name, Props: assignments(cmd.Block)}
				if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
					style.Extends = cmd.Args[2].Value
				}
				rawStyles[name] = style
			}
		}
	}

	resolved, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolved
	return res, nil
}

func parseFontResource(name string, cmd *dsl.Command) (FontResource, error) {
	props := assignments(cmd.Block)
	font := FontResource{Family: name, Src: props["src"]}
	if font.Src == "" {
		return font, fmt.Errorf("字体 %s 缺少 src", name)
	}
	style, err := surface.ParseFontStyle(props["style"])
	if err != nil {
		return font, fmt.Errorf("字体 %s: %w", name, err)
	}
	font.Style = style
	return font, nil
}

// assignments flattens the key: value statements of a block.
func assignments(block *dsl.Block) map[string]string {
	out := map[string]string{}
	if block == nil {
		return out
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := stmt.Assignment.Value.Scalar(); val != "" {
			out[stmt.Assignment.Key] = val
		}
	}
	return out
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// CollectMeta reads the meta section.
func CollectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "folio",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = stmt.Assignment.Value.Scalar()
			case "author":
				meta.Author = stmt.Assignment.Value.Scalar()
			case "subject":
				meta.Subject = stmt.Assignment.Value.Scalar()
			case "creator":
				meta.Creator = stmt.Assignment.Value.Scalar()
			case "keywords":
				meta.Keywords = stmt.Assignment.Value.Strings()
			}
		}
	}
	return meta
}

// resolveColor accepts a colour resource name or a literal.
func (res ResourceSet) resolveColor(value string) (surface.Color, error) {
	if c, ok := res.Colors[value]; ok {
		return c, nil
	}
	return surface.ParseColor(value)
}
