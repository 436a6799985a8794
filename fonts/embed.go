// Package fonts bundles the fallback font family used when a document names
// no font of its own.
package fonts

import (
	"fmt"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"

	"github.com/ByLCY/folio/surface"
)

// Family is the name the bundled faces are registered under.
const Family = "Latin Modern Roman"

var faces = map[string][]byte{
	"lmroman10-regular":    lmroman10regular.TTF,
	"lmroman10-bold":       lmroman10bold.TTF,
	"lmroman10-italic":     lmroman10italic.TTF,
	"lmroman10-bolditalic": lmroman10bolditalic.TTF,
}

// Face returns the bundled face for style.
func Face(style surface.FontStyle) []byte {
	switch style {
	case surface.StyleBold:
		return faces["lmroman10-bold"]
	case surface.StyleItalic:
		return faces["lmroman10-italic"]
	case surface.StyleBoldItalic:
		return faces["lmroman10-bolditalic"]
	default:
		return faces["lmroman10-regular"]
	}
}

// Load 返回内置字体的字节数据，name 可写为 "embed:lmroman10-bold"、"lmroman10-bold.ttf" 或直接 "bold".
func Load(name string) ([]byte, error) {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimPrefix(name, "embed:")), ".ttf")
	if data, ok := faces[key]; ok {
		return data, nil
	}
	if style, err := surface.ParseFontStyle(key); err == nil {
		return Face(style), nil
	}
	return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
}
