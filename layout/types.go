package layout

import "github.com/ByLCY/folio/surface"

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。
// 所有长度单位均为 pt。

// Result 保存排版后的页面、资源以及每个块的几何信息。
type Result struct {
	Page      Page         `json:"page"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
	Blocks    []Block      `json:"blocks"`
}

// ResourceSet 记录解析出的字体、颜色、图片与样式定义。
type ResourceSet struct {
	Fonts  []FontResource           `json:"fonts"`
	Colors map[string]surface.Color `json:"colors"`
	Images map[string]ImageResource `json:"images"`
	Styles map[string]Style         `json:"styles"`
}

// FontResource 描述一个字体字形，src 可以是文件路径或 embed:<name>。
type FontResource struct {
	Family string            `json:"family"`
	Src    string            `json:"src"`
	Style  surface.FontStyle `json:"style"`
}

// ImageResource 记录可以通过 built-in:<name> 引用的图片。
type ImageResource struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// Page 记录页面尺寸与边距。
type Page struct {
	Size   string  `json:"size"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
}

// Style 是可继承的具名属性集合，被 text、span、table 与 style 语句引用。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Block 描述一个已经绘制的块。At 为左上角（相对于页面可绘制区域）。
type Block struct {
	Kind   string        `json:"kind"`
	Line   int           `json:"line"`
	At     surface.Point `json:"at"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`

	// text and markup
	Lines     int     `json:"lines,omitempty"`
	FontSize  float64 `json:"fontSize,omitempty"`
	Remainder string  `json:"remainder,omitempty"`

	// table
	ColumnWidths []float64 `json:"columnWidths,omitempty"`
	RowHeights   []float64 `json:"rowHeights,omitempty"`

	Debug *BlockDebug `json:"debug,omitempty"`
}

// BlockDebug holds optional debug info displayed only when enabled by BuildOptions.
type BlockDebug struct {
	// RawOptions are the command options as written, before unit conversion.
	RawOptions map[string]string `json:"rawOptions,omitempty"`
	// RawUnits keeps the author-specified unit of each length option.
	RawUnits map[string]RawLengthJSON `json:"rawUnits,omitempty"`
}

// RawLengthJSON is a JSON-friendly representation of surface.Length.
type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}
