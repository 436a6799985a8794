package layout

import (
	"github.com/ByLCY/folio/formatted"
	"github.com/ByLCY/folio/surface"
	"github.com/ByLCY/folio/table"
)

// DefaultBlockSpacing is the gap left below every block, in points.
const DefaultBlockSpacing = 6.0

// BuildOptions 配置布局阶段所需的依赖，例如绘制表面。
type BuildOptions struct {
	Surface  surface.Surface
	Defaults Defaults
	Debug    DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug 影子字段
}

// Defaults apply to every block before its own options.
type Defaults struct {
	// Page is used where the document leaves size or margin out.
	Page         Page
	Text         formatted.Options
	Table        table.Config
	BlockSpacing float64
}

// DefaultDefaults returns the defaults used when no configuration is given.
func DefaultDefaults() Defaults {
	return Defaults{Page: DefaultPage(), BlockSpacing: DefaultBlockSpacing}
}
