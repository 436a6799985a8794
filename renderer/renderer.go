package renderer

import "github.com/ByLCY/folio/surface"

// Renderer 是可以输出最终文件的绘制表面，例如 PDF。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	surface.Surface
	Render() ([]byte, error)
}
