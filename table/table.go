// Package table builds grids of text and image cells on a surface and lets
// callers select and style them by row, column, pattern or predicate before
// the table is drawn.
package table

import (
	"fmt"
	"math"

	"github.com/ByLCY/folio/formatted"
	"github.com/ByLCY/folio/surface"
)

// Default cell style.
const (
	DefaultPadding     = 5
	DefaultBorderWidth = 1
)

// DefaultCellStyle is applied to every cell before Config.CellStyle.
func DefaultCellStyle() Options {
	return Options{
		Padding:     surface.Ptr(UniformPadding(DefaultPadding)),
		BorderWidth: surface.Ptr(float64(DefaultBorderWidth)),
		BorderColor: surface.Ptr(surface.Black),
		BorderStyle: surface.Ptr(surface.BorderSolid),
		Borders:     surface.Ptr(AllSides),
	}
}

// Config tunes table construction.
type Config struct {
	// At is the top-left corner relative to the bounds; nil means
	// (0, cursor) at draw time.
	At *surface.Point
	// Width fixes the total width; 0 uses the natural width capped at the
	// bounds.
	Width float64
	// RowColors alternate as background of cells without their own.
	RowColors []surface.Color
	CellStyle Options
}

// Table owns its cells. Membership never changes after New.
type Table struct {
	s     surface.Surface
	cfg   Config
	cells *Selection

	columnWidths []float64
	rowHeights   []float64
}

// New creates a table from rows of cell values. A value may be a string, a
// fmt.Stringer, an ImageSource, a *ImageSource or a Content. Rows may be of
// different lengths.
func New(s surface.Surface, data [][]any, cfg Config) (*Table, error) {
	style := DefaultCellStyle().Merge(cfg.CellStyle)
	var cells []*Cell
	for r, row := range data {
		for c, v := range row {
			content, err := contentOf(v)
			if err != nil {
				return nil, fmt.Errorf("cell (%d, %d): %w", r, c, err)
			}
			cell, err := NewCell(s, r, c, content, style)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
	}
	return &Table{s: s, cfg: cfg, cells: newSelection(cells)}, nil
}

func contentOf(v any) (Content, error) {
	switch x := v.(type) {
	case Content:
		return x, nil
	case string:
		return TextContent(x), nil
	case ImageSource:
		return ImageContent(x), nil
	case *ImageSource:
		if x == nil {
			return Content{}, fmt.Errorf("nil image")
		}
		return ImageContent(*x), nil
	case fmt.Stringer:
		return TextContent(x.String()), nil
	case nil:
		return TextContent(""), nil
	default:
		return Content{}, fmt.Errorf("unsupported cell content %T", v)
	}
}

// Cells selects every cell of the table.
func (t *Table) Cells() *Selection { return t.cells }

func (t *Table) Rows(spec any, fn ...func(*Selection)) (*Selection, error) {
	return t.cells.Rows(spec, fn...)
}

func (t *Table) Columns(spec any, fn ...func(*Selection)) (*Selection, error) {
	return t.cells.Columns(spec, fn...)
}

func (t *Table) CellSelect(rowSpec, colSpec any, fn ...func(*Selection)) (*Selection, error) {
	return t.cells.CellSelect(rowSpec, colSpec, fn...)
}

// At returns the cell at (row, col) or nil.
func (t *Table) At(row, col int) *Cell { return t.cells.At(row, col) }

// RowCount and ColumnCount are the largest row and column index.
func (t *Table) RowCount() int { return t.cells.RowCount() }
func (t *Table) ColumnCount() int { return t.cells.ColumnCount() }

// ColumnWidths and RowHeights are the sizes resolved by the last Layout.
func (t *Table) ColumnWidths() []float64 { return append([]float64(nil), t.columnWidths...) }
func (t *Table) RowHeights() []float64 { return append([]float64(nil), t.rowHeights...) }

// Width is the total resolved column width.
func (t *Table) Width() float64 { return sum(t.columnWidths) }

// Height is the total resolved row height.
func (t *Table) Height() float64 { return sum(t.rowHeights) }

// Layout resolves column widths and row heights from the current styles.
func (t *Table) Layout() error {
	cols := t.ColumnCount() + 1
	natural := make([]float64, cols)
	minimum := make([]float64, cols)
	for i := range cols {
		col := t.cells.Where(AxisColumn, Index(i))
		natural[i] = col.Width()
		minimum[i] = col.MinWidth()
	}
	widths, err := distribute(natural, minimum, t.targetWidth(natural))
	if err != nil {
		return err
	}

	rows := t.RowCount() + 1
	heights := make([]float64, rows)
	for _, c := range t.cells.cells {
		h, err := c.HeightAt(t.s, widths[c.column])
		if err != nil {
			return err
		}
		heights[c.row] = math.Max(heights[c.row], h)
	}
	t.columnWidths, t.rowHeights = widths, heights
	return nil
}

func (t *Table) targetWidth(natural []float64) float64 {
	if t.cfg.Width > 0 {
		return t.cfg.Width
	}
	avail := t.s.Bounds().Width()
	if t.cfg.At != nil {
		avail -= t.cfg.At.X
	}
	return math.Min(sum(natural), avail)
}

// distribute grows columns in proportion to their natural width, or shrinks
// them towards their minimum in proportion to the slack they have.
func distribute(natural, minimum []float64, target float64) ([]float64, error) {
	out := make([]float64, len(natural))
	nat, low := sum(natural), sum(minimum)
	switch {
	case nat == 0:
		for i := range out {
			out[i] = target / float64(len(out))
		}
	case target >= nat:
		for i, w := range natural {
			out[i] = w * target / nat
		}
	case target+1e-9 < low:
		return nil, fmt.Errorf("%w: table needs %.2fpt, only %.2fpt available", formatted.ErrCannotFit, low, target)
	default:
		ratio := 0.0
		if nat > low {
			ratio = (target - low) / (nat - low)
		}
		for i := range out {
			out[i] = minimum[i] + (natural[i]-minimum[i])*ratio
		}
	}
	return out, nil
}

func sum(v []float64) float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	return total
}

// Draw lays the table out, paints every cell and moves the cursor below the
// table.
func (t *Table) Draw() error {
	if err := t.Layout(); err != nil {
		return err
	}
	origin := surface.Point{X: 0, Y: t.s.Cursor()}
	if t.cfg.At != nil {
		origin = *t.cfg.At
	}
	xs := offsets(t.columnWidths)
	ys := offsets(t.rowHeights)
	for _, c := range t.cells.cells {
		at := surface.Point{X: origin.X + xs[c.column], Y: origin.Y - ys[c.row]}
		if err := c.Draw(t.s, at, t.columnWidths[c.column], t.rowHeights[c.row], t.rowColor(c.row)); err != nil {
			return err
		}
	}
	if t.cfg.At == nil {
		t.s.MoveDown(t.Height())
	}
	return nil
}

func (t *Table) rowColor(row int) *surface.Color {
	if len(t.cfg.RowColors) == 0 {
		return nil
	}
	c := t.cfg.RowColors[row%len(t.cfg.RowColors)]
	return &c
}

func offsets(sizes []float64) []float64 {
	out := make([]float64, len(sizes))
	acc := 0.0
	for i, s := range sizes {
		out[i] = acc
		acc += s
	}
	return out
}
