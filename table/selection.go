package table

import (
	"iter"
	"maps"
	"math"
	"slices"
)

// Selection is a read-only, ordered view over cells of one table. Every
// narrowing returns a new Selection; cells are shared, so styling through
// any selection styles the table.
type Selection struct {
	cells    []*Cell
	rowCount int
	colCount int
}

func newSelection(cells []*Cell) *Selection {
	s := &Selection{cells: cells, rowCount: -1, colCount: -1}
	for _, c := range cells {
		s.rowCount = max(s.rowCount, c.row)
		s.colCount = max(s.colCount, c.column)
	}
	return s
}

// RowCount is the largest row index in the selection, -1 when empty.
func (s *Selection) RowCount() int { return s.rowCount }

// ColumnCount is the largest column index in the selection, -1 when empty.
func (s *Selection) ColumnCount() int { return s.colCount }

func (s *Selection) Len() int { return len(s.cells) }

// Cells returns a copy of the selected cells in table order.
func (s *Selection) Cells() []*Cell { return slices.Clone(s.cells) }

// All iterates over the selected cells in table order.
func (s *Selection) All() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for _, c := range s.cells {
			if !yield(c) {
				return
			}
		}
	}
}

// Where keeps the cells matching sel on axis. Last resolves against this
// selection, not the whole table.
func (s *Selection) Where(axis Axis, sel Selector) *Selection {
	last := s.rowCount
	if axis == AxisColumn {
		last = s.colCount
	}
	var out []*Cell
	for _, c := range s.cells {
		if sel.Match(c, axis.coord(c), last) {
			out = append(out, c)
		}
	}
	return newSelection(out)
}

// Rows narrows to the rows matched by spec (see ParseSelector) and passes
// the result to each fn.
func (s *Selection) Rows(spec any, fn ...func(*Selection)) (*Selection, error) {
	return s.narrow(AxisRow, spec, fn)
}

// Columns narrows to the columns matched by spec and passes the result to
// each fn.
func (s *Selection) Columns(spec any, fn ...func(*Selection)) (*Selection, error) {
	return s.narrow(AxisColumn, spec, fn)
}

func (s *Selection) narrow(axis Axis, spec any, fn []func(*Selection)) (*Selection, error) {
	sel, err := ParseSelector(axis, spec)
	if err != nil {
		return nil, err
	}
	out := s.Where(axis, sel)
	for _, f := range fn {
		f(out)
	}
	return out, nil
}

// CellSelect is Rows(rowSpec) followed by Columns(colSpec).
func (s *Selection) CellSelect(rowSpec, colSpec any, fn ...func(*Selection)) (*Selection, error) {
	rows, err := s.Rows(rowSpec)
	if err != nil {
		return nil, err
	}
	return rows.Columns(colSpec, fn...)
}

// Filter keeps the cells pred returns true for.
func (s *Selection) Filter(pred func(*Cell) bool) *Selection {
	return s.Where(AxisRow, Predicate(pred))
}

// At returns the cell at (row, col) or nil.
func (s *Selection) At(row, col int) *Cell {
	for _, c := range s.cells {
		if c.row == row && c.column == col {
			return c
		}
	}
	return nil
}

// Width sums, over the selected columns, the widest cell of each column.
func (s *Selection) Width() float64 { return s.aggregate(AxisColumn, (*Cell).Width, math.Max) }

// MinWidth sums the largest minimum width of each column.
func (s *Selection) MinWidth() float64 { return s.aggregate(AxisColumn, (*Cell).MinWidth, math.Max) }

// MaxWidth sums the smallest maximum width of each column: a column can be
// no wider than its most restrictive cell allows.
func (s *Selection) MaxWidth() float64 { return s.aggregate(AxisColumn, (*Cell).MaxWidth, math.Min) }

// Height sums the tallest cell of each selected row.
func (s *Selection) Height() float64 { return s.aggregate(AxisRow, (*Cell).Height, math.Max) }

func (s *Selection) MinHeight() float64 { return s.aggregate(AxisRow, (*Cell).MinHeight, math.Max) }

func (s *Selection) MaxHeight() float64 { return s.aggregate(AxisRow, (*Cell).MaxHeight, math.Min) }

func (s *Selection) aggregate(axis Axis, value func(*Cell) float64, pick func(a, b float64) float64) float64 {
	per := map[int]float64{}
	for _, c := range s.cells {
		k, v := axis.coord(c), value(c)
		if prev, ok := per[k]; ok {
			v = pick(prev, v)
		}
		per[k] = v
	}
	total := 0.0
	for _, k := range slices.Sorted(maps.Keys(per)) {
		total += per[k]
	}
	return total
}

// Style sets every non-nil field of opts on each cell, then calls each fn
// with the cell.
func (s *Selection) Style(opts Options, fn ...func(*Cell)) {
	for _, c := range s.cells {
		c.Style = c.Style.Merge(opts)
		for _, f := range fn {
			f(c)
		}
	}
}

// Apply calls fn for every cell.
func (s *Selection) Apply(fn func(*Cell)) {
	for _, c := range s.cells {
		fn(c)
	}
}

// Set parses value once and stores it as attr on every cell.
func (s *Selection) Set(attr Attr, value string) error {
	var o Options
	if err := o.Set(attr, value); err != nil {
		return err
	}
	s.Style(o)
	return nil
}
