package layout

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/surface"
	"github.com/ByLCY/folio/table"
)

// cellAttrs are per-cell style attributes, keyed by (row, column).
type cellAttrs struct {
	row, col int
	attrs    map[string]string
}

// handleTable builds a table from row/cell commands, applies the row, cell
// and style statements through selections, then draws it at the cursor.
func (ctx *flowContext) handleTable(cmd *dsl.Command) error {
	if cmd.Block == nil {
		return fmt.Errorf("table 语句缺少内容")
	}
	attrs, err := ctx.attrs(cmd)
	if err != nil {
		return err
	}
	cfg, err := ctx.tableConfig(attrs)
	if err != nil {
		return err
	}

	var (
		data   [][]any
		styled []cellAttrs
	)
	for _, row := range cmd.Block.Commands("row") {
		rowAttrs, err := ctx.attrs(row)
		if err != nil {
			return err
		}
		scopes := []any{ctx.data}
		if path := rowAttrs["each"]; path != "" {
			items, ok := binding.Items(ctx.data, path)
			if !ok {
				return fmt.Errorf("第 %d 行: each %q 不是数组", row.Pos.Line, path)
			}
			name := rowAttrs["as"]
			if name == "" {
				name = "item"
			}
			scopes = scopes[:0]
			for _, item := range items {
				scopes = append(scopes, binding.Scope(ctx.data, name, item))
			}
		}
		delete(rowAttrs, "each")
		delete(rowAttrs, "as")

		for _, scope := range scopes {
			r := len(data)
			values, cells, err := ctx.tableRow(row, scope)
			if err != nil {
				return err
			}
			data = append(data, values)
			for c := range values {
				merged := map[string]string{}
				for k, v := range rowAttrs {
					merged[k] = v
				}
				for k, v := range cells[c] {
					merged[k] = v
				}
				if len(merged) > 0 {
					styled = append(styled, cellAttrs{row: r, col: c, attrs: merged})
				}
			}
		}
	}
	if len(data) == 0 {
		return fmt.Errorf("table 需要至少一行")
	}

	tbl, err := table.New(ctx.s, data, cfg)
	if err != nil {
		return err
	}
	for _, sc := range styled {
		sel, err := tbl.CellSelect(sc.row, sc.col)
		if err != nil {
			return err
		}
		if err := ctx.setAttrs(sel, sc.attrs); err != nil {
			return fmt.Errorf("cell (%d, %d): %w", sc.row, sc.col, err)
		}
	}
	for _, st := range cmd.Block.Commands("style") {
		if err := ctx.applyStyle(tbl, st); err != nil {
			return fmt.Errorf("第 %d 行 style: %w", st.Pos.Line, err)
		}
	}

	origin := surface.Point{X: 0, Y: ctx.s.Cursor()}
	if cfg.At != nil {
		origin = *cfg.At
	}
	if err := tbl.Draw(); err != nil {
		return err
	}
	ctx.record(Block{
		Kind:         "table",
		Line:         cmd.Pos.Line,
		At:           origin,
		Width:        tbl.Width(),
		Height:       tbl.Height(),
		ColumnWidths: tbl.ColumnWidths(),
		RowHeights:   tbl.RowHeights(),
	}, attrs)
	if cfg.At == nil {
		ctx.s.MoveDown(ctx.spacing())
	}
	return nil
}

// tableConfig reads the table-level options. Keys that name a cell style
// attribute become part of the default cell style.
func (ctx *flowContext) tableConfig(attrs map[string]string) (table.Config, error) {
	cfg := ctx.defaults.Table
	cfg.RowColors = append([]surface.Color(nil), cfg.RowColors...)
	bounds := ctx.s.Bounds()
	var style table.Options
	var x, y *float64
	for key, v := range attrs {
		var err error
		switch key {
		case "width":
			cfg.Width, err = parseDimension(v, bounds.Width())
		case "row-colors":
			cfg.RowColors = cfg.RowColors[:0]
			for _, part := range strings.Split(v, ",") {
				var c surface.Color
				if c, err = ctx.res.resolveColor(strings.TrimSpace(part)); err != nil {
					break
				}
				cfg.RowColors = append(cfg.RowColors, c)
			}
		case "x":
			x, err = lengthPtr(v, bounds.Width())
		case "y":
			y, err = lengthPtr(v, bounds.Height())
		default:
			err = ctx.setAttr(&style, key, v)
		}
		if err != nil {
			return cfg, fmt.Errorf("%s %q: %w", key, v, err)
		}
	}
	if x != nil || y != nil {
		at := surface.Point{X: 0, Y: ctx.s.Cursor()}
		if x != nil {
			at.X = *x
		}
		if y != nil {
			at.Y = bounds.Height() - *y
		}
		cfg.At = &at
	}
	cfg.CellStyle = cfg.CellStyle.Merge(style)
	return cfg, nil
}

// tableRow returns the cell values of one row and the style attributes
// written on each cell.
func (ctx *flowContext) tableRow(row *dsl.Command, scope any) ([]any, []map[string]string, error) {
	var (
		values []any
		styles []map[string]string
	)
	for _, cell := range row.Block.Commands("cell") {
		attrs, err := ctx.attrs(cell)
		if err != nil {
			return nil, nil, err
		}
		src, ok := attrs["image"]
		if !ok {
			values = append(values, binding.Interpolate(cell.Block.Text(), scope))
			styles = append(styles, attrs)
			continue
		}
		img := table.ImageSource{Path: binding.Interpolate(src, scope)}
		if res, ok := ctx.res.Images[img.Path]; ok {
			img.Path = "built-in:" + res.Name
		}
		if v := attrs["width"]; v != "" {
			if img.Width, err = surface.ParseLength(v); err != nil {
				return nil, nil, fmt.Errorf("第 %d 行 width: %w", cell.Pos.Line, err)
			}
		}
		if v := attrs["height"]; v != "" {
			if img.Height, err = surface.ParseLength(v); err != nil {
				return nil, nil, fmt.Errorf("第 %d 行 height: %w", cell.Pos.Line, err)
			}
		}
		delete(attrs, "image")
		delete(attrs, "width")
		delete(attrs, "height")
		values = append(values, img)
		styles = append(styles, attrs)
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("第 %d 行: row 中至少需要一个 cell", row.Pos.Line)
	}
	return values, styles, nil
}

// applyStyle handles `style rows "<sel>" columns "<sel>" { key: value }`.
func (ctx *flowContext) applyStyle(tbl *table.Table, cmd *dsl.Command) error {
	attrs, err := cmd.Options()
	if err != nil {
		return err
	}
	sel := tbl.Cells()
	for _, axis := range []string{"rows", "columns"} {
		v, ok := attrs[axis]
		if !ok {
			continue
		}
		spec, err := dsl.ParseSelector(v)
		if err != nil {
			return err
		}
		if axis == "rows" {
			sel, err = sel.Rows(spec)
		} else {
			sel, err = sel.Columns(spec)
		}
		if err != nil {
			return err
		}
		delete(attrs, axis)
	}
	if len(attrs) > 0 {
		return fmt.Errorf("未知选项 %s", strings.Join(slices.Sorted(maps.Keys(attrs)), ", "))
	}
	return ctx.setAttrs(sel, assignments(cmd.Block))
}

func (ctx *flowContext) setAttrs(sel *table.Selection, attrs map[string]string) error {
	var style table.Options
	for k, v := range attrs {
		if err := ctx.setAttr(&style, k, v); err != nil {
			return fmt.Errorf("%s %q: %w", k, v, err)
		}
	}
	sel.Style(style)
	return nil
}

// setAttr parses one style attribute. Colour resource names are accepted
// wherever a colour is.
func (ctx *flowContext) setAttr(o *table.Options, key, value string) error {
	attr, err := table.ParseAttr(key)
	if err != nil {
		return err
	}
	if c, ok := ctx.res.Colors[value]; ok {
		value = c.String()
	}
	return o.Set(attr, value)
}
