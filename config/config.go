// Package config loads folio defaults from a TOML file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ByLCY/folio/formatted"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/surface"
	"github.com/ByLCY/folio/table"
)

// Config represents a folio.toml file. Lengths are strings with an
// optional unit ("12pt", "5mm"); bare numbers are points.
type Config struct {
	Page  PageConfig   `toml:"page"`
	Fonts []FontConfig `toml:"fonts"`
	Text  TextConfig   `toml:"text"`
	Table TableConfig  `toml:"table"`
	// Images are made available as built-in:<name>.
	Images map[string]string `toml:"images"`
}

type PageConfig struct {
	Size        string `toml:"size"`
	Orientation string `toml:"orientation"`
	Margin      string `toml:"margin"`
	// BaseDir resolves relative image and font paths
	BaseDir string `toml:"base_dir"`
}

type FontConfig struct {
	Family string `toml:"family"`
	Style  string `toml:"style"`
	Src    string `toml:"src"`
}

type TextConfig struct {
	Font         string `toml:"font"`
	Size         string `toml:"size"`
	MinFontSize  string `toml:"min_font_size"`
	Leading      string `toml:"leading"`
	Align        string `toml:"align"`
	Overflow     string `toml:"overflow"`
	Kerning      bool   `toml:"kerning"`
	BlockSpacing string `toml:"block_spacing"`
}

type TableConfig struct {
	Padding     string   `toml:"padding"`
	BorderWidth string   `toml:"border_width"`
	BorderColor string   `toml:"border_color"`
	BorderStyle string   `toml:"border_style"`
	TextColor   string   `toml:"text_color"`
	RowColors   []string `toml:"row_colors"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Page: PageConfig{
			Size:        "A4",
			Orientation: "portrait",
			Margin:      "20mm",
		},
		Text: TextConfig{
			Size:         "12pt",
			Align:        "left",
			Overflow:     "truncate",
			BlockSpacing: "6pt",
		},
		Table: TableConfig{
			Padding:     "5pt",
			BorderWidth: "1pt",
			BorderColor: "#000000",
			BorderStyle: "solid",
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if _, err := config.Defaults(); err != nil {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// PageSetup returns the page the document falls back to when its page
// section does not say otherwise.
func (c Config) PageSetup() (layout.Page, error) {
	doc := layout.DefaultPage()
	size := c.Page.Size
	if size == "" {
		size = doc.Size
	}
	landscape := false
	switch strings.ToLower(c.Page.Orientation) {
	case "", "portrait":
	case "landscape":
		landscape = true
	default:
		return layout.Page{}, fmt.Errorf("page.orientation %q", c.Page.Orientation)
	}
	page, err := layout.PresetPage(size, landscape)
	if err != nil {
		return layout.Page{}, err
	}
	if c.Page.Margin != "" {
		if page.Margin, err = surface.ParseLength(c.Page.Margin); err != nil {
			return layout.Page{}, fmt.Errorf("page.margin: %w", err)
		}
	}
	return page, nil
}

// Defaults converts the text and table sections into layout defaults.
func (c Config) Defaults() (layout.Defaults, error) {
	d := layout.DefaultDefaults()
	var err error
	if d.Page, err = c.PageSetup(); err != nil {
		return d, err
	}
	t := c.Text
	d.Text.Font = t.Font
	d.Text.Kerning = t.Kerning
	for _, f := range []struct {
		name  string
		value string
		dst   *float64
	}{
		{"text.size", t.Size, &d.Text.Size},
		{"text.min_font_size", t.MinFontSize, &d.Text.MinFontSize},
		{"text.leading", t.Leading, &d.Text.Leading},
		{"text.block_spacing", t.BlockSpacing, &d.BlockSpacing},
	} {
		if f.value == "" {
			continue
		}
		if *f.dst, err = surface.ParseLength(f.value); err != nil {
			return d, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	if d.Text.Align, err = formatted.ParseAlign(t.Align); err != nil {
		return d, fmt.Errorf("text.align: %w", err)
	}
	if d.Text.Overflow, err = formatted.ParseOverflow(t.Overflow); err != nil {
		return d, fmt.Errorf("text.overflow: %w", err)
	}

	tc := c.Table
	for _, a := range []struct {
		attr  table.Attr
		value string
	}{
		{table.AttrPadding, tc.Padding},
		{table.AttrBorderWidth, tc.BorderWidth},
		{table.AttrBorderColor, tc.BorderColor},
		{table.AttrBorderStyle, tc.BorderStyle},
		{table.AttrTextColor, tc.TextColor},
	} {
		if a.value == "" {
			continue
		}
		if err := d.Table.CellStyle.Set(a.attr, a.value); err != nil {
			return d, fmt.Errorf("table: %w", err)
		}
	}
	for _, v := range tc.RowColors {
		col, err := surface.ParseColor(v)
		if err != nil {
			return d, fmt.Errorf("table.row_colors: %w", err)
		}
		d.Table.RowColors = append(d.Table.RowColors, col)
	}
	return d, nil
}

// FontStyle parses the style of a font entry.
func (f FontConfig) FontStyle() (surface.FontStyle, error) {
	return surface.ParseFontStyle(f.Style)
}
