package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/folio/formatted"
	"github.com/ByLCY/folio/surface"
)

const sampleTOML = `
[page]
size = "A5"
orientation = "landscape"
margin = "1in"
base_dir = "assets"

[[fonts]]
family = "Body"
style = "bold"
src = "fonts/body-bold.ttf"

[text]
size = "10pt"
align = "justify"
overflow = "shrink-to-fit"
block_spacing = "2mm"

[table]
padding = "2pt 4pt"
row_colors = ["#ffffff", "#eeeeee"]

[images]
logo = "logo.png"
`

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTemp(t, sampleTOML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Page.BaseDir != "assets" || len(cfg.Fonts) != 1 || cfg.Images["logo"] != "logo.png" {
		t.Fatalf("config %+v", cfg)
	}
	if style, err := cfg.Fonts[0].FontStyle(); err != nil || style != surface.StyleBold {
		t.Fatalf("font style %v, %v", style, err)
	}
	// 未覆盖的字段保留默认值
	if cfg.Table.BorderWidth != "1pt" {
		t.Fatalf("defaults lost: %+v", cfg.Table)
	}

	d, err := cfg.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	if d.Page.Size != "A5" || d.Page.Width <= d.Page.Height || d.Page.Margin != 72 {
		t.Fatalf("page %+v", d.Page)
	}
	if d.Text.Size != 10 || d.Text.Align != formatted.AlignJustify || d.Text.Overflow != formatted.OverflowShrinkToFit {
		t.Fatalf("text defaults %+v", d.Text)
	}
	if math.Abs(d.BlockSpacing-2*surface.MmToPt) > 1e-9 {
		t.Fatalf("block spacing %g", d.BlockSpacing)
	}
	if p := d.Table.CellStyle.Padding; p == nil || p.Top != 2 || p.Left != 4 {
		t.Fatalf("padding %+v", p)
	}
	if len(d.Table.RowColors) != 2 || d.Table.RowColors[1] != surface.MustColor("#eeeeee") {
		t.Fatalf("row colors %v", d.Table.RowColors)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	d, err := cfg.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	if d.Page.Size != "A4" || d.Text.Size != 12 || d.BlockSpacing != 6 {
		t.Fatalf("defaults %+v", d)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":      "[page\nsize = 1",
		"orientation": "[page]\norientation = \"sideways\"",
		"size":        "[page]\nsize = \"B9\"",
		"align":       "[text]\nalign = \"diagonal\"",
		"length":      "[table]\npadding = \"wide\"",
	}
	for name, body := range cases {
		if _, err := Load(writeTemp(t, body)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil || !strings.Contains(err.Error(), "failed to read") {
		t.Fatalf("missing file: %v", err)
	}
}
