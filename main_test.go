package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/surface"
)

func TestRunDryRun(t *testing.T) {
	cfg, err := config.Load(filepath.Join("examples", "folio.toml"))
	if err != nil {
		t.Fatal(err)
	}
	var data any
	raw := `{"customer":{"name":"Ada"},"items":[{"name":"apple","qty":3,"price":"1.20"},{"name":"pear","qty":2,"price":"0.80"}]}`
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	j := job{
		input:  filepath.Join("examples", "demo.folio"),
		output: filepath.Join(dir, "out", "ops.json"),
		debug:  filepath.Join(dir, "debug", "layout.json"),
		dryRun: true,
		data:   data,
		config: cfg,
	}
	if err := j.run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	body, err := os.ReadFile(j.output)
	if err != nil {
		t.Fatal(err)
	}
	var ops []surface.Op
	if err := json.Unmarshal(body, &ops); err != nil {
		t.Fatal(err)
	}
	texts := map[string]bool{}
	links := 0
	for _, op := range ops {
		switch op.Kind {
		case surface.OpText:
			texts[op.Text] = true
		case surface.OpLink:
			links++
		}
	}
	for _, want := range []string{"apple", "pear", "Item"} {
		if !texts[want] {
			t.Fatalf("%q was not drawn", want)
		}
	}
	if links == 0 {
		t.Fatal("markup link was not annotated")
	}
	if _, err := os.Stat(j.debug); err != nil {
		t.Fatalf("debug JSON missing: %v", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	j := job{input: filepath.Join(t.TempDir(), "none.folio"), output: filepath.Join(t.TempDir(), "x.pdf"), config: config.Default()}
	if err := j.run(); err == nil {
		t.Fatal("missing input accepted")
	}
}
