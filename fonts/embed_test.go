package fonts

import (
	"bytes"
	"testing"

	"github.com/ByLCY/folio/surface"
)

func TestLoad(t *testing.T) {
	for _, name := range []string{"embed:lmroman10-bold", "lmroman10-bold.ttf", "bold"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if !bytes.Equal(data, Face(surface.StyleBold)) {
			t.Fatalf("Load(%q) returned another face", name)
		}
	}
	if data, err := Load("regular"); err != nil || len(data) == 0 {
		t.Fatalf("regular face missing: %v", err)
	}
	if _, err := Load("embed:Inter-Regular.ttf"); err == nil {
		t.Fatal("unknown face loaded")
	}
}
