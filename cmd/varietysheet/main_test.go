package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/koipond/config"
	"github.com/pthm-cable/koipond/traits"
)

func init() {
	config.MustInit("")
}

func TestRenderSheet(t *testing.T) {
	img, err := renderSheet(config.Cfg(), 64, 3, 1, false)
	if err != nil {
		t.Fatalf("renderSheet: %v", err)
	}
	rows := (int(traits.NumVarieties) + columns - 1) / columns
	b := img.Bounds()
	if b.Dx() != columns*64 || b.Dy() != rows*(64+labelHeight) {
		t.Errorf("sheet size = %v", b)
	}

	path := filepath.Join(t.TempDir(), "sheet.png")
	if err := writePNG(path, img); err != nil {
		t.Fatalf("writePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("decode: %v", err)
	}
}
