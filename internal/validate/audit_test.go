package validate_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"yoloprep/internal/catalog"
	"yoloprep/internal/labels"
	"yoloprep/internal/validate"
)

func writeImage(t *testing.T, fsys afero.Fs, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRenderAuditSamplesFilesWithImages(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, name := range []string{"a", "b", "c"} {
		writeImage(t, fsys, "/data/images/train/"+name+".png", 64, 64)
		if err := afero.WriteFile(fsys, "/data/labels/train/"+name+".txt", []byte("0 0.5 0.5 0.5 0.5\n"), 0o644); err != nil {
			t.Fatalf("write label: %v", err)
		}
	}
	if err := afero.WriteFile(fsys, "/data/labels/train/0-orphan.txt", []byte("0 0.5 0.5 0.5 0.5\n"), 0o644); err != nil {
		t.Fatalf("write label: %v", err)
	}
	store := labels.NewStore(fsys, "/data", nil)

	result, err := validate.RenderAudit(context.Background(), store, "/audit", validate.AuditOptions{
		SampleSize: 2,
		LineWidth:  6,
		Catalog:    catalog.Default(),
	})
	if err != nil {
		t.Fatalf("RenderAudit returned error: %v", err)
	}
	want := []string{filepath.Join("/audit", "a.jpg"), filepath.Join("/audit", "b.jpg")}
	if len(result.Rendered) != len(want) || result.Rendered[0] != want[0] || result.Rendered[1] != want[1] {
		t.Fatalf("unexpected rendered files: %v", result.Rendered)
	}

	f, err := fsys.Open(want[0])
	if err != nil {
		t.Fatalf("open rendered image: %v", err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decode rendered image: %v", err)
	}
	// Box edge at x=16 runs through the vertical middle of the image.
	r, g, b, _ := img.At(16, 32).RGBA()
	if r < 0x8000 || g > 0x8000 || b > 0x8000 {
		t.Fatalf("expected red box edge at (16,32), got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}
