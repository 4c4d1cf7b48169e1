package testsupport

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// WriteLabel writes a label file under root/labels/<split>/<name>.txt.
func WriteLabel(t testing.TB, root, split, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(root, "labels", split, name+".txt")
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	writeFile(t, path, []byte(content))
	return path
}

// WriteImage writes a solid grey JPEG of the given size under
// root/images/<split>/<name>.jpg.
func WriteImage(t testing.TB, root, split, name string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Gray{Y: 0x80})
		}
	}
	path := filepath.Join(root, "images", split, name+".jpg")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

// WriteSample writes a labeled image pair: one label line per class, each a
// normalized box, plus a 64x64 image.
func WriteSample(t testing.TB, root, split, name string, classes ...int) {
	t.Helper()

	lines := make([]string, 0, len(classes))
	for _, class := range classes {
		lines = append(lines, strconv.Itoa(class)+" 0.500000 0.500000 0.250000 0.250000")
	}
	WriteLabel(t, root, split, name, lines...)
	WriteImage(t, root, split, name, 64, 64)
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func writeFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
