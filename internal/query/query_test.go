package query

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"media-index/internal/index"
	"media-index/internal/sidecar"
	"media-index/internal/vault"
)

func newTestIndex(t *testing.T) (*vault.Vault, *index.Index) {
	t.Helper()
	v, err := vault.New(t.TempDir())
	if err != nil {
		t.Fatalf("vault.New failed: %v", err)
	}
	ix := index.New(v, nil)
	t.Cleanup(ix.Close)
	return v, ix
}

func writeFile(t *testing.T, v *vault.Vault, relPath, content string) {
	t.Helper()
	abs := v.Abs(relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s failed: %v", relPath, err)
	}
}

func writePNG(t *testing.T, v *vault.Vault, relPath string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 9), G: uint8(y * 13), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	writeFile(t, v, relPath, buf.String())
}

func itemNames(t *testing.T, q *Query) []string {
	t.Helper()
	items, err := q.Items()
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	names := make([]string, len(items))
	for i, rec := range items {
		names[i] = rec.File().Name
	}
	return names
}

func TestColorWithinThreshold(t *testing.T) {
	target := sidecar.Color{H: 0, S: 1, L: 0.5}

	exact := []sidecar.Color{{H: 0, S: 1, L: 0.5, Area: 1}}
	if !isColorWithinThreshold(target, exact, 0.01) {
		t.Error("identical palette should match at threshold 0.01")
	}

	opposite := []sidecar.Color{{H: 0.5, S: 1, L: 0.5, Area: 1}}
	if isColorWithinThreshold(target, opposite, 0.1) {
		t.Error("180 degree hue offset should fail at threshold 0.1")
	}
}

func TestColorHueWrapsAroundCircle(t *testing.T) {
	target := sidecar.Color{H: 0.99, S: 1, L: 0.5}
	near := []sidecar.Color{{H: 0.01, S: 1, L: 0.5, Area: 1}}
	if !isColorWithinThreshold(target, near, 0.1) {
		t.Error("hue distance should wrap around 360 degrees")
	}
}

func TestColorDistanceIsAreaWeighted(t *testing.T) {
	target := sidecar.Color{H: 0, S: 1, L: 0.5}
	palette := []sidecar.Color{
		{H: 0, S: 1, L: 0.5, Area: 0.95},
		{H: 0.5, S: 1, L: 0.5, Area: 0.05},
	}
	// The off cluster contributes 1.0 * 0.05 = 0.05 to the total.
	if !isColorWithinThreshold(target, palette, 0.06) {
		t.Error("small off-color cluster should be outweighed by its area")
	}
	if isColorWithinThreshold(target, palette, 0.04) {
		t.Error("total above threshold should fail")
	}
}

func TestColorEmptyPaletteNeverMatches(t *testing.T) {
	if isColorWithinThreshold(sidecar.Color{}, nil, 1.0) {
		t.Error("empty palette should not match any target")
	}
}

func TestItemsNameSort(t *testing.T) {
	v, ix := newTestIndex(t)
	for _, name := range []string{"b.png", "a.png", "c.png"} {
		writeFile(t, v, name, "x")
	}

	asc := itemNames(t, New(ix, Spec{}))
	if len(asc) != 3 || asc[0] != "a.png" || asc[1] != "b.png" || asc[2] != "c.png" {
		t.Fatalf("ascending name sort wrong: %v", asc)
	}

	desc := itemNames(t, New(ix, Spec{Descending: true}))
	if desc[0] != "c.png" || desc[1] != "b.png" || desc[2] != "a.png" {
		t.Fatalf("descending name sort wrong: %v", desc)
	}
}

func TestItemsModifiedSort(t *testing.T) {
	v, ix := newTestIndex(t)
	writeFile(t, v, "old.mp4", "x")
	writeFile(t, v, "new.mp4", "x")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(v.Abs("old.mp4"), past, past); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	names := itemNames(t, New(ix, Spec{Sort: SortByModified}))
	if names[0] != "old.mp4" || names[1] != "new.mp4" {
		t.Fatalf("mtime sort wrong: %v", names)
	}
}

func TestItemsRandomKeepsAllRecords(t *testing.T) {
	v, ix := newTestIndex(t)
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		writeFile(t, v, name, "x")
	}
	names := itemNames(t, New(ix, Spec{Sort: SortRandom}))
	if len(names) != 3 {
		t.Fatalf("shuffle lost records: %v", names)
	}
}

func TestDimensionFilterSkipsNonImages(t *testing.T) {
	v, ix := newTestIndex(t)
	writePNG(t, v, "wide.png", 40, 20)
	writeFile(t, v, "clip.mp4", "x")

	names := itemNames(t, New(ix, Spec{MinWidth: 10}))
	if len(names) != 1 || names[0] != "wide.png" {
		t.Fatalf("dimension filter should reject non-images without decoding: %v", names)
	}
}

func TestDimensionBounds(t *testing.T) {
	v, ix := newTestIndex(t)
	writePNG(t, v, "small.png", 10, 10)
	writePNG(t, v, "big.png", 60, 60)

	names := itemNames(t, New(ix, Spec{MinWidth: 30, MinHeight: 30}))
	if len(names) != 1 || names[0] != "big.png" {
		t.Fatalf("min bounds wrong: %v", names)
	}

	names = itemNames(t, New(ix, Spec{MaxWidth: 30}))
	if len(names) != 1 || names[0] != "small.png" {
		t.Fatalf("max bounds wrong: %v", names)
	}
}

func TestShapeFilter(t *testing.T) {
	v, ix := newTestIndex(t)
	writePNG(t, v, "wide.png", 40, 20)
	writePNG(t, v, "tall.png", 20, 40)
	writePNG(t, v, "box.png", 30, 30)

	cases := []struct {
		shape Shape
		want  string
	}{
		{ShapeHorizontal, "wide.png"},
		{ShapeVertical, "tall.png"},
		{ShapeSquare, "box.png"},
	}
	for _, tc := range cases {
		names := itemNames(t, New(ix, Spec{Shapes: []Shape{tc.shape}}))
		if len(names) != 1 || names[0] != tc.want {
			t.Errorf("shape %v: want [%s], got %v", tc.shape, tc.want, names)
		}
	}
}

func TestExtensionFilter(t *testing.T) {
	v, ix := newTestIndex(t)
	writeFile(t, v, "a.png", "x")
	writeFile(t, v, "b.mp4", "x")

	names := itemNames(t, New(ix, Spec{Extensions: []string{"mp4"}}))
	if len(names) != 1 || names[0] != "b.mp4" {
		t.Fatalf("extension filter wrong: %v", names)
	}
	// Leading dots and case are tolerated.
	names = itemNames(t, New(ix, Spec{Extensions: []string{".PNG"}}))
	if len(names) != 1 || names[0] != "a.png" {
		t.Fatalf("normalized extension filter wrong: %v", names)
	}
}

func TestFolderFilter(t *testing.T) {
	v, ix := newTestIndex(t)
	writeFile(t, v, "trips/asia/a.mp4", "x")
	writeFile(t, v, "trips/b.mp4", "x")
	writeFile(t, v, "tripsish/c.mp4", "x")

	names := itemNames(t, New(ix, Spec{Folders: []string{"trips"}}))
	if len(names) != 2 {
		t.Fatalf("folder prefix should match whole path segments only: %v", names)
	}
	for _, n := range names {
		if n == "c.mp4" {
			t.Fatalf("tripsish/ must not match the trips prefix: %v", names)
		}
	}
}

func TestTagFilter(t *testing.T) {
	v, ix := newTestIndex(t)
	writeFile(t, v, "a.mp4", "x")
	writeFile(t, v, "a.mp4"+sidecar.Suffix, "---\ntags: [sunset]\n---\n")
	writeFile(t, v, "b.mp4", "x")

	names := itemNames(t, New(ix, Spec{Tags: []string{"Sunset"}}))
	if len(names) != 1 || names[0] != "a.mp4" {
		t.Fatalf("tag filter should be case-insensitive: %v", names)
	}
}

func TestRequiredFieldFilter(t *testing.T) {
	v, ix := newTestIndex(t)
	writeFile(t, v, "a.mp4", "x")
	writeFile(t, v, "a.mp4"+sidecar.Suffix, "---\nrating: 5\n---\n")
	writeFile(t, v, "b.mp4", "x")

	names := itemNames(t, New(ix, Spec{RequiredFields: []string{"rating"}}))
	if len(names) != 1 || names[0] != "a.mp4" {
		t.Fatalf("required field filter wrong: %v", names)
	}
}

func TestZeroSpecMatchesEverything(t *testing.T) {
	v, ix := newTestIndex(t)
	writeFile(t, v, "a.png", "x")
	writeFile(t, v, "b.mp4", "x")

	names := itemNames(t, New(ix, Spec{}))
	if len(names) != 2 {
		t.Fatalf("zero spec should match all records: %v", names)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff0000")
	if err != nil {
		t.Fatalf("ParseHexColor failed: %v", err)
	}
	if c.H != 0 || c.S != 1 || c.L != 0.5 {
		t.Fatalf("red should map to h=0 s=1 l=0.5, got %+v", c)
	}
	if _, err := ParseHexColor("not-a-color"); err == nil {
		t.Fatal("invalid hex should error")
	}
}

func TestParseSortKeyAndShape(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortByName {
		t.Errorf("empty sort should default to name, got %v %v", k, err)
	}
	if _, err := ParseSortKey("sideways"); err == nil {
		t.Error("unknown sort key should error")
	}
	if s, err := ParseShape("landscape"); err != nil || s != ShapeHorizontal {
		t.Errorf("landscape should parse as horizontal, got %v %v", s, err)
	}
	if _, err := ParseShape("blob"); err == nil {
		t.Error("unknown shape should error")
	}
}
