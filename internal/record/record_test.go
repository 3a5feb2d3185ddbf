package record

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"media-index/internal/mediatypes"
	"media-index/internal/sidecar"
	"media-index/internal/vault"
)

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()
	v, err := vault.New(t.TempDir())
	if err != nil {
		t.Fatalf("vault.New: %v", err)
	}
	return v
}

// writePNG writes a width x height gradient PNG with enough distinct colors
// for palette clustering to be well-conditioned.
func writePNG(t *testing.T, v *vault.Vault, relPath string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x + y) * 255 / (width + height)),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if err := v.Write(relPath, buf.Bytes()); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func mustRecord(t *testing.T, v *vault.Vault, relPath string) Record {
	t.Helper()
	f, err := v.GetFile(relPath)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	r, err := New(v, f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNewCreatesSidecarAndClassifies(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 8, 8)
	if err := v.Write("clip.mp4", []byte("not-really-video")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	img := mustRecord(t, v, "photo.png")
	if img.Kind() != mediatypes.KindImage {
		t.Errorf("Kind = %v, want image", img.Kind())
	}
	if _, ok := img.(Imager); !ok {
		t.Error("image record does not implement Imager")
	}
	if !v.Exists("photo.png.meta.md") {
		t.Error("sidecar not created for image")
	}

	vid := mustRecord(t, v, "clip.mp4")
	if vid.Kind() != mediatypes.KindVideo {
		t.Errorf("Kind = %v, want video", vid.Kind())
	}
	if _, ok := vid.(Imager); ok {
		t.Error("video record must not implement Imager")
	}
	if !v.Exists("clip.mp4.meta.md") {
		t.Error("sidecar not created for video")
	}
}

func TestCachedSizeDecodesAndPersists(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 64, 48)

	r := mustRecord(t, v, "photo.png").(*Image)
	w, h, err := r.CachedSize()
	if err != nil {
		t.Fatalf("CachedSize: %v", err)
	}
	if w != 64 || h != 48 {
		t.Errorf("size = %dx%d, want 64x48", w, h)
	}

	// The decoded size must now be cached in the sidecar.
	if sw, sh, ok := r.Sidecar().Size(); !ok || sw != 64 || sh != 48 {
		t.Errorf("sidecar size = %d, %d, %v", sw, sh, ok)
	}
}

func TestCachedSizeServesWellFormedCache(t *testing.T) {
	v := newTestVault(t)
	// No decodable image on disk: only the cache can answer.
	if err := v.Write("photo.png", []byte("not-a-png")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := v.Write("photo.png.meta.md", []byte("---\nsize:\n  - 123\n  - 456\n---\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := mustRecord(t, v, "photo.png").(*Image)
	w, h, err := r.CachedSize()
	if err != nil {
		t.Fatalf("CachedSize: %v", err)
	}
	if w != 123 || h != 456 {
		t.Errorf("size = %dx%d, want cached 123x456", w, h)
	}
}

func TestCachedSizeIgnoresMalformedCache(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 32, 16)
	if err := v.Write("photo.png.meta.md", []byte("---\nsize: wide\n---\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := mustRecord(t, v, "photo.png").(*Image)
	w, h, err := r.CachedSize()
	if err != nil {
		t.Fatalf("CachedSize: %v", err)
	}
	if w != 32 || h != 16 {
		t.Errorf("size = %dx%d, want decoded 32x16", w, h)
	}
}

func TestCachedColorsExtractsAndPersists(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 64, 64)

	r := mustRecord(t, v, "photo.png").(*Image)
	colors, err := r.CachedColors()
	if err != nil {
		t.Fatalf("CachedColors: %v", err)
	}
	if len(colors) == 0 {
		t.Fatal("empty palette")
	}

	totalArea := 0.0
	for _, c := range colors {
		if c.H < 0 || c.H > 1 || c.S < 0 || c.S > 1 || c.L < 0 || c.L > 1 {
			t.Errorf("color component out of 0-1 range: %+v", c)
		}
		totalArea += c.Area
	}
	if totalArea < 0.99 || totalArea > 1.01 {
		t.Errorf("area fractions sum to %v, want ~1", totalArea)
	}

	if cached, ok := r.Sidecar().Colors(); !ok || len(cached) != len(colors) {
		t.Errorf("palette not persisted: %v, %v", cached, ok)
	}
}

func TestUpdateStampsAndStaysFresh(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 16, 16)

	r := mustRecord(t, v, "photo.png")
	r.Update()

	updated, ok := r.Sidecar().UpdatedAt()
	if !ok {
		t.Fatal("updated-at missing after Update")
	}
	f, err := v.GetFile("photo.png")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if updated.Before(f.ModTime) {
		t.Errorf("updated-at %v predates mtime %v", updated, f.ModTime)
	}
}

func TestUpdateRecomputesStaleAttributes(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 40, 20)

	// Seed a stale cache: wrong size, old stamp.
	stale := time.Now().Add(-48 * time.Hour)
	seed := "---\nsize:\n  - 1\n  - 1\nupdated-at: \"" + stale.UTC().Format(time.RFC3339) + "\"\n---\n"
	if err := v.Write("photo.png.meta.md", []byte(seed)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// File mtime newer than the stamp.
	now := time.Now()
	if err := os.Chtimes(v.Abs("photo.png"), now, now); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	r := mustRecord(t, v, "photo.png")
	r.Update()

	doc := r.Sidecar()
	if w, h, ok := doc.Size(); !ok || w != 40 || h != 20 {
		t.Errorf("stale size not recomputed: %d, %d, %v", w, h, ok)
	}
	if _, ok := doc.Colors(); !ok {
		t.Error("colors not computed during stale update")
	}
	updated, ok := doc.UpdatedAt()
	if !ok || !updated.After(stale) {
		t.Errorf("updated-at not advanced: %v, %v", updated, ok)
	}
}

func TestUpdateFreshCacheNotRecomputed(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 24, 24)

	r := mustRecord(t, v, "photo.png")
	r.Update()

	// Plant a marker value; a fresh Update must not overwrite it.
	r.Sidecar().SetSize(999, 999)
	future := time.Now().Add(time.Hour)
	r.Sidecar().SetUpdatedAt(future)

	r.Update()

	if w, h, ok := r.Sidecar().Size(); !ok || w != 999 || h != 999 {
		t.Errorf("fresh cache was recomputed: %d, %d, %v", w, h, ok)
	}
}

func TestUpdateFreshWritesNothing(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 16, 16)

	r := mustRecord(t, v, "photo.png")
	r.Update()

	before, err := v.Read("photo.png" + sidecar.Suffix)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(v.Abs("photo.png"+sidecar.Suffix), past, past); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	// A second update of an already fresh record must not rewrite the
	// sidecar; a rewrite here would raise a write event that feeds the
	// mutation router back into this same update.
	r.Update()

	after, err := v.Read("photo.png" + sidecar.Suffix)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("fresh update rewrote sidecar content")
	}
	info, err := os.Stat(v.Abs("photo.png" + sidecar.Suffix))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Error("fresh update touched the sidecar on disk")
	}
}

func TestVideoUpdateOnlyStamps(t *testing.T) {
	v := newTestVault(t)
	if err := v.Write("clip.mp4", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := mustRecord(t, v, "clip.mp4")
	r.Update()

	doc := r.Sidecar()
	if _, ok := doc.UpdatedAt(); !ok {
		t.Error("updated-at missing after video Update")
	}
	if _, _, ok := doc.Size(); ok {
		t.Error("video record must not cache a size")
	}
	if _, ok := doc.Colors(); ok {
		t.Error("video record must not cache colors")
	}
}

func TestTagsComeFromSidecar(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 8, 8)
	if err := v.Write("photo.png"+sidecar.Suffix, []byte("---\ntags:\n  - Alpha\n---\n#beta\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := mustRecord(t, v, "photo.png")
	tags := r.Tags()
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "beta" {
		t.Errorf("Tags = %v, want [alpha beta]", tags)
	}
}

func TestGetImageDimensions(t *testing.T) {
	v := newTestVault(t)
	writePNG(t, v, "photo.png", 100, 50)

	dims, err := GetImageDimensions(v.Abs("photo.png"))
	if err != nil {
		t.Fatalf("GetImageDimensions: %v", err)
	}
	if dims.Width != 100 || dims.Height != 50 {
		t.Errorf("dims = %dx%d, want 100x50", dims.Width, dims.Height)
	}

	if _, err := GetImageDimensions(v.Abs("absent.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
