package sidecar

import (
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

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

func writeDoc(t *testing.T, v *vault.Vault, path, content string) {
	t.Helper()
	if err := v.Write(path, []byte(content)); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func TestPathDerivation(t *testing.T) {
	if got := PathFor("photos/a.jpg"); got != "photos/a.jpg.meta.md" {
		t.Errorf("PathFor = %q", got)
	}

	tests := []struct {
		path      string
		isSidecar bool
		media     string
	}{
		{"photos/a.jpg.meta.md", true, "photos/a.jpg"},
		{"photos/a.jpg", false, ""},
		{"notes/readme.md", false, ""},
		{".meta.md", false, ""},
	}
	for _, tt := range tests {
		if got := IsSidecarPath(tt.path); got != tt.isSidecar {
			t.Errorf("IsSidecarPath(%q) = %v, want %v", tt.path, got, tt.isSidecar)
		}
		media, ok := MediaPathFor(tt.path)
		if ok != tt.isSidecar || media != tt.media {
			t.Errorf("MediaPathFor(%q) = %q, %v; want %q, %v", tt.path, media, ok, tt.media, tt.isSidecar)
		}
	}
}

func TestResolveOrCreateCreatesOnce(t *testing.T) {
	v := newTestVault(t)

	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if !v.Exists("a.jpg.meta.md") {
		t.Fatal("sidecar not created")
	}
	if doc.MediaPath() != "a.jpg" || doc.Path() != "a.jpg.meta.md" {
		t.Errorf("paths = %q, %q", doc.MediaPath(), doc.Path())
	}

	// A second resolve must observe the same document, not overwrite it.
	doc.SetField("custom", "kept")
	doc2, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("second ResolveOrCreate: %v", err)
	}
	if value, ok := doc2.Field("custom"); !ok || value != "kept" {
		t.Errorf("second resolve lost field: %v, %v", value, ok)
	}
}

func TestResolveOrCreateConcurrent(t *testing.T) {
	v := newTestVault(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ResolveOrCreate(v, "race.jpg"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent ResolveOrCreate: %v", err)
	}
	if !v.Exists("race.jpg.meta.md") {
		t.Error("sidecar missing after concurrent resolve")
	}
}

func TestSetFieldPreservesBody(t *testing.T) {
	v := newTestVault(t)
	body := "# My photo\n\nSome notes about it.\n"
	writeDoc(t, v, "a.jpg.meta.md", "---\ntags:\n  - sunset\n---\n"+body)

	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	doc.SetField("rating", 5)

	data, err := v.Read("a.jpg.meta.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.HasSuffix(string(data), body) {
		t.Errorf("body not preserved:\n%s", data)
	}
	if value, ok := doc.Field("rating"); !ok || value != 5 {
		t.Errorf("rating = %v, %v", value, ok)
	}
	if tags := doc.Tags(); len(tags) != 1 || tags[0] != "sunset" {
		t.Errorf("tags lost across write: %v", tags)
	}
}

func TestSetFieldsIdenticalContentSkipsWrite(t *testing.T) {
	v := newTestVault(t)
	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	doc.SetUpdatedAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	// Backdate the file; a skipped write leaves the mtime alone.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(v.Abs("a.jpg.meta.md"), past, past); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	doc.SetUpdatedAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	info, err := os.Stat(v.Abs("a.jpg.meta.md"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Error("identical front matter write touched the document")
	}
}

func TestSetFieldMalformedFrontMatterDropped(t *testing.T) {
	v := newTestVault(t)
	malformed := "---\n: : bad : :\n  - broken\n---\nbody\n"
	writeDoc(t, v, "a.jpg.meta.md", malformed)

	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	// Must not panic; the write is dropped and the document untouched.
	doc.SetField("rating", 5)

	data, err := v.Read("a.jpg.meta.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != malformed {
		t.Errorf("malformed document was modified:\n%s", data)
	}
}

func TestSizeRoundTrip(t *testing.T) {
	v := newTestVault(t)
	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	if _, _, ok := doc.Size(); ok {
		t.Error("Size present on empty document")
	}

	doc.SetSize(1920, 1080)
	w, h, ok := doc.Size()
	if !ok || w != 1920 || h != 1080 {
		t.Errorf("Size = %d, %d, %v", w, h, ok)
	}
}

func TestSizeRejectsMalformed(t *testing.T) {
	v := newTestVault(t)

	tests := []struct {
		name string
		fm   string
	}{
		{"scalar", "size: 1920\n"},
		{"one element", "size:\n  - 1920\n"},
		{"three elements", "size:\n  - 1\n  - 2\n  - 3\n"},
		{"non-numeric", "size:\n  - wide\n  - tall\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := strings.ReplaceAll(tt.name, " ", "_") + ".jpg"
			writeDoc(t, v, PathFor(path), "---\n"+tt.fm+"---\n")
			doc, err := ResolveOrCreate(v, path)
			if err != nil {
				t.Fatalf("ResolveOrCreate: %v", err)
			}
			if _, _, ok := doc.Size(); ok {
				t.Errorf("Size accepted malformed value %q", tt.fm)
			}
		})
	}
}

func TestColorsRoundTrip(t *testing.T) {
	v := newTestVault(t)
	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	if _, ok := doc.Colors(); ok {
		t.Error("Colors present on empty document")
	}

	want := []Color{
		{H: 0.08, S: 0.8, L: 0.5, Area: 0.6},
		{H: 0.55, S: 0.4, L: 0.3, Area: 0.4},
	}
	doc.SetColors(want)

	got, ok := doc.Colors()
	if !ok {
		t.Fatal("Colors absent after SetColors")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Colors = %+v, want %+v", got, want)
	}
}

func TestUpdatedAtRoundTrip(t *testing.T) {
	v := newTestVault(t)
	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	if _, ok := doc.UpdatedAt(); ok {
		t.Error("UpdatedAt present on empty document")
	}

	stamp := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	doc.SetUpdatedAt(stamp)

	got, ok := doc.UpdatedAt()
	if !ok || !got.Equal(stamp) {
		t.Errorf("UpdatedAt = %v, %v; want %v", got, ok, stamp)
	}
}

func TestTagsAggregation(t *testing.T) {
	v := newTestVault(t)
	writeDoc(t, v, "a.jpg.meta.md",
		"---\ntags:\n  - Foo\n  - \"#Bar\"\n---\nA photo tagged #baz inline.\n")

	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	got := doc.Tags()
	want := []string{"bar", "baz", "foo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags = %v, want %v", got, want)
	}
}

func TestTagsScalarAndDedup(t *testing.T) {
	v := newTestVault(t)
	writeDoc(t, v, "a.jpg.meta.md",
		"---\ntags: Sunset\n---\nStill a #sunset, and also #Sunset again.\n")

	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	got := doc.Tags()
	if !reflect.DeepEqual(got, []string{"sunset"}) {
		t.Errorf("Tags = %v, want [sunset]", got)
	}
}

func TestTagsNestedInline(t *testing.T) {
	v := newTestVault(t)
	writeDoc(t, v, "a.jpg.meta.md", "Shot on a trip: #travel/asia\n")

	doc, err := ResolveOrCreate(v, "a.jpg")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}

	got := doc.Tags()
	if !reflect.DeepEqual(got, []string{"travel/asia"}) {
		t.Errorf("Tags = %v, want [travel/asia]", got)
	}
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantFM   string
		wantBody string
	}{
		{
			name:     "front matter and body",
			in:       "---\na: 1\n---\nbody\n",
			wantFM:   "a: 1\n",
			wantBody: "body\n",
		},
		{
			name:     "no front matter",
			in:       "just a body\n",
			wantFM:   "",
			wantBody: "just a body\n",
		},
		{
			name:     "empty document",
			in:       "",
			wantFM:   "",
			wantBody: "",
		},
		{
			name:     "unterminated block treated as body",
			in:       "---\na: 1\nno closing",
			wantFM:   "",
			wantBody: "---\na: 1\nno closing",
		},
		{
			name:     "crlf delimiters",
			in:       "---\r\na: 1\r\n---\r\nbody",
			wantFM:   "a: 1\r\n",
			wantBody: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := splitFrontMatter([]byte(tt.in))
			if string(fm) != tt.wantFM {
				t.Errorf("fm = %q, want %q", fm, tt.wantFM)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
