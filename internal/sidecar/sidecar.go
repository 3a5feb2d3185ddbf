package sidecar

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"media-index/internal/logging"
	"media-index/internal/metrics"
	"media-index/internal/vault"
)

// Suffix is the canonical sidecar suffix: the sidecar for media path P lives
// at P + Suffix. It is applied uniformly everywhere a sidecar path is derived
// or recognized.
const Suffix = ".meta.md"

// Front matter field names. Derived attributes live under these fixed keys.
const (
	FieldSize      = "size"
	FieldColors    = "colors"
	FieldTags      = "tags"
	FieldUpdatedAt = "updated-at"
)

// Color is one dominant-color cluster of an image palette. All components
// are normalized to the 0-1 range; H is the hue fraction of the full 360
// degree circle.
type Color struct {
	H    float64 `yaml:"h" json:"h"`
	S    float64 `yaml:"s" json:"s"`
	L    float64 `yaml:"l" json:"l"`
	Area float64 `yaml:"area" json:"area"`
}

// PathFor returns the sidecar path derived from a media path.
func PathFor(mediaPath string) string {
	return mediaPath + Suffix
}

// IsSidecarPath reports whether a vault path names a sidecar document.
func IsSidecarPath(path string) bool {
	return strings.HasSuffix(path, Suffix) && len(path) > len(Suffix)
}

// MediaPathFor returns the media path a sidecar path is paired with.
// ok is false when the path is not a sidecar path.
func MediaPathFor(sidecarPath string) (string, bool) {
	if !IsSidecarPath(sidecarPath) {
		return "", false
	}
	return strings.TrimSuffix(sidecarPath, Suffix), true
}

// Document is a sidecar metadata document. It holds no cached file state:
// every read re-reads the document so concurrent writers are observed.
type Document struct {
	vault     *vault.Vault
	path      string
	mediaPath string
}

// ResolveOrCreate wraps the sidecar document for a media path, creating an
// empty one if none exists. Safe to call concurrently for the same path:
// exactly one caller creates the document and every caller returns the same
// logical document.
func ResolveOrCreate(v *vault.Vault, mediaPath string) (*Document, error) {
	path := PathFor(mediaPath)

	err := v.Create(path, nil)
	switch {
	case err == nil:
		metrics.SidecarCreatesTotal.Inc()
		logging.Debug("Created sidecar %s", path)
	case errors.Is(err, fs.ErrExist):
		// Raced or already present; the existing document wins.
	default:
		return nil, fmt.Errorf("failed to create sidecar %s: %w", path, err)
	}

	return &Document{vault: v, path: path, mediaPath: mediaPath}, nil
}

// Path returns the sidecar's own vault path.
func (d *Document) Path() string {
	return d.path
}

// MediaPath returns the vault path of the paired media file.
func (d *Document) MediaPath() string {
	return d.mediaPath
}

// Exists reports whether the document is currently present on disk.
func (d *Document) Exists() bool {
	return d.vault.Exists(d.path)
}

// load reads the document and splits it into parsed front matter, raw body,
// and the raw document bytes.
func (d *Document) load() (map[string]interface{}, []byte, []byte, error) {
	data, err := d.vault.Read(d.path)
	if err != nil {
		return nil, nil, nil, err
	}

	fm, body := splitFrontMatter(data)
	fields := make(map[string]interface{})
	if len(fm) > 0 {
		if err := yaml.Unmarshal(fm, &fields); err != nil {
			return nil, body, data, fmt.Errorf("malformed front matter in %s: %w", d.path, err)
		}
	}
	return fields, body, data, nil
}

// Field returns the raw front matter value under name. ok is false when the
// field is absent or the document is unreadable.
func (d *Document) Field(name string) (interface{}, bool) {
	fields, _, _, err := d.load()
	if err != nil {
		logging.Debug("Failed to read field %q from %s: %v", name, d.path, err)
		return nil, false
	}
	value, ok := fields[name]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// HasField reports whether the front matter carries a non-nil value under name.
func (d *Document) HasField(name string) bool {
	_, ok := d.Field(name)
	return ok
}

// SetField writes one front matter field. Failures are logged and the write
// is dropped; the document is never corrupted by a failed write.
func (d *Document) SetField(name string, value interface{}) {
	d.SetFields(map[string]interface{}{name: value})
}

// SetFields writes several front matter fields in one document rewrite.
// The markdown body is preserved byte for byte. Failures are logged and the
// entire write is dropped. A write that would leave the document byte for
// byte unchanged is skipped entirely, so re-stamping an already current
// document never touches the filesystem (and never wakes the watcher).
func (d *Document) SetFields(values map[string]interface{}) {
	fields, body, raw, err := d.load()
	if err != nil {
		metrics.SidecarWriteFailures.Inc()
		logging.Warn("Dropping front matter write to %s: %v", d.path, err)
		return
	}

	for name, value := range values {
		fields[name] = value
	}

	out, err := renderDocument(fields, body)
	if err != nil {
		metrics.SidecarWriteFailures.Inc()
		logging.Warn("Dropping front matter write to %s: %v", d.path, err)
		return
	}

	if bytes.Equal(out, raw) {
		return
	}

	if err := d.vault.Write(d.path, out); err != nil {
		metrics.SidecarWriteFailures.Inc()
		logging.Warn("Dropping front matter write to %s: %v", d.path, err)
	}
}

// Size returns the cached pixel dimensions if present and well-formed
// (a 2-element numeric pair).
func (d *Document) Size() (width, height int, ok bool) {
	value, present := d.Field(FieldSize)
	if !present {
		return 0, 0, false
	}
	pair, isList := value.([]interface{})
	if !isList || len(pair) != 2 {
		return 0, 0, false
	}
	w, wok := asInt(pair[0])
	h, hok := asInt(pair[1])
	if !wok || !hok {
		return 0, 0, false
	}
	return w, h, true
}

// Colors returns the cached dominant-color palette, if present.
func (d *Document) Colors() ([]Color, bool) {
	value, present := d.Field(FieldColors)
	if !present {
		return nil, false
	}

	// Round-trip through YAML to decode the generic list into Color structs.
	raw, err := yaml.Marshal(value)
	if err != nil {
		return nil, false
	}
	var colors []Color
	if err := yaml.Unmarshal(raw, &colors); err != nil {
		return nil, false
	}
	if len(colors) == 0 {
		return nil, false
	}
	return colors, true
}

// UpdatedAt returns the last successful attribute recomputation timestamp.
func (d *Document) UpdatedAt() (time.Time, bool) {
	value, present := d.Field(FieldUpdatedAt)
	if !present {
		return time.Time{}, false
	}
	switch v := value.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case time.Time:
		return v, true
	default:
		return time.Time{}, false
	}
}

// SetSize caches pixel dimensions as a 2-element array.
func (d *Document) SetSize(width, height int) {
	d.SetField(FieldSize, []int{width, height})
}

// SetColors caches the dominant-color palette.
func (d *Document) SetColors(colors []Color) {
	d.SetField(FieldColors, colors)
}

// SetUpdatedAt stamps the last-updated timestamp. Nanosecond precision is
// kept so a stamp taken from a file's modification time never compares
// older than that same modification time.
func (d *Document) SetUpdatedAt(t time.Time) {
	d.SetField(FieldUpdatedAt, t.UTC().Format(time.RFC3339Nano))
}

// asInt accepts the numeric shapes YAML may hand back for an integer.
func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
