package query

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"media-index/internal/sidecar"
)

// SortKey selects the ordering applied before filtering.
type SortKey int

const (
	// SortByName orders by file name, locale-aware.
	SortByName SortKey = iota
	// SortByCreated orders by when the record entered the index.
	SortByCreated
	// SortByModified orders by file modification time.
	SortByModified
	// SortRandom shuffles the full snapshot.
	SortRandom
)

// ParseSortKey maps a sort name to its key. Empty means name order.
func ParseSortKey(value string) (SortKey, error) {
	switch strings.ToLower(value) {
	case "", "name":
		return SortByName, nil
	case "ctime", "created":
		return SortByCreated, nil
	case "mtime", "modified":
		return SortByModified, nil
	case "random", "shuffle":
		return SortRandom, nil
	default:
		return SortByName, fmt.Errorf("unknown sort key %q", value)
	}
}

// Shape classifies an image by its aspect.
type Shape int

const (
	ShapeSquare Shape = iota
	ShapeHorizontal
	ShapeVertical
)

// ParseShape maps a shape name to its value.
func ParseShape(value string) (Shape, error) {
	switch strings.ToLower(value) {
	case "square":
		return ShapeSquare, nil
	case "horizontal", "landscape":
		return ShapeHorizontal, nil
	case "vertical", "portrait":
		return ShapeVertical, nil
	default:
		return ShapeSquare, fmt.Errorf("unknown shape %q", value)
	}
}

// shapeOf classifies pixel dimensions.
func shapeOf(width, height int) Shape {
	switch {
	case width > height:
		return ShapeHorizontal
	case height > width:
		return ShapeVertical
	default:
		return ShapeSquare
	}
}

// DefaultColorThreshold is the color-proximity cutoff used when a spec
// carries a color target but no explicit threshold.
const DefaultColorThreshold = 0.1

// Spec is an immutable filter/sort description. The zero value matches
// every record and sorts by name ascending. All filter sets are OR-matched
// within themselves and AND-matched against each other.
type Spec struct {
	// Color is the optional proximity target, components in [0, 1] with
	// hue as a fraction of the 360 degree circle.
	Color *sidecar.Color
	// ColorThreshold caps the weighted palette distance; zero means
	// DefaultColorThreshold.
	ColorThreshold float64

	// Folders OR-matches records whose path sits under any prefix.
	Folders []string
	// Tags OR-matches records carrying any of the tags.
	Tags []string
	// Extensions OR-matches lowercase extensions without the dot.
	Extensions []string
	// Shapes OR-matches image aspect classes.
	Shapes []Shape
	// RequiredFields OR-matches records whose sidecar has any field set.
	RequiredFields []string

	// Dimension bounds in pixels; zero means unbounded.
	MinWidth, MaxWidth   int
	MinHeight, MaxHeight int

	Sort       SortKey
	Descending bool
}

// ParseHexColor converts a CSS-style hex color into a spec color target.
func ParseHexColor(hex string) (*sidecar.Color, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	h, s, l := c.Hsl()
	return &sidecar.Color{H: h / 360, S: s, L: l}, nil
}

// needsImage reports whether any active filter constrains image
// attributes, which implies non-images can never match.
func (s *Spec) needsImage() bool {
	return s.Color != nil ||
		len(s.Shapes) > 0 ||
		s.MinWidth > 0 || s.MaxWidth > 0 ||
		s.MinHeight > 0 || s.MaxHeight > 0
}

// needsSize reports whether evaluation requires pixel dimensions.
func (s *Spec) needsSize() bool {
	return len(s.Shapes) > 0 ||
		s.MinWidth > 0 || s.MaxWidth > 0 ||
		s.MinHeight > 0 || s.MaxHeight > 0
}

func (s *Spec) threshold() float64 {
	if s.ColorThreshold > 0 {
		return s.ColorThreshold
	}
	return DefaultColorThreshold
}
