package query

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"media-index/internal/index"
	"media-index/internal/record"
	"media-index/internal/sidecar"
)

// Query binds a spec to an index for evaluation.
type Query struct {
	index *index.Index
	spec  Spec
}

// New creates a query over an index.
func New(ix *index.Index, spec Spec) *Query {
	return &Query{index: ix, spec: spec}
}

// Items returns the matching records: the index is initialized if needed,
// the current record set is snapshotted, sorted, then filtered. Relative
// order among matches follows the sort.
func (q *Query) Items() ([]record.Record, error) {
	if err := q.index.Initialize(); err != nil {
		return nil, err
	}

	records := q.index.Files()
	q.sortRecords(records)

	matched := records[:0]
	for _, rec := range records {
		if q.TestFile(rec) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// TestFile evaluates the spec against one record, cheapest checks first.
func (q *Query) TestFile(rec record.Record) bool {
	img, isImage := rec.(record.Imager)

	// Attribute filters imply the record must be an image; everything else
	// fails before any decode work.
	if q.spec.needsImage() && !isImage {
		return false
	}

	if len(q.spec.Extensions) > 0 && !q.matchExtension(rec) {
		return false
	}

	if q.spec.needsSize() {
		width, height, err := img.CachedSize()
		if err != nil {
			return false
		}
		if !q.matchDimensions(width, height) {
			return false
		}
	}

	if q.spec.Color != nil {
		colors, err := img.CachedColors()
		if err != nil {
			return false
		}
		if !isColorWithinThreshold(*q.spec.Color, colors, q.spec.threshold()) {
			return false
		}
	}

	if len(q.spec.Folders) > 0 && !q.matchFolder(rec.Path()) {
		return false
	}

	if len(q.spec.Tags) > 0 && !q.matchTags(rec) {
		return false
	}

	if len(q.spec.RequiredFields) > 0 && !q.matchFields(rec) {
		return false
	}

	return true
}

func (q *Query) matchExtension(rec record.Record) bool {
	ext := rec.File().Ext()
	for _, want := range q.spec.Extensions {
		if ext == strings.ToLower(strings.TrimPrefix(want, ".")) {
			return true
		}
	}
	return false
}

func (q *Query) matchDimensions(width, height int) bool {
	s := &q.spec
	if s.MinWidth > 0 && width < s.MinWidth {
		return false
	}
	if s.MaxWidth > 0 && width > s.MaxWidth {
		return false
	}
	if s.MinHeight > 0 && height < s.MinHeight {
		return false
	}
	if s.MaxHeight > 0 && height > s.MaxHeight {
		return false
	}
	if len(s.Shapes) > 0 {
		shape := shapeOf(width, height)
		for _, want := range s.Shapes {
			if shape == want {
				return true
			}
		}
		return false
	}
	return true
}

func (q *Query) matchFolder(path string) bool {
	for _, folder := range q.spec.Folders {
		prefix := strings.TrimSuffix(folder, "/")
		if prefix == "" || path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func (q *Query) matchTags(rec record.Record) bool {
	tags := rec.Tags()
	for _, want := range q.spec.Tags {
		want = strings.ToLower(want)
		for _, tag := range tags {
			if tag == want {
				return true
			}
		}
	}
	return false
}

func (q *Query) matchFields(rec record.Record) bool {
	doc := rec.Sidecar()
	for _, field := range q.spec.RequiredFields {
		if doc.HasField(field) {
			return true
		}
	}
	return false
}

// isColorWithinThreshold sums the area-weighted distance between a target
// color and each palette cluster. Hue distance wraps around the circle and
// is normalized by the 180 degree half-circle; saturation and lightness
// contribute their absolute deltas. Summing stops as soon as the running
// total exceeds the threshold.
func isColorWithinThreshold(target sidecar.Color, palette []sidecar.Color, threshold float64) bool {
	if len(palette) == 0 {
		return false
	}
	total := 0.0
	for _, c := range palette {
		dh := math.Abs(target.H - c.H)
		if dh > 0.5 {
			dh = 1 - dh
		}
		// Hue components are fractions of 360 degrees, so dividing the
		// degree distance by 180 is a factor of two.
		dist := dh*2 + math.Abs(target.S-c.S) + math.Abs(target.L-c.L)
		total += dist * c.Area
		if total > threshold {
			return false
		}
	}
	return total <= threshold
}

func (q *Query) sortRecords(records []record.Record) {
	switch q.spec.Sort {
	case SortRandom:
		rand.Shuffle(len(records), func(i, j int) {
			records[i], records[j] = records[j], records[i]
		})
	case SortByCreated:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].FirstSeen().Before(records[j].FirstSeen())
		})
	case SortByModified:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].File().ModTime.Before(records[j].File().ModTime)
		})
	default:
		cl := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(records, func(i, j int) bool {
			return cl.CompareString(records[i].File().Name, records[j].File().Name) < 0
		})
	}

	if q.spec.Descending {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
}
