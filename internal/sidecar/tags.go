package sidecar

import (
	"regexp"
	"sort"
	"strings"

	"media-index/internal/logging"
)

// inlineTagPattern matches inline #tags in the markdown body. Nested tags
// ("#travel/asia") are kept whole.
var inlineTagPattern = regexp.MustCompile(`#([\pL\pN_][\pL\pN_/-]*)`)

// Tags aggregates the document's tags: the front matter tags field (array or
// single scalar) plus inline #tags in the body. Tags are lower-cased,
// stripped of leading marker characters, and deduplicated. The result is
// sorted for stable comparison.
func (d *Document) Tags() []string {
	fields, body, _, err := d.load()
	if err != nil {
		logging.Debug("Failed to read tags from %s: %v", d.path, err)
		return nil
	}

	seen := make(map[string]bool)
	var tags []string
	add := func(raw string) {
		tag := normalizeTag(raw)
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	switch value := fields[FieldTags].(type) {
	case []interface{}:
		for _, entry := range value {
			if s, ok := entry.(string); ok {
				add(s)
			}
		}
	case string:
		add(value)
	}

	for _, match := range inlineTagPattern.FindAllStringSubmatch(string(body), -1) {
		add(match[1])
	}

	sort.Strings(tags)
	return tags
}

// normalizeTag lower-cases a tag and strips leading marker characters.
func normalizeTag(raw string) string {
	tag := strings.TrimSpace(strings.ToLower(raw))
	return strings.TrimLeft(tag, "#")
}
