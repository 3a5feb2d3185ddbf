package record

import (
	"fmt"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/lucasb-eyer/go-colorful"

	"media-index/internal/sidecar"
)

// ExtractPalette decodes an image and clusters its pixels into dominant
// colors, ordered by descending area fraction. Each cluster is converted to
// HSL with all components normalized to 0-1 (hue as a fraction of the 360
// degree circle) before caching.
func ExtractPalette(path string) ([]sidecar.Color, error) {
	img, err := LoadImageConstrained(path, MaxImageDimension, MaxImagePixels)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	clusters, err := prominentcolor.KmeansWithArgs(prominentcolor.ArgumentNoCropping, img)
	if err != nil {
		return nil, fmt.Errorf("color clustering failed: %w", err)
	}
	if len(clusters) == 0 {
		return nil, fmt.Errorf("no dominant colors found in %s", path)
	}

	total := 0
	for _, cluster := range clusters {
		total += cluster.Cnt
	}
	if total == 0 {
		return nil, fmt.Errorf("empty pixel clusters for %s", path)
	}

	colors := make([]sidecar.Color, 0, len(clusters))
	for _, cluster := range clusters {
		c := colorful.Color{
			R: float64(cluster.Color.R) / 255.0,
			G: float64(cluster.Color.G) / 255.0,
			B: float64(cluster.Color.B) / 255.0,
		}
		h, s, l := c.Hsl()
		colors = append(colors, sidecar.Color{
			H:    h / 360.0,
			S:    s,
			L:    l,
			Area: float64(cluster.Cnt) / float64(total),
		})
	}
	return colors, nil
}
