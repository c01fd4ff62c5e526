package analyzer

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// analyzeColor reports per-channel means. The dominant colour is the mean
// colour vector truncated to integers, not a palette cluster.
func analyzeColor(f *Frame) models.ColorMetrics {
	r, g, b := f.ChannelMeans[0], f.ChannelMeans[1], f.ChannelMeans[2]
	dominant := [3]int{int(r), int(g), int(b)}

	c := colorful.Color{
		R: float64(dominant[0]) / 255,
		G: float64(dominant[1]) / 255,
		B: float64(dominant[2]) / 255,
	}
	hue, sat, light := c.Hsl()

	return models.ColorMetrics{
		RedChannelMean:   roundTo(r, 1),
		GreenChannelMean: roundTo(g, 1),
		BlueChannelMean:  roundTo(b, 1),
		DominantColor:    dominant,
		DominantColorHex: c.Hex(),
		DominantHue:      roundTo(hue, 1),
		DominantSat:      roundTo(sat, 3),
		DominantLight:    roundTo(light, 3),
	}
}
