package analyzer

import (
	"github.com/anthonynsimon/bild/histogram"
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// luminanceLevels is the value axis of a 256-bin histogram.
var luminanceLevels = func() []float64 {
	v := make([]float64, 256)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}()

// analyzeExposure derives brightness statistics from the luminance histogram.
func analyzeExposure(f *Frame, opts AnalysisOptions) models.ExposureMetrics {
	bins := histogram.NewRGBAHistogram(f.Gray).R.Bins

	weights := make([]float64, 256)
	minVal, maxVal, peak := -1, 0, 0
	var shadows, midtones, highlights int
	for v := 0; v < 256 && v < len(bins); v++ {
		c := bins[v]
		weights[v] = float64(c)
		if c == 0 {
			continue
		}
		if minVal < 0 {
			minVal = v
		}
		maxVal = v
		if c > bins[peak] {
			peak = v
		}
		switch {
		case v < opts.ShadowZoneEnd:
			shadows += c
		case v < opts.HighlightZoneStart:
			midtones += c
		default:
			highlights += c
		}
	}
	if minVal < 0 {
		minVal = 0
	}

	mean, std := stat.PopMeanStdDev(luminanceLevels, weights)
	total := f.PixelCount()
	highlightPct := percent(highlights, total)

	return models.ExposureMetrics{
		MeanBrightness:       roundTo(mean, 1),
		StdBrightness:        roundTo(std, 1),
		Contrast:             roundTo(std, 1),
		DynamicRange:         float64(maxVal - minVal),
		MinValue:             minVal,
		MaxValue:             maxVal,
		ShadowsPercentage:    roundTo(percent(shadows, total), 1),
		MidtonesPercentage:   roundTo(percent(midtones, total), 1),
		HighlightsPercentage: roundTo(highlightPct, 1),
		PeakBrightness:       peak,
		IsUnderexposed:       mean < opts.UnderexposedMean,
		IsOverexposed:        mean > opts.OverexposedMean && highlightPct > opts.OverexposedHighlight,
	}
}
