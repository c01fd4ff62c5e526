package analyzer

import (
	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// Light direction and colour temperature labels
const (
	LightFromLeft   = "left"
	LightFromRight  = "right"
	LightFromTop    = "top"
	LightFromBottom = "bottom"
	LightEven       = "even"

	TemperatureWarm    = "warm"
	TemperatureCool    = "cool"
	TemperatureNeutral = "neutral"
)

// analyzeLighting estimates where the light comes from and how much of the
// frame sits in shadow or clipped highlights.
func analyzeLighting(f *Frame, opts AnalysisOptions) (models.LightingMetrics, []DegenerateInputWarning) {
	var warnings []DegenerateInputWarning
	w, h := f.Width, f.Height
	x1, x2 := w/3, 2*w/3
	y1, y2 := h/3, 2*h/3

	region := func(name string, x0, y0, xe, ye int) float64 {
		pix := f.grayRegion(x0, y0, xe, ye)
		if len(pix) == 0 {
			warnings = append(warnings, DegenerateInputWarning{Pass: PassLighting, Reason: "empty " + name + " region"})
			return 0
		}
		sum := 0
		for _, v := range pix {
			sum += int(v)
		}
		return float64(sum) / float64(len(pix))
	}

	left := region("left", 0, 0, x1, h)
	center := region("center", x1, 0, x2, h)
	right := region("right", x2, 0, w, h)
	top := region("top", 0, 0, w, y1)
	bottom := region("bottom", 0, y2, w, h)

	var direction string
	switch {
	case left > center && left > right:
		direction = LightFromLeft
	case right > center && right > left:
		direction = LightFromRight
	case top > bottom:
		direction = LightFromTop
	case bottom > top:
		direction = LightFromBottom
	default:
		direction = LightEven
	}

	red, blue := f.ChannelMeans[0], f.ChannelMeans[2]
	temperature := TemperatureNeutral
	switch {
	case red > blue+opts.TemperatureMargin:
		temperature = TemperatureWarm
	case blue > red+opts.TemperatureMargin:
		temperature = TemperatureCool
	}

	total := f.PixelCount()
	shadowMask := make([]bool, total)
	var shadows, highlights, clipped int
	for i, v := range f.Gray.Pix[:total] {
		if v < opts.ShadowLevel {
			shadowMask[i] = true
			shadows++
		}
		if v > opts.HighlightLevel {
			highlights++
		}
		if v > opts.ClipLevel {
			clipped++
		}
	}

	shadowPct := percent(shadows, total)
	clippedPct := percent(clipped, total)

	return models.LightingMetrics{
		LightDirection:        direction,
		ColorTemperature:      temperature,
		LeftBrightness:        roundTo(left, 1),
		CenterBrightness:      roundTo(center, 1),
		RightBrightness:       roundTo(right, 1),
		TopBrightness:         roundTo(top, 1),
		BottomBrightness:      roundTo(bottom, 1),
		ShadowPercentage:      roundTo(shadowPct, 1),
		ShadowRegions:         CountRegions(shadowMask, w, h, opts.MinShadowRegionArea),
		HasStrongShadows:      shadowPct > opts.StrongShadowPercent,
		HighlightPercentage:   roundTo(percent(highlights, total), 1),
		OverexposedPercentage: roundTo(clippedPct, 1),
		HasHighlightClipping:  clippedPct > opts.ClippingPercent,
	}, warnings
}
