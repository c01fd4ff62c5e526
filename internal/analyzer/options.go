package analyzer

import (
	"errors"
	"fmt"
)

// AnalysisOptions is the immutable threshold table an analyzer is built with.
// Modifiers return a copy, so a shared value is never mutated.
type AnalysisOptions struct {
	// Exposure
	ShadowZoneEnd        int     // luminance values below this count as shadows
	HighlightZoneStart   int     // values at or above this count as highlights
	UnderexposedMean     float64 // mean below this is underexposed
	OverexposedMean      float64 // mean above this ...
	OverexposedHighlight float64 // ... with highlights% above this is overexposed

	// Quality
	CannyLow            float64
	CannyHigh           float64
	VerySharpThreshold  float64
	SharpThreshold      float64
	AcceptableThreshold float64

	// Lighting
	TemperatureMargin   float64
	ShadowLevel         uint8 // luminance below this is shadow
	HighlightLevel      uint8 // above this is highlight
	ClipLevel           uint8 // above this is clipped
	MinShadowRegionArea int
	StrongShadowPercent float64
	ClippingPercent     float64

	// Composition
	HoughThreshold     int
	LineAngleTolerance float64 // degrees
	SymmetryThreshold  float64

	// Optional content-aware crop suggestion
	SuggestCrop     bool
	CropAspectRatio float64 // width / height

	// Performance options
	MaxWorkers int
}

// DefaultOptions returns the standard threshold table
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		ShadowZoneEnd:        85,
		HighlightZoneStart:   170,
		UnderexposedMean:     100,
		OverexposedMean:      200,
		OverexposedHighlight: 20,

		CannyLow:            50,
		CannyHigh:           150,
		VerySharpThreshold:  1000,
		SharpThreshold:      500,
		AcceptableThreshold: 200,

		TemperatureMargin:   20,
		ShadowLevel:         80,
		HighlightLevel:      200,
		ClipLevel:           245,
		MinShadowRegionArea: 100,
		StrongShadowPercent: 15,
		ClippingPercent:     5,

		HoughThreshold:     100,
		LineAngleTolerance: 10,
		SymmetryThreshold:  0.7,

		SuggestCrop:     false,
		CropAspectRatio: 1.0,

		MaxWorkers: 0, // Use default CPU count
	}
}

// WithCropSuggestion toggles the smart crop search
func (opts AnalysisOptions) WithCropSuggestion(enabled bool) AnalysisOptions {
	opts.SuggestCrop = enabled
	return opts
}

// WithCropAspectRatio sets the width/height ratio of suggested crops
func (opts AnalysisOptions) WithCropAspectRatio(ratio float64) AnalysisOptions {
	opts.CropAspectRatio = ratio
	return opts
}

// WithCannyThresholds sets the hysteresis thresholds of the edge detector
func (opts AnalysisOptions) WithCannyThresholds(low, high float64) AnalysisOptions {
	opts.CannyLow = low
	opts.CannyHigh = high
	return opts
}

// WithSharpnessThresholds sets the Laplacian variance cut-offs for the sharpness label
func (opts AnalysisOptions) WithSharpnessThresholds(verySharp, sharp, acceptable float64) AnalysisOptions {
	opts.VerySharpThreshold = verySharp
	opts.SharpThreshold = sharp
	opts.AcceptableThreshold = acceptable
	return opts
}

// WithHoughThreshold sets the minimum number of votes a line needs
func (opts AnalysisOptions) WithHoughThreshold(votes int) AnalysisOptions {
	opts.HoughThreshold = votes
	return opts
}

// WithSymmetryThreshold sets the correlation above which an image counts as symmetric
func (opts AnalysisOptions) WithSymmetryThreshold(threshold float64) AnalysisOptions {
	opts.SymmetryThreshold = threshold
	return opts
}

// WithMaxWorkers bounds the batch worker pool
func (opts AnalysisOptions) WithMaxWorkers(n int) AnalysisOptions {
	opts.MaxWorkers = n
	return opts
}

// Validate checks that the thresholds are internally consistent.
func (opts AnalysisOptions) Validate() error {
	var errs []error
	if opts.ShadowZoneEnd < 1 || opts.ShadowZoneEnd > opts.HighlightZoneStart || opts.HighlightZoneStart > 255 {
		errs = append(errs, fmt.Errorf("exposure zones must satisfy 1 <= %d <= %d <= 255", opts.ShadowZoneEnd, opts.HighlightZoneStart))
	}
	if opts.CannyLow < 0 || opts.CannyHigh < opts.CannyLow {
		errs = append(errs, fmt.Errorf("canny thresholds must satisfy 0 <= low (%g) <= high (%g)", opts.CannyLow, opts.CannyHigh))
	}
	if !(opts.VerySharpThreshold >= opts.SharpThreshold && opts.SharpThreshold >= opts.AcceptableThreshold && opts.AcceptableThreshold >= 0) {
		errs = append(errs, errors.New("sharpness thresholds must be descending and non-negative"))
	}
	if opts.ShadowLevel > opts.HighlightLevel || opts.HighlightLevel > opts.ClipLevel {
		errs = append(errs, errors.New("lighting levels must satisfy shadow <= highlight <= clip"))
	}
	if opts.MinShadowRegionArea < 0 {
		errs = append(errs, errors.New("minimum shadow region area must not be negative"))
	}
	if opts.HoughThreshold < 1 {
		errs = append(errs, errors.New("hough threshold must be positive"))
	}
	if opts.LineAngleTolerance < 0 || opts.LineAngleTolerance >= 45 {
		errs = append(errs, fmt.Errorf("line angle tolerance %g must be in [0, 45)", opts.LineAngleTolerance))
	}
	if opts.SymmetryThreshold < -1 || opts.SymmetryThreshold > 1 {
		errs = append(errs, fmt.Errorf("symmetry threshold %g must be in [-1, 1]", opts.SymmetryThreshold))
	}
	if opts.SuggestCrop && opts.CropAspectRatio <= 0 {
		errs = append(errs, errors.New("crop aspect ratio must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid analysis options: %w", errors.Join(errs...))
	}
	return nil
}
