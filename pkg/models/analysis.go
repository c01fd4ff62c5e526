package models

import "time"

// TechnicalReport is the immutable result of analysing one photograph.
// Every numeric field is finite so the value survives a JSON round trip unchanged.
type TechnicalReport struct {
	BasicInfo   BasicInfo          `json:"basic_info"`
	Exposure    ExposureMetrics    `json:"exposure"`
	Quality     QualityMetrics     `json:"quality"`
	Colors      ColorMetrics       `json:"colors"`
	Lighting    LightingMetrics    `json:"lighting"`
	Composition CompositionMetrics `json:"composition"`

	// Warnings lists sub-regions that were degenerate and replaced by neutral defaults.
	Warnings []Warning `json:"warnings,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// BasicInfo describes the decoded raster geometry.
type BasicInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Channels    int     `json:"channels"`
	AspectRatio float64 `json:"aspect_ratio"`
	TotalPixels int     `json:"total_pixels"`
}

// ExposureMetrics holds histogram-derived brightness statistics (0-255 scale).
type ExposureMetrics struct {
	MeanBrightness       float64 `json:"mean_brightness"`
	StdBrightness        float64 `json:"std_brightness"`
	Contrast             float64 `json:"contrast"`
	DynamicRange         float64 `json:"dynamic_range"`
	MinValue             int     `json:"min_value"`
	MaxValue             int     `json:"max_value"`
	ShadowsPercentage    float64 `json:"shadows_percentage"`
	MidtonesPercentage   float64 `json:"midtones_percentage"`
	HighlightsPercentage float64 `json:"highlights_percentage"`
	PeakBrightness       int     `json:"peak_brightness"`
	IsUnderexposed       bool    `json:"is_underexposed"`
	IsOverexposed        bool    `json:"is_overexposed"`
}

// QualityMetrics carries the two sharpness signals and the noise estimate.
// BlurScore and SharpnessScore are computed independently and may disagree.
type QualityMetrics struct {
	EdgeDensity    float64 `json:"edge_density"`
	BlurScore      float64 `json:"blur_score"`
	NoiseLevel     float64 `json:"noise_level"`
	SharpnessScore float64 `json:"sharpness_score"`
	SharpnessLevel string  `json:"sharpness_level"`
}

// ColorMetrics holds per-channel means. DominantColor is the mean colour vector,
// not a clustered palette entry.
type ColorMetrics struct {
	RedChannelMean   float64 `json:"red_channel_mean"`
	GreenChannelMean float64 `json:"green_channel_mean"`
	BlueChannelMean  float64 `json:"blue_channel_mean"`
	DominantColor    [3]int  `json:"dominant_color_rgb"`
	DominantColorHex string  `json:"dominant_color_hex"`
	DominantHue      float64 `json:"dominant_hue"`
	DominantSat      float64 `json:"dominant_saturation"`
	DominantLight    float64 `json:"dominant_lightness"`
}

// LightingMetrics describes light direction, temperature and shadow/highlight coverage.
type LightingMetrics struct {
	LightDirection        string  `json:"light_direction"`
	ColorTemperature      string  `json:"color_temperature"`
	LeftBrightness        float64 `json:"left_brightness"`
	CenterBrightness      float64 `json:"center_brightness"`
	RightBrightness       float64 `json:"right_brightness"`
	TopBrightness         float64 `json:"top_brightness"`
	BottomBrightness      float64 `json:"bottom_brightness"`
	ShadowPercentage      float64 `json:"shadow_percentage"`
	ShadowRegions         int     `json:"shadow_regions"`
	HasStrongShadows      bool    `json:"has_strong_shadows"`
	HighlightPercentage   float64 `json:"highlight_percentage"`
	OverexposedPercentage float64 `json:"overexposed_percentage"`
	HasHighlightClipping  bool    `json:"has_highlight_clipping"`
}

// CompositionMetrics describes the visual centre of mass, activity layout,
// straight lines and bilateral symmetry.
type CompositionMetrics struct {
	VisualCenter       Point     `json:"visual_center"`
	ImageCenter        Point     `json:"image_center"`
	CenterOffset       Point     `json:"center_offset"`
	MainSubjectArea    string    `json:"main_subject_area"`
	MostActiveRegion   string    `json:"most_active_region"`
	MostActiveDensity  float64   `json:"most_active_density"`
	HorizontalLines    int       `json:"horizontal_lines"`
	VerticalLines      int       `json:"vertical_lines"`
	HasHorizon         bool      `json:"has_horizon"`
	HorizontalSymmetry float64   `json:"horizontal_symmetry"`
	VerticalSymmetry   float64   `json:"vertical_symmetry"`
	IsSymmetric        bool      `json:"is_symmetric"`
	SuggestedCrop      *CropRect `json:"suggested_crop,omitempty"`
}

// Point is a position in continuous pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CropRect is a pixel rectangle; (X, Y) is the top-left corner.
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Warning records a degenerate input recovered with a neutral default.
type Warning struct {
	Pass   string `json:"pass"`
	Reason string `json:"reason"`
}

// QualityIssue is a rule-based observation derived from a report.
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// ImageMetadata contains metadata about a fetched image
type ImageMetadata struct {
	ContentType   string `json:"content_type,omitempty"`
	ContentLength int64  `json:"content_length"`
	Format        string `json:"format,omitempty"`
}
