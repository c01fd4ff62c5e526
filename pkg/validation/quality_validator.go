package validation

import (
	"fmt"
	"math"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// Issue severities
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// GuidanceThresholds defines configurable thresholds for report guidance
type GuidanceThresholds struct {
	// Exposure
	MaxShadowsPercentage float64

	// Composition
	MaxHorizontalOffset float64 // pixels
	OffsetStepPixels    float64 // one suggested step per this many pixels

	// Quality
	MaxNoiseLevel float64

	// Contrast (brightness standard deviation)
	MinContrast float64
	MaxContrast float64
}

// DefaultGuidanceThresholds returns the default guidance thresholds
func DefaultGuidanceThresholds() GuidanceThresholds {
	return GuidanceThresholds{
		MaxShadowsPercentage: 30,
		MaxHorizontalOffset:  50,
		OffsetStepPixels:     20,
		MaxNoiseLevel:        10,
		MinContrast:          30,
		MaxContrast:          80,
	}
}

// QualityValidator turns a technical report into photographer guidance
type QualityValidator struct {
	thresholds GuidanceThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultGuidanceThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds GuidanceThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// ValidateReport applies the guidance rules to a report. Issues are ordered
// exposure, composition, quality, lighting.
func (qv *QualityValidator) ValidateReport(report models.TechnicalReport) []models.QualityIssue {
	var issues []models.QualityIssue

	// 1. Exposure
	exposure := report.Exposure
	if exposure.IsUnderexposed {
		issues = append(issues, models.QualityIssue{
			Type:        "underexposure",
			Message:     "Not enough light. Find a brighter spot or switch on night mode.",
			Severity:    SeverityError,
			ActualValue: exposure.MeanBrightness,
		})
	} else if exposure.IsOverexposed {
		issues = append(issues, models.QualityIssue{
			Type:        "overexposure",
			Message:     "Image is too bright. Lower the exposure or move into shade.",
			Severity:    SeverityError,
			ActualValue: exposure.MeanBrightness,
		})
	}
	if exposure.ShadowsPercentage > qv.thresholds.MaxShadowsPercentage {
		issues = append(issues, models.QualityIssue{
			Type:        "heavy_shadows",
			Message:     "Too much of the frame is in shadow. Change the angle or add light.",
			Severity:    SeverityWarning,
			ActualValue: exposure.ShadowsPercentage,
			Threshold:   qv.thresholds.MaxShadowsPercentage,
		})
	}

	// 2. Composition
	composition := report.Composition
	if composition.MainSubjectArea == "middle_center" {
		issues = append(issues, models.QualityIssue{
			Type:     "centered_subject",
			Message:  "Subject is centred. Try the rule of thirds for a more dynamic shot.",
			Severity: SeverityInfo,
		})
	}
	if offset := composition.CenterOffset.X; math.Abs(offset) > qv.thresholds.MaxHorizontalOffset {
		side := "left"
		if offset > 0 {
			side = "right"
		}
		steps := int(math.Abs(offset) / qv.thresholds.OffsetStepPixels)
		issues = append(issues, models.QualityIssue{
			Type:        "off_center",
			Message:     fmt.Sprintf("Subject sits %s of centre. Move %d steps to the %s.", side, steps, side),
			Severity:    SeverityInfo,
			ActualValue: offset,
			Threshold:   qv.thresholds.MaxHorizontalOffset,
		})
	}

	// 3. Sharpness and noise
	quality := report.Quality
	if quality.SharpnessLevel == "blurry" {
		issues = append(issues, models.QualityIssue{
			Type:        "blurriness",
			Message:     "Image is blurry. Hold the phone steady or check the focus.",
			Severity:    SeverityError,
			ActualValue: quality.SharpnessScore,
		})
	} else if quality.NoiseLevel > qv.thresholds.MaxNoiseLevel {
		issues = append(issues, models.QualityIssue{
			Type:        "noise",
			Message:     "Image is noisy. Shoot in better light.",
			Severity:    SeverityWarning,
			ActualValue: quality.NoiseLevel,
			Threshold:   qv.thresholds.MaxNoiseLevel,
		})
	}

	// 4. Contrast
	if exposure.Contrast < qv.thresholds.MinContrast {
		issues = append(issues, models.QualityIssue{
			Type:        "low_contrast",
			Message:     "Image looks flat. Look for light that separates subject and background.",
			Severity:    SeverityWarning,
			ActualValue: exposure.Contrast,
			Threshold:   qv.thresholds.MinContrast,
		})
	} else if exposure.Contrast > qv.thresholds.MaxContrast {
		issues = append(issues, models.QualityIssue{
			Type:        "high_contrast",
			Message:     "Contrast is harsh. Soften the light or use fill light.",
			Severity:    SeverityWarning,
			ActualValue: exposure.Contrast,
			Threshold:   qv.thresholds.MaxContrast,
		})
	}

	// 5. Lighting
	lighting := report.Lighting
	if lighting.LightDirection == "top" || lighting.LightDirection == "bottom" {
		issues = append(issues, models.QualityIssue{
			Type:     "light_angle",
			Message:  "Light comes from the " + lighting.LightDirection + ". Try side lighting instead.",
			Severity: SeverityWarning,
		})
	}
	switch lighting.ColorTemperature {
	case "warm":
		issues = append(issues, models.QualityIssue{
			Type:     "warm_light",
			Message:  "Light is warm. Adjust white balance if the colours look orange.",
			Severity: SeverityInfo,
		})
	case "cool":
		issues = append(issues, models.QualityIssue{
			Type:     "cool_light",
			Message:  "Light is cool. Adjust white balance if the colours look blue.",
			Severity: SeverityInfo,
		})
	}

	return issues
}

// ConvertIssuesToMessages converts quality issues to plain suggestion strings
func (qv *QualityValidator) ConvertIssuesToMessages(issues []models.QualityIssue) []string {
	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []models.QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
