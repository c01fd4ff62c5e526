package analyzer

import (
	"errors"
	"fmt"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// Pass names used in warnings and logs
const (
	PassIngestion   = "ingestion"
	PassExposure    = "exposure"
	PassQuality     = "quality"
	PassColor       = "color"
	PassLighting    = "lighting"
	PassComposition = "composition"
)

// DecodeError is returned when the input bytes cannot be turned into a raster
// with a non-zero area. It is the only error Analyze surfaces.
type DecodeError struct {
	Source string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("decode image: %v", e.Cause)
	}
	return fmt.Sprintf("decode image %q: %v", e.Source, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// IsDecodeError reports whether err (or anything it wraps) is a *DecodeError
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

var (
	errEmptyInput = errors.New("empty input")
	errZeroArea   = errors.New("image has zero area")
)

// DegenerateInputWarning records that a sub-region was too small or too flat
// for a metric and a neutral default was used instead.
type DegenerateInputWarning struct {
	Pass   string
	Reason string
}

func (w DegenerateInputWarning) String() string {
	return w.Pass + ": " + w.Reason
}

func (w DegenerateInputWarning) toModel() models.Warning {
	return models.Warning{Pass: w.Pass, Reason: w.Reason}
}
