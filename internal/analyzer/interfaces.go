package analyzer

import (
	"context"
	"image"
)

// ImageAnalyzer defines the main interface for photo analysis
type ImageAnalyzer interface {
	// Analyze decodes encoded image bytes and runs every pass with the analyzer's options.
	Analyze(ctx context.Context, data []byte) (TechnicalReport, error)
	AnalyzeFile(ctx context.Context, path string) (TechnicalReport, error)
	AnalyzeImage(ctx context.Context, img image.Image) (TechnicalReport, error)

	// AnalyzeWithOptions overrides the construction-time thresholds for one call.
	AnalyzeWithOptions(ctx context.Context, data []byte, options AnalysisOptions) (TechnicalReport, error)

	// AnalyzeBatch analyses independent inputs on the worker pool. Results keep input order.
	AnalyzeBatch(ctx context.Context, inputs []BatchInput) []BatchResult

	Options() AnalysisOptions

	// Stats reports the batch worker pool counters
	Stats() PoolStats

	// Lifecycle management
	Close() error
}

// BatchInput is one encoded image of a batch. A nil Options uses the
// analyzer's construction-time thresholds.
type BatchInput struct {
	Source  string
	Data    []byte
	Options *AnalysisOptions
}

// BatchResult pairs a batch input with its report or error
type BatchResult struct {
	Source string
	Report TechnicalReport
	Err    error
}
