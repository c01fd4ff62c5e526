package analyzer

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/anime-shed/photo-inspector-go/internal/logger"
	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// ErrAnalyzerClosed is reported for batch items submitted after Close
var ErrAnalyzerClosed = errors.New("analyzer is closed")

// coreAnalyzer implements ImageAnalyzer and fans the passes out over one shared frame
type coreAnalyzer struct {
	options    AnalysisOptions
	workerPool *WorkerPool
}

// NewImageAnalyzer creates an analyzer bound to an immutable threshold table
func NewImageAnalyzer(options AnalysisOptions) (ImageAnalyzer, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	workerPool := NewWorkerPool(options.MaxWorkers)
	workerPool.Start()

	return &coreAnalyzer{
		options:    options,
		workerPool: workerPool,
	}, nil
}

func (ca *coreAnalyzer) Options() AnalysisOptions {
	return ca.options
}

func (ca *coreAnalyzer) Stats() PoolStats {
	return ca.workerPool.GetStats()
}

// Analyze decodes and analyses encoded image bytes
func (ca *coreAnalyzer) Analyze(ctx context.Context, data []byte) (TechnicalReport, error) {
	return ca.analyzeBytes(ctx, data, "", ca.options)
}

// AnalyzeWithOptions analyses image bytes with a per-call threshold table
func (ca *coreAnalyzer) AnalyzeWithOptions(ctx context.Context, data []byte, options AnalysisOptions) (TechnicalReport, error) {
	if err := options.Validate(); err != nil {
		return TechnicalReport{}, err
	}
	return ca.analyzeBytes(ctx, data, "", options)
}

// AnalyzeFile reads, decodes and analyses an image file
func (ca *coreAnalyzer) AnalyzeFile(ctx context.Context, path string) (TechnicalReport, error) {
	frame, err := loadFrame(path)
	if err != nil {
		return TechnicalReport{}, err
	}
	return ca.analyzeFrame(ctx, frame, ca.options)
}

// AnalyzeImage analyses an already decoded image. No orientation correction is applied.
func (ca *coreAnalyzer) AnalyzeImage(ctx context.Context, img image.Image) (TechnicalReport, error) {
	frame, err := newFrame(img, "")
	if err != nil {
		return TechnicalReport{}, err
	}
	return ca.analyzeFrame(ctx, frame, ca.options)
}

// AnalyzeBatch runs each input as one job on the worker pool
func (ca *coreAnalyzer) AnalyzeBatch(ctx context.Context, inputs []BatchInput) []BatchResult {
	results := make([]BatchResult, len(inputs))
	var wg sync.WaitGroup

	for i, in := range inputs {
		results[i].Source = in.Source
		options := ca.options
		if in.Options != nil {
			if err := in.Options.Validate(); err != nil {
				results[i].Err = err
				continue
			}
			options = *in.Options
		}

		wg.Add(1)
		submitted := ca.workerPool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Report, results[i].Err = ca.analyzeBytes(ctx, in.Data, in.Source, options)
		})
		if !submitted {
			results[i].Err = ErrAnalyzerClosed
			wg.Done()
		}
	}

	wg.Wait()
	return results
}

func (ca *coreAnalyzer) analyzeBytes(ctx context.Context, data []byte, source string, options AnalysisOptions) (TechnicalReport, error) {
	frame, err := decodeFrame(data, source)
	if err != nil {
		return TechnicalReport{}, err
	}
	return ca.analyzeFrame(ctx, frame, options)
}

// analyzeFrame runs the five passes concurrently and joins their results.
func (ca *coreAnalyzer) analyzeFrame(ctx context.Context, frame *Frame, options AnalysisOptions) (TechnicalReport, error) {
	if err := ctx.Err(); err != nil {
		return TechnicalReport{}, err
	}
	start := time.Now()

	var (
		exposure    models.ExposureMetrics
		quality     models.QualityMetrics
		colors      models.ColorMetrics
		lighting    models.LightingMetrics
		composition models.CompositionMetrics

		qualityWarnings, lightingWarnings, compositionWarnings []DegenerateInputWarning
		cropWarning                                            *DegenerateInputWarning
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		exposure = analyzeExposure(frame, options)
		return nil
	})
	g.Go(func() error {
		quality, qualityWarnings = analyzeQuality(frame, options)
		return nil
	})
	g.Go(func() error {
		colors = analyzeColor(frame)
		return nil
	})
	g.Go(func() error {
		lighting, lightingWarnings = analyzeLighting(frame, options)
		return nil
	})
	g.Go(func() error {
		composition, compositionWarnings = analyzeComposition(frame, options)
		if !options.SuggestCrop {
			return nil
		}
		crop, err := suggestCrop(gctx, frame, options.CropAspectRatio)
		if err != nil {
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			cropWarning = &DegenerateInputWarning{Pass: PassComposition, Reason: err.Error()}
			return nil
		}
		composition.SuggestedCrop = crop
		return nil
	})
	if err := g.Wait(); err != nil {
		return TechnicalReport{}, err
	}

	var warnings []DegenerateInputWarning
	warnings = append(warnings, qualityWarnings...)
	warnings = append(warnings, lightingWarnings...)
	warnings = append(warnings, compositionWarnings...)
	if cropWarning != nil {
		warnings = append(warnings, *cropWarning)
	}

	report := TechnicalReport{
		BasicInfo: models.BasicInfo{
			Width:       frame.Width,
			Height:      frame.Height,
			Channels:    3,
			AspectRatio: roundTo(float64(frame.Width)/float64(frame.Height), 2),
			TotalPixels: frame.PixelCount(),
		},
		Exposure:    exposure,
		Quality:     quality,
		Colors:      colors,
		Lighting:    lighting,
		Composition: composition,
		Timestamp:   time.Now().UTC(),
	}
	for _, w := range warnings {
		logger.WithFields(logrus.Fields{
			"pass":   w.Pass,
			"reason": w.Reason,
		}).Debug("Degenerate input replaced by neutral default")
		report.Warnings = append(report.Warnings, w.toModel())
	}

	logger.WithFields(logrus.Fields{
		"width":       frame.Width,
		"height":      frame.Height,
		"warnings":    len(warnings),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Image analysis completed")

	return report, nil
}

// Close shuts down the batch worker pool
func (ca *coreAnalyzer) Close() error {
	ca.workerPool.Close()
	return nil
}
