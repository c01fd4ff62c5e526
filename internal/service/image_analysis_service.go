package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"
	"github.com/anime-shed/photo-inspector-go/internal/observer"
	"github.com/anime-shed/photo-inspector-go/internal/repository"
	"github.com/anime-shed/photo-inspector-go/internal/storage"
	"github.com/anime-shed/photo-inspector-go/pkg/models"
	"github.com/anime-shed/photo-inspector-go/pkg/validation"
)

// RequestOptions are the per-request switches a client may set
type RequestOptions struct {
	SuggestCrop bool
}

// PhotoAnalysisService defines the application operations exposed over HTTP
type PhotoAnalysisService interface {
	AnalyzeURL(ctx context.Context, imageURL string, opts RequestOptions) (*models.AnalysisResponse, error)
	AnalyzeUpload(ctx context.Context, data []byte, name string, opts RequestOptions) (*models.AnalysisResponse, error)
	AnalyzeBatch(ctx context.Context, imageURLs []string, opts RequestOptions) (*models.BatchAnalysisResponse, error)

	GetReport(ctx context.Context, id string) (*models.AnalysisResponse, error)
	GetHistory(ctx context.Context, source string) ([]*models.AnalysisResponse, error)

	// Common validation
	ValidateImageURL(imageURL string) error
}

// Settings bounds the work a single request may cause
type Settings struct {
	BatchWorkers    int
	MaxBatchSize    int
	AnalysisTimeout time.Duration
}

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		BatchWorkers:    4,
		MaxBatchSize:    16,
		AnalysisTimeout: 20 * time.Second,
	}
}

// photoAnalysisService implements PhotoAnalysisService
type photoAnalysisService struct {
	imageRepo repository.ImageRepository
	reports   repository.ReportRepository
	analyzer  analyzer.ImageAnalyzer
	guidance  *validation.QualityValidator
	events    observer.Subject
	settings  Settings
}

// NewPhotoAnalysisService creates a new photo analysis service
func NewPhotoAnalysisService(
	imageRepository repository.ImageRepository,
	reportRepository repository.ReportRepository,
	imageAnalyzer analyzer.ImageAnalyzer,
	events observer.Subject,
	settings Settings,
) PhotoAnalysisService {
	defaults := DefaultSettings()
	if settings.BatchWorkers <= 0 {
		settings.BatchWorkers = defaults.BatchWorkers
	}
	if settings.MaxBatchSize <= 0 {
		settings.MaxBatchSize = defaults.MaxBatchSize
	}
	if settings.AnalysisTimeout <= 0 {
		settings.AnalysisTimeout = defaults.AnalysisTimeout
	}

	return &photoAnalysisService{
		imageRepo: imageRepository,
		reports:   reportRepository,
		analyzer:  imageAnalyzer,
		guidance:  validation.NewQualityValidator(),
		events:    events,
		settings:  settings,
	}
}

// AnalyzeURL fetches and analyses one remote image
func (s *photoAnalysisService) AnalyzeURL(ctx context.Context, imageURL string, opts RequestOptions) (*models.AnalysisResponse, error) {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: imageURL})

	if err := s.ValidateImageURL(imageURL); err != nil {
		return nil, s.fail(ctx, imageURL, start, apperrors.NewValidationError("invalid image URL", err))
	}

	data, err := s.fetch(ctx, imageURL)
	if err != nil {
		return nil, s.fail(ctx, imageURL, start, err)
	}

	return s.analyze(ctx, imageURL, data, opts, start)
}

// AnalyzeUpload analyses image bytes sent by the client
func (s *photoAnalysisService) AnalyzeUpload(ctx context.Context, data []byte, name string, opts RequestOptions) (*models.AnalysisResponse, error) {
	start := time.Now()
	source := "upload:" + name
	s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: source})

	if len(data) == 0 {
		return nil, s.fail(ctx, source, start, apperrors.NewValidationError("uploaded image is empty", nil))
	}

	return s.analyze(ctx, source, data, opts, start)
}

// AnalyzeBatch fetches the images with bounded concurrency, analyses the
// fetched ones on the analyzer's worker pool and reports every item in input order.
func (s *photoAnalysisService) AnalyzeBatch(ctx context.Context, imageURLs []string, opts RequestOptions) (*models.BatchAnalysisResponse, error) {
	start := time.Now()
	if len(imageURLs) == 0 {
		return nil, apperrors.NewValidationError("at least one URL is required", nil)
	}
	if len(imageURLs) > s.settings.MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("batch of %d exceeds the limit of %d images", len(imageURLs), s.settings.MaxBatchSize), nil)
	}

	items := make([]models.BatchItemResult, len(imageURLs))
	payloads := make([][]byte, len(imageURLs))

	var g errgroup.Group
	g.SetLimit(s.settings.BatchWorkers)
	for i, imageURL := range imageURLs {
		items[i].Source = imageURL
		s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: imageURL})

		if err := s.ValidateImageURL(imageURL); err != nil {
			items[i].Error = s.fail(ctx, imageURL, start, apperrors.NewValidationError("invalid image URL", err)).Error()
			continue
		}

		g.Go(func() error {
			data, err := s.fetch(ctx, imageURL)
			if err != nil {
				items[i].Error = s.fail(ctx, imageURL, start, err).Error()
				return nil
			}
			payloads[i] = data
			return nil
		})
	}
	_ = g.Wait()

	options := s.analysisOptions(opts)
	var (
		inputs  []analyzer.BatchInput
		indexes []int
	)
	for i, data := range payloads {
		if data == nil {
			continue
		}
		inputs = append(inputs, analyzer.BatchInput{Source: imageURLs[i], Data: data, Options: &options})
		indexes = append(indexes, i)
	}

	actx, cancel := context.WithTimeout(ctx, s.settings.AnalysisTimeout)
	defer cancel()

	for k, result := range s.analyzer.AnalyzeBatch(actx, inputs) {
		i := indexes[k]
		if result.Err != nil {
			items[i].Error = s.fail(ctx, result.Source, start, classifyAnalysisError(result.Err)).Error()
			continue
		}
		response, err := s.finish(ctx, result.Source, inputs[k].Data, result.Report, start)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		items[i].Response = response
	}

	batch := &models.BatchAnalysisResponse{
		Results:           items,
		ProcessingTimeSec: seconds(time.Since(start)),
	}
	for _, item := range items {
		if item.Response != nil {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}
	return batch, nil
}

// GetReport retrieves a stored analysis response
func (s *photoAnalysisService) GetReport(ctx context.Context, id string) (*models.AnalysisResponse, error) {
	stored, err := s.reports.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAnalysisNotFound) {
			return nil, apperrors.NewNotFoundError("report not found", err)
		}
		return nil, apperrors.NewInternalError("failed to load report", err)
	}
	return &stored.Response, nil
}

// GetHistory lists the stored responses for a source, oldest first
func (s *photoAnalysisService) GetHistory(ctx context.Context, source string) ([]*models.AnalysisResponse, error) {
	stored, err := s.reports.History(ctx, source)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load report history", err)
	}
	responses := make([]*models.AnalysisResponse, 0, len(stored))
	for _, r := range stored {
		responses = append(responses, &r.Response)
	}
	return responses, nil
}

// ValidateImageURL validates the image URL
func (s *photoAnalysisService) ValidateImageURL(imageURL string) error {
	return s.imageRepo.ValidateImageURL(imageURL)
}

func (s *photoAnalysisService) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	data, err := s.imageRepo.FetchImage(ctx, imageURL)
	if err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:    observer.ImageFetchFailed,
			Source:       imageURL,
			ErrorMessage: err.Error(),
		})
		return nil, classifyFetchError(err)
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType: observer.ImageFetched,
		Source:    imageURL,
		Success:   true,
		Metadata:  map[string]interface{}{observer.MetaBytes: len(data)},
	})
	return data, nil
}

func (s *photoAnalysisService) analyze(ctx context.Context, source string, data []byte, opts RequestOptions, start time.Time) (*models.AnalysisResponse, error) {
	actx, cancel := context.WithTimeout(ctx, s.settings.AnalysisTimeout)
	defer cancel()

	report, err := s.analyzer.AnalyzeWithOptions(actx, data, s.analysisOptions(opts))
	if err != nil {
		return nil, s.fail(ctx, source, start, classifyAnalysisError(err))
	}
	return s.finish(ctx, source, data, report, start)
}

func (s *photoAnalysisService) analysisOptions(opts RequestOptions) analyzer.AnalysisOptions {
	return s.analyzer.Options().WithCropSuggestion(opts.SuggestCrop)
}

// finish derives guidance, stores the response and publishes completion
func (s *photoAnalysisService) finish(ctx context.Context, source string, data []byte, report models.TechnicalReport, start time.Time) (*models.AnalysisResponse, error) {
	issues := s.guidance.ValidateReport(report)
	if issues == nil {
		issues = []models.QualityIssue{}
	}

	response := models.AnalysisResponse{
		Source:            source,
		ProcessingTimeSec: seconds(time.Since(start)),
		Metadata:          repository.DescribeImage(data),
		Report:            report,
		Issues:            issues,
		Suggestions:       s.guidance.ConvertIssuesToMessages(issues),
	}

	stored := &repository.StoredReport{Source: source, Response: response}
	if _, err := s.reports.Save(ctx, stored); err != nil {
		return nil, s.fail(ctx, source, start, apperrors.NewInternalError("failed to store report", err))
	}

	metadata := map[string]interface{}{"report_id": stored.ID, "issues": len(issues)}
	metadata[observer.MetaWarnings] = len(report.Warnings)
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Source:         source,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       metadata,
	})
	return &stored.Response, nil
}

// fail publishes a failure event and returns err unchanged
func (s *photoAnalysisService) fail(ctx context.Context, source string, start time.Time, err error) error {
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		Source:         source,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
	return err
}

func (s *photoAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}

func classifyFetchError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("timed out fetching image", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewValidationError("image exceeds the size limit", err)
	case errors.Is(err, repository.ErrInvalidImageURL):
		return apperrors.NewValidationError("invalid image URL", err)
	case errors.Is(err, repository.ErrImageNotFound):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, repository.ErrRepositoryUnavailable):
		return apperrors.NewValidationError("image source is not configured", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func classifyAnalysisError(err error) error {
	switch {
	case analyzer.IsDecodeError(err):
		return apperrors.NewDecodeError("image could not be decoded", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image analysis timed out", err)
	case errors.Is(err, analyzer.ErrAnalyzerClosed):
		return apperrors.NewInternalError("analyzer is shutting down", err)
	default:
		return apperrors.NewProcessingError("image analysis failed", err)
	}
}

func seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
