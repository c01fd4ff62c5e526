package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	"github.com/anime-shed/photo-inspector-go/internal/config"
	"github.com/anime-shed/photo-inspector-go/internal/factory"
	"github.com/anime-shed/photo-inspector-go/internal/logger"
	"github.com/anime-shed/photo-inspector-go/internal/observer"
	"github.com/anime-shed/photo-inspector-go/internal/repository"
	"github.com/anime-shed/photo-inspector-go/internal/service"
	"github.com/anime-shed/photo-inspector-go/internal/storage"
	"github.com/anime-shed/photo-inspector-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config               *config.Config
	imageFetcher         storage.ImageFetcher
	blobStorage          storage.BlobStorage
	imageAnalyzer        analyzer.ImageAnalyzer
	imageRepository      repository.ImageRepository
	reportRepository     repository.ReportRepository
	events               *observer.EventPublisher
	metrics              *observer.MetricsObserver
	photoAnalysisService service.PhotoAnalysisService
	handler              http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// Build dependency graph
	components := factory.NewComponentFactory(cfg)
	imageFetcher := components.StorageFactory.CreateFetcher()
	blobStorage, err := components.StorageFactory.CreateBlobStorage()
	if err != nil {
		return nil, err
	}

	imageAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	imageRepository := repository.NewImageRepository(imageFetcher, blobStorage)
	reportRepository := repository.NewMemoryReportRepository(cfg.ReportCacheSize)
	photoAnalysisService := service.NewPhotoAnalysisService(
		imageRepository,
		reportRepository,
		imageAnalyzer,
		events,
		service.Settings{
			BatchWorkers:    cfg.BatchWorkers,
			MaxBatchSize:    cfg.MaxBatchSize,
			AnalysisTimeout: cfg.AnalysisTimeout,
		},
	)
	handler := transport.NewHandler(photoAnalysisService, metrics, imageAnalyzer, cfg)

	return &Container{
		config:               cfg,
		imageFetcher:         imageFetcher,
		blobStorage:          blobStorage,
		imageAnalyzer:        imageAnalyzer,
		imageRepository:      imageRepository,
		reportRepository:     reportRepository,
		events:               events,
		metrics:              metrics,
		photoAnalysisService: photoAnalysisService,
		handler:              handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the application service
func (c *Container) Service() service.PhotoAnalysisService {
	return c.photoAnalysisService
}

// Close releases the analyzer's worker pool
func (c *Container) Close() error {
	return c.imageAnalyzer.Close()
}
