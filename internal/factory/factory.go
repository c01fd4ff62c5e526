package factory

import (
	"fmt"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	"github.com/anime-shed/photo-inspector-go/internal/config"
	"github.com/anime-shed/photo-inspector-go/internal/storage"
)

// StorageType represents different types of image sources
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// AnalyzerFactory creates image analyzers
type AnalyzerFactory interface {
	CreateAnalyzer() (analyzer.ImageAnalyzer, error)
}

// StorageFactory creates image sources
type StorageFactory interface {
	CreateFetcher() storage.ImageFetcher
	CreateBlobStorage() (storage.BlobStorage, error)
	Enabled(storageType StorageType) bool
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	options analyzer.AnalysisOptions
}

// NewAnalyzerFactory creates an analyzer factory whose worker pool is sized from the config
func NewAnalyzerFactory(cfg *config.Config) AnalyzerFactory {
	return &analyzerFactory{
		options: analyzer.DefaultOptions().WithMaxWorkers(cfg.BatchWorkers),
	}
}

// CreateAnalyzer creates an analyzer with the default threshold table
func (f *analyzerFactory) CreateAnalyzer() (analyzer.ImageAnalyzer, error) {
	return analyzer.NewImageAnalyzer(f.options)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateFetcher creates the HTTP fetcher with the configured timeout and size cap
func (f *storageFactory) CreateFetcher() storage.ImageFetcher {
	opts := storage.DefaultHTTPFetcherOptions()
	if f.cfg.ImageFetchTimeout > 0 {
		opts.Timeout = f.cfg.ImageFetchTimeout
	}
	if f.cfg.MaxImageBytes > 0 {
		opts.MaxBytes = f.cfg.MaxImageBytes
	}
	return storage.NewHTTPImageFetcherWithOptions(opts)
}

// CreateBlobStorage creates the blob client, or returns nil when no
// credentials are configured
func (f *storageFactory) CreateBlobStorage() (storage.BlobStorage, error) {
	if !f.Enabled(AzureStorage) {
		return nil, nil
	}
	blobs, err := storage.NewAzureStorage(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.cfg.MaxImageBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	return blobs, nil
}

// Enabled reports whether a source type is available with the current config
func (f *storageFactory) Enabled(storageType StorageType) bool {
	switch storageType {
	case HTTPStorage:
		return true
	case AzureStorage:
		return f.cfg.AzureEnabled()
	default:
		return false
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(cfg),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
