package repository

import (
	"context"
	"time"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves encoded image bytes from an http(s) URL or an azblob:// location
	FetchImage(ctx context.Context, location string) ([]byte, error)

	// ValidateImageURL validates if the provided location is acceptable
	ValidateImageURL(location string) error
}

// ReportRepository defines the interface for stored analysis responses
type ReportRepository interface {
	// Save stores a response, assigns it an ID and returns that ID
	Save(ctx context.Context, report *StoredReport) (string, error)

	// Get retrieves a stored response by ID
	Get(ctx context.Context, id string) (*StoredReport, error)

	// History retrieves the stored responses for a source, oldest first
	History(ctx context.Context, source string) ([]*StoredReport, error)
}

// StoredReport is an analysis response kept for later retrieval
type StoredReport struct {
	ID        string                  `json:"id"`
	Source    string                  `json:"source"`
	CreatedAt time.Time               `json:"created_at"`
	Response  models.AnalysisResponse `json:"response"`
}
