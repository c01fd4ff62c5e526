package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"

	"github.com/anime-shed/photo-inspector-go/internal/storage"
	"github.com/anime-shed/photo-inspector-go/pkg/models"
	"github.com/anime-shed/photo-inspector-go/pkg/validation"
)

// SourceImageRepository implements ImageRepository by routing on the location scheme
type SourceImageRepository struct {
	fetcher   storage.ImageFetcher
	blobs     storage.BlobStorage // nil when blob storage is not configured
	validator *validation.URLValidator
}

// NewImageRepository creates an image repository. blobs may be nil.
func NewImageRepository(fetcher storage.ImageFetcher, blobs storage.BlobStorage) ImageRepository {
	schemes := []string{"http", "https"}
	if blobs != nil {
		schemes = append(schemes, storage.BlobScheme)
	}
	return &SourceImageRepository{
		fetcher:   fetcher,
		blobs:     blobs,
		validator: validation.NewURLValidatorWithOptions(schemes, nil),
	}
}

// FetchImage retrieves the bytes behind a location
func (r *SourceImageRepository) FetchImage(ctx context.Context, location string) ([]byte, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageURL, err)
	}

	var data []byte
	switch parsed.Scheme {
	case "http", "https":
		data, err = r.fetcher.FetchImage(ctx, location)
	case storage.BlobScheme:
		if r.blobs == nil {
			return nil, fmt.Errorf("%w: blob storage is not configured", ErrRepositoryUnavailable)
		}
		data, err = r.blobs.GetImage(ctx, location)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidImageURL, parsed.Scheme)
	}

	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrImageNotFound, err)
	}
	return data, err
}

// ValidateImageURL validates if the provided location is acceptable
func (r *SourceImageRepository) ValidateImageURL(location string) error {
	return r.validator.ValidateImageURL(location)
}

// DescribeImage sniffs the content type and format of encoded image bytes
// without decoding the pixels.
func DescribeImage(data []byte) models.ImageMetadata {
	meta := models.ImageMetadata{
		ContentType:   http.DetectContentType(data),
		ContentLength: int64(len(data)),
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		meta.Format = format
	}
	return meta
}
