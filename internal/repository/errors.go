package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrImageNotFound indicates the source has no image at the location
	ErrImageNotFound = errors.New("image not found")

	// ErrAnalysisNotFound indicates no stored report has the requested ID
	ErrAnalysisNotFound = errors.New("report not found")

	// ErrRepositoryUnavailable indicates the backend for a location is not configured
	ErrRepositoryUnavailable = errors.New("image source unavailable")
)
