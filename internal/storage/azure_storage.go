package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobScheme is the URL scheme of blob locations: azblob://<container>/<blob path>
const BlobScheme = "azblob"

// BlobStorage downloads encoded image bytes from blob storage
type BlobStorage interface {
	GetImage(ctx context.Context, location string) ([]byte, error)
}

type azureStorage struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureStorage creates a shared-key client for the given storage account
func NewAzureStorage(accountName, accountKey string, maxBytes int64) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	if maxBytes <= 0 {
		maxBytes = DefaultHTTPFetcherOptions().MaxBytes
	}
	return &azureStorage{client: client, maxBytes: maxBytes}, nil
}

func (s *azureStorage) GetImage(ctx context.Context, location string) ([]byte, error) {
	containerName, blobName, err := ParseBlobLocation(location)
	if err != nil {
		return nil, err
	}

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("download failed: %w", errors.Join(ErrNotFound, err))
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}

	if downloadResponse.ContentLength != nil && *downloadResponse.ContentLength > s.maxBytes {
		_ = downloadResponse.Body.Close()
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrImageTooLarge, *downloadResponse.ContentLength, s.maxBytes)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	data, _, err := readLimited(retryReader, s.maxBytes)
	return data, err
}

// ParseBlobLocation splits azblob://container/path/to/blob into its parts.
func ParseBlobLocation(location string) (container, blob string, err error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob location: %w", err)
	}
	if parsed.Scheme != BlobScheme {
		return "", "", fmt.Errorf("invalid blob location %q: scheme must be %s", location, BlobScheme)
	}

	container = parsed.Host
	blob = strings.TrimPrefix(parsed.Path, "/")
	if container == "" || blob == "" {
		return "", "", errors.New("invalid blob location: container and blob name are required")
	}
	return container, blob, nil
}
