package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrImageTooLarge is returned when a source is bigger than the configured cap
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrNotFound is returned when the source reports that the object does not exist
	ErrNotFound = errors.New("object not found")
)

// ImageFetcher downloads encoded image bytes
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// HTTPFetcherOptions tunes the HTTP fetcher
type HTTPFetcherOptions struct {
	Timeout  time.Duration
	MaxBytes int64
	Attempts int
	Backoff  time.Duration // multiplied by the attempt number
}

// DefaultHTTPFetcherOptions returns the options used by NewHTTPImageFetcher
func DefaultHTTPFetcherOptions() HTTPFetcherOptions {
	return HTTPFetcherOptions{
		Timeout:  30 * time.Second,
		MaxBytes: 25 * 1024 * 1024,
		Attempts: 3,
		Backoff:  time.Second,
	}
}

// HTTPImageFetcher implements ImageFetcher with retries on transient failures
type HTTPImageFetcher struct {
	client  *http.Client
	options HTTPFetcherOptions
}

// NewHTTPImageFetcher creates an HTTP image fetcher with default options
func NewHTTPImageFetcher() ImageFetcher {
	return NewHTTPImageFetcherWithOptions(DefaultHTTPFetcherOptions())
}

// NewHTTPImageFetcherWithOptions creates an HTTP image fetcher
func NewHTTPImageFetcherWithOptions(opts HTTPFetcherOptions) *HTTPImageFetcher {
	defaults := DefaultHTTPFetcherOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaults.MaxBytes
	}
	if opts.Attempts <= 0 {
		opts.Attempts = defaults.Attempts
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}

	// Connection pooling sized for single image downloads
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		options: opts,
	}
}

func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, image/*")
	req.Header.Set("User-Agent", "Photo-Inspector/1.0")

	var lastErr error
	for attempt := 0; attempt < h.options.Attempts; attempt++ {
		data, retryable, err := h.fetchOnce(req)
		if err == nil {
			return data, nil
		}
		lastErr = err

		// 4xx responses and oversized bodies are not retried
		if !retryable {
			break
		}

		if attempt < h.options.Attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * h.options.Backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", h.options.Attempts, lastErr)
}

// fetchOnce performs a single request and reports whether a failure may be retried.
func (h *HTTPImageFetcher) fetchOnce(req *http.Request) ([]byte, bool, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, req.Context().Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, false, fmt.Errorf("client error: status code %d: %w", resp.StatusCode, ErrNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if resp.ContentLength > h.options.MaxBytes {
		return nil, false, fmt.Errorf("%w: %d > %d bytes", ErrImageTooLarge, resp.ContentLength, h.options.MaxBytes)
	}

	return readLimited(resp.Body, h.options.MaxBytes)
}

// readLimited reads at most limit bytes and fails if the stream is longer.
func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, true, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, false, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, limit)
	}
	return data, false, nil
}
