package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func testFetcher() *HTTPImageFetcher {
	return NewHTTPImageFetcherWithOptions(HTTPFetcherOptions{
		Timeout:  5 * time.Second,
		MaxBytes: 1024,
		Attempts: 3,
		Backoff:  time.Millisecond,
	})
}

func TestHTTPImageFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectRetries int   // Expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
		},
		{
			name:          "4xx client error - no retry",
			responses:     []int{404},
			expectRetries: 1,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "4xx after 5xx - should retry until 4xx then stop",
			responses:     []int{500, 404},
			expectRetries: 2,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requestCount atomic.Int32
			body := pngBytes(t)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(requestCount.Add(1)) - 1
				if n >= len(tt.responses) {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				if tt.responses[n] == http.StatusOK {
					w.Header().Set("Content-Type", "image/png")
					_, _ = w.Write(body)
					return
				}
				w.WriteHeader(tt.responses[n])
				_, _ = w.Write([]byte(fmt.Sprintf("Error %d", tt.responses[n])))
			}))
			defer server.Close()

			data, err := testFetcher().FetchImage(context.Background(), server.URL)

			assert.Equal(t, int32(tt.expectRetries), requestCount.Load())
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Contains(t, err.Error(), "after 3 attempts")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, body, data)
		})
	}
}

func TestHTTPImageFetcher_NetworkError_Retry(t *testing.T) {
	var requestCount atomic.Int32
	body := pngBytes(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestCount.Add(1) < 3 {
			// Simulate network error by closing connection
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
			}
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	data, err := testFetcher().FetchImage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, body, data)
	assert.Equal(t, int32(3), requestCount.Load())
}

func TestHTTPImageFetcher_SizeLimit(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		_, _ = w.Write(bytes.Repeat([]byte{0xff}, 4096))
	}))
	defer server.Close()

	_, err := testFetcher().FetchImage(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Equal(t, int32(1), requestCount.Load())
}

func TestHTTPImageFetcher_SendsImageAccept(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	_, err := testFetcher().FetchImage(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, accept, "image/")
}

func TestHTTPImageFetcher_CanceledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcherWithOptions(HTTPFetcherOptions{Attempts: 3, Backoff: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := fetcher.FetchImage(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPImageFetcher_InvalidURL(t *testing.T) {
	_, err := testFetcher().FetchImage(context.Background(), "://bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestHTTPImageFetcher_NotFound(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusGone} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		_, err := testFetcher().FetchImage(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrNotFound)
		server.Close()
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := testFetcher().FetchImage(context.Background(), server.URL)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
