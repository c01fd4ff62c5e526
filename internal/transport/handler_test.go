package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	"github.com/anime-shed/photo-inspector-go/internal/config"
	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"
	"github.com/anime-shed/photo-inspector-go/internal/observer"
	"github.com/anime-shed/photo-inspector-go/internal/service"
	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

type stubService struct {
	lastURL    string
	lastOpts   service.RequestOptions
	lastUpload []byte
	lastName   string
	err        error
}

func (s *stubService) AnalyzeURL(_ context.Context, imageURL string, opts service.RequestOptions) (*models.AnalysisResponse, error) {
	s.lastURL, s.lastOpts = imageURL, opts
	if s.err != nil {
		return nil, s.err
	}
	return &models.AnalysisResponse{ID: "id-1", Source: imageURL}, nil
}

func (s *stubService) AnalyzeUpload(_ context.Context, data []byte, name string, opts service.RequestOptions) (*models.AnalysisResponse, error) {
	s.lastUpload, s.lastName, s.lastOpts = data, name, opts
	return &models.AnalysisResponse{ID: "id-2", Source: "upload:" + name}, nil
}

func (s *stubService) AnalyzeBatch(_ context.Context, imageURLs []string, _ service.RequestOptions) (*models.BatchAnalysisResponse, error) {
	resp := &models.BatchAnalysisResponse{}
	for _, u := range imageURLs {
		resp.Results = append(resp.Results, models.BatchItemResult{Source: u, Response: &models.AnalysisResponse{Source: u}})
		resp.Succeeded++
	}
	return resp, nil
}

func (s *stubService) GetReport(_ context.Context, id string) (*models.AnalysisResponse, error) {
	if id != "id-1" {
		return nil, apperrors.NewNotFoundError("report not found", nil)
	}
	return &models.AnalysisResponse{ID: id}, nil
}

func (s *stubService) GetHistory(_ context.Context, source string) ([]*models.AnalysisResponse, error) {
	return []*models.AnalysisResponse{{ID: "id-1", Source: source}}, nil
}

func (s *stubService) ValidateImageURL(string) error { return nil }

type stubStats struct{}

func (stubStats) Stats() analyzer.PoolStats { return analyzer.PoolStats{Workers: 3} }

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1024,
		MaxImageBytes:      4096,
		RateLimitRPS:       100,
		RateLimitBurst:     100,
	}
}

func newTestRouter(t *testing.T, svc service.PhotoAnalysisService, cfg *config.Config) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewHandler(svc, observer.NewMetricsObserver(), stubStats{}, cfg)
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, &stubService{}, testConfig())

	w := doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"available"`)
	assert.Contains(t, w.Body.String(), `"vision_backend":"`+analyzer.VisionBackend()+`"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubService{}, testConfig())

	w := doJSON(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["analyses"], "total_analyses")
	assert.Equal(t, 3.0, body["worker_pool"]["Workers"])
}

func TestAnalyzeURL(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc, testConfig())

	w := doJSON(router, http.MethodPost, "/analyze", `{"url":"https://example.com/a.jpg","suggest_crop":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "id-1", resp.ID)
	assert.Equal(t, "https://example.com/a.jpg", svc.lastURL)
	assert.True(t, svc.lastOpts.SuggestCrop)
}

func TestAnalyzeURL_BadRequests(t *testing.T) {
	router := newTestRouter(t, &stubService{}, testConfig())

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"url":`, http.StatusBadRequest},
		{"missing url", `{}`, http.StatusBadRequest},
		{"body too large", `{"url":"https://example.com/` + strings.Repeat("a", 2048) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAnalyzeURL_ServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", apperrors.NewValidationError("invalid image URL", nil), http.StatusBadRequest},
		{"network", apperrors.NewNetworkError("failed to fetch image", nil), http.StatusBadGateway},
		{"decode", apperrors.NewDecodeError("image could not be decoded", nil), http.StatusUnprocessableEntity},
		{"timeout", apperrors.NewTimeoutError("timed out", nil), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &stubService{err: tt.err}, testConfig())
			w := doJSON(router, http.MethodPost, "/analyze", `{"url":"https://example.com/a.jpg"}`)
			assert.Equal(t, tt.code, w.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, http.StatusText(tt.code), resp.Error)
		})
	}
}

func TestAnalyzeUpload(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc, testConfig())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("suggest_crop", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("fake image bytes"), svc.lastUpload)
	assert.Equal(t, "photo.png", svc.lastName)
	assert.True(t, svc.lastOpts.SuggestCrop)
}

func TestAnalyzeUpload_MissingField(t *testing.T) {
	router := newTestRouter(t, &stubService{}, testConfig())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeBatch(t *testing.T) {
	router := newTestRouter(t, &stubService{}, testConfig())

	w := doJSON(router, http.MethodPost, "/analyze/batch", `{"urls":["https://a.example/1.jpg","https://b.example/2.jpg"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.BatchAnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Succeeded)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://b.example/2.jpg", resp.Results[1].Source)

	w = doJSON(router, http.MethodPost, "/analyze/batch", `{"urls":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReport(t *testing.T) {
	router := newTestRouter(t, &stubService{}, testConfig())

	w := doJSON(router, http.MethodGet, "/reports/id-1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/reports/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHistory(t *testing.T) {
	router := newTestRouter(t, &stubService{}, testConfig())

	w := doJSON(router, http.MethodGet, "/reports?source=https://example.com/a.jpg", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"id-1"`)

	w = doJSON(router, http.MethodGet, "/reports", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 2
	router := newTestRouter(t, &stubService{}, cfg)

	for i := 0; i < 2; i++ {
		w := doJSON(router, http.MethodPost, "/analyze", `{"url":"https://example.com/a.jpg"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(router, http.MethodPost, "/analyze", `{"url":"https://example.com/a.jpg"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// read-only routes are not throttled
	w = doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDetermineStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, determineStatusCode(apperrors.NewNotFoundError("x", nil)))
	assert.Equal(t, http.StatusGatewayTimeout, determineStatusCode(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, determineStatusCode(assert.AnError))
}
