package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	"github.com/anime-shed/photo-inspector-go/internal/config"
	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"
	"github.com/anime-shed/photo-inspector-go/internal/logger"
	"github.com/anime-shed/photo-inspector-go/internal/observer"
	"github.com/anime-shed/photo-inspector-go/internal/service"
	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// uploadOverhead is the multipart framing allowed on top of the image itself
const uploadOverhead = 1 << 20

// StatsProvider exposes the analyzer's worker pool counters
type StatsProvider interface {
	Stats() analyzer.PoolStats
}

type handler struct {
	service service.PhotoAnalysisService
	metrics *observer.MetricsObserver
	stats   StatsProvider
	cfg     *config.Config
}

// NewHandler builds the gin router with every route and middleware
func NewHandler(svc service.PhotoAnalysisService, metrics *observer.MetricsObserver, stats StatsProvider, cfg *config.Config) http.Handler {
	r := gin.New()

	h := &handler{service: svc, metrics: metrics, stats: stats, cfg: cfg}
	limiter := newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", h.getMetrics)

	jsonBody := requestSizeLimiter(cfg.MaxRequestBodySize)
	r.POST("/analyze", limiter.middleware(), jsonBody, h.analyzeURL)
	r.POST("/analyze/batch", limiter.middleware(), jsonBody, h.analyzeBatch)
	r.POST("/analyze/upload", limiter.middleware(), requestSizeLimiter(cfg.MaxImageBytes+uploadOverhead), h.analyzeUpload)

	r.GET("/reports", h.getHistory)
	r.GET("/reports/:id", h.getReport)

	return r
}

func (h *handler) analyzeURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindStatus(err), "invalid request format", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"url":          req.URL,
		"suggest_crop": req.SuggestCrop,
	}).Debug("Analyzing remote image")

	resp, err := h.service.AnalyzeURL(ctx, req.URL, service.RequestOptions{SuggestCrop: req.SuggestCrop})
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "image analysis failed", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) analyzeUpload(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		respondError(c, bindStatus(err), "multipart field \"image\" is required", err)
		return
	}
	defer file.Close()

	if header.Size > h.cfg.MaxImageBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "uploaded image is too large",
			fmt.Errorf("%d bytes exceeds the limit of %d", header.Size, h.cfg.MaxImageBytes))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload", err)
		return
	}

	opts := service.RequestOptions{SuggestCrop: c.PostForm("suggest_crop") == "true"}
	resp, err := h.service.AnalyzeUpload(ctx, data, header.Filename, opts)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "image analysis failed", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) analyzeBatch(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.BatchAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindStatus(err), "invalid request format", err)
		return
	}

	resp, err := h.service.AnalyzeBatch(ctx, req.URLs, service.RequestOptions{SuggestCrop: req.SuggestCrop})
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "batch analysis failed", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) getReport(c *gin.Context) {
	resp, err := h.service.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "report lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) getHistory(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		respondError(c, http.StatusBadRequest, "query parameter \"source\" is required", errors.New("missing source"))
		return
	}

	history, err := h.service.GetHistory(c.Request.Context(), source)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "report lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": source, "reports": history})
}

func (h *handler) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"analyses":    h.metrics.GetMetrics(),
		"worker_pool": h.stats.Stats(),
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "available",
		"version":        "1.0.0",
		"vision_backend": analyzer.VisionBackend(),
		"time":           time.Now().UTC().Format(time.RFC3339),
	})
}

// bindStatus maps request decoding failures, reporting oversized bodies as 413
func bindStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
