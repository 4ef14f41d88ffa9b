package transport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Alyfish/spacestest-v0-mvp/internal/config"
	"github.com/Alyfish/spacestest-v0-mvp/internal/engine"
	apperrors "github.com/Alyfish/spacestest-v0-mvp/internal/errors"
	"github.com/Alyfish/spacestest-v0-mvp/internal/logger"
	"github.com/Alyfish/spacestest-v0-mvp/internal/storage"
	"github.com/Alyfish/spacestest-v0-mvp/pkg/validation"
)

type ResolveRequest struct {
	ImageURL string  `json:"image_url" binding:"required,url"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type MatchRequest struct {
	ImageURL     string  `json:"image_url" binding:"required,url"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	CategoryHint string  `json:"category_hint,omitempty"`
}

type BatchRequest struct {
	ImageURL string              `json:"image_url" binding:"required,url"`
	Clicks   []engine.ClickPoint `json:"clicks" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewHandler(eng *engine.Engine, fetcher storage.ImageFetcher, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	validator := validation.NewURLValidator()

	r.GET("/health", healthCheck)
	r.POST("/v1/resolve", resolveClick(eng, fetcher, validator, cfg))
	r.POST("/v1/match", matchProducts(eng, fetcher, validator, cfg))
	r.POST("/v1/match/batch", matchBatch(eng, fetcher, validator, cfg))

	return r
}

func resolveClick(eng *engine.Engine, f storage.ImageFetcher, v *validation.URLValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req ResolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		if err := v.ValidateImageURL(req.ImageURL); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image URL", err)
			return
		}
		if err := validation.ValidateClick(req.X, req.Y); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid click", err)
			return
		}

		img, err := fetchImage(ctx, f, req.ImageURL)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to fetch image", err)
			return
		}

		result, err := eng.ResolveClick(ctx, img, req.X, req.Y)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "resolution failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"path":               c.Request.URL.Path,
			"method":             result.Method,
			"ambiguous":          result.Ambiguous,
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Click resolution completed")

		c.JSON(http.StatusOK, result)
	}
}

func matchProducts(eng *engine.Engine, f storage.ImageFetcher, v *validation.URLValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req MatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		if err := v.ValidateImageURL(req.ImageURL); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image URL", err)
			return
		}
		if err := validation.ValidateClick(req.X, req.Y); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid click", err)
			return
		}

		img, err := fetchImage(ctx, f, req.ImageURL)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to fetch image", err)
			return
		}

		resolution, err := eng.ResolveClick(ctx, img, req.X, req.Y)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "resolution failed", err)
			return
		}

		category := req.CategoryHint
		if category == "" && resolution.Selected != nil {
			category = resolution.Selected.Label
		}
		match, err := eng.MatchProducts(ctx, resolution.Crop, category)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "product matching failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"path":               c.Request.URL.Path,
			"products":           len(match.Products),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Product matching request completed")

		c.JSON(http.StatusOK, gin.H{
			"resolution": resolution,
			"match":      match,
		})
	}
}

func matchBatch(eng *engine.Engine, f storage.ImageFetcher, v *validation.URLValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		if err := v.ValidateImageURL(req.ImageURL); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image URL", err)
			return
		}
		if len(req.Clicks) == 0 {
			respondError(c, http.StatusBadRequest, "invalid request",
				apperrors.NewValidationError("clicks must not be empty", nil))
			return
		}

		img, err := fetchImage(ctx, f, req.ImageURL)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "failed to fetch image", err)
			return
		}

		items, err := eng.MatchBatch(ctx, img, req.Clicks)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "batch matching failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func fetchImage(ctx context.Context, f storage.ImageFetcher, imageURL string) (image.Image, error) {
	img, err := f.FetchImage(ctx, imageURL)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch source image", err)
	}
	return img, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
