package runs

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"textlens-backend/internal/parser"
	"textlens-backend/internal/pipeline"
	"textlens-backend/internal/shared/server/respond"
)

// HealthChecker reports reachability of the optional enrichment backend.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler wires HTTP handlers to the runs service.
type Handler struct {
	Svc    *Service
	Enrich HealthChecker
}

// NewHandler constructs a Handler. enrich may be nil when enrichment is
// disabled.
func NewHandler(svc *Service, enrich HealthChecker) *Handler {
	return &Handler{Svc: svc, Enrich: enrich}
}

// RegisterRoutes attaches run routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.GET("/results/:id", h.getResult)
	rg.GET("/download/:id", h.download)
	rg.GET("/formats", h.formats)
	rg.GET("/ollama/health", h.ollamaHealth)
}

func (h *Handler) upload(c *gin.Context) {
	if h.Svc.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.MaxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	id, err := h.Svc.Start(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, parser.ErrUnsupportedFormat), errors.Is(err, parser.ErrParserUnavailable):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format", err.Error(), nil)
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to accept upload", nil)
		}
		return
	}

	c.Set("analysisId", id)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"success":    true,
		"analysisId": id,
		"status":     pipeline.StatusPending,
	})
}

func (h *Handler) getResult(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}

	res, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found or expired", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	switch res.Status {
	case pipeline.StatusPending, pipeline.StatusProcessing:
		respond.JSON(c, http.StatusOK, gin.H{
			"analysisId": res.AnalysisID,
			"status":     res.Status,
		})
	default:
		respond.JSON(c, http.StatusOK, res)
	}
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}

	payload, fileName, err := h.Svc.Download(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found or expired", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusConflict, "not_ready", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export analysis", nil)
		}
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/json", payload)
}

func (h *Handler) formats(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{
		"formats": h.Svc.Formats(),
	})
}

func (h *Handler) ollamaHealth(c *gin.Context) {
	if h.Enrich == nil {
		respond.JSON(c, http.StatusOK, gin.H{"available": false, "reason": "not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.Enrich.Health(ctx); err != nil {
		respond.JSON(c, http.StatusOK, gin.H{"available": false, "reason": err.Error()})
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"available": true})
}
