package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharktrack/sharktrack-backend-go/internal/models"
	"github.com/sharktrack/sharktrack-backend-go/internal/service"
	"github.com/sharktrack/sharktrack-backend-go/pkg/response"
)

// VisualizationHandler handles HTTP requests for visualization data
type VisualizationHandler struct {
	service     *service.PipelineService
	defaultZoom int
}

// NewVisualizationHandler creates a new visualization handler
func NewVisualizationHandler(service *service.PipelineService, defaultZoom int) *VisualizationHandler {
	return &VisualizationHandler{service: service, defaultZoom: defaultZoom}
}

// GetHistogram handles GET /api/v1/viz/histogram
func (h *VisualizationHandler) GetHistogram(c *gin.Context) {
	hist, err := h.service.Histogram(c.Request.Context())
	if err != nil {
		response.FromError(c, "Failed to build histogram", err)
		return
	}

	response.Success(c, gin.H{
		"bins":  hist,
		"total": hist.Total(),
	})
}

// GetSummary handles GET /api/v1/viz/summary
func (h *VisualizationHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.FromError(c, "Failed to describe probabilities", err)
		return
	}

	response.Success(c, summary)
}

// GetConfidence handles GET /api/v1/viz/confidence
func (h *VisualizationHandler) GetConfidence(c *gin.Context) {
	summary, err := h.service.Confidence(c.Request.Context())
	if err != nil {
		response.FromError(c, "Failed to summarize confidence", err)
		return
	}

	response.Success(c, summary)
}

// GetHeatmap handles GET /api/v1/viz/heatmap
func (h *VisualizationHandler) GetHeatmap(c *gin.Context) {
	field, err := h.service.HeatField(c.Request.Context())
	if err != nil {
		response.FromError(c, "Failed to build heat field", err)
		return
	}

	response.Success(c, field)
}

// GetHotspots handles GET /api/v1/viz/hotspots
func (h *VisualizationHandler) GetHotspots(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	res, err := h.service.Hotspots(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, "Failed to select hotspots", err)
		return
	}

	response.Success(c, res)
}

// GetOverview handles GET /api/v1/viz/overview
func (h *VisualizationHandler) GetOverview(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, "Failed to build overview", err)
		return
	}

	response.Success(c, overview)
}

func (h *VisualizationHandler) bindFilter(c *gin.Context) (models.HotspotFilter, bool) {
	var filter models.HotspotFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return filter, false
	}

	// Default zoom
	if _, ok := c.GetQuery("zoom"); !ok {
		filter.Zoom = h.defaultZoom
	}

	if filter.Threshold != nil && (math.IsNaN(*filter.Threshold) || math.IsInf(*filter.Threshold, 0)) {
		response.Error(c, http.StatusBadRequest, "Invalid threshold parameter")
		return filter, false
	}

	return filter, true
}
