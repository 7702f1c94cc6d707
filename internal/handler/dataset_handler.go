package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharktrack/sharktrack-backend-go/internal/service"
	"github.com/sharktrack/sharktrack-backend-go/pkg/response"
)

// maxUploadBytes bounds an uploaded feature collection
const maxUploadBytes = 64 << 20

// DatasetHandler handles HTTP requests for stored datasets
type DatasetHandler struct {
	service *service.DatasetService
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

// ListDatasets handles GET /api/v1/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.service.List(c.Request.Context())
	if err != nil {
		response.FromError(c, "Failed to list datasets", err)
		return
	}

	response.Success(c, gin.H{
		"data":  datasets,
		"count": len(datasets),
	})
}

// ImportDataset handles POST /api/v1/datasets/:name
func (h *DatasetHandler) ImportDataset(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes))
	if err != nil {
		response.BadRequest(c, "Failed to read request body")
		return
	}

	result, err := h.service.Import(c.Request.Context(), c.Param("name"), body)
	if err != nil {
		response.FromError(c, "Failed to import dataset", err)
		return
	}

	response.Success(c, result)
}
