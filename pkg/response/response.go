package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharktrack/sharktrack-backend-go/pkg/errs"
)

// Response represents a standard API response
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 not found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError sends a 500 internal server error response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// StatusFor maps a pipeline error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrDatasetNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError sends an error response with the status mapped from err.
// The error is attached to the context for the access log.
func FromError(c *gin.Context, message string, err error) {
	_ = c.Error(err)
	Error(c, StatusFor(err), message+": "+err.Error())
}
