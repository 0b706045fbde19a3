package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gameplay-insights/backend/pkg/apperrs"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Accepted sends 202 with data (background dispatch acknowledgment).
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, Body{Success: true, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// FromError maps the error taxonomy onto status buckets: validation 400,
// not-found 404, everything else 500 with the message preserved.
func FromError(c *gin.Context, err error) {
	var validation *apperrs.ValidationError
	var notFound *apperrs.NotFoundError
	switch {
	case errors.As(err, &validation):
		BadRequest(c, validation.Error())
	case errors.As(err, &notFound):
		NotFound(c, notFound.Error())
	default:
		Internal(c, err.Error())
	}
}
