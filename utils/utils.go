package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateDashlessUUID creates a new time-ordered UUID (v7) and returns it
// with all dashes removed. Ids sort by creation time and stay unique within
// the same millisecond thanks to the random tail.
func GenerateDashlessUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4.
		id = uuid.New()
	}
	return strings.ReplaceAll(id.String(), "-", "")
}

// APIError is a standard structure for returning errors as JSON.
type APIError struct {
	Error string `json:"error"`
}

// GinError sends a JSON error response with a specific status code and
// records the message on the context so the request logger can see it.
func GinError(c *gin.Context, statusCode int, message string) {
	_ = c.Error(errors.New(message))
	c.AbortWithStatusJSON(statusCode, APIError{Error: message})
}

// GinBadRequest sends a 400 Bad Request error response.
func GinBadRequest(c *gin.Context, message string) {
	GinError(c, http.StatusBadRequest, message)
}

// GinUnauthorized sends a 401 Unauthorized error response.
func GinUnauthorized(c *gin.Context, message string) {
	GinError(c, http.StatusUnauthorized, message)
}

// GinForbidden sends a 403 Forbidden error response.
func GinForbidden(c *gin.Context, message string) {
	GinError(c, http.StatusForbidden, message)
}

// GinNotFound sends a 404 Not Found error response.
func GinNotFound(c *gin.Context, message string) {
	GinError(c, http.StatusNotFound, message)
}

// GinConflict sends a 409 Conflict error response.
func GinConflict(c *gin.Context, message string) {
	GinError(c, http.StatusConflict, message)
}

// GinInternalServerError sends a 500 Internal Server Error response.
func GinInternalServerError(c *gin.Context, message string) {
	GinError(c, http.StatusInternalServerError, message)
}
