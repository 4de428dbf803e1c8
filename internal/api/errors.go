package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Natz789/Web-Based-Gym-System-main/internal/apperr"
	"github.com/Natz789/Web-Based-Gym-System-main/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// WriteError maps an error kind to its status code. Permission failures
// never echo the underlying message and unknown errors are logged and
// reported generically.
func WriteError(c *gin.Context, err error) {
	switch kind := apperr.Kind(err); {
	case errors.Is(kind, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(kind, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(kind, apperr.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(kind, apperr.ErrPermission):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})
	default:
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// ParamID reads a positive integer path parameter, writing a 400 when it
// is malformed.
func ParamID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// Pagination reads page and size query parameters with defaults.
func Pagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.Query("size"))
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
