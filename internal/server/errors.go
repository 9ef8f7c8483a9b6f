package server

import (
	"errors"
	"net/http"
	"time"

	"order-service/internal/breaker"
	"order-service/internal/domain"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform error envelope for every non-2xx response.
type ErrorResponse struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   err.Error(),
		Path:      c.Request.URL.Path,
		Timestamp: time.Now(),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Status:    http.StatusBadRequest,
		Error:     http.StatusText(http.StatusBadRequest),
		Message:   message,
		Path:      c.Request.URL.Path,
		Timestamp: time.Now(),
	})
}

func statusFor(err error) int {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, breaker.ErrOpen):
		return http.StatusServiceUnavailable
	case errors.As(err, new(*domain.AlreadyExistsError)):
		return http.StatusConflict
	case errors.As(err, &upstream):
		// surface the upstream's own status
		return upstream.StatusCode
	}
	return http.StatusInternalServerError
}
