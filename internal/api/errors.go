package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/presentation-quality-server/internal/domain"
	"github.com/presentation-quality-server/internal/middleware"
)

// respondError aborts the request with the standard {error, message} body.
func (s *Server) respondError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, domain.NewAPIError(
		code,
		message,
		details,
		c.GetString(middleware.CorrelationIDKey),
	))
}

// respondValidation reports a 400 VALIDATION_ERROR naming the offending field.
func (s *Server) respondValidation(c *gin.Context, field, message string, value interface{}) {
	s.respondError(c, http.StatusBadRequest, domain.ErrValidation, message,
		domain.NewValidationError(field, message, value).Error())
}

// respondBindError maps a request decoding failure to 413 or 400.
func (s *Server) respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.respondError(c, http.StatusRequestEntityTooLarge, domain.ErrPayloadTooLarge,
			"Request body too large", "")
		return
	}
	s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput,
		"Malformed request body", err.Error())
}
