package handler

import (
	"errors"
	"net/http"

	"github.com/akozyrev/amazon-connect/internal/dto"
	"github.com/akozyrev/amazon-connect/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError converts a service error into the uniform JSON error
// envelope. Every failure is logged server-side with context; nothing
// crosses the HTTP boundary unconverted.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	label := "Internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrMissingParameter):
		status = http.StatusBadRequest
		label = "Bad request"
	case errors.Is(err, service.ErrNoActiveAccount):
		status = http.StatusNotFound
		label = "Not found"
	case errors.Is(err, service.ErrTokenExchangeFailed),
		errors.Is(err, service.ErrRefreshFailed),
		errors.Is(err, service.ErrPartnerAPI):
		status = http.StatusBadGateway
		label = "Amazon error"
	}

	logger.Error("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)

	c.JSON(status, dto.ErrorResponse{
		Error:   label,
		Message: err.Error(),
	})
}
