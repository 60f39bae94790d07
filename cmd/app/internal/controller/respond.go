package controller

import (
	"errors"
	"net/http"

	"okurmen-backend/internal/service"
	"okurmen-backend/pkg/middleware"
	"okurmen-backend/utilities"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error kind to its HTTP status. Conflicts answer 400 as
// existing clients expect.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindConflict, service.KindTimeExpired:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. Internal detail is logged,
// never returned.
func respondError(c *gin.Context, err error) {
	var ae *service.AppError
	if !errors.As(err, &ae) {
		ae = &service.AppError{Kind: service.KindInternal, Message: "Server error", Err: err}
	}
	status := statusFor(ae.Kind)
	if status >= http.StatusInternalServerError {
		utilities.Error("[%s] %s %s: %v", middleware.RequestID(c), c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": ae.Message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
