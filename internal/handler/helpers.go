package handler

import (
	"errors"
	"net/http"

	"warehouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorFromContext rebuilds the audit actor from the claims RequireRole stored
// in the gin context.
func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{
		Name: c.GetString("userName"),
		Role: c.GetString("userRole"),
	}
	if raw := c.GetString("userID"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			actor.ID = &id
		}
	}
	return actor
}

// errorStatus maps service errors to HTTP status codes. Unknown errors are
// treated as client faults; the services wrap genuine infrastructure failures
// with context so they read differently in logs either way.
func errorStatus(err error) int {
	var notFound *service.NotFoundError
	var insufficient *service.InsufficientStockError
	var invalidQty *service.InvalidQuantityError
	var unavailable *service.LocationUnavailableError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &insufficient), errors.As(err, &unavailable):
		return http.StatusConflict
	case errors.As(err, &invalidQty), errors.Is(err, service.ErrEmptyJob):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
