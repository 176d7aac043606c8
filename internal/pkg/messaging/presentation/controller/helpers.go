package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medichat/internal/pkg/messaging/application/usecase"
	messaging "medichat/internal/pkg/messaging/domain"
)

// actorID reads the authenticated user id from the X-User-ID header. The
// gateway in front of this service owns authentication and injects the header.
func actorID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-ID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header is required"})
		return 0, false
	}
	return id, true
}

// pathID parses an int64 path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

// respondError maps domain and use-case errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, messaging.ErrConversationNotFound), errors.Is(err, messaging.ErrMessageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, messaging.ErrNotParticipant), errors.Is(err, messaging.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, messaging.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrPersistence):
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
