package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medichat/internal/pkg/messaging/application/usecase"
)

// NotificationReadController acknowledges one notification for its owner.
type NotificationReadController struct {
	UC *usecase.MarkNotificationReadUseCase
}

func NewNotificationReadController(uc *usecase.MarkNotificationReadUseCase) *NotificationReadController {
	return &NotificationReadController{UC: uc}
}

func (h *NotificationReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actorID(c)
		if !ok {
			return
		}
		notificationID, ok := pathID(c, "notificationId")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, usecase.MarkNotificationReadInput{
			NotificationID: notificationID,
			UserID:         userID,
		}); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"read": true})
	}
}
