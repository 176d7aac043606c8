package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medichat/internal/pkg/messaging/application/usecase"
)

// DeleteMessageController handles soft deletion (sender or admin only).
type DeleteMessageController struct {
	UC *usecase.DeleteMessageUseCase
}

func NewDeleteMessageController(uc *usecase.DeleteMessageUseCase) *DeleteMessageController {
	return &DeleteMessageController{UC: uc}
}

func (h *DeleteMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actorID(c)
		if !ok {
			return
		}
		messageID, ok := pathID(c, "messageId")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, usecase.DeleteMessageInput{MessageID: messageID, ActorID: userID}); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
