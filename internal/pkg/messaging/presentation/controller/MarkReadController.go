package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medichat/internal/pkg/messaging/application/usecase"
)

// MarkReadController acknowledges a conversation as read for the caller.
type MarkReadController struct {
	UC *usecase.MarkConversationReadUseCase
}

func NewMarkReadController(uc *usecase.MarkConversationReadUseCase) *MarkReadController {
	return &MarkReadController{UC: uc}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actorID(c)
		if !ok {
			return
		}
		conversationID, ok := pathID(c, "conversationId")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, usecase.MarkConversationReadInput{
			ConversationID: conversationID,
			ReaderID:       userID,
		}); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"read": true})
	}
}
