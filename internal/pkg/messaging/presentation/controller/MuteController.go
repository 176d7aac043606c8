package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medichat/internal/pkg/messaging/application/usecase"
)

// MuteController toggles notification muting for the caller in a conversation.
type MuteController struct {
	UC *usecase.MuteConversationUseCase
}

func NewMuteController(uc *usecase.MuteConversationUseCase) *MuteController {
	return &MuteController{UC: uc}
}

type muteRequest struct {
	Muted bool `json:"muted"`
}

func (h *MuteController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actorID(c)
		if !ok {
			return
		}
		conversationID, ok := pathID(c, "conversationId")
		if !ok {
			return
		}

		var req muteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, usecase.MuteConversationInput{
			ConversationID: conversationID,
			UserID:         userID,
			Muted:          req.Muted,
		}); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"muted": req.Muted})
	}
}
