package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medichat/internal/pkg/messaging/application/usecase"
)

// TypingController updates the caller's typing flag over REST. Most clients
// use the websocket typing frame instead; both paths share the use case.
type TypingController struct {
	UC *usecase.SetTypingUseCase
}

func NewTypingController(uc *usecase.SetTypingUseCase) *TypingController {
	return &TypingController{UC: uc}
}

type typingRequest struct {
	IsTyping bool `json:"is_typing"`
}

func (h *TypingController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actorID(c)
		if !ok {
			return
		}
		conversationID, ok := pathID(c, "conversationId")
		if !ok {
			return
		}

		var req typingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, usecase.SetTypingInput{
			ConversationID: conversationID,
			UserID:         userID,
			IsTyping:       req.IsTyping,
		}); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"is_typing": req.IsTyping})
	}
}
