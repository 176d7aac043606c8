package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medichat/internal/pkg/messaging/application/usecase"
)

// EditMessageController handles message edits (sender or admin only).
type EditMessageController struct {
	UC *usecase.EditMessageUseCase
}

func NewEditMessageController(uc *usecase.EditMessageUseCase) *EditMessageController {
	return &EditMessageController{UC: uc}
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *EditMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actorID(c)
		if !ok {
			return
		}
		messageID, ok := pathID(c, "messageId")
		if !ok {
			return
		}

		var req editMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.EditMessageInput{
			MessageID:  messageID,
			ActorID:    userID,
			NewContent: req.Content,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":        msg.ID,
			"content":   msg.Content,
			"is_edited": msg.IsEdited,
			"edited_at": msg.EditedAt,
		})
	}
}
