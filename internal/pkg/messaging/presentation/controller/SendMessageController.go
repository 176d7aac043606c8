package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medichat/internal/pkg/messaging/application/usecase"
	messaging "medichat/internal/pkg/messaging/domain"
)

// SendMessageController handles the send-message endpoint. The response
// reflects the committed row; live push is an additive hint the client must
// not rely on.
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(uc *usecase.SendMessageUseCase) *SendMessageController {
	return &SendMessageController{UC: uc}
}

type sendMessageRequest struct {
	Content     string `json:"content" binding:"required"`
	MessageType string `json:"message_type"`
	ReplyToID   *int64 `json:"reply_to_id"`
	ReferenceID *int64 `json:"reference_id"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		senderID, ok := actorID(c)
		if !ok {
			return
		}
		conversationID, ok := pathID(c, "conversationId")
		if !ok {
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        req.Content,
			Type:           messaging.MessageType(req.MessageType),
			ReplyToID:      req.ReplyToID,
			ReferenceID:    req.ReferenceID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":              msg.ID,
			"conversation_id": msg.ConversationID,
			"sender_id":       msg.SenderID,
			"content":         msg.Content,
			"message_type":    msg.Type,
			"reply_to_id":     msg.ReplyToID,
			"created_at":      msg.CreatedAt,
		})
	}
}
