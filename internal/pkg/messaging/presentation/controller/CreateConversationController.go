package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medichat/internal/pkg/messaging/application/usecase"
)

// CreateConversationController handles the conversation creation endpoint:
// direct get-or-create when is_group is false, group creation otherwise.
type CreateConversationController struct {
	DirectUC *usecase.GetOrCreateConversationUseCase
	GroupUC  *usecase.CreateGroupConversationUseCase
}

func NewCreateConversationController(direct *usecase.GetOrCreateConversationUseCase, group *usecase.CreateGroupConversationUseCase) *CreateConversationController {
	return &CreateConversationController{DirectUC: direct, GroupUC: group}
}

type createConversationRequest struct {
	IsGroup   bool    `json:"is_group"`
	PeerID    int64   `json:"peer_id"`
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"member_ids"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		requesterID, ok := actorID(c)
		if !ok {
			return
		}

		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if req.IsGroup {
			conv, err := h.GroupUC.Execute(ctx, usecase.CreateGroupConversationInput{
				CreatorID: requesterID,
				Name:      req.Name,
				MemberIDs: req.MemberIDs,
			})
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{
				"id":         conv.ID,
				"is_group":   conv.IsGroup,
				"name":       conv.Name,
				"created_at": conv.CreatedAt,
			})
			return
		}

		out, err := h.DirectUC.Execute(ctx, usecase.GetOrCreateConversationInput{
			RequesterID: requesterID,
			PeerID:      req.PeerID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		status := http.StatusOK
		if out.Created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{
			"id":         out.Conversation.ID,
			"is_group":   out.Conversation.IsGroup,
			"created_at": out.Conversation.CreatedAt,
			"created":    out.Created,
		})
	}
}
