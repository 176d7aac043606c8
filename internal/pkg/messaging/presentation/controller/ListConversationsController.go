package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medichat/internal/infrastructure/realtime"
	"medichat/internal/pkg/messaging/application/usecase"
	messaging "medichat/internal/pkg/messaging/domain"
)

// ListConversationsController serves the inbox: conversations most-recent
// first with last message, unread count, peer presence and live typing flags.
// Presence and typing come from in-process state, so they degrade to
// offline/false after a restart while history stays intact.
type ListConversationsController struct {
	UC       *usecase.ListConversationsUseCase
	Registry *realtime.Registry
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase, registry *realtime.Registry) *ListConversationsController {
	return &ListConversationsController{UC: uc, Registry: registry}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actorID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		summaries, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: userID})
		if err != nil {
			respondError(c, err)
			return
		}

		now := time.Now().UTC()
		out := make([]gin.H, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, h.render(s, userID, now))
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out, "count": len(out)})
	}
}

func (h *ListConversationsController) render(s messaging.ConversationSummary, viewerID int64, now time.Time) gin.H {
	participants := make([]gin.H, 0, len(s.Participants))
	anyoneTyping := false
	peerOnline := false
	for _, p := range s.Participants {
		online := h.Registry.IsOnline(p.UserID)
		typing := p.UserID != viewerID && p.TypingActive(now)
		if typing {
			anyoneTyping = true
		}
		if p.UserID != viewerID && online {
			peerOnline = true
		}
		participants = append(participants, gin.H{
			"user_id":   p.UserID,
			"is_online": online,
			"is_typing": typing,
			"is_muted":  p.IsMuted,
			"joined_at": p.JoinedAt,
		})
	}

	var lastMessage gin.H
	if s.LastMessage != nil {
		lastMessage = gin.H{
			"id":           s.LastMessage.ID,
			"sender_id":    s.LastMessage.SenderID,
			"content":      s.LastMessage.Content,
			"message_type": s.LastMessage.Type,
			"created_at":   s.LastMessage.CreatedAt,
		}
	}

	return gin.H{
		"id":           s.Conversation.ID,
		"is_group":     s.Conversation.IsGroup,
		"name":         s.Conversation.Name,
		"updated_at":   s.Conversation.UpdatedAt,
		"participants": participants,
		"last_message": lastMessage,
		"unread_count": s.UnreadCount,
		"peer_online":  peerOnline,
		"is_typing":    anyoneTyping,
	}
}
