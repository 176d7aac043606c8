package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"medichat/internal/infrastructure/realtime"
	messaging "medichat/internal/pkg/messaging/domain"
)

// previewLimit caps the notification body taken from the message content.
const previewLimit = 120

// Pusher is the slice of the connection registry the fan-out needs.
type Pusher interface {
	Send(userID int64, env realtime.Envelope) bool
	BroadcastToConversation(conversationID int64, env realtime.Envelope, excludeUserID int64) int
	IsOnline(userID int64) bool
}

// ViewState answers whether a user currently has a conversation open.
type ViewState interface {
	IsViewing(userID, conversationID int64) bool
}

// Notifier is the durable-fallback channel (implemented by Dispatcher).
type Notifier interface {
	Notify(ctx context.Context, userID int64, title, message, referenceType string, referenceID int64, actionURL string) (*messaging.Notification, error)
}

// Fanout distributes committed messaging events to live viewers and routes
// everyone else to the durable notification path. It only ever runs after the
// triggering write has committed; none of its failures propagate to callers.
type Fanout struct {
	push     Pusher
	views    ViewState
	notifier Notifier
	log      *slog.Logger
}

func NewFanout(push Pusher, views ViewState, notifier Notifier, log *slog.Logger) *Fanout {
	if log == nil {
		log = slog.Default()
	}
	return &Fanout{push: push, views: views, notifier: notifier, log: log}
}

// MessageSent fans a committed message out: participants viewing the
// conversation get the live new_message broadcast; the rest get a durable
// notification unless they muted the conversation.
func (f *Fanout) MessageSent(ctx context.Context, conv messaging.Conversation, msg messaging.Message, senderName string, participants []messaging.Participant) {
	f.push.BroadcastToConversation(conv.ID, realtime.NewMessageEnvelope(conv.ID, toPayload(msg, senderName)), msg.SenderID)

	title := senderName
	if conv.IsGroup && conv.Name != nil {
		title = fmt.Sprintf("%s — %s", *conv.Name, senderName)
	}
	body := truncatePreview(msg.Content)
	actionURL := fmt.Sprintf("/chat/%d", conv.ID)

	for _, p := range participants {
		if p.UserID == msg.SenderID {
			continue
		}
		if f.views.IsViewing(p.UserID, conv.ID) {
			continue // already delivered by the broadcast above
		}
		if p.IsMuted {
			continue
		}
		if _, err := f.notifier.Notify(ctx, p.UserID, title, body, "conversation", conv.ID, actionURL); err != nil {
			f.log.Error("fanout: notification failed", "user_id", p.UserID, "conversation_id", conv.ID, "error", err)
		}
	}
}

// MessageEdited broadcasts the edited message to viewers other than the actor.
func (f *Fanout) MessageEdited(conv messaging.Conversation, msg messaging.Message, senderName string, actorID int64) {
	f.push.BroadcastToConversation(conv.ID, realtime.NewMessageEditedEvent(conv.ID, toPayload(msg, senderName)), actorID)
}

// MessageDeleted broadcasts the deletion to viewers other than the actor.
func (f *Fanout) MessageDeleted(conversationID, messageID, actorID int64) {
	f.push.BroadcastToConversation(conversationID, realtime.NewMessageDeletedEvent(conversationID, messageID), actorID)
}

// MessagesRead notifies each original sender's live connection about receipts
// that reached the read state. Best-effort; not persisted as an event.
func (f *Fanout) MessagesRead(conversationID, readerID int64, transitions []messaging.ReadTransition, readAt time.Time) {
	for _, t := range transitions {
		f.push.Send(t.SenderID, realtime.NewMessageReadEvent(conversationID, t.MessageID, readerID, readAt))
	}
}

// TypingChanged broadcasts the typing flag to other viewers. Staleness expiry
// is lazy on the read side; no broadcast happens when a flag merely ages out.
func (f *Fanout) TypingChanged(conversationID, userID int64, isTyping bool) {
	f.push.BroadcastToConversation(conversationID, realtime.NewTypingEvent(conversationID, userID, isTyping), userID)
}

// truncatePreview caps the notification body at previewLimit bytes without
// splitting a multi-byte rune at the cut.
func truncatePreview(body string) string {
	if len(body) <= previewLimit {
		return body
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "…"
}

func toPayload(msg messaging.Message, senderName string) realtime.MessagePayload {
	return realtime.MessagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		SenderName:     senderName,
		Content:        msg.Content,
		MessageType:    string(msg.Type),
		ReplyToID:      msg.ReplyToID,
		ReferenceID:    msg.ReferenceID,
		IsEdited:       msg.IsEdited,
		EditedAt:       msg.EditedAt,
		CreatedAt:      msg.CreatedAt,
	}
}
