package repository

import (
	"context"
	"time"

	messaging "medichat/internal/pkg/messaging/domain"
)

// MessagingRepository defines persistence operations for the messaging domain.
//
// Transactional guarantees the adapter must honor:
//   - SaveMessage inserts the message and bumps the conversation's updated_at
//     atomically; both succeed or both roll back.
//   - MarkConversationRead upserts receipts and advances last_read_at in one
//     transaction. Receipt transitions are monotonic: delivered_at is stamped
//     only when absent and read_at, once set, is never cleared or regressed.
type MessagingRepository interface {
	// Conversations
	CreateConversation(ctx context.Context, c messaging.Conversation, participantIDs []int64) (*messaging.Conversation, error)
	GetConversation(ctx context.Context, id int64) (*messaging.Conversation, error)
	// FindDirectConversation returns the unique non-group conversation for the
	// unordered user pair, or nil when none exists.
	FindDirectConversation(ctx context.Context, userA, userB int64) (*messaging.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]messaging.ConversationSummary, error)

	// Participants
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	ListParticipants(ctx context.Context, conversationID int64) ([]messaging.Participant, error)
	SetTyping(ctx context.Context, conversationID, userID int64, isTyping bool, at time.Time) error
	SetMuted(ctx context.Context, conversationID, userID int64, muted bool) error

	// Messages
	SaveMessage(ctx context.Context, m messaging.Message) (*messaging.Message, error)
	GetMessage(ctx context.Context, id int64) (*messaging.Message, error)
	UpdateMessageContent(ctx context.Context, id int64, content string, editedAt time.Time) error
	SoftDeleteMessage(ctx context.Context, id int64) error
	// ListMessages returns non-deleted messages in (created_at, id) ascending
	// order, honoring limit/offset.
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]messaging.Message, error)
	CountUnread(ctx context.Context, conversationID, userID int64) (int, error)

	// Receipts
	// MarkConversationRead stamps receipts for every foreign non-deleted
	// message the reader has not fully read, advances last_read_at, and
	// returns the messages whose receipt transitioned to read.
	MarkConversationRead(ctx context.Context, conversationID, readerID int64, at time.Time) ([]messaging.ReadTransition, error)
	GetReceipt(ctx context.Context, messageID, userID int64) (*messaging.ReadReceipt, error)

	// Notifications
	SaveNotification(ctx context.Context, n messaging.Notification) (*messaging.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID int64, at time.Time) error
}
