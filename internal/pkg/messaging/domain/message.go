package messaging

import (
	"fmt"
	"strings"
	"time"
)

// MessageType tags the content variant of a message.
type MessageType string

const (
	MessageTypeText           MessageType = "text"
	MessageTypeFundRequestRef MessageType = "fund_request_ref"
	MessageTypeProductRef     MessageType = "product_ref"
	MessageTypeSystem         MessageType = "system"
)

// Valid reports whether t is one of the known variants.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeFundRequestRef, MessageTypeProductRef, MessageTypeSystem:
		return true
	}
	return false
}

// Message is a log entry in a conversation. Rows are immutable except for
// edit (Content + IsEdited/EditedAt) and soft delete (IsDeleted; content is
// retained for audit but the row is excluded from listings and fan-out).
//
// Ordering within a conversation is defined by (CreatedAt, ID); the id breaks
// ties between same-timestamp inserts.
//
// ReplyToID is a weak reference to another message, never an owning link.
// ReferenceID points at the external entity for fund_request_ref/product_ref
// variants and is resolved to a display preview at read time.
type Message struct {
	ID             int64       `db:"id"`
	ConversationID int64       `db:"conversation_id"`
	SenderID       int64       `db:"sender_id"`
	Content        string      `db:"content"`
	Type           MessageType `db:"message_type"`
	ReplyToID      *int64      `db:"reply_to_id"`
	ReferenceID    *int64      `db:"reference_id"`
	IsEdited       bool        `db:"is_edited"`
	EditedAt       *time.Time  `db:"edited_at"`
	IsDeleted      bool        `db:"is_deleted"`
	CreatedAt      time.Time   `db:"created_at"`
}

// NewMessage applies domain rules and returns a message ready to persist.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == 0 || m.SenderID == 0 {
		return nil, fmt.Errorf("%w: conversation_id and sender_id are required", ErrValidation)
	}

	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrValidation)
	}

	if m.Type == "" {
		m.Type = MessageTypeText
	}
	if !m.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %q", ErrValidation, m.Type)
	}
	if (m.Type == MessageTypeFundRequestRef || m.Type == MessageTypeProductRef) && m.ReferenceID == nil {
		return nil, fmt.Errorf("%w: %s messages require a reference id", ErrValidation, m.Type)
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}

// EditableBy tells whether the actor may edit or delete this message.
// Only the original sender or an admin qualifies.
func (m Message) EditableBy(actorID int64, actorIsAdmin bool) bool {
	return m.SenderID == actorID || actorIsAdmin
}
