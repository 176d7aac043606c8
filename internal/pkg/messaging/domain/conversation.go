package messaging

import (
	"fmt"
	"strings"
	"time"
)

// Conversation is a container of messages between two (direct) or more (group) participants.
//
// Invariants enforced by constructors and the persistence layer:
//   - a direct conversation has exactly 2 distinct participants
//   - at most one direct conversation exists per unordered user pair
//   - a group conversation always carries a name
//
// UpdatedAt is bumped on every new message and drives most-recent-first listing.
type Conversation struct {
	ID        int64      `db:"id"`
	IsGroup   bool       `db:"is_group"`
	Name      *string    `db:"name"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// NewDirectConversation validates a 1:1 conversation between two distinct users.
func NewDirectConversation(userA, userB int64, now time.Time) (Conversation, error) {
	if userA == 0 || userB == 0 {
		return Conversation{}, fmt.Errorf("%w: both user ids are required", ErrValidation)
	}
	if userA == userB {
		return Conversation{}, fmt.Errorf("%w: cannot open a conversation with yourself", ErrValidation)
	}
	return Conversation{IsGroup: false, CreatedAt: now, UpdatedAt: now}, nil
}

// NewGroupConversation validates a named group conversation.
func NewGroupConversation(name string, now time.Time) (Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Conversation{}, fmt.Errorf("%w: group conversations require a name", ErrValidation)
	}
	return Conversation{IsGroup: true, Name: &name, CreatedAt: now, UpdatedAt: now}, nil
}

// ConversationSummary is the listing projection: the conversation plus the
// per-viewer derived state the client renders in the inbox.
type ConversationSummary struct {
	Conversation Conversation
	Participants []Participant
	LastMessage  *Message
	UnreadCount  int
}
