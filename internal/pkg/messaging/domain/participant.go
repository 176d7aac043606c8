package messaging

import "time"

// TypingWindow is how long a typing flag stays effective after its last update.
// Staleness is computed lazily at read time; there is no background sweep.
const TypingWindow = 5 * time.Second

// Participant captures a user's membership in a conversation and the per-user
// read/typing/mute state.
// Primary key: (ConversationID, UserID)
type Participant struct {
	ConversationID  int64      `db:"conversation_id"`
	UserID          int64      `db:"user_id"`
	LastReadAt      *time.Time `db:"last_read_at"`
	IsTyping        bool       `db:"is_typing"`
	TypingUpdatedAt *time.Time `db:"typing_updated_at"`
	IsMuted         bool       `db:"is_muted"`
	JoinedAt        time.Time  `db:"joined_at"`
}

// TypingActive reports the effective typing state at the given instant.
// A flag older than TypingWindow reads as false even without an explicit clear.
func (p Participant) TypingActive(now time.Time) bool {
	if !p.IsTyping || p.TypingUpdatedAt == nil {
		return false
	}
	return now.Sub(*p.TypingUpdatedAt) < TypingWindow
}
