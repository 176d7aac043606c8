package messaging

import "time"

// Notification is the durable fallback record for a participant who was not
// actively viewing the conversation when a message arrived. The row is ground
// truth; any live toast push on top of it is only a UX hint.
type Notification struct {
	ID            int64      `db:"id"`
	UserID        int64      `db:"user_id"`
	Title         string     `db:"title"`
	Message       string     `db:"message"`
	Type          string     `db:"notification_type"`
	ReferenceType string     `db:"reference_type"`
	ReferenceID   int64      `db:"reference_id"`
	ActionURL     string     `db:"action_url"`
	IsRead        bool       `db:"is_read"`
	ReadAt        *time.Time `db:"read_at"`
	CreatedAt     time.Time  `db:"created_at"`
}
