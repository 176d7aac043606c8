package messaging

import "time"

// ReceiptState is the per-(message,reader) delivery state.
// Transitions are monotonic: unseen -> delivered -> read. Read is terminal.
type ReceiptState string

const (
	ReceiptUnseen    ReceiptState = "unseen"
	ReceiptDelivered ReceiptState = "delivered"
	ReceiptRead      ReceiptState = "read"
)

// ReadReceipt records delivery for one reader of one message.
// Rows exist only for participants other than the message's sender and are
// created/updated exclusively by the delivery tracker.
type ReadReceipt struct {
	MessageID   int64      `db:"message_id"`
	UserID      int64      `db:"user_id"`
	DeliveredAt *time.Time `db:"delivered_at"`
	ReadAt      *time.Time `db:"read_at"`
}

// State derives the receipt state from the stamped timestamps.
func (r ReadReceipt) State() ReceiptState {
	switch {
	case r.ReadAt != nil:
		return ReceiptRead
	case r.DeliveredAt != nil:
		return ReceiptDelivered
	default:
		return ReceiptUnseen
	}
}

// ReadTransition reports one receipt that reached the read state during a
// mark-read call, with enough context to notify the original sender.
type ReadTransition struct {
	MessageID int64
	SenderID  int64
}
