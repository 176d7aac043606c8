package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "medichat/internal/pkg/messaging/domain"
)

// PgMessagingRepository persists the messaging domain in Postgres under the
// chat schema (see migrations/0001_messaging.sql).
type PgMessagingRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessagingRepository(pool *pgxpool.Pool) *PgMessagingRepository {
	return &PgMessagingRepository{pool: pool}
}

const conversationColumns = "id, is_group, name, created_at, updated_at"

func scanConversation(row pgx.Row) (*messaging.Conversation, error) {
	var c messaging.Conversation
	if err := row.Scan(&c.ID, &c.IsGroup, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgMessagingRepository) CreateConversation(ctx context.Context, c messaging.Conversation, participantIDs []int64) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := scanConversation(tx.QueryRow(ctx, `
		INSERT INTO chat.conversation (is_group, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+conversationColumns,
		c.IsGroup, c.Name, c.CreatedAt, c.UpdatedAt))
	if err != nil {
		return nil, err
	}

	for _, userID := range participantIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO chat.participant (conversation_id, user_id, joined_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, created.ID, userID, c.CreatedAt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *PgMessagingRepository) GetConversation(ctx context.Context, id int64) (*messaging.Conversation, error) {
	c, err := scanConversation(r.pool.QueryRow(ctx,
		"SELECT "+conversationColumns+" FROM chat.conversation WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, messaging.ErrConversationNotFound
	}
	return c, err
}

func (r *PgMessagingRepository) FindDirectConversation(ctx context.Context, userA, userB int64) (*messaging.Conversation, error) {
	c, err := scanConversation(r.pool.QueryRow(ctx, `
		SELECT c.id, c.is_group, c.name, c.created_at, c.updated_at
		FROM chat.conversation c
		JOIN chat.participant pa ON pa.conversation_id = c.id AND pa.user_id = $1
		JOIN chat.participant pb ON pb.conversation_id = c.id AND pb.user_id = $2
		WHERE c.is_group = false
		LIMIT 1
	`, userA, userB))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *PgMessagingRepository) ListConversations(ctx context.Context, userID int64) ([]messaging.ConversationSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.is_group, c.name, c.created_at, c.updated_at
		FROM chat.conversation c
		JOIN chat.participant p ON p.conversation_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []messaging.ConversationSummary
	for rows.Next() {
		var c messaging.Conversation
		if err := rows.Scan(&c.ID, &c.IsGroup, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, messaging.ConversationSummary{Conversation: c})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range summaries {
		convID := summaries[i].Conversation.ID

		participants, err := r.ListParticipants(ctx, convID)
		if err != nil {
			return nil, err
		}
		summaries[i].Participants = participants

		last, err := r.lastMessage(ctx, convID)
		if err != nil {
			return nil, err
		}
		summaries[i].LastMessage = last

		unread, err := r.CountUnread(ctx, convID, userID)
		if err != nil {
			return nil, err
		}
		summaries[i].UnreadCount = unread
	}
	return summaries, nil
}

func (r *PgMessagingRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chat.participant
			WHERE conversation_id = $1 AND user_id = $2
		)
	`, conversationID, userID).Scan(&exists)
	return exists, err
}

const participantColumns = "conversation_id, user_id, last_read_at, is_typing, typing_updated_at, is_muted, joined_at"

func (r *PgMessagingRepository) ListParticipants(ctx context.Context, conversationID int64) ([]messaging.Participant, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+participantColumns+" FROM chat.participant WHERE conversation_id = $1 ORDER BY joined_at",
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []messaging.Participant
	for rows.Next() {
		var p messaging.Participant
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.LastReadAt, &p.IsTyping, &p.TypingUpdatedAt, &p.IsMuted, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *PgMessagingRepository) SetTyping(ctx context.Context, conversationID, userID int64, isTyping bool, at time.Time) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.participant
		SET is_typing = $3, typing_updated_at = $4
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID, isTyping, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return messaging.ErrNotParticipant
	}
	return nil
}

func (r *PgMessagingRepository) SetMuted(ctx context.Context, conversationID, userID int64, muted bool) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.participant
		SET is_muted = $3
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID, muted)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return messaging.ErrNotParticipant
	}
	return nil
}

const messageColumns = "id, conversation_id, sender_id, content, message_type, reply_to_id, reference_id, is_edited, edited_at, is_deleted, created_at"

func scanMessage(row pgx.Row) (*messaging.Message, error) {
	var m messaging.Message
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.Type,
		&m.ReplyToID, &m.ReferenceID, &m.IsEdited, &m.EditedAt, &m.IsDeleted, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveMessage inserts the message and bumps conversation.updated_at in one
// transaction so a committed message always reorders the inbox.
func (r *PgMessagingRepository) SaveMessage(ctx context.Context, m messaging.Message) (*messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	saved, err := scanMessage(tx.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, content, message_type, reply_to_id, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+messageColumns,
		m.ConversationID, m.SenderID, m.Content, m.Type, m.ReplyToID, m.ReferenceID, m.CreatedAt))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE chat.conversation SET updated_at = $2 WHERE id = $1
	`, m.ConversationID, saved.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *PgMessagingRepository) GetMessage(ctx context.Context, id int64) (*messaging.Message, error) {
	m, err := scanMessage(r.pool.QueryRow(ctx,
		"SELECT "+messageColumns+" FROM chat.message WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, messaging.ErrMessageNotFound
	}
	return m, err
}

func (r *PgMessagingRepository) UpdateMessageContent(ctx context.Context, id int64, content string, editedAt time.Time) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.message
		SET content = $2, is_edited = true, edited_at = $3
		WHERE id = $1 AND is_deleted = false
	`, id, content, editedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return messaging.ErrMessageNotFound
	}
	return nil
}

func (r *PgMessagingRepository) SoftDeleteMessage(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.message SET is_deleted = true WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return messaging.ErrMessageNotFound
	}
	return nil
}

func (r *PgMessagingRepository) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]messaging.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat.message
		WHERE conversation_id = $1 AND is_deleted = false
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []messaging.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

func (r *PgMessagingRepository) CountUnread(ctx context.Context, conversationID, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM chat.message m
		JOIN chat.participant p ON p.conversation_id = m.conversation_id AND p.user_id = $2
		WHERE m.conversation_id = $1
		  AND m.sender_id <> $2
		  AND m.is_deleted = false
		  AND (p.last_read_at IS NULL OR m.created_at > p.last_read_at)
	`, conversationID, userID).Scan(&count)
	return count, err
}

func (r *PgMessagingRepository) lastMessage(ctx context.Context, conversationID int64) (*messaging.Message, error) {
	m, err := scanMessage(r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM chat.message
		WHERE conversation_id = $1 AND is_deleted = false
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, conversationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// MarkConversationRead upserts receipts for every foreign non-deleted message
// the reader has not fully read, then advances last_read_at, all in one
// transaction. delivered_at is only stamped when absent and read_at is never
// regressed, keeping the unseen -> delivered -> read transitions monotonic.
func (r *PgMessagingRepository) MarkConversationRead(ctx context.Context, conversationID, readerID int64, at time.Time) ([]messaging.ReadTransition, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT m.id, m.sender_id
		FROM chat.message m
		LEFT JOIN chat.read_receipt rr ON rr.message_id = m.id AND rr.user_id = $2
		WHERE m.conversation_id = $1
		  AND m.sender_id <> $2
		  AND m.is_deleted = false
		  AND rr.read_at IS NULL
		ORDER BY m.created_at ASC, m.id ASC
	`, conversationID, readerID)
	if err != nil {
		return nil, err
	}

	var transitions []messaging.ReadTransition
	for rows.Next() {
		var t messaging.ReadTransition
		if err := rows.Scan(&t.MessageID, &t.SenderID); err != nil {
			rows.Close()
			return nil, err
		}
		transitions = append(transitions, t)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for _, t := range transitions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO chat.read_receipt (message_id, user_id, delivered_at, read_at)
			VALUES ($1, $2, $3, $3)
			ON CONFLICT (message_id, user_id)
			DO UPDATE SET delivered_at = COALESCE(chat.read_receipt.delivered_at, EXCLUDED.delivered_at),
			              read_at = COALESCE(chat.read_receipt.read_at, EXCLUDED.read_at)
		`, t.MessageID, readerID, at); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE chat.participant
		SET last_read_at = GREATEST(COALESCE(last_read_at, 'epoch'::timestamptz), $3)
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, readerID, at); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return transitions, nil
}

func (r *PgMessagingRepository) GetReceipt(ctx context.Context, messageID, userID int64) (*messaging.ReadReceipt, error) {
	var rr messaging.ReadReceipt
	err := r.pool.QueryRow(ctx, `
		SELECT message_id, user_id, delivered_at, read_at
		FROM chat.read_receipt
		WHERE message_id = $1 AND user_id = $2
	`, messageID, userID).Scan(&rr.MessageID, &rr.UserID, &rr.DeliveredAt, &rr.ReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rr, nil
}

func (r *PgMessagingRepository) SaveNotification(ctx context.Context, n messaging.Notification) (*messaging.Notification, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.notification (user_id, title, message, notification_type, reference_type, reference_id, action_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, n.UserID, n.Title, n.Message, n.Type, n.ReferenceType, n.ReferenceID, n.ActionURL, n.CreatedAt).Scan(&n.ID)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PgMessagingRepository) MarkNotificationRead(ctx context.Context, id, userID int64, at time.Time) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.notification
		SET is_read = true, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
	`, id, userID, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return messaging.ErrForbidden
	}
	return nil
}
