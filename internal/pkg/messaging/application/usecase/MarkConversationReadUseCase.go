package usecase

import (
	"context"
	"fmt"
	"time"

	"medichat/internal/pkg/messaging/application/fanout"
	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
)

// MarkConversationReadInput identifies the reader and the conversation.
type MarkConversationReadInput struct {
	ConversationID int64
	ReaderID       int64
}

// MarkConversationReadUseCase drives the delivery tracker: it stamps receipts
// for every unread foreign message, advances the participant's last_read_at,
// and notifies each original sender's live connection about the transition.
type MarkConversationReadUseCase struct {
	Repo   repository.MessagingRepository
	Fanout *fanout.Fanout
}

func NewMarkConversationReadUseCase(repo repository.MessagingRepository, fo *fanout.Fanout) *MarkConversationReadUseCase {
	return &MarkConversationReadUseCase{Repo: repo, Fanout: fo}
}

func (uc *MarkConversationReadUseCase) Execute(ctx context.Context, in MarkConversationReadInput) error {
	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.ReaderID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return messaging.ErrNotParticipant
	}

	now := time.Now().UTC()
	transitions, err := uc.Repo.MarkConversationRead(ctx, in.ConversationID, in.ReaderID, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Fanout.MessagesRead(in.ConversationID, in.ReaderID, transitions, now)
	return nil
}
