package usecase

import (
	"context"
	"fmt"
	"time"

	"medichat/internal/pkg/messaging/application/fanout"
	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
)

// SetTypingInput carries a typing flag update.
type SetTypingInput struct {
	ConversationID int64
	UserID         int64
	IsTyping       bool
}

// SetTypingUseCase stamps the participant's typing flag and broadcasts it to
// the other viewers of the conversation. Expiry of a stale flag is computed
// lazily by readers; no broadcast happens when a flag merely ages out.
type SetTypingUseCase struct {
	Repo   repository.MessagingRepository
	Fanout *fanout.Fanout
}

func NewSetTypingUseCase(repo repository.MessagingRepository, fo *fanout.Fanout) *SetTypingUseCase {
	return &SetTypingUseCase{Repo: repo, Fanout: fo}
}

func (uc *SetTypingUseCase) Execute(ctx context.Context, in SetTypingInput) error {
	if err := uc.Repo.SetTyping(ctx, in.ConversationID, in.UserID, in.IsTyping, time.Now().UTC()); err != nil {
		if err == messaging.ErrNotParticipant {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Fanout.TypingChanged(in.ConversationID, in.UserID, in.IsTyping)
	return nil
}
