package usecase

import (
	"context"
	"fmt"

	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
)

// MuteConversationInput toggles the notification mute for one participant.
type MuteConversationInput struct {
	ConversationID int64
	UserID         int64
	Muted          bool
}

// MuteConversationUseCase flips the participant's is_muted flag. Mute gates
// the durable notification path only; a muted participant who is actively
// viewing still receives live broadcasts.
type MuteConversationUseCase struct {
	Repo repository.MessagingRepository
}

func NewMuteConversationUseCase(repo repository.MessagingRepository) *MuteConversationUseCase {
	return &MuteConversationUseCase{Repo: repo}
}

func (uc *MuteConversationUseCase) Execute(ctx context.Context, in MuteConversationInput) error {
	if err := uc.Repo.SetMuted(ctx, in.ConversationID, in.UserID, in.Muted); err != nil {
		if err == messaging.ErrNotParticipant {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
