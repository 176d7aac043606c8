package usecase

import (
	"context"
	"fmt"

	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
)

// JoinConversationInput validates a request to open a conversation view.
type JoinConversationInput struct {
	ConversationID int64
	UserID         int64
}

// JoinConversationUseCase ensures the user belongs to the conversation before
// the view tracker starts routing immediate broadcasts to them.
type JoinConversationUseCase struct {
	Repo repository.MessagingRepository
}

func NewJoinConversationUseCase(repo repository.MessagingRepository) *JoinConversationUseCase {
	return &JoinConversationUseCase{Repo: repo}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	if in.ConversationID == 0 || in.UserID == 0 {
		return fmt.Errorf("%w: conversation id and user id are required", messaging.ErrValidation)
	}

	ok, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return messaging.ErrNotParticipant
	}
	return nil
}
