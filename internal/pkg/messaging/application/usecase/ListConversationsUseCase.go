package usecase

import (
	"context"
	"fmt"

	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
)

// ListConversationsInput identifies the viewer.
type ListConversationsInput struct {
	UserID int64
}

// ListConversationsUseCase returns the viewer's conversations most-recent
// first, each with participants, last message and unread count. Presence and
// typing flags are layered on by the presentation layer, which owns the
// in-memory registry.
type ListConversationsUseCase struct {
	Repo repository.MessagingRepository
}

func NewListConversationsUseCase(repo repository.MessagingRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]messaging.ConversationSummary, error) {
	if in.UserID == 0 {
		return nil, fmt.Errorf("%w: user id is required", messaging.ErrValidation)
	}
	summaries, err := uc.Repo.ListConversations(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return summaries, nil
}
