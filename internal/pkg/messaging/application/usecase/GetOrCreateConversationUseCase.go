package usecase

import (
	"context"
	"fmt"
	"time"

	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
	directory "medichat/internal/repository/port"
)

// GetOrCreateConversationInput identifies the unordered user pair of a direct
// conversation.
type GetOrCreateConversationInput struct {
	RequesterID int64
	PeerID      int64
}

// GetOrCreateConversationOutput reports the conversation and whether this call
// created it.
type GetOrCreateConversationOutput struct {
	Conversation messaging.Conversation
	Created      bool
}

// GetOrCreateConversationUseCase opens the direct conversation for a user
// pair, deduplicated: two calls with the same unordered pair return the same
// conversation. The messaging policy is checked before anything is created.
type GetOrCreateConversationUseCase struct {
	Repo      repository.MessagingRepository
	Directory directory.UserDirectory
}

func NewGetOrCreateConversationUseCase(repo repository.MessagingRepository, dir directory.UserDirectory) *GetOrCreateConversationUseCase {
	return &GetOrCreateConversationUseCase{Repo: repo, Directory: dir}
}

func (uc *GetOrCreateConversationUseCase) Execute(ctx context.Context, in GetOrCreateConversationInput) (*GetOrCreateConversationOutput, error) {
	now := time.Now().UTC()
	conv, err := messaging.NewDirectConversation(in.RequesterID, in.PeerID, now)
	if err != nil {
		return nil, err
	}

	allowed, err := uc.Directory.CanMessage(ctx, in.RequesterID, in.PeerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: messaging policy does not allow this pair", messaging.ErrForbidden)
	}

	existing, err := uc.Repo.FindDirectConversation(ctx, in.RequesterID, in.PeerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		return &GetOrCreateConversationOutput{Conversation: *existing}, nil
	}

	created, err := uc.Repo.CreateConversation(ctx, conv, []int64{in.RequesterID, in.PeerID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &GetOrCreateConversationOutput{Conversation: *created, Created: true}, nil
}
