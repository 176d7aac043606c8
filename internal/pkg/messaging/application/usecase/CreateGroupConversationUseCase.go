package usecase

import (
	"context"
	"fmt"
	"time"

	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
	directory "medichat/internal/repository/port"
)

// CreateGroupConversationInput carries the data to open a named group.
type CreateGroupConversationInput struct {
	CreatorID int64
	Name      string
	MemberIDs []int64
}

// CreateGroupConversationUseCase creates a group conversation with the creator
// always included as a participant. Every member must be reachable by the
// creator under the messaging policy.
type CreateGroupConversationUseCase struct {
	Repo      repository.MessagingRepository
	Directory directory.UserDirectory
}

func NewCreateGroupConversationUseCase(repo repository.MessagingRepository, dir directory.UserDirectory) *CreateGroupConversationUseCase {
	return &CreateGroupConversationUseCase{Repo: repo, Directory: dir}
}

func (uc *CreateGroupConversationUseCase) Execute(ctx context.Context, in CreateGroupConversationInput) (*messaging.Conversation, error) {
	if in.CreatorID == 0 {
		return nil, fmt.Errorf("%w: creator id is required", messaging.ErrValidation)
	}

	now := time.Now().UTC()
	conv, err := messaging.NewGroupConversation(in.Name, now)
	if err != nil {
		return nil, err
	}

	memberIDs := []int64{in.CreatorID}
	seen := map[int64]struct{}{in.CreatorID: {}}
	for _, id := range in.MemberIDs {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		memberIDs = append(memberIDs, id)
	}
	if len(memberIDs) < 2 {
		return nil, fmt.Errorf("%w: a group needs at least one member besides the creator", messaging.ErrValidation)
	}

	for _, id := range memberIDs[1:] {
		allowed, err := uc.Directory.CanMessage(ctx, in.CreatorID, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: user %d is not reachable under the messaging policy", messaging.ErrForbidden, id)
		}
	}

	created, err := uc.Repo.CreateConversation(ctx, conv, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return created, nil
}
