package usecase

import (
	"context"
	"fmt"

	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
	directory "medichat/internal/repository/port"
)

// ListMessagesInput carries pagination for one conversation's history.
type ListMessagesInput struct {
	ConversationID int64
	UserID         int64
	Limit          int
	Offset         int
}

// MessageView is a message plus its resolved reference preview, when the
// message points at an external entity.
type MessageView struct {
	Message   messaging.Message
	Reference *directory.ReferencePreview
}

// ListMessagesUseCase returns non-deleted messages in (created_at, id) order,
// enriches reference messages with display previews, and marks the
// conversation read as a side effect of viewing it.
type ListMessagesUseCase struct {
	Repo       repository.MessagingRepository
	References directory.ReferenceDirectory
	MarkRead   *MarkConversationReadUseCase
}

func NewListMessagesUseCase(repo repository.MessagingRepository, refs directory.ReferenceDirectory, markRead *MarkConversationReadUseCase) *ListMessagesUseCase {
	return &ListMessagesUseCase{Repo: repo, References: refs, MarkRead: markRead}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, in ListMessagesInput) ([]MessageView, error) {
	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, messaging.ErrNotParticipant
	}

	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, MessageView{Message: m, Reference: uc.resolveReference(ctx, m)})
	}

	if err := uc.MarkRead.Execute(ctx, MarkConversationReadInput{ConversationID: in.ConversationID, ReaderID: in.UserID}); err != nil {
		return nil, err
	}
	return views, nil
}

// resolveReference is best-effort display enrichment: a failed or missing
// lookup leaves the reference nil without failing the listing.
func (uc *ListMessagesUseCase) resolveReference(ctx context.Context, m messaging.Message) *directory.ReferencePreview {
	if uc.References == nil || m.ReferenceID == nil {
		return nil
	}
	switch m.Type {
	case messaging.MessageTypeFundRequestRef:
		p, err := uc.References.FundRequest(ctx, *m.ReferenceID)
		if err != nil {
			return nil
		}
		return p
	case messaging.MessageTypeProductRef:
		p, err := uc.References.Product(ctx, *m.ReferenceID)
		if err != nil {
			return nil
		}
		return p
	}
	return nil
}
