package usecase

import (
	"context"
	"fmt"

	"medichat/internal/pkg/messaging/application/fanout"
	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
	directory "medichat/internal/repository/port"
)

// DeleteMessageInput carries a soft-delete request.
type DeleteMessageInput struct {
	MessageID int64
	ActorID   int64
}

// DeleteMessageUseCase soft-deletes a message. Only the original sender or an
// admin may delete; the content stays in the row for audit but the message is
// excluded from all subsequent listings and fan-out.
type DeleteMessageUseCase struct {
	Repo      repository.MessagingRepository
	Directory directory.UserDirectory
	Fanout    *fanout.Fanout
}

func NewDeleteMessageUseCase(repo repository.MessagingRepository, dir directory.UserDirectory, fo *fanout.Fanout) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Repo: repo, Directory: dir, Fanout: fo}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, in DeleteMessageInput) error {
	msg, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if err != nil {
		return err
	}
	if msg.IsDeleted {
		return messaging.ErrMessageNotFound
	}

	actor, err := uc.Directory.FindByID(ctx, in.ActorID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !msg.EditableBy(in.ActorID, actor.IsAdmin()) {
		return messaging.ErrForbidden
	}

	if err := uc.Repo.SoftDeleteMessage(ctx, in.MessageID); err != nil {
		if err == messaging.ErrMessageNotFound {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Fanout.MessageDeleted(msg.ConversationID, msg.ID, in.ActorID)
	return nil
}
