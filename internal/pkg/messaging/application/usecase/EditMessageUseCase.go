package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"medichat/internal/pkg/messaging/application/fanout"
	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
	directory "medichat/internal/repository/port"
)

// EditMessageInput carries an edit request.
type EditMessageInput struct {
	MessageID  int64
	ActorID    int64
	NewContent string
}

// EditMessageUseCase updates a message's content. Only the original sender or
// an admin may edit; the change is broadcast to other viewers after commit.
type EditMessageUseCase struct {
	Repo      repository.MessagingRepository
	Directory directory.UserDirectory
	Fanout    *fanout.Fanout
}

func NewEditMessageUseCase(repo repository.MessagingRepository, dir directory.UserDirectory, fo *fanout.Fanout) *EditMessageUseCase {
	return &EditMessageUseCase{Repo: repo, Directory: dir, Fanout: fo}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, in EditMessageInput) (*messaging.Message, error) {
	content := strings.TrimSpace(in.NewContent)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", messaging.ErrValidation)
	}

	msg, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if err != nil {
		return nil, err
	}
	if msg.IsDeleted {
		return nil, messaging.ErrMessageNotFound
	}

	actor, err := uc.Directory.FindByID(ctx, in.ActorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !msg.EditableBy(in.ActorID, actor.IsAdmin()) {
		return nil, messaging.ErrForbidden
	}

	editedAt := time.Now().UTC()
	if err := uc.Repo.UpdateMessageContent(ctx, in.MessageID, content, editedAt); err != nil {
		if err == messaging.ErrMessageNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msg.Content = content
	msg.IsEdited = true
	msg.EditedAt = &editedAt

	conv, err := uc.Repo.GetConversation(ctx, msg.ConversationID)
	if err == nil {
		uc.Fanout.MessageEdited(*conv, *msg, uc.senderName(ctx, msg.SenderID), in.ActorID)
	}
	return msg, nil
}

func (uc *EditMessageUseCase) senderName(ctx context.Context, senderID int64) string {
	sender, err := uc.Directory.FindByID(ctx, senderID)
	if err != nil {
		return ""
	}
	return sender.FullName
}
