package usecase

import (
	"context"
	"fmt"

	"medichat/internal/pkg/messaging/application/fanout"
	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
	directory "medichat/internal/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	ConversationID int64
	SenderID       int64
	Content        string
	Type           messaging.MessageType
	ReplyToID      *int64
	ReferenceID    *int64
}

// SendMessageUseCase persists a message atomically with the conversation
// activity bump, then fans it out. The fan-out runs strictly after commit;
// its failures never surface to the sender, whose response reflects durable
// state only.
type SendMessageUseCase struct {
	Repo      repository.MessagingRepository
	Directory directory.UserDirectory
	Fanout    *fanout.Fanout
}

func NewSendMessageUseCase(repo repository.MessagingRepository, dir directory.UserDirectory, fo *fanout.Fanout) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Directory: dir, Fanout: fo}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*messaging.Message, error) {
	if in.ConversationID == 0 || in.SenderID == 0 {
		return nil, fmt.Errorf("%w: conversation id and sender id are required", messaging.ErrValidation)
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, messaging.ErrNotParticipant
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}

	msg, err := messaging.NewMessage(messaging.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        in.Content,
		Type:           in.Type,
		ReplyToID:      in.ReplyToID,
		ReferenceID:    in.ReferenceID,
	})
	if err != nil {
		return nil, err
	}

	// A reply link is a weak reference, but it must at least point inside the
	// same conversation when it resolves at all.
	if msg.ReplyToID != nil {
		target, err := uc.Repo.GetMessage(ctx, *msg.ReplyToID)
		if err != nil {
			return nil, fmt.Errorf("%w: reply target does not exist", messaging.ErrValidation)
		}
		if target.ConversationID != in.ConversationID {
			return nil, fmt.Errorf("%w: reply target belongs to another conversation", messaging.ErrValidation)
		}
	}

	saved, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	participants, err := uc.Repo.ListParticipants(ctx, in.ConversationID)
	if err != nil {
		// The message is committed; the client will see it on re-fetch even
		// though live fan-out was skipped.
		return saved, nil
	}

	uc.Fanout.MessageSent(ctx, *conv, *saved, uc.senderName(ctx, in.SenderID), participants)
	return saved, nil
}

func (uc *SendMessageUseCase) senderName(ctx context.Context, senderID int64) string {
	sender, err := uc.Directory.FindByID(ctx, senderID)
	if err != nil {
		return ""
	}
	return sender.FullName
}
