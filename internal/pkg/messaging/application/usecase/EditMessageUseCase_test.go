package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichat/internal/infrastructure/realtime"
	messaging "medichat/internal/pkg/messaging/domain"
	directory "medichat/internal/repository/port"
)

func editFixture() (*fakeRepo, *fakeDirectory) {
	now := time.Now().UTC()
	repo := &fakeRepo{
		getMessage: func(_ context.Context, id int64) (*messaging.Message, error) {
			if id != 100 {
				return nil, messaging.ErrMessageNotFound
			}
			return &messaging.Message{ID: 100, ConversationID: 5, SenderID: 1, Content: "original", Type: messaging.MessageTypeText, CreatedAt: now}, nil
		},
		getConversation: func(_ context.Context, id int64) (*messaging.Conversation, error) {
			return &messaging.Conversation{ID: id}, nil
		},
		updateMessageContent: func(context.Context, int64, string, time.Time) error { return nil },
	}
	dir := &fakeDirectory{users: map[int64]directory.User{
		1: {ID: 1, FullName: "Ana", Role: "staff"},
		2: {ID: 2, FullName: "Bia", Role: "staff"},
		9: {ID: 9, FullName: "Root", Role: directory.RoleAdmin},
	}}
	return repo, dir
}

func TestEditMessageBySender(t *testing.T) {
	repo, dir := editFixture()
	var updatedContent string
	repo.updateMessageContent = func(_ context.Context, id int64, content string, _ time.Time) error {
		assert.Equal(t, int64(100), id)
		updatedContent = content
		return nil
	}
	fo, probe := newFanoutProbe()
	uc := NewEditMessageUseCase(repo, dir, fo)

	msg, err := uc.Execute(context.Background(), EditMessageInput{MessageID: 100, ActorID: 1, NewContent: " fixed typo "})
	require.NoError(t, err)
	assert.Equal(t, "fixed typo", updatedContent)
	assert.True(t, msg.IsEdited)
	require.NotNil(t, msg.EditedAt)

	require.Len(t, probe.pusher.broadcasts, 1)
	b := probe.pusher.broadcasts[0]
	assert.Equal(t, realtime.EventMessageEdited, b.env.Event())
	assert.Equal(t, int64(1), b.excludeUserID)
}

func TestEditMessageByAdminWhoIsNotSender(t *testing.T) {
	repo, dir := editFixture()
	fo, _ := newFanoutProbe()
	uc := NewEditMessageUseCase(repo, dir, fo)

	msg, err := uc.Execute(context.Background(), EditMessageInput{MessageID: 100, ActorID: 9, NewContent: "moderated"})
	require.NoError(t, err)
	assert.Equal(t, "moderated", msg.Content)
}

func TestEditMessageForbiddenForOtherParticipants(t *testing.T) {
	repo, dir := editFixture()
	fo, probe := newFanoutProbe()
	uc := NewEditMessageUseCase(repo, dir, fo)

	_, err := uc.Execute(context.Background(), EditMessageInput{MessageID: 100, ActorID: 2, NewContent: "hijack"})
	assert.ErrorIs(t, err, messaging.ErrForbidden)
	assert.Empty(t, probe.pusher.broadcasts)
}

func TestEditMessageDeletedReadsAsMissing(t *testing.T) {
	repo, dir := editFixture()
	repo.getMessage = func(context.Context, int64) (*messaging.Message, error) {
		return &messaging.Message{ID: 100, ConversationID: 5, SenderID: 1, IsDeleted: true}, nil
	}
	fo, _ := newFanoutProbe()
	uc := NewEditMessageUseCase(repo, dir, fo)

	_, err := uc.Execute(context.Background(), EditMessageInput{MessageID: 100, ActorID: 1, NewContent: "late"})
	assert.ErrorIs(t, err, messaging.ErrMessageNotFound)
}

func TestEditMessageRejectsBlankContent(t *testing.T) {
	repo, dir := editFixture()
	fo, _ := newFanoutProbe()
	uc := NewEditMessageUseCase(repo, dir, fo)

	_, err := uc.Execute(context.Background(), EditMessageInput{MessageID: 100, ActorID: 1, NewContent: "   "})
	assert.ErrorIs(t, err, messaging.ErrValidation)
}
