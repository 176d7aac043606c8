package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichat/internal/infrastructure/realtime"
	messaging "medichat/internal/pkg/messaging/domain"
	directory "medichat/internal/repository/port"
)

func deleteFixture() (*fakeRepo, *fakeDirectory) {
	repo := &fakeRepo{
		getMessage: func(_ context.Context, id int64) (*messaging.Message, error) {
			if id != 100 {
				return nil, messaging.ErrMessageNotFound
			}
			return &messaging.Message{ID: 100, ConversationID: 5, SenderID: 1, Content: "to be removed"}, nil
		},
		softDeleteMessage: func(context.Context, int64) error { return nil },
	}
	dir := &fakeDirectory{users: map[int64]directory.User{
		1: {ID: 1, FullName: "Ana", Role: "staff"},
		2: {ID: 2, FullName: "Bia", Role: "staff"},
		9: {ID: 9, FullName: "Root", Role: directory.RoleAdmin},
	}}
	return repo, dir
}

func TestDeleteMessageByAdmin(t *testing.T) {
	repo, dir := deleteFixture()
	var deletedID int64
	repo.softDeleteMessage = func(_ context.Context, id int64) error {
		deletedID = id
		return nil
	}
	fo, probe := newFanoutProbe()
	uc := NewDeleteMessageUseCase(repo, dir, fo)

	err := uc.Execute(context.Background(), DeleteMessageInput{MessageID: 100, ActorID: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(100), deletedID)

	require.Len(t, probe.pusher.broadcasts, 1)
	b := probe.pusher.broadcasts[0]
	assert.Equal(t, realtime.EventMessageDeleted, b.env.Event())
	assert.Equal(t, int64(5), b.conversationID)
	assert.Equal(t, int64(9), b.excludeUserID)
}

func TestDeleteMessageForbiddenForNonSenderNonAdmin(t *testing.T) {
	repo, dir := deleteFixture()
	fo, probe := newFanoutProbe()
	uc := NewDeleteMessageUseCase(repo, dir, fo)

	err := uc.Execute(context.Background(), DeleteMessageInput{MessageID: 100, ActorID: 2})
	assert.ErrorIs(t, err, messaging.ErrForbidden)
	assert.Empty(t, probe.pusher.broadcasts)
}

func TestDeleteMessageAlreadyDeleted(t *testing.T) {
	repo, dir := deleteFixture()
	repo.getMessage = func(context.Context, int64) (*messaging.Message, error) {
		return &messaging.Message{ID: 100, ConversationID: 5, SenderID: 1, IsDeleted: true}, nil
	}
	fo, _ := newFanoutProbe()
	uc := NewDeleteMessageUseCase(repo, dir, fo)

	err := uc.Execute(context.Background(), DeleteMessageInput{MessageID: 100, ActorID: 1})
	assert.ErrorIs(t, err, messaging.ErrMessageNotFound)
}

func TestDeleteMessageUnknownID(t *testing.T) {
	repo, dir := deleteFixture()
	fo, _ := newFanoutProbe()
	uc := NewDeleteMessageUseCase(repo, dir, fo)

	err := uc.Execute(context.Background(), DeleteMessageInput{MessageID: 404, ActorID: 1})
	assert.ErrorIs(t, err, messaging.ErrMessageNotFound)
}
