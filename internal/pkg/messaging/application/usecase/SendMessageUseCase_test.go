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

func sendMessageFixture(t *testing.T) (*fakeRepo, *fakeDirectory) {
	t.Helper()
	now := time.Now().UTC()
	repo := &fakeRepo{
		isParticipant: func(_ context.Context, conversationID, userID int64) (bool, error) {
			return userID == 1 || userID == 2 || userID == 3, nil
		},
		getConversation: func(_ context.Context, id int64) (*messaging.Conversation, error) {
			return &messaging.Conversation{ID: id, CreatedAt: now, UpdatedAt: now}, nil
		},
		saveMessage: func(_ context.Context, m messaging.Message) (*messaging.Message, error) {
			saved := m
			saved.ID = 100
			return &saved, nil
		},
		listParticipants: func(_ context.Context, conversationID int64) ([]messaging.Participant, error) {
			return []messaging.Participant{
				{ConversationID: conversationID, UserID: 1},
				{ConversationID: conversationID, UserID: 2},
				{ConversationID: conversationID, UserID: 3},
			}, nil
		},
	}
	dir := &fakeDirectory{users: map[int64]directory.User{
		1: {ID: 1, FullName: "Ana Souza", Role: "staff"},
	}}
	return repo, dir
}

func TestSendMessagePersistsThenFansOut(t *testing.T) {
	repo, dir := sendMessageFixture(t)
	fo, probe := newFanoutProbe()
	probe.setViewing(2, 5) // user 2 has the conversation open

	uc := NewSendMessageUseCase(repo, dir, fo)
	saved, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 5,
		SenderID:       1,
		Content:        "  hello  ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), saved.ID)
	assert.Equal(t, "hello", saved.Content)

	// Live broadcast to the conversation, sender excluded.
	require.Len(t, probe.pusher.broadcasts, 1)
	b := probe.pusher.broadcasts[0]
	assert.Equal(t, int64(5), b.conversationID)
	assert.Equal(t, int64(1), b.excludeUserID)
	assert.Equal(t, realtime.EventNewMessage, b.env.Event())

	// The non-viewing participant falls back to a durable notification.
	assert.Equal(t, []int64{3}, probe.notifier.userIDs)
	assert.Equal(t, []string{"Ana Souza"}, probe.notifier.titles)
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	repo, dir := sendMessageFixture(t)
	fo, _ := newFanoutProbe()
	uc := NewSendMessageUseCase(repo, dir, fo)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 5,
		SenderID:       99,
		Content:        "hi",
	})
	assert.ErrorIs(t, err, messaging.ErrNotParticipant)
}

func TestSendMessageRejectsBlankContent(t *testing.T) {
	repo, dir := sendMessageFixture(t)
	fo, _ := newFanoutProbe()
	uc := NewSendMessageUseCase(repo, dir, fo)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 5,
		SenderID:       1,
		Content:        "   ",
	})
	assert.ErrorIs(t, err, messaging.ErrValidation)
}

func TestSendMessageValidatesReplyTarget(t *testing.T) {
	repo, dir := sendMessageFixture(t)
	repo.getMessage = func(_ context.Context, id int64) (*messaging.Message, error) {
		if id == 44 {
			return &messaging.Message{ID: 44, ConversationID: 9}, nil // other conversation
		}
		return nil, messaging.ErrMessageNotFound
	}
	fo, _ := newFanoutProbe()
	uc := NewSendMessageUseCase(repo, dir, fo)

	missing := int64(404)
	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 5, SenderID: 1, Content: "hi", ReplyToID: &missing,
	})
	assert.ErrorIs(t, err, messaging.ErrValidation)

	foreign := int64(44)
	_, err = uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 5, SenderID: 1, Content: "hi", ReplyToID: &foreign,
	})
	assert.ErrorIs(t, err, messaging.ErrValidation)
}

func TestSendMessageSurvivesFanoutListFailure(t *testing.T) {
	repo, dir := sendMessageFixture(t)
	repo.listParticipants = func(context.Context, int64) ([]messaging.Participant, error) {
		return nil, assert.AnError
	}
	fo, probe := newFanoutProbe()
	uc := NewSendMessageUseCase(repo, dir, fo)

	saved, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 5, SenderID: 1, Content: "hi",
	})
	require.NoError(t, err, "the commit already happened; the caller gets the row")
	assert.Equal(t, int64(100), saved.ID)
	assert.Empty(t, probe.pusher.broadcasts)
	assert.Empty(t, probe.notifier.userIDs)
}

func TestSendMessagePersistenceFailurePropagates(t *testing.T) {
	repo, dir := sendMessageFixture(t)
	repo.saveMessage = func(context.Context, messaging.Message) (*messaging.Message, error) {
		return nil, assert.AnError
	}
	fo, probe := newFanoutProbe()
	uc := NewSendMessageUseCase(repo, dir, fo)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 5, SenderID: 1, Content: "hi",
	})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, probe.pusher.broadcasts, "nothing is announced for an uncommitted message")
}
