package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichat/internal/infrastructure/realtime"
	messaging "medichat/internal/pkg/messaging/domain"
)

func TestMarkConversationReadNotifiesSenders(t *testing.T) {
	var stampedAt time.Time
	repo := &fakeRepo{
		isParticipant: func(context.Context, int64, int64) (bool, error) { return true, nil },
		markConversationRead: func(_ context.Context, conversationID, readerID int64, at time.Time) ([]messaging.ReadTransition, error) {
			assert.Equal(t, int64(5), conversationID)
			assert.Equal(t, int64(2), readerID)
			stampedAt = at
			return []messaging.ReadTransition{
				{MessageID: 10, SenderID: 1},
				{MessageID: 11, SenderID: 1},
				{MessageID: 12, SenderID: 3},
			}, nil
		},
	}
	fo, probe := newFanoutProbe()
	uc := NewMarkConversationReadUseCase(repo, fo)

	err := uc.Execute(context.Background(), MarkConversationReadInput{ConversationID: 5, ReaderID: 2})
	require.NoError(t, err)

	require.Len(t, probe.pusher.sent, 3)
	for i, wantSender := range []int64{1, 1, 3} {
		assert.Equal(t, wantSender, probe.pusher.sent[i].userID)
		event, ok := probe.pusher.sent[i].env.(realtime.MessageReadEvent)
		require.True(t, ok)
		assert.Equal(t, int64(2), event.ReaderID)
		assert.Equal(t, stampedAt, event.ReadAt)
	}
}

func TestMarkConversationReadNothingUnread(t *testing.T) {
	repo := &fakeRepo{
		isParticipant: func(context.Context, int64, int64) (bool, error) { return true, nil },
		markConversationRead: func(context.Context, int64, int64, time.Time) ([]messaging.ReadTransition, error) {
			return nil, nil
		},
	}
	fo, probe := newFanoutProbe()
	uc := NewMarkConversationReadUseCase(repo, fo)

	err := uc.Execute(context.Background(), MarkConversationReadInput{ConversationID: 5, ReaderID: 2})
	require.NoError(t, err)
	assert.Empty(t, probe.pusher.sent, "re-reading an already-read conversation emits nothing")
}

func TestMarkConversationReadRejectsNonParticipant(t *testing.T) {
	repo := &fakeRepo{
		isParticipant: func(context.Context, int64, int64) (bool, error) { return false, nil },
	}
	fo, _ := newFanoutProbe()
	uc := NewMarkConversationReadUseCase(repo, fo)

	err := uc.Execute(context.Background(), MarkConversationReadInput{ConversationID: 5, ReaderID: 99})
	assert.ErrorIs(t, err, messaging.ErrNotParticipant)
}
