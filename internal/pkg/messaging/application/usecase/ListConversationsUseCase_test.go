package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messaging "medichat/internal/pkg/messaging/domain"
)

func TestListConversationsReturnsSummaries(t *testing.T) {
	repo := &fakeRepo{
		listConversations: func(_ context.Context, userID int64) ([]messaging.ConversationSummary, error) {
			assert.Equal(t, int64(2), userID)
			return []messaging.ConversationSummary{
				{Conversation: messaging.Conversation{ID: 5}, UnreadCount: 3},
				{Conversation: messaging.Conversation{ID: 4}},
			}, nil
		},
	}
	uc := NewListConversationsUseCase(repo)

	summaries, err := uc.Execute(context.Background(), ListConversationsInput{UserID: 2})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 3, summaries[0].UnreadCount)
}

func TestListConversationsRequiresUser(t *testing.T) {
	uc := NewListConversationsUseCase(&fakeRepo{})

	_, err := uc.Execute(context.Background(), ListConversationsInput{})
	assert.ErrorIs(t, err, messaging.ErrValidation)
}
