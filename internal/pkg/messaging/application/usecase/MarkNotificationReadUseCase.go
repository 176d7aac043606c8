package usecase

import (
	"context"
	"fmt"
	"time"

	messaging "medichat/internal/pkg/messaging/domain"
	repository "medichat/internal/pkg/messaging/persistence/repository/port"
)

// MarkNotificationReadInput acknowledges one notification for its owner.
type MarkNotificationReadInput struct {
	NotificationID int64
	UserID         int64
}

// MarkNotificationReadUseCase flips is_read/read_at on a notification. The
// user scoping in the update guards against acknowledging someone else's row.
type MarkNotificationReadUseCase struct {
	Repo repository.MessagingRepository
}

func NewMarkNotificationReadUseCase(repo repository.MessagingRepository) *MarkNotificationReadUseCase {
	return &MarkNotificationReadUseCase{Repo: repo}
}

func (uc *MarkNotificationReadUseCase) Execute(ctx context.Context, in MarkNotificationReadInput) error {
	if err := uc.Repo.MarkNotificationRead(ctx, in.NotificationID, in.UserID, time.Now().UTC()); err != nil {
		if err == messaging.ErrForbidden {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
