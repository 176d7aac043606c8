package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	qport "medichat/internal/infrastructure/queue/port"
	"medichat/internal/pkg/messaging/application/task"
	messaging "medichat/internal/pkg/messaging/domain"
)

// NotificationStore is the slice of the repository the dispatcher needs.
type NotificationStore interface {
	SaveNotification(ctx context.Context, n messaging.Notification) (*messaging.Notification, error)
}

// Dispatcher creates the durable fallback Notification for participants who
// were not actively viewing the conversation, then hands the best-effort live
// toast to the background queue. The row is ground truth; losing the toast
// has no effect on correctness.
type Dispatcher struct {
	store NotificationStore
	queue qport.Client
	log   *slog.Logger
}

func NewDispatcher(store NotificationStore, queue qport.Client, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{store: store, queue: queue, log: log}
}

// Notify persists the notification and enqueues its toast push. The durable
// insert is the only failure that propagates; enqueue problems are logged and
// swallowed.
func (d *Dispatcher) Notify(ctx context.Context, userID int64, title, message, referenceType string, referenceID int64, actionURL string) (*messaging.Notification, error) {
	saved, err := d.store.SaveNotification(ctx, messaging.Notification{
		UserID:        userID,
		Title:         title,
		Message:       message,
		Type:          "chat_message",
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		ActionURL:     actionURL,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("dispatcher: save notification: %w", err)
	}

	if d.queue != nil {
		payload, err := json.Marshal(task.NotifyPushPayload{
			NotificationID: saved.ID,
			UserID:         saved.UserID,
			Title:          saved.Title,
			Message:        saved.Message,
			ReferenceType:  saved.ReferenceType,
			ReferenceID:    saved.ReferenceID,
			ActionURL:      saved.ActionURL,
		})
		if err == nil {
			_, err = d.queue.Enqueue(ctx,
				qport.Task{Type: task.NotifyPushTaskType, Payload: payload},
				qport.EnqueueOption{Queue: "notify", MaxRetry: 5})
		}
		if err != nil {
			d.log.Warn("dispatcher: toast enqueue failed", "user_id", userID, "error", err)
		}
	}

	return saved, nil
}
