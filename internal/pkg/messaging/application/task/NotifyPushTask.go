package task

import (
	"context"
	"encoding/json"

	qport "medichat/internal/infrastructure/queue/port"
	"medichat/internal/infrastructure/realtime"
)

// NotifyPushTaskType is the queue task name for pushing a live toast for an
// already-persisted notification. The durable row exists before the task is
// enqueued, so the handler is free to give up silently.
const NotifyPushTaskType = "messaging:notify_push"

// NotifyPushPayload is the JSON payload transported via the queue.
type NotifyPushPayload struct {
	NotificationID int64  `json:"notificationId"`
	UserID         int64  `json:"userId"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	ReferenceType  string `json:"referenceType,omitempty"`
	ReferenceID    int64  `json:"referenceId,omitempty"`
	ActionURL      string `json:"actionUrl,omitempty"`
}

// RegisterNotifyPushTask binds the toast-push handler to the provided server.
// The push targets any open connection of the recipient, including one viewing
// a different conversation; a recipient with no connection is a successful
// no-op (the notification row is the durable record).
func RegisterNotifyPushTask(srv qport.Server, registry *realtime.Registry) {
	srv.Register(NotifyPushTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyPushPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		registry.Send(p.UserID, realtime.NotificationEvent{
			Type:           realtime.EventNotification,
			NotificationID: p.NotificationID,
			Title:          p.Title,
			Message:        p.Message,
			ReferenceType:  p.ReferenceType,
			ReferenceID:    p.ReferenceID,
			ActionURL:      p.ActionURL,
		})
		return nil
	})
}
