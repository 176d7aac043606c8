package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"medichat/internal/infrastructure/realtime"
	"medichat/internal/pkg/messaging/application/usecase"
	messaging "medichat/internal/pkg/messaging/domain"
)

// MessagingSocketController handles the websocket endpoint carrying presence,
// view-tracking, typing and the server push channel. Messages themselves are
// sent over REST; the socket only ever receives them.
type MessagingSocketController struct {
	registry        *realtime.Registry
	views           *realtime.ViewTracker
	joinUC          *usecase.JoinConversationUseCase
	typingUC        *usecase.SetTypingUseCase
	inflightTimeout time.Duration
}

func NewMessagingSocketController(registry *realtime.Registry, views *realtime.ViewTracker, joinUC *usecase.JoinConversationUseCase, typingUC *usecase.SetTypingUseCase) *MessagingSocketController {
	return &MessagingSocketController{
		registry:        registry,
		views:           views,
		joinUC:          joinUC,
		typingUC:        typingUC,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The gateway terminates auth and origin checks in front of this service.
		return true
	},
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *MessagingSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.registry.Attach(conn)
		defer ctl.registry.Detach(conn)

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, realtime.NewConnectedEvent(userID))

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				return
			}

			frame, err := realtime.DecodeClientFrame(data)
			if err != nil {
				ctl.reply(conn, realtime.NewErrorEvent("bad_request", "invalid frame"))
				continue
			}

			// Any successfully decoded frame also counts as liveness.
			_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))

			switch frame.Type {
			case realtime.FrameJoinConversation:
				ctl.handleJoin(c, conn, frame)
			case realtime.FrameLeaveConversation:
				ctl.views.Leave(conn.UserID, frame.ConversationID)
			case realtime.FrameTyping:
				ctl.handleTyping(c, conn, frame)
			case realtime.FramePing:
				ctl.reply(conn, realtime.NewPongEvent())
			}
		}
	}
}

func (ctl *MessagingSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame realtime.ClientFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}
	ctl.views.Join(conn.UserID, frame.ConversationID)
}

func (ctl *MessagingSocketController) handleTyping(c *gin.Context, conn *realtime.Connection, frame realtime.ClientFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.typingUC.Execute(ctx, usecase.SetTypingInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
		IsTyping:       frame.IsTyping,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, err)
	}
}

func (ctl *MessagingSocketController) replyUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.reply(conn, realtime.NewErrorEvent("internal_error", "unexpected persistence error"))
	case errors.Is(err, messaging.ErrNotParticipant):
		ctl.reply(conn, realtime.NewErrorEvent("forbidden", "user is not a participant in this conversation"))
	default:
		ctl.reply(conn, realtime.NewErrorEvent("bad_request", err.Error()))
	}
}

func (ctl *MessagingSocketController) reply(conn *realtime.Connection, env realtime.Envelope) {
	if payload, err := realtime.Encode(env); err == nil {
		_ = conn.Send(payload)
	}
}
