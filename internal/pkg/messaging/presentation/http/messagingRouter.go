package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "medichat/internal/infrastructure/cache/port"
	qport "medichat/internal/infrastructure/queue/port"
	"medichat/internal/infrastructure/realtime"
	"medichat/internal/pkg/messaging/application/fanout"
	"medichat/internal/pkg/messaging/application/usecase"
	repoAdapter "medichat/internal/pkg/messaging/persistence/repository/adapter"
	"medichat/internal/pkg/messaging/presentation/controller"
	dirAdapter "medichat/internal/repository/adapter"
)

// Deps carries the infrastructure the messaging endpoints are wired with.
type Deps struct {
	Pool     *pgxpool.Pool
	Registry *realtime.Registry
	Views    *realtime.ViewTracker
	Queue    qport.Client
	Cache    cacheport.Cache
	Log      *slog.Logger
}

// RegisterRoutes registers messaging endpoints under the given router group.
// It constructs the repository, directory, fan-out and per-endpoint
// controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	repo := repoAdapter.NewPgMessagingRepository(deps.Pool)
	users := dirAdapter.NewPgUserDirectory(deps.Pool)
	refs := dirAdapter.NewCachedReferenceDirectory(dirAdapter.NewPgReferenceDirectory(deps.Pool), deps.Cache)

	dispatcher := fanout.NewDispatcher(repo, deps.Queue, deps.Log)
	fo := fanout.NewFanout(deps.Registry, deps.Views, dispatcher, deps.Log)

	markReadUC := usecase.NewMarkConversationReadUseCase(repo, fo)

	createCtl := controller.NewCreateConversationController(
		usecase.NewGetOrCreateConversationUseCase(repo, users),
		usecase.NewCreateGroupConversationUseCase(repo, users),
	)
	listConvCtl := controller.NewListConversationsController(usecase.NewListConversationsUseCase(repo), deps.Registry)
	getMsgCtl := controller.NewGetMessagesController(usecase.NewListMessagesUseCase(repo, refs, markReadUC))
	sendMsgCtl := controller.NewSendMessageController(usecase.NewSendMessageUseCase(repo, users, fo))
	editMsgCtl := controller.NewEditMessageController(usecase.NewEditMessageUseCase(repo, users, fo))
	deleteMsgCtl := controller.NewDeleteMessageController(usecase.NewDeleteMessageUseCase(repo, users, fo))
	markReadCtl := controller.NewMarkReadController(markReadUC)
	typingUC := usecase.NewSetTypingUseCase(repo, fo)
	typingCtl := controller.NewTypingController(typingUC)
	muteCtl := controller.NewMuteController(usecase.NewMuteConversationUseCase(repo))
	notifReadCtl := controller.NewNotificationReadController(usecase.NewMarkNotificationReadUseCase(repo))
	socketCtl := controller.NewMessagingSocketController(deps.Registry, deps.Views, usecase.NewJoinConversationUseCase(repo), typingUC)

	g.POST("/conversations", createCtl.Handle())
	g.GET("/conversations", listConvCtl.Handle())
	g.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())
	g.POST("/conversations/:conversationId/messages", sendMsgCtl.Handle())
	g.POST("/conversations/:conversationId/read", markReadCtl.Handle())
	g.POST("/conversations/:conversationId/typing", typingCtl.Handle())
	g.POST("/conversations/:conversationId/mute", muteCtl.Handle())
	g.PUT("/messages/:messageId", editMsgCtl.Handle())
	g.DELETE("/messages/:messageId", deleteMsgCtl.Handle())
	g.POST("/notifications/:notificationId/read", notifReadCtl.Handle())

	// Realtime channel: presence, view tracking, typing, server push.
	g.GET("/ws", socketCtl.Handle())
}
