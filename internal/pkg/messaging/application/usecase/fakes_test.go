package usecase

import (
	"context"
	"fmt"
	"time"

	"medichat/internal/infrastructure/realtime"
	"medichat/internal/pkg/messaging/application/fanout"
	messaging "medichat/internal/pkg/messaging/domain"
	directory "medichat/internal/repository/port"
)

// fakeRepo implements the messaging repository with per-method func fields.
// A method invoked without its func set panics, which surfaces unexpected
// repository traffic in the failing test.
type fakeRepo struct {
	createConversation   func(ctx context.Context, c messaging.Conversation, participantIDs []int64) (*messaging.Conversation, error)
	getConversation      func(ctx context.Context, id int64) (*messaging.Conversation, error)
	findDirect           func(ctx context.Context, userA, userB int64) (*messaging.Conversation, error)
	listConversations    func(ctx context.Context, userID int64) ([]messaging.ConversationSummary, error)
	isParticipant        func(ctx context.Context, conversationID, userID int64) (bool, error)
	listParticipants     func(ctx context.Context, conversationID int64) ([]messaging.Participant, error)
	setTyping            func(ctx context.Context, conversationID, userID int64, isTyping bool, at time.Time) error
	setMuted             func(ctx context.Context, conversationID, userID int64, muted bool) error
	saveMessage          func(ctx context.Context, m messaging.Message) (*messaging.Message, error)
	getMessage           func(ctx context.Context, id int64) (*messaging.Message, error)
	updateMessageContent func(ctx context.Context, id int64, content string, editedAt time.Time) error
	softDeleteMessage    func(ctx context.Context, id int64) error
	listMessages         func(ctx context.Context, conversationID int64, limit, offset int) ([]messaging.Message, error)
	countUnread          func(ctx context.Context, conversationID, userID int64) (int, error)
	markConversationRead func(ctx context.Context, conversationID, readerID int64, at time.Time) ([]messaging.ReadTransition, error)
	getReceipt           func(ctx context.Context, messageID, userID int64) (*messaging.ReadReceipt, error)
	saveNotification     func(ctx context.Context, n messaging.Notification) (*messaging.Notification, error)
	markNotificationRead func(ctx context.Context, id, userID int64, at time.Time) error
}

func (f *fakeRepo) CreateConversation(ctx context.Context, c messaging.Conversation, participantIDs []int64) (*messaging.Conversation, error) {
	if f.createConversation == nil {
		panic("unexpected CreateConversation call")
	}
	return f.createConversation(ctx, c, participantIDs)
}

func (f *fakeRepo) GetConversation(ctx context.Context, id int64) (*messaging.Conversation, error) {
	if f.getConversation == nil {
		panic("unexpected GetConversation call")
	}
	return f.getConversation(ctx, id)
}

func (f *fakeRepo) FindDirectConversation(ctx context.Context, userA, userB int64) (*messaging.Conversation, error) {
	if f.findDirect == nil {
		panic("unexpected FindDirectConversation call")
	}
	return f.findDirect(ctx, userA, userB)
}

func (f *fakeRepo) ListConversations(ctx context.Context, userID int64) ([]messaging.ConversationSummary, error) {
	if f.listConversations == nil {
		panic("unexpected ListConversations call")
	}
	return f.listConversations(ctx, userID)
}

func (f *fakeRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	if f.isParticipant == nil {
		panic("unexpected IsParticipant call")
	}
	return f.isParticipant(ctx, conversationID, userID)
}

func (f *fakeRepo) ListParticipants(ctx context.Context, conversationID int64) ([]messaging.Participant, error) {
	if f.listParticipants == nil {
		panic("unexpected ListParticipants call")
	}
	return f.listParticipants(ctx, conversationID)
}

func (f *fakeRepo) SetTyping(ctx context.Context, conversationID, userID int64, isTyping bool, at time.Time) error {
	if f.setTyping == nil {
		panic("unexpected SetTyping call")
	}
	return f.setTyping(ctx, conversationID, userID, isTyping, at)
}

func (f *fakeRepo) SetMuted(ctx context.Context, conversationID, userID int64, muted bool) error {
	if f.setMuted == nil {
		panic("unexpected SetMuted call")
	}
	return f.setMuted(ctx, conversationID, userID, muted)
}

func (f *fakeRepo) SaveMessage(ctx context.Context, m messaging.Message) (*messaging.Message, error) {
	if f.saveMessage == nil {
		panic("unexpected SaveMessage call")
	}
	return f.saveMessage(ctx, m)
}

func (f *fakeRepo) GetMessage(ctx context.Context, id int64) (*messaging.Message, error) {
	if f.getMessage == nil {
		panic("unexpected GetMessage call")
	}
	return f.getMessage(ctx, id)
}

func (f *fakeRepo) UpdateMessageContent(ctx context.Context, id int64, content string, editedAt time.Time) error {
	if f.updateMessageContent == nil {
		panic("unexpected UpdateMessageContent call")
	}
	return f.updateMessageContent(ctx, id, content, editedAt)
}

func (f *fakeRepo) SoftDeleteMessage(ctx context.Context, id int64) error {
	if f.softDeleteMessage == nil {
		panic("unexpected SoftDeleteMessage call")
	}
	return f.softDeleteMessage(ctx, id)
}

func (f *fakeRepo) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]messaging.Message, error) {
	if f.listMessages == nil {
		panic("unexpected ListMessages call")
	}
	return f.listMessages(ctx, conversationID, limit, offset)
}

func (f *fakeRepo) CountUnread(ctx context.Context, conversationID, userID int64) (int, error) {
	if f.countUnread == nil {
		panic("unexpected CountUnread call")
	}
	return f.countUnread(ctx, conversationID, userID)
}

func (f *fakeRepo) MarkConversationRead(ctx context.Context, conversationID, readerID int64, at time.Time) ([]messaging.ReadTransition, error) {
	if f.markConversationRead == nil {
		panic("unexpected MarkConversationRead call")
	}
	return f.markConversationRead(ctx, conversationID, readerID, at)
}

func (f *fakeRepo) GetReceipt(ctx context.Context, messageID, userID int64) (*messaging.ReadReceipt, error) {
	if f.getReceipt == nil {
		panic("unexpected GetReceipt call")
	}
	return f.getReceipt(ctx, messageID, userID)
}

func (f *fakeRepo) SaveNotification(ctx context.Context, n messaging.Notification) (*messaging.Notification, error) {
	if f.saveNotification == nil {
		panic("unexpected SaveNotification call")
	}
	return f.saveNotification(ctx, n)
}

func (f *fakeRepo) MarkNotificationRead(ctx context.Context, id, userID int64, at time.Time) error {
	if f.markNotificationRead == nil {
		panic("unexpected MarkNotificationRead call")
	}
	return f.markNotificationRead(ctx, id, userID, at)
}

// fakeDirectory backs identity and policy lookups with a static user map and
// an optional policy override.
type fakeDirectory struct {
	users      map[int64]directory.User
	canMessage func(ctx context.Context, fromID, toID int64) (bool, error)
}

func (f *fakeDirectory) FindByID(_ context.Context, id int64) (*directory.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d not found", id)
	}
	return &u, nil
}

func (f *fakeDirectory) CanMessage(ctx context.Context, fromID, toID int64) (bool, error) {
	if f.canMessage != nil {
		return f.canMessage(ctx, fromID, toID)
	}
	return true, nil
}

// ===================== fan-out capture =====================

type sentFrame struct {
	userID int64
	env    realtime.Envelope
}

type broadcastFrame struct {
	conversationID int64
	env            realtime.Envelope
	excludeUserID  int64
}

type capturePusher struct {
	sent       []sentFrame
	broadcasts []broadcastFrame
}

func (c *capturePusher) Send(userID int64, env realtime.Envelope) bool {
	c.sent = append(c.sent, sentFrame{userID: userID, env: env})
	return true
}

func (c *capturePusher) BroadcastToConversation(conversationID int64, env realtime.Envelope, excludeUserID int64) int {
	c.broadcasts = append(c.broadcasts, broadcastFrame{conversationID: conversationID, env: env, excludeUserID: excludeUserID})
	return 0
}

func (c *capturePusher) IsOnline(int64) bool { return false }

type captureViews struct {
	viewing map[int64]map[int64]bool
}

func (c *captureViews) IsViewing(userID, conversationID int64) bool {
	return c.viewing[userID][conversationID]
}

type captureNotifier struct {
	userIDs []int64
	titles  []string
}

func (c *captureNotifier) Notify(_ context.Context, userID int64, title, _, _ string, _ int64, _ string) (*messaging.Notification, error) {
	c.userIDs = append(c.userIDs, userID)
	c.titles = append(c.titles, title)
	return &messaging.Notification{ID: int64(len(c.userIDs)), UserID: userID}, nil
}

type fanoutProbe struct {
	pusher   *capturePusher
	views    *captureViews
	notifier *captureNotifier
}

func newFanoutProbe() (*fanout.Fanout, *fanoutProbe) {
	probe := &fanoutProbe{
		pusher:   &capturePusher{},
		views:    &captureViews{viewing: map[int64]map[int64]bool{}},
		notifier: &captureNotifier{},
	}
	return fanout.NewFanout(probe.pusher, probe.views, probe.notifier, nil), probe
}

func (p *fanoutProbe) setViewing(userID, conversationID int64) {
	open, ok := p.views.viewing[userID]
	if !ok {
		open = map[int64]bool{}
		p.views.viewing[userID] = open
	}
	open[conversationID] = true
}
