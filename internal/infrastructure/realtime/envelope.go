package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType tags a server->client envelope.
type EventType string

const (
	EventConnected      EventType = "connected"
	EventNewMessage     EventType = "new_message"
	EventMessageEdited  EventType = "message_edited"
	EventMessageDeleted EventType = "message_deleted"
	EventMessageRead    EventType = "message_read"
	EventTyping         EventType = "typing"
	EventUserOnline     EventType = "user_online"
	EventUserOffline    EventType = "user_offline"
	EventNotification   EventType = "notification"
	EventPong           EventType = "pong"
	EventError          EventType = "error"
)

// Envelope is a server->client frame. Implementations are the closed set of
// event structs in this file; the Event method pins the tag the client
// dispatches on.
type Envelope interface {
	Event() EventType
}

// Encode marshals an envelope to its wire form.
func Encode(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}

// MessagePayload is the wire shape of a message inside message events.
type MessagePayload struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	SenderName     string     `json:"sender_name,omitempty"`
	Content        string     `json:"content"`
	MessageType    string     `json:"message_type"`
	ReplyToID      *int64     `json:"reply_to_id,omitempty"`
	ReferenceID    *int64     `json:"reference_id,omitempty"`
	IsEdited       bool       `json:"is_edited"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ConnectedEvent struct {
	Type   EventType `json:"type"`
	UserID int64     `json:"user_id"`
}

func NewConnectedEvent(userID int64) ConnectedEvent {
	return ConnectedEvent{Type: EventConnected, UserID: userID}
}

func (e ConnectedEvent) Event() EventType { return EventConnected }

type NewMessageEvent struct {
	Type           EventType      `json:"type"`
	ConversationID int64          `json:"conversation_id"`
	Message        MessagePayload `json:"message"`
}

func NewMessageEnvelope(conversationID int64, msg MessagePayload) NewMessageEvent {
	return NewMessageEvent{Type: EventNewMessage, ConversationID: conversationID, Message: msg}
}

func (e NewMessageEvent) Event() EventType { return EventNewMessage }

type MessageEditedEvent struct {
	Type           EventType      `json:"type"`
	ConversationID int64          `json:"conversation_id"`
	Message        MessagePayload `json:"message"`
}

func NewMessageEditedEvent(conversationID int64, msg MessagePayload) MessageEditedEvent {
	return MessageEditedEvent{Type: EventMessageEdited, ConversationID: conversationID, Message: msg}
}

func (e MessageEditedEvent) Event() EventType { return EventMessageEdited }

type MessageDeletedEvent struct {
	Type           EventType `json:"type"`
	ConversationID int64     `json:"conversation_id"`
	MessageID      int64     `json:"message_id"`
}

func NewMessageDeletedEvent(conversationID, messageID int64) MessageDeletedEvent {
	return MessageDeletedEvent{Type: EventMessageDeleted, ConversationID: conversationID, MessageID: messageID}
}

func (e MessageDeletedEvent) Event() EventType { return EventMessageDeleted }

type MessageReadEvent struct {
	Type           EventType `json:"type"`
	ConversationID int64     `json:"conversation_id"`
	MessageID      int64     `json:"message_id"`
	ReaderID       int64     `json:"reader_id"`
	ReadAt         time.Time `json:"read_at"`
}

func NewMessageReadEvent(conversationID, messageID, readerID int64, readAt time.Time) MessageReadEvent {
	return MessageReadEvent{
		Type:           EventMessageRead,
		ConversationID: conversationID,
		MessageID:      messageID,
		ReaderID:       readerID,
		ReadAt:         readAt,
	}
}

func (e MessageReadEvent) Event() EventType { return EventMessageRead }

type TypingEvent struct {
	Type           EventType `json:"type"`
	ConversationID int64     `json:"conversation_id"`
	UserID         int64     `json:"user_id"`
	IsTyping       bool      `json:"is_typing"`
}

func NewTypingEvent(conversationID, userID int64, isTyping bool) TypingEvent {
	return TypingEvent{Type: EventTyping, ConversationID: conversationID, UserID: userID, IsTyping: isTyping}
}

func (e TypingEvent) Event() EventType { return EventTyping }

type PresenceEvent struct {
	Type   EventType `json:"type"`
	UserID int64     `json:"user_id"`
}

func NewUserOnlineEvent(userID int64) PresenceEvent {
	return PresenceEvent{Type: EventUserOnline, UserID: userID}
}

func NewUserOfflineEvent(userID int64) PresenceEvent {
	return PresenceEvent{Type: EventUserOffline, UserID: userID}
}

func (e PresenceEvent) Event() EventType { return e.Type }

type NotificationEvent struct {
	Type           EventType `json:"type"`
	NotificationID int64     `json:"notification_id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    int64     `json:"reference_id,omitempty"`
	ActionURL      string    `json:"action_url,omitempty"`
}

func (e NotificationEvent) Event() EventType { return EventNotification }

type PongEvent struct {
	Type EventType `json:"type"`
}

func NewPongEvent() PongEvent { return PongEvent{Type: EventPong} }

func (e PongEvent) Event() EventType { return EventPong }

type ErrorEvent struct {
	Type    EventType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

func NewErrorEvent(code, message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Code: code, Message: message}
}

func (e ErrorEvent) Event() EventType { return EventError }

// FrameType tags a client->server frame.
type FrameType string

const (
	FrameJoinConversation  FrameType = "join_conversation"
	FrameLeaveConversation FrameType = "leave_conversation"
	FrameTyping            FrameType = "typing"
	FramePing              FrameType = "ping"
)

// ClientFrame is the decoded client->server envelope. The type field selects
// which of the remaining fields are meaningful.
type ClientFrame struct {
	Type           FrameType `json:"type"`
	ConversationID int64     `json:"conversation_id,omitempty"`
	IsTyping       bool      `json:"is_typing,omitempty"`
}

// DecodeClientFrame parses and validates an inbound frame against the closed
// set of frame types.
func DecodeClientFrame(data []byte) (ClientFrame, error) {
	var f ClientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return ClientFrame{}, fmt.Errorf("realtime: decode frame: %w", err)
	}
	switch f.Type {
	case FrameJoinConversation, FrameLeaveConversation:
		if f.ConversationID == 0 {
			return ClientFrame{}, fmt.Errorf("realtime: %s frame requires conversation_id", f.Type)
		}
	case FrameTyping:
		if f.ConversationID == 0 {
			return ClientFrame{}, fmt.Errorf("realtime: typing frame requires conversation_id")
		}
	case FramePing:
	default:
		return ClientFrame{}, fmt.Errorf("realtime: unknown frame type %q", f.Type)
	}
	return f, nil
}
