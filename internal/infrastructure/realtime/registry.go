package realtime

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Registry owns the mapping user -> one live connection, plus presence
// broadcast on attach/detach. All map mutation happens under a single lock so
// a REST-triggered send can never race a concurrent disconnect for the same
// user. Delivery here is strictly best-effort: missing handles and failed
// writes are logged no-ops, durability lives at the persistence layer.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]*Connection

	views *ViewTracker
	log   *slog.Logger
}

// NewRegistry constructs a Registry that consults views for conversation
// fan-out targets.
func NewRegistry(views *ViewTracker, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		conns: make(map[int64]*Connection),
		views: views,
		log:   log,
	}
}

// Attach registers a connection for its user, closing any prior handle before
// the replacement becomes visible (guards against connection leaks on fast
// reconnect), and announces the user online to everyone else. View state
// belongs to the replaced session and is dropped with it; the new client
// re-joins whatever it has open.
func (r *Registry) Attach(conn *Connection) {
	r.mu.Lock()
	previous := r.conns[conn.UserID]
	r.conns[conn.UserID] = conn
	r.mu.Unlock()

	if previous != nil {
		if r.views != nil {
			r.views.ClearUser(conn.UserID)
		}
		previous.Close(4001, "session replaced")
	}

	conn.Start()
	r.broadcastAll(NewUserOnlineEvent(conn.UserID), conn.UserID)
}

// Detach removes the connection if it is still the user's current one, clears
// the user's view state, and announces the user offline. A stale handle (one
// already replaced by a reconnect) is ignored.
func (r *Registry) Detach(conn *Connection) {
	r.mu.Lock()
	current, ok := r.conns[conn.UserID]
	if !ok || current.ID != conn.ID {
		r.mu.Unlock()
		return
	}
	delete(r.conns, conn.UserID)
	r.mu.Unlock()

	if r.views != nil {
		r.views.ClearUser(conn.UserID)
	}
	conn.Close(websocket.CloseNormalClosure, "session closed")
	r.broadcastAll(NewUserOfflineEvent(conn.UserID), conn.UserID)
}

// Send delivers the envelope to the user's live connection, if any.
// Returns whether the write was accepted; failures are logged, never raised.
func (r *Registry) Send(userID int64, env Envelope) bool {
	r.mu.RLock()
	conn := r.conns[userID]
	r.mu.RUnlock()
	if conn == nil {
		return false
	}

	payload, err := Encode(env)
	if err != nil {
		r.log.Warn("realtime: encode envelope", "event", env.Event(), "error", err)
		return false
	}
	if err := conn.Send(payload); err != nil {
		r.log.Warn("realtime: send failed", "user_id", userID, "event", env.Event(), "error", err)
		return false
	}
	return true
}

// BroadcastToConversation delivers the envelope to every live participant
// currently viewing the conversation, excluding excludeUserID when non-zero.
// Returns the number of accepted writes.
func (r *Registry) BroadcastToConversation(conversationID int64, env Envelope, excludeUserID int64) int {
	if r.views == nil {
		return 0
	}
	delivered := 0
	for _, userID := range r.views.Viewers(conversationID) {
		if excludeUserID != 0 && userID == excludeUserID {
			continue
		}
		if r.Send(userID, env) {
			delivered++
		}
	}
	return delivered
}

// IsOnline reports whether the user has a live connection.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Close terminates all tracked connections and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.conns = make(map[int64]*Connection)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "registry shutdown")
	}
}

// broadcastAll fans an envelope out to every connected user except exclude.
func (r *Registry) broadcastAll(env Envelope, excludeUserID int64) {
	payload, err := Encode(env)
	if err != nil {
		r.log.Warn("realtime: encode envelope", "event", env.Event(), "error", err)
		return
	}

	r.mu.RLock()
	conns := make([]*Connection, 0, len(r.conns))
	for userID, conn := range r.conns {
		if userID == excludeUserID {
			continue
		}
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(payload); err != nil {
			r.log.Warn("realtime: presence broadcast failed", "user_id", conn.UserID, "error", err)
		}
	}
}
