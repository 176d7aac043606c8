package realtime

import "sync"

// ViewTracker records which conversations each connected user currently has
// open in the client UI. It decides immediate-broadcast vs. notification-only
// fan-out; it is NOT a source of truth for read state.
type ViewTracker struct {
	mu    sync.RWMutex
	views map[int64]map[int64]struct{} // userID -> set of conversationIDs
}

// NewViewTracker constructs an initialized ViewTracker.
func NewViewTracker() *ViewTracker {
	return &ViewTracker{views: make(map[int64]map[int64]struct{})}
}

// Join marks the conversation as open for the user.
func (t *ViewTracker) Join(userID, conversationID int64) {
	t.mu.Lock()
	open := t.views[userID]
	if open == nil {
		open = make(map[int64]struct{})
		t.views[userID] = open
	}
	open[conversationID] = struct{}{}
	t.mu.Unlock()
}

// Leave marks the conversation as no longer open for the user.
func (t *ViewTracker) Leave(userID, conversationID int64) {
	t.mu.Lock()
	if open, ok := t.views[userID]; ok {
		delete(open, conversationID)
		if len(open) == 0 {
			delete(t.views, userID)
		}
	}
	t.mu.Unlock()
}

// ClearUser drops all view state for the user. Called on disconnect.
func (t *ViewTracker) ClearUser(userID int64) {
	t.mu.Lock()
	delete(t.views, userID)
	t.mu.Unlock()
}

// IsViewing reports whether the user currently has the conversation open.
func (t *ViewTracker) IsViewing(userID, conversationID int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	open, ok := t.views[userID]
	if !ok {
		return false
	}
	_, viewing := open[conversationID]
	return viewing
}

// Viewers returns the users currently viewing the conversation.
func (t *ViewTracker) Viewers(conversationID int64) []int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var viewers []int64
	for userID, open := range t.views {
		if _, ok := open[conversationID]; ok {
			viewers = append(viewers, userID)
		}
	}
	return viewers
}
