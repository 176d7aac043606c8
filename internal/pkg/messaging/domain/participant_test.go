package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypingActiveWithinWindow(t *testing.T) {
	now := time.Now().UTC()
	stamped := now.Add(-2 * time.Second)
	p := Participant{IsTyping: true, TypingUpdatedAt: &stamped}

	assert.True(t, p.TypingActive(now))
}

func TestTypingActiveExpiresLazily(t *testing.T) {
	now := time.Now().UTC()
	stamped := now.Add(-6 * time.Second)
	p := Participant{IsTyping: true, TypingUpdatedAt: &stamped}

	// The flag was never cleared in storage but reads as inactive once stale.
	assert.False(t, p.TypingActive(now))
}

func TestTypingActiveBoundary(t *testing.T) {
	now := time.Now().UTC()
	stamped := now.Add(-TypingWindow)
	p := Participant{IsTyping: true, TypingUpdatedAt: &stamped}

	assert.False(t, p.TypingActive(now), "exactly at the window edge reads inactive")
}

func TestTypingActiveRequiresFlagAndTimestamp(t *testing.T) {
	now := time.Now().UTC()

	assert.False(t, Participant{IsTyping: false}.TypingActive(now))

	p := Participant{IsTyping: true, TypingUpdatedAt: nil}
	assert.False(t, p.TypingActive(now))
}
