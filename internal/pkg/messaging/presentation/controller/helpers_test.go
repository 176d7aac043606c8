package controller

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichat/internal/pkg/messaging/application/usecase"
	messaging "medichat/internal/pkg/messaging/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestActorIDFromHeader(t *testing.T) {
	c, _ := testContext(t)
	c.Request.Header.Set("X-User-ID", "42")

	id, ok := actorID(c)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestActorIDMissingHeader(t *testing.T) {
	c, rec := testContext(t)

	_, ok := actorID(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestActorIDRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"zero", "-3", "0", "1.5"} {
		c, rec := testContext(t)
		c.Request.Header.Set("X-User-ID", raw)

		_, ok := actorID(c)
		assert.False(t, ok, "header %q", raw)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestPathID(t *testing.T) {
	c, _ := testContext(t)
	c.Params = gin.Params{{Key: "conversationId", Value: "7"}}

	id, ok := pathID(c, "conversationId")
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestPathIDInvalid(t *testing.T) {
	c, rec := testContext(t)
	c.Params = gin.Params{{Key: "conversationId", Value: "abc"}}

	_, ok := pathID(c, "conversationId")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{messaging.ErrConversationNotFound, http.StatusNotFound},
		{messaging.ErrMessageNotFound, http.StatusNotFound},
		{messaging.ErrNotParticipant, http.StatusForbidden},
		{messaging.ErrForbidden, http.StatusForbidden},
		{messaging.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("%w: content required", messaging.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: connection refused", usecase.ErrPersistence), http.StatusInternalServerError},
		{fmt.Errorf("something else"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		c, rec := testContext(t)
		respondError(c, tc.err)
		assert.Equal(t, tc.want, rec.Code, "error %v", tc.err)
	}
}
