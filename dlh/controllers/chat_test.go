package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dlh/dlh/services/exchange"
	"dlh/dlh/services/llm"
	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/sources/psql/models"
	"dlh/dlh/utils/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelay(t *testing.T, gw *fakeGateway) *ChatController {
	t.Helper()
	return NewChatController(gw, newTestAssembler(t), dao.NewChatDAO(newTestDB(t)), testSecret)
}

func postRelay(c *ChatController, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/", strings.NewReader(body))
	c.Relay(rr, req)
	return rr
}

func TestRelayRejectsBadMessages(t *testing.T) {
	gw := &fakeGateway{}
	c := newRelay(t, gw)

	for _, body := range []string{
		`{"messages": "not an array"}`,
		`{}`,
		`{"messages": null}`,
		`{"messages": {"role": "user"}}`,
		`{"messages": [1, 2]}`,
		`not json`,
		``,
	} {
		rr := postRelay(c, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.JSONEq(t, `{"error":"Messages array is required"}`, rr.Body.String(), body)
	}
	assert.Zero(t, gw.Calls())
}

func TestRelayMapsUpstreamErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{&llm.UpstreamError{StatusCode: 429, Body: "slow"}, http.StatusTooManyRequests, MsgRateLimited},
		{&llm.UpstreamError{StatusCode: 402, Body: "pay"}, http.StatusPaymentRequired, MsgQuotaExceeded},
		{&llm.UpstreamError{StatusCode: 503, Body: "secret upstream detail"}, http.StatusInternalServerError, MsgUpstreamFailure},
		{llm.ErrUnconfigured, http.StatusInternalServerError, MsgUnconfigured},
	}
	for _, tc := range cases {
		gw := &fakeGateway{err: tc.err}
		rr := postRelay(newRelay(t, gw), `{"messages":[{"role":"user","content":"hi"}]}`)

		assert.Equal(t, tc.status, rr.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, tc.msg, body["error"])
		assert.NotContains(t, rr.Body.String(), "secret upstream detail")
		assert.Equal(t, 1, gw.Calls())
	}
}

func TestRelayPassesStreamThrough(t *testing.T) {
	stream := ": keep-alive\n\n" + sseDelta("He") + sseDelta("llo") + "data: [DONE]\n"
	gw := &fakeGateway{body: stream}
	c := newRelay(t, gw)

	rr := postRelay(c, `{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"hey"},{"role":"user","content":"html?"}],"courseId":"web-development"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, stream, rr.Body.String())
	assert.True(t, rr.Flushed)

	require.Len(t, gw.messages, 4)
	sys := gw.messages[0]
	assert.Equal(t, llm.RoleSystem, sys.Role)
	assert.True(t, strings.HasPrefix(sys.Content, "You are the DLH tutor."))
	assert.Contains(t, sys.Content, "Term starts in May.")
	assert.Contains(t, sys.Content, "Teach HTML first.")
	assert.Equal(t, "html?", gw.messages[3].Content)
}

func TestRelayUnknownCourseHasNoCourseBlock(t *testing.T) {
	gw := &fakeGateway{body: "data: [DONE]\n"}
	rr := postRelay(newRelay(t, gw), `{"messages":[],"courseId":"knitting"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, gw.messages, 1)
	assert.NotContains(t, gw.messages[0].Content, "Course-Specific Instructions")
}

func TestSessionOwnership(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	owner := newTestProfile(t, db, "owner@dlh.org")
	other := newTestProfile(t, db, "other@dlh.org")
	c := NewChatController(&fakeGateway{}, newTestAssembler(t), dao.NewChatDAO(db), testSecret)

	s, err := c.CreateSession(ctx, owner.ID, types.CreateSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, dao.DefaultSessionTitle, s.Title)

	_, err = c.ListMessages(ctx, other.ID, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.DeleteSession(ctx, other.ID, s.ID), ErrNotFound)
	_, err = c.SaveMessage(ctx, other.ID, s.ID, types.SaveMessageRequest{Role: "user", Content: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.SaveMessage(ctx, owner.ID, s.ID, types.SaveMessageRequest{Role: "system", Content: "hi"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = c.SaveMessage(ctx, owner.ID, s.ID, types.SaveMessageRequest{Role: "user", Content: "What is a variable?"})
	require.NoError(t, err)
	sessions, err := c.ListSessions(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "What is a variable?", sessions[0].Title)

	require.NoError(t, c.DeleteSession(ctx, owner.ID, s.ID))
	_, err = c.ListMessages(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStorePersistsExchange(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	p := newTestProfile(t, db, "a@dlh.org")
	chats := dao.NewChatDAO(db)
	store := &sessionStore{chats: chats, userID: p.ID}

	id, err := store.CreateSession(ctx, "New Chat")
	require.NoError(t, err)
	sid := uuid.MustParse(id)

	require.NoError(t, store.SaveMessage(ctx, id, exchange.Message{Role: models.MessageRoleAssistant, Content: "partial", Interrupted: true}))
	msgs, err := chats.ListMessages(ctx, sid)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Interrupted)

	assert.Error(t, store.SaveMessage(ctx, "not-a-uuid", exchange.Message{Role: "user", Content: "x"}))
}
