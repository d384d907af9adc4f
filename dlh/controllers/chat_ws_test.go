package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dlh/dlh/middlewares"
	"dlh/dlh/services/llm"
	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/utils/types"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, c *ChatController) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(c.ServeWS))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

// readFrames collects frames until the terminal done or error frame.
func readFrames(t *testing.T, conn *websocket.Conn, req types.WSChatRequest) []types.WSFrame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, b))

	var frames []types.WSFrame
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var f types.WSFrame
		require.NoError(t, json.Unmarshal(data, &f))
		frames = append(frames, f)
		if f.Type != types.FrameDelta {
			return frames
		}
	}
}

func token(t *testing.T, id uuid.UUID) string {
	t.Helper()
	tok, err := middlewares.IssueToken(testSecret, id, time.Now())
	require.NoError(t, err)
	return tok
}

func TestServeWSStreamsAndPersists(t *testing.T) {
	db := newTestDB(t)
	p := newTestProfile(t, db, "ws@dlh.org")
	chats := dao.NewChatDAO(db)
	gw := &fakeGateway{body: sseDelta("He") + sseDelta("llo") + "data: [DONE]\n"}
	c := NewChatController(gw, newTestAssembler(t), chats, testSecret)

	s, err := chats.CreateSession(context.Background(), p.ID, "", nil)
	require.NoError(t, err)

	frames := readFrames(t, dialWS(t, c), types.WSChatRequest{
		Token:     token(t, p.ID),
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: "What is CSS?"}},
		SessionID: s.ID.String(),
	})

	last := frames[len(frames)-1]
	assert.Equal(t, types.FrameDone, last.Type)
	assert.Equal(t, "Hello", last.Content)
	assert.Equal(t, s.ID.String(), last.SessionID)
	for _, f := range frames[:len(frames)-1] {
		assert.True(t, strings.HasPrefix("Hello", f.Content))
	}

	msgs, err := chats.ListMessages(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "What is CSS?", msgs[0].Content)
	assert.Equal(t, "Hello", msgs[1].Content)

	got, err := chats.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "What is CSS?", got.Title)
}

func TestServeWSRejectsBadToken(t *testing.T) {
	gw := &fakeGateway{}
	c := NewChatController(gw, newTestAssembler(t), dao.NewChatDAO(newTestDB(t)), testSecret)

	frames := readFrames(t, dialWS(t, c), types.WSChatRequest{
		Token:    "nope",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Len(t, frames, 1)
	assert.Equal(t, types.FrameError, frames[0].Type)
	assert.Equal(t, "invalid token", frames[0].Error)
	assert.Zero(t, gw.Calls())
}

func TestServeWSRequiresTrailingUserMessage(t *testing.T) {
	gw := &fakeGateway{}
	c := NewChatController(gw, newTestAssembler(t), dao.NewChatDAO(newTestDB(t)), testSecret)

	frames := readFrames(t, dialWS(t, c), types.WSChatRequest{
		Token:    token(t, uuid.New()),
		Messages: []llm.Message{{Role: llm.RoleAssistant, Content: "hello"}},
	})
	require.Len(t, frames, 1)
	assert.Equal(t, MsgMessagesRequired, frames[0].Error)
	assert.Zero(t, gw.Calls())
}

func TestServeWSForeignSession(t *testing.T) {
	db := newTestDB(t)
	owner := newTestProfile(t, db, "owner@dlh.org")
	other := newTestProfile(t, db, "other@dlh.org")
	chats := dao.NewChatDAO(db)
	gw := &fakeGateway{body: "data: [DONE]\n"}
	c := NewChatController(gw, newTestAssembler(t), chats, testSecret)

	s, err := chats.CreateSession(context.Background(), owner.ID, "", nil)
	require.NoError(t, err)

	frames := readFrames(t, dialWS(t, c), types.WSChatRequest{
		Token:     token(t, other.ID),
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		SessionID: s.ID.String(),
	})
	require.Len(t, frames, 1)
	assert.Equal(t, "not found", frames[0].Error)
	assert.Zero(t, gw.Calls())
}

func TestServeWSUpstreamError(t *testing.T) {
	gw := &fakeGateway{err: &llm.UpstreamError{StatusCode: 429}}
	c := NewChatController(gw, newTestAssembler(t), dao.NewChatDAO(newTestDB(t)), testSecret)

	frames := readFrames(t, dialWS(t, c), types.WSChatRequest{
		Token:    token(t, uuid.New()),
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Len(t, frames, 1)
	assert.Equal(t, types.FrameError, frames[0].Type)
	assert.Equal(t, MsgRateLimited, frames[0].Error)
}

// hangingGateway yields one delta, then holds the stream open until the request context ends.
type hangingGateway struct {
	cancelled atomic.Bool
}

func (g *hangingGateway) StreamChat(ctx context.Context, _ []llm.Message) (io.ReadCloser, error) {
	first := strings.NewReader(sseDelta("Par"))
	return io.NopCloser(readerFunc(func(p []byte) (int, error) {
		if first.Len() > 0 {
			return first.Read(p)
		}
		<-ctx.Done()
		g.cancelled.Store(true)
		return 0, ctx.Err()
	})), nil
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func TestServeWSClientDisconnectCancelsExchange(t *testing.T) {
	db := newTestDB(t)
	p := newTestProfile(t, db, "gone@dlh.org")
	chats := dao.NewChatDAO(db)
	gw := &hangingGateway{}
	c := NewChatController(gw, newTestAssembler(t), chats, testSecret)

	s, err := chats.CreateSession(context.Background(), p.ID, "", nil)
	require.NoError(t, err)

	conn := dialWS(t, c)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b, err := json.Marshal(types.WSChatRequest{
		Token:     token(t, p.ID),
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		SessionID: s.ID.String(),
	})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, b))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var f types.WSFrame
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, types.FrameDelta, f.Type)

	conn.CloseNow()

	require.Eventually(t, gw.cancelled.Load, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		msgs, err := chats.ListMessages(context.Background(), s.ID)
		return err == nil && len(msgs) == 2 && msgs[1].Interrupted && msgs[1].Content == "Par"
	}, 5*time.Second, 10*time.Millisecond)
}
