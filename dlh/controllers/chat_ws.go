package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"dlh/dlh/middlewares"
	"dlh/dlh/services/exchange"
	"dlh/dlh/services/llm"
	"dlh/dlh/utils/logging"
	"dlh/dlh/utils/types"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const wsHandshakeTimeout = 10 * time.Second

// ServeWS bridges one exchange over a websocket. The first text frame is a
// WSChatRequest; the server answers with delta frames holding the accumulated
// text, then a single done or error frame.
func (c *ChatController) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx := r.Context()
	readCtx, cancel := context.WithTimeout(ctx, wsHandshakeTimeout)
	typ, data, err := conn.Read(readCtx)
	cancel()
	if err != nil {
		return
	}
	if typ != websocket.MessageText {
		conn.Close(websocket.StatusUnsupportedData, "unsupported data")
		return
	}

	var input types.WSChatRequest
	if err := json.Unmarshal(data, &input); err != nil {
		writeFrame(ctx, conn, types.WSFrame{Type: types.FrameError, Error: "invalid json"})
		conn.Close(websocket.StatusUnsupportedData, "invalid json")
		return
	}

	userID, err := middlewares.ParseToken(c.jwtSecret, input.Token)
	if err != nil {
		writeFrame(ctx, conn, types.WSFrame{Type: types.FrameError, Error: "invalid token"})
		conn.Close(websocket.StatusPolicyViolation, "invalid token")
		return
	}

	n := len(input.Messages)
	if n == 0 || input.Messages[n-1].Role != llm.RoleUser {
		writeFrame(ctx, conn, types.WSFrame{Type: types.FrameError, Error: MsgMessagesRequired})
		conn.Close(websocket.StatusPolicyViolation, "bad request")
		return
	}

	// nothing else is read; a client disconnect cancels ctx and with it the exchange
	ctx = conn.CloseRead(ctx)

	session, err := c.wsSession(ctx, userID, input)
	if err != nil {
		status, msg := ErrorResponse(err)
		writeFrame(ctx, conn, types.WSFrame{Type: types.FrameError, Error: msg})
		conn.Close(websocket.StatusPolicyViolation, http.StatusText(status))
		return
	}

	reply, err := session.Send(ctx, input.Messages[n-1].Content, func(acc string) {
		writeFrame(ctx, conn, types.WSFrame{Type: types.FrameDelta, Content: acc})
	})
	switch {
	case errors.Is(err, exchange.ErrInterrupted):
		writeFrame(ctx, conn, types.WSFrame{Type: types.FrameError, Error: MsgInterrupted, Content: reply, SessionID: session.ID})
	case err != nil:
		_, msg := ErrorResponse(err)
		writeFrame(ctx, conn, types.WSFrame{Type: types.FrameError, Error: msg, SessionID: session.ID})
	default:
		writeFrame(ctx, conn, types.WSFrame{Type: types.FrameDone, Content: reply, SessionID: session.ID})
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// wsSession persists into the caller's session when one is named; otherwise the exchange stays in memory.
func (c *ChatController) wsSession(ctx context.Context, userID uuid.UUID, input types.WSChatRequest) (*exchange.Session, error) {
	prior := input.Messages[:len(input.Messages)-1]
	history := make([]exchange.Message, 0, len(prior))
	for _, m := range prior {
		history = append(history, exchange.Message{Role: m.Role, Content: m.Content})
	}
	opts := []exchange.Option{exchange.WithCourse(input.CourseID), exchange.WithHistory(history)}

	if input.SessionID == "" {
		return exchange.NewSession(nil, c, opts...), nil
	}
	sid, err := uuid.Parse(input.SessionID)
	if err != nil {
		return nil, ErrNotFound
	}
	s, err := c.ownedSession(ctx, userID, sid)
	if err != nil {
		return nil, err
	}
	store := &sessionStore{chats: c.chats, userID: userID, courseID: s.CourseID}
	opts = append(opts, exchange.WithSessionID(s.ID.String()))
	return exchange.NewSession(store, c, opts...), nil
}

func writeFrame(ctx context.Context, conn *websocket.Conn, f types.WSFrame) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		logging.AppLogger.Debug("websocket write failed", zap.Error(err))
	}
}
