package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"dlh/dlh/services/exchange"
	"dlh/dlh/services/llm"
	"dlh/dlh/services/prompt"
	"dlh/dlh/sources/psql/dao"
	"dlh/dlh/sources/psql/models"
	"dlh/dlh/utils/jsonutils"
	"dlh/dlh/utils/logging"
	"dlh/dlh/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const relayBufSize = 32 << 10

// ChatStreamer opens one streamed completion for the full message list.
type ChatStreamer interface {
	StreamChat(ctx context.Context, messages []llm.Message) (io.ReadCloser, error)
}

type ChatController struct {
	gateway   ChatStreamer
	assembler *prompt.Assembler
	chats     *dao.ChatDAO
	jwtSecret string
}

func NewChatController(gateway ChatStreamer, assembler *prompt.Assembler, chats *dao.ChatDAO, jwtSecret string) *ChatController {
	return &ChatController{gateway: gateway, assembler: assembler, chats: chats, jwtSecret: jwtSecret}
}

// Stream prepends the assembled system prompt to history and opens the upstream stream.
func (c *ChatController) Stream(ctx context.Context, history []llm.Message, courseID string) (io.ReadCloser, error) {
	system := c.assembler.Build(ctx, courseID)
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, history...)

	logging.AppLogger.Info("chat relay",
		zap.Int("messages", len(history)), zap.String("course_id", courseID))
	return c.gateway.StreamChat(ctx, messages)
}

// Relay answers POST /chat/ with the upstream event stream, passed through unchanged.
func (c *ChatController) Relay(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := jsonutils.Decode(w, r, &req); err != nil || !isJSONArray(req.Messages) {
		jsonutils.Error(w, http.StatusBadRequest, MsgMessagesRequired)
		return
	}
	var history []llm.Message
	if err := json.Unmarshal(req.Messages, &history); err != nil {
		jsonutils.Error(w, http.StatusBadRequest, MsgMessagesRequired)
		return
	}

	body, err := c.Stream(r.Context(), history, req.CourseID)
	if err != nil {
		status, msg := ErrorResponse(err)
		jsonutils.Error(w, status, msg)
		return
	}
	defer body.Close()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	rc.Flush()

	buf := make([]byte, relayBufSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				logging.AppLogger.Info("chat relay client went away", zap.Error(werr))
				return
			}
			rc.Flush()
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				logging.ErrorLogger.Error("chat relay upstream read failed", zap.Error(rerr))
			}
			return
		}
	}
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func (c *ChatController) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.ChatSession, error) {
	return c.chats.ListSessions(ctx, userID)
}

func (c *ChatController) CreateSession(ctx context.Context, userID uuid.UUID, req types.CreateSessionRequest) (*models.ChatSession, error) {
	return c.chats.CreateSession(ctx, userID, strings.TrimSpace(req.Title), req.CourseID)
}

// ownedSession hides other users' sessions behind ErrNotFound.
func (c *ChatController) ownedSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.ChatSession, error) {
	s, err := c.chats.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.UserID != userID {
		return nil, ErrNotFound
	}
	return s, nil
}

func (c *ChatController) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := c.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return c.chats.DeleteSession(ctx, sessionID)
}

func (c *ChatController) ListMessages(ctx context.Context, userID, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	if _, err := c.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return c.chats.ListMessages(ctx, sessionID)
}

func (c *ChatController) SaveMessage(ctx context.Context, userID, sessionID uuid.UUID, req types.SaveMessageRequest) (*models.ChatMessage, error) {
	if req.Role != models.MessageRoleUser && req.Role != models.MessageRoleAssistant {
		return nil, invalid("role must be user or assistant")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, invalid("content is required")
	}
	if _, err := c.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return c.chats.SaveMessage(ctx, sessionID, req.Role, req.Content, req.Interrupted)
}

// sessionStore persists an exchange into one user's chat tables.
type sessionStore struct {
	chats    *dao.ChatDAO
	userID   uuid.UUID
	courseID *string
}

func (s *sessionStore) CreateSession(ctx context.Context, title string) (string, error) {
	cs, err := s.chats.CreateSession(ctx, s.userID, title, s.courseID)
	if err != nil {
		return "", err
	}
	return cs.ID.String(), nil
}

func (s *sessionStore) SaveMessage(ctx context.Context, sessionID string, m exchange.Message) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return err
	}
	_, err = s.chats.SaveMessage(ctx, id, m.Role, m.Content, m.Interrupted)
	return err
}
