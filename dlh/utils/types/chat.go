package types

import (
	"encoding/json"

	"dlh/dlh/services/llm"
)

// ChatRequest is the relay body. Messages stays raw so a non-array value can be told apart.
type ChatRequest struct {
	Messages json.RawMessage `json:"messages"`
	CourseID string          `json:"courseId,omitempty"`
}

// WSChatRequest is the first frame of a /chat/ws connection.
type WSChatRequest struct {
	Token     string        `json:"token"`
	Messages  []llm.Message `json:"messages"`
	CourseID  string        `json:"course_id,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
}

const (
	FrameDelta = "delta"
	FrameDone  = "done"
	FrameError = "error"
)

// WSFrame carries the accumulated assistant text, never a bare delta.
type WSFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type CreateSessionRequest struct {
	Title    string  `json:"title"`
	CourseID *string `json:"course_id,omitempty"`
}

type SaveMessageRequest struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	Interrupted bool   `json:"interrupted,omitempty"`
}
