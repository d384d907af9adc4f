package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"dlh/dlh/services/exchange"
	"dlh/dlh/services/llm"
	httputils "dlh/dlh/utils/http"
)

type sessionInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageInfo struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	Interrupted bool   `json:"interrupted"`
}

// remote drives an exchange against the DLH HTTP API. It is both the Store and the Streamer.
type remote struct {
	client *httputils.Client
}

func (r *remote) CreateSession(ctx context.Context, title string) (string, error) {
	var s sessionInfo
	body := map[string]string{"title": title}
	if err := r.client.PostJSON(ctx, "/chat/sessions", body, &s); err != nil {
		return "", err
	}
	return s.ID, nil
}

func (r *remote) SaveMessage(ctx context.Context, sessionID string, m exchange.Message) error {
	body := messageInfo{Role: m.Role, Content: m.Content, Interrupted: m.Interrupted}
	return r.client.PostJSON(ctx, "/chat/sessions/"+sessionID+"/messages", body, nil)
}

func (r *remote) Stream(ctx context.Context, history []llm.Message, courseID string) (io.ReadCloser, error) {
	body := map[string]any{"messages": history}
	if courseID != "" {
		body["courseId"] = courseID
	}
	return r.client.PostStream(ctx, "/chat/", body)
}

func (r *remote) Sessions(ctx context.Context) ([]sessionInfo, error) {
	var out []sessionInfo
	err := r.client.GetJSON(ctx, "/chat/sessions", &out)
	return out, err
}

func (r *remote) Messages(ctx context.Context, sessionID string) ([]exchange.Message, error) {
	var raw []messageInfo
	if err := r.client.GetJSON(ctx, "/chat/sessions/"+sessionID+"/messages", &raw); err != nil {
		return nil, err
	}
	out := make([]exchange.Message, 0, len(raw))
	for _, m := range raw {
		out = append(out, exchange.Message{Role: m.Role, Content: m.Content, Interrupted: m.Interrupted})
	}
	return out, nil
}

// notice turns an exchange error into the line shown to the user.
func notice(err error) string {
	var se *httputils.StatusError
	if errors.As(err, &se) {
		if se.StatusCode == http.StatusUnauthorized {
			return "Session expired, run `dlh login` again."
		}
		if se.Message != "" {
			return se.Message
		}
	}
	if errors.Is(err, exchange.ErrInFlight) {
		return "Please wait for the current response to finish."
	}
	return "Failed to get a response: " + err.Error()
}
