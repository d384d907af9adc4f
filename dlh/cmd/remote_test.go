package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dlh/dlh/services/exchange"
	"dlh/dlh/utils/color"
	httputils "dlh/dlh/utils/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records what the CLI sends and answers the relay with a fixed stream.
type fakeAPI struct {
	relayBodies []map[string]any
	saved       []messageInfo
	auth        []string
}

func (f *fakeAPI) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.auth = append(f.auth, req.Header.Get("Authorization"))
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/chat/", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		f.relayBodies = append(f.relayBodies, body)
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"Hi "}}]}`+"\n")
		io.WriteString(w, `data: {"choices":[{"delta":{"content":"there"}}]}`+"\n")
		io.WriteString(w, "data: [DONE]\n")
	})
	r.Post("/chat/sessions", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"s-1","title":"New Chat"}`)
	})
	r.Post("/chat/sessions/{id}/messages", func(w http.ResponseWriter, req *http.Request) {
		var m messageInfo
		_ = json.NewDecoder(req.Body).Decode(&m)
		f.saved = append(f.saved, m)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{}`)
	})
	r.Get("/chat/sessions/{id}/messages", func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, `[{"role":"user","content":"q"},{"role":"assistant","content":"a","interrupted":true}]`)
	})
	return r
}

func newRemote(t *testing.T) (*remote, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	c := httputils.NewClient(srv.URL)
	c.Token = "tok"
	return &remote{client: c}, api
}

func TestRemoteExchange(t *testing.T) {
	r, api := newRemote(t)
	s := exchange.NewSession(r, r, exchange.WithCourse("web-development"))

	reply, err := s.Send(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.Equal(t, "s-1", s.ID)

	require.Len(t, api.relayBodies, 1)
	assert.Equal(t, "web-development", api.relayBodies[0]["courseId"])
	msgs := api.relayBodies[0]["messages"].([]any)
	require.Len(t, msgs, 1)

	assert.Equal(t, []messageInfo{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "Hi there"},
	}, api.saved)
	for _, h := range api.auth {
		assert.Equal(t, "Bearer tok", h)
	}
}

func TestRemoteMessages(t *testing.T) {
	r, _ := newRemote(t)
	msgs, err := r.Messages(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, []exchange.Message{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a", Interrupted: true},
	}, msgs)
}

func TestNotice(t *testing.T) {
	assert.Equal(t, "Session expired, run `dlh login` again.",
		notice(&httputils.StatusError{StatusCode: http.StatusUnauthorized, Message: "unauthorized"}))
	assert.Equal(t, "Rate limit exceeded",
		notice(&httputils.StatusError{StatusCode: http.StatusTooManyRequests, Message: "Rate limit exceeded"}))
	assert.Equal(t, "Please wait for the current response to finish.", notice(exchange.ErrInFlight))
	assert.Equal(t, "Failed to get a response: boom", notice(errors.New("boom")))
}

func TestRenderSessions(t *testing.T) {
	color.Disable()
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	sessions := []sessionInfo{{ID: "s-1", Title: "Loops in Go", UpdatedAt: at}}

	var buf bytes.Buffer
	renderSessions(&buf, sessions, true)
	assert.JSONEq(t, `[{"id":"s-1","title":"Loops in Go","updated_at":"2026-05-01T09:30:00Z"}]`, buf.String())
	assert.Contains(t, buf.String(), "\n  {")

	buf.Reset()
	renderSessions(&buf, nil, true)
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	renderSessions(&buf, sessions, false)
	assert.Contains(t, buf.String(), "s-1")
	assert.Contains(t, buf.String(), "Loops in Go")

	buf.Reset()
	renderSessions(&buf, nil, false)
	assert.Contains(t, buf.String(), "No sessions yet")
}
