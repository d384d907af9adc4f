// Package exchange runs one chat exchange at a time against a relay and keeps
// the visible transcript and the persisted history in step.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dlh/dlh/services/llm"
	"dlh/dlh/services/sse"
	"dlh/dlh/utils/logging"

	"go.uber.org/zap"
)

const (
	DefaultSessionTitle = "New Chat"

	partialSaveTimeout = 5 * time.Second
)

var (
	ErrInFlight     = errors.New("an exchange is already in flight")
	ErrEmptyMessage = errors.New("message is empty")
	ErrInterrupted  = sse.ErrInterrupted
)

type Message struct {
	Role        string
	Content     string
	Interrupted bool
}

// Store persists sessions and messages. A nil Store keeps the exchange in memory only.
type Store interface {
	CreateSession(ctx context.Context, title string) (string, error)
	SaveMessage(ctx context.Context, sessionID string, msg Message) error
}

// Streamer opens the relayed event stream for a history ending with the newest user turn.
type Streamer interface {
	Stream(ctx context.Context, history []llm.Message, courseID string) (io.ReadCloser, error)
}

// Transcript is the ordered, visible message list. It is safe to read while an exchange writes it.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

func (t *Transcript) append(m Message) {
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
}

func (t *Transcript) setLast(m Message) {
	t.mu.Lock()
	if n := len(t.messages); n > 0 {
		t.messages[n-1] = m
	}
	t.mu.Unlock()
}

func (t *Transcript) dropLast() {
	t.mu.Lock()
	if n := len(t.messages); n > 0 {
		t.messages = t.messages[:n-1]
	}
	t.mu.Unlock()
}

func (t *Transcript) history() []llm.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]llm.Message, 0, len(t.messages))
	for _, m := range t.messages {
		if m.Content == "" {
			continue
		}
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

type Session struct {
	ID       string
	CourseID string

	store      Store
	streamer   Streamer
	transcript Transcript
	busy       atomic.Bool
}

type Option func(*Session)

// WithSessionID attaches the exchange to an existing remote session.
func WithSessionID(id string) Option {
	return func(s *Session) { s.ID = id }
}

func WithCourse(courseID string) Option {
	return func(s *Session) { s.CourseID = courseID }
}

// WithHistory preloads earlier turns, e.g. the messages of a resumed session.
func WithHistory(msgs []Message) Option {
	return func(s *Session) {
		s.transcript.messages = append(s.transcript.messages, msgs...)
	}
}

func NewSession(store Store, streamer Streamer, opts ...Option) *Session {
	s := &Session{store: store, streamer: streamer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Transcript() *Transcript { return &s.transcript }

// InFlight reports whether Send is currently running.
func (s *Session) InFlight() bool { return s.busy.Load() }

// Send runs one exchange for text. onUpdate receives the full accumulated
// assistant text each time it grows. The returned string is the final
// assistant text, partial when the error is ErrInterrupted. The partial is
// persisted even when ctx was cancelled.
func (s *Session) Send(ctx context.Context, text string, onUpdate func(string)) (string, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return "", ErrInFlight
	}
	defer s.busy.Store(false)

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	if err := s.ensureRemote(ctx); err != nil {
		return "", err
	}

	user := Message{Role: llm.RoleUser, Content: text}
	s.transcript.append(user)
	s.save(ctx, user)

	history := s.transcript.history()
	s.transcript.append(Message{Role: llm.RoleAssistant})

	body, err := s.streamer.Stream(ctx, history, s.CourseID)
	if err != nil {
		s.transcript.dropLast()
		return "", err
	}
	defer body.Close()

	reply, err := sse.Consume(ctx, body, func(acc string) {
		s.transcript.setLast(Message{Role: llm.RoleAssistant, Content: acc})
		if onUpdate != nil {
			onUpdate(acc)
		}
	})

	switch {
	case reply == "" && err != nil:
		s.transcript.dropLast()
		return "", err
	case reply == "":
		// clean end without content: the empty placeholder stays, nothing is persisted
		return "", nil
	case err != nil:
		partial := Message{Role: llm.RoleAssistant, Content: reply, Interrupted: true}
		s.transcript.setLast(partial)
		// ctx is usually the cancelled one that interrupted the stream
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), partialSaveTimeout)
		s.save(saveCtx, partial)
		cancel()
		return reply, err
	}

	final := Message{Role: llm.RoleAssistant, Content: reply}
	s.transcript.setLast(final)
	if err := s.saveErr(ctx, final); err != nil {
		return reply, fmt.Errorf("save assistant message: %w", err)
	}
	return reply, nil
}

func (s *Session) ensureRemote(ctx context.Context) error {
	if s.store == nil || s.ID != "" {
		return nil
	}
	id, err := s.store.CreateSession(ctx, DefaultSessionTitle)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	s.ID = id
	return nil
}

// save persists msg and only logs failures; the exchange carries on.
func (s *Session) save(ctx context.Context, msg Message) {
	if err := s.saveErr(ctx, msg); err != nil {
		logging.ErrorLogger.Error("failed to save chat message",
			zap.String("session_id", s.ID), zap.String("role", msg.Role), zap.Error(err))
	}
}

func (s *Session) saveErr(ctx context.Context, msg Message) error {
	if s.store == nil {
		return nil
	}
	return s.store.SaveMessage(ctx, s.ID, msg)
}
