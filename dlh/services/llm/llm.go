// dlh/services/llm/llm.go
package llm

import (
	"errors"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// Upstream failure taxonomy. Callers match with errors.Is; none of these are retried here.
var (
	ErrUnconfigured    = errors.New("ai gateway credential is not configured")
	ErrRateLimited     = errors.New("ai gateway rate limit exceeded")
	ErrQuotaExceeded   = errors.New("ai gateway quota exceeded")
	ErrUpstreamFailure = errors.New("ai gateway request failed")
)

// UpstreamError keeps the upstream status and body for server-side logs.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ai gateway returned %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return KindForStatus(e.StatusCode)
}

// KindForStatus maps a non-2xx upstream status onto the taxonomy.
func KindForStatus(status int) error {
	switch status {
	case 429:
		return ErrRateLimited
	case 402:
		return ErrQuotaExceeded
	default:
		return ErrUpstreamFailure
	}
}
