package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"dlh/dlh/services/exchange"
	"dlh/dlh/services/llm"
	"dlh/dlh/utils/logging"

	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("invalid email or password")
	ErrSuspended    = errors.New("account is suspended")
	ErrConflict     = errors.New("already exists")
)

// Client-facing messages for the AI failure taxonomy.
const (
	MsgMessagesRequired = "Messages array is required"
	MsgUnconfigured     = "AI service is not configured"
	MsgRateLimited      = "Rate limit exceeded. Please wait a moment and try again."
	MsgQuotaExceeded    = "AI service quota exceeded. Please try again later."
	MsgUpstreamFailure  = "Failed to get AI response"
	MsgInterrupted      = "Response interrupted"
)

// ValidationError is a 400 whose message is safe to show as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ErrorResponse maps err onto a status and a message for the {error} body.
// Upstream details only go to the error log.
func ErrorResponse(err error) (int, string) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, ErrUnauthorized.Error()
	case errors.Is(err, ErrSuspended):
		return http.StatusForbidden, ErrSuspended.Error()
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, exchange.ErrEmptyMessage):
		return http.StatusBadRequest, "message is empty"
	case errors.Is(err, exchange.ErrInFlight):
		return http.StatusConflict, err.Error()
	case errors.Is(err, llm.ErrUnconfigured):
		return http.StatusInternalServerError, MsgUnconfigured
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests, MsgRateLimited
	case errors.Is(err, llm.ErrQuotaExceeded):
		return http.StatusPaymentRequired, MsgQuotaExceeded
	case errors.Is(err, llm.ErrUpstreamFailure):
		return http.StatusInternalServerError, MsgUpstreamFailure
	}
	logging.ErrorLogger.Error("unhandled error", zap.Error(err))
	return http.StatusInternalServerError, "internal server error"
}
