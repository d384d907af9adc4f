package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dlh/dlh/config"
	"dlh/dlh/utils/logging"

	"go.uber.org/zap"
)

// GatewayClient issues one streamed chat-completion call per exchange.
type GatewayClient struct {
	cfg    config.GatewayConfig
	client *http.Client
}

// NewGatewayClient uses an http.Client without a timeout; streams last as long as upstream keeps them open.
func NewGatewayClient(cfg config.GatewayConfig, client *http.Client) *GatewayClient {
	if client == nil {
		client = &http.Client{}
	}
	return &GatewayClient{cfg: cfg, client: client}
}

func (c *GatewayClient) Configured() bool {
	return c.cfg.APIKey != ""
}

// StreamChat posts messages with stream=true and returns the raw event-stream body.
// The caller owns the returned body and must close it.
func (c *GatewayClient) StreamChat(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	defer logging.LogDuration(ctx, "gateway_stream_chat")()

	if !c.Configured() {
		logging.ErrorLogger.Error("AI gateway API key is not configured")
		return nil, ErrUnconfigured
	}

	body, err := json.Marshal(ChatRequest{
		Model:    c.cfg.ChatModel,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		logging.ErrorLogger.Error("AI gateway transport error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		logging.ErrorLogger.Error("AI gateway error",
			zap.Int("status", resp.StatusCode), zap.String("body", string(b)))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	return resp.Body, nil
}
