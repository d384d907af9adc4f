package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"dlh/dlh/config"
	"dlh/dlh/utils/logging"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ImageClient generates images through the gateway's OpenAI-compatible images endpoint.
type ImageClient struct {
	client *openai.Client
	model  string
	http   *http.Client
	apiKey string
}

func NewImageClient(cfg config.GatewayConfig) *ImageClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	return &ImageClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.ImageModel,
		http:   http.DefaultClient,
		apiKey: cfg.APIKey,
	}
}

// Generate returns the PNG bytes of a single image for prompt.
func (c *ImageClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	defer logging.LogDuration(ctx, "gateway_generate_image")()

	if c.apiKey == "" {
		return nil, ErrUnconfigured
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		logging.ErrorLogger.Error("image generation failed", zap.Error(err))
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no image returned", ErrUpstreamFailure)
	}

	img := resp.Data[0]
	if img.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("%w: decode image: %v", ErrUpstreamFailure, err)
		}
		return data, nil
	}
	if img.URL != "" {
		return c.download(ctx, img.URL)
	}
	return nil, fmt.Errorf("%w: empty image payload", ErrUpstreamFailure)
}

func (c *ImageClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
}
