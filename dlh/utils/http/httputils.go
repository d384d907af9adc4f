// Package httputils is the JSON/streaming client the CLI uses to talk to the DLH API.
package httputils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is a non-2xx reply. Message is the server's {error} text when it sent one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bad status: %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{}}
}

func (c *Client) GetJSON(ctx context.Context, path string, resp interface{}) error {
	r, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer r.Body.Close()
	return decode(r, resp)
}

func (c *Client) PostJSON(ctx context.Context, path string, body interface{}, resp interface{}) error {
	r, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer r.Body.Close()
	return decode(r, resp)
}

// PostStream returns the open response body of a 2xx reply. The caller closes it.
func (c *Client) PostStream(ctx context.Context, path string, body interface{}) (io.ReadCloser, error) {
	r, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	return r.Body, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	r, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if r.StatusCode < 200 || r.StatusCode > 299 {
		defer r.Body.Close()
		var eb struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(r.Body, 64<<10))
		if json.Unmarshal(raw, &eb) != nil {
			eb.Error = strings.TrimSpace(string(raw))
		}
		return nil, &StatusError{StatusCode: r.StatusCode, Message: eb.Error}
	}
	return r, nil
}

func decode(r *http.Response, resp interface{}) error {
	if resp == nil {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(resp)
}
