package whctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oremus-labs/webhook-receiver/internal/store"
)

// Client wraps calls to the webhook endpoint.
type Client struct {
	BaseURL string
	Path    string
	Timeout time.Duration
}

// SendResult is the receiver's answer to a POST.
type SendResult struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

func (c *Client) url() string {
	path := c.Path
	if path == "" {
		path = "/api/webhook"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(c.BaseURL, "/") + path
}

func (c *Client) httpClient() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}

// ListEvents fetches every stored event, newest first.
func (c *Client) ListEvents(ctx context.Context) ([]store.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s failed: %s", req.Method, req.URL.Path, resp.Status)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	out := make([]store.Event, 0, len(raw))
	for _, item := range raw {
		evt, err := store.DecodeEvent(item)
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, nil
}

// Send posts a raw payload. A 400 from the receiver is reported in the
// result rather than as an error.
func (c *Client) Send(ctx context.Context, payload []byte) (*SendResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	result := &SendResult{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("%s %s failed: %s", req.Method, req.URL.Path, resp.Status)
	}
	result.StatusCode = resp.StatusCode
	return result, nil
}
