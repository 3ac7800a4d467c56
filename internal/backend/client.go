// Package backend is the HTTP client for the chat backend's POST /chat
// endpoint. One call carries one user message and returns one reply.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"assistchat/internal/logging"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-call correlation ID.
const RequestIDHeader = "X-Request-ID"

// maxResponseBytes bounds how much of a reply body is read.
const maxResponseBytes = 1 << 20

// ChatRequest is the body sent to /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body expected back from /chat.
type ChatResponse struct {
	Response *string `json:"response"`
}

// Config holds configuration for the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements conversation.Sender against a /chat endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	newID      func() string
}

// New creates a client for <BaseURL>/chat. A zero Timeout disables the
// per-request deadline.
func New(cfg Config) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/chat",
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		newID: uuid.NewString,
	}
}

// Endpoint returns the full URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts text and returns the backend's reply. Every failure is a
// *DeliveryError.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	reqID := c.newID()
	log := logging.WithRequestID(logging.CategoryAPI, reqID)
	timer := logging.StartTimer(logging.CategoryAPI, "chat request "+reqID)
	defer timer.StopWithThreshold(10 * time.Second)

	body, err := json.Marshal(ChatRequest{Message: text})
	if err != nil {
		return "", &DeliveryError{Kind: KindTransport, RequestID: reqID, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &DeliveryError{Kind: KindTransport, RequestID: reqID, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	log.Debug("POST %s (%d bytes)", c.endpoint, len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed: %v", err)
		return "", &DeliveryError{Kind: KindTransport, RequestID: reqID, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn("failed to read response: %v", err)
		return "", &DeliveryError{Kind: KindTransport, RequestID: reqID, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("backend returned %d: %s", resp.StatusCode, truncate(string(data), 200))
		return "", &DeliveryError{
			Kind:       KindStatus,
			RequestID:  reqID,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("backend returned status %d", resp.StatusCode),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		log.Warn("failed to parse response: %v", err)
		return "", &DeliveryError{Kind: KindDecode, RequestID: reqID, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if chatResp.Response == nil {
		log.Warn("response body has no response field")
		return "", &DeliveryError{Kind: KindDecode, RequestID: reqID, StatusCode: resp.StatusCode, Err: fmt.Errorf("response field missing")}
	}

	log.Info("reply received (%d chars)", len(*chatResp.Response))
	return *chatResp.Response, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
