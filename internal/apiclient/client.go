// Package apiclient talks to the portfolio API over HTTP. It implements
// chat.Transport so a Conversation can run against a remote server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/models"
)

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient targets baseURL (e.g. http://localhost:8080). accessToken may be
// empty for guest conversations.
func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{},
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       models.ErrorResponse
}

func (e *StatusError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("status %d: %s: %s", e.StatusCode, e.Body.Error, e.Body.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body.Error)
}

func (c *Client) Start(ctx context.Context, guestName, sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	req := models.StartChatRequest{GuestName: guestName, SessionID: sessionID}
	if err := c.do(ctx, http.MethodPost, "/api/v1/chat/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) Send(ctx context.Context, sessionID, text string) (*models.ChatSession, error) {
	var session models.ChatSession
	path := "/api/v1/chat/sessions/" + url.PathEscape(sessionID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, models.SendMessageRequest{Text: text}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Fetch makes a single attempt. Callers polling on a ticker simply try again
// on the next tick.
func (c *Client) Fetch(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	path := "/api/v1/chat/sessions/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Reply asks the sales assistant.
func (c *Client) Reply(ctx context.Context, prompt string) (string, error) {
	var resp models.AssistantResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/assistant/reply", models.AssistantRequest{Prompt: prompt}, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if json.Unmarshal(respBody, &statusErr.Body) != nil || statusErr.Body.Error == "" {
			statusErr.Body.Error = strings.TrimSpace(string(respBody))
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %v", chat.ErrSessionNotFound, statusErr)
		}
		return statusErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}
	return nil
}

var _ chat.Transport = (*Client)(nil)
