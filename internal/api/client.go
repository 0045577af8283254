// Package api is the HTTP client for the gateway's REST surface. The live
// channel handles the real-time path; everything durable (history, the
// conversation list, auth checks) goes through here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/helmdeck/helmdeck/internal/chat"
	"github.com/helmdeck/helmdeck/internal/identity"
)

// MessageRecord is one persisted history entry as the gateway returns it.
type MessageRecord struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is a summary row from the conversation list.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusInfo is the gateway's health response.
type StatusInfo struct {
	Version       string `json:"version"`
	Mode          string `json:"mode"`
	AgentID       string `json:"agent_id"`
	UptimeSeconds int    `json:"uptime_seconds"`
}

// AuthResult is the response of a credential check.
type AuthResult struct {
	Valid        bool `json:"valid"`
	AuthRequired bool `json:"auth_required"`
}

// Client talks to the gateway REST API. The bearer credential is re-read from
// the identity store on every request.
type Client struct {
	baseURL  string
	identity *identity.Store
	http     *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, store *identity.Store) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		identity: store,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Messages returns the full persisted history for a conversation, in the
// store's order, converted to timeline entries.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	var records []MessageRecord
	path := "/api/v1/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.get(ctx, path, &records); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	msgs := make([]chat.Message, 0, len(records))
	for _, r := range records {
		msgs = append(msgs, chat.Message{
			ID:        r.ID,
			Role:      r.Role,
			Content:   r.Content,
			Timestamp: r.CreatedAt,
		})
	}
	return msgs, nil
}

// ListConversations returns the conversation summaries.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var convs []Conversation
	if err := c.get(ctx, "/api/v1/conversations", &convs); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// DeleteConversation removes a conversation and its history.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	path := "/api/v1/conversations/" + url.PathEscape(conversationID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// Status returns the gateway health info. Unauthenticated on the server side.
func (c *Client) Status(ctx context.Context) (*StatusInfo, error) {
	var info StatusInfo
	if err := c.get(ctx, "/api/v1/status", &info); err != nil {
		return nil, fmt.Errorf("gateway status: %w", err)
	}
	return &info, nil
}

// VerifyAuth checks the current credential against the gateway.
func (c *Client) VerifyAuth(ctx context.Context) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/verify", nil, &res); err != nil {
		return nil, fmt.Errorf("verify auth: %w", err)
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.identity.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
