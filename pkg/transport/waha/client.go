// Package waha implements the service.Transport interface against a
// WAHA-compatible WhatsApp HTTP API server.
package waha

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"whatsappmgr/internal/models"
)

// Client talks to a WAHA-compatible HTTP API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a transport client for the given API base URL
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Initialize starts a session on the API server
func (c *Client) Initialize(ctx context.Context, sessionID string) error {
	return c.post(ctx, fmt.Sprintf("/api/sessions/%s/start", url.PathEscape(sessionID)), nil, nil)
}

// Destroy stops and removes a session on the API server
func (c *Client) Destroy(ctx context.Context, sessionID string) error {
	return c.post(ctx, fmt.Sprintf("/api/sessions/%s/stop", url.PathEscape(sessionID)), nil, nil)
}

// Send delivers a text message to a chat
func (c *Client) Send(ctx context.Context, sessionID, chatID, body string) error {
	payload := map[string]interface{}{
		"session": sessionID,
		"chatId":  chatID,
		"text":    body,
	}
	return c.post(ctx, "/api/sendText", payload, nil)
}

// ResolveContact fetches contact details for a message sender
func (c *Client) ResolveContact(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Contact, error) {
	endpoint := fmt.Sprintf("/api/contacts?session=%s&contactId=%s",
		url.QueryEscape(sessionID), url.QueryEscape(raw.From))

	var contact models.Contact
	if err := c.get(ctx, endpoint, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// ResolveAvatar fetches a contact's profile picture URL
func (c *Client) ResolveAvatar(ctx context.Context, sessionID, contactID string) (string, error) {
	endpoint := fmt.Sprintf("/api/contacts/profile-picture?session=%s&contactId=%s",
		url.QueryEscape(sessionID), url.QueryEscape(contactID))

	var result struct {
		ProfilePictureURL string `json:"profilePictureURL"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return "", err
	}
	return result.ProfilePictureURL, nil
}

// ResolveChat fetches group chat metadata for a group message
func (c *Client) ResolveChat(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Chat, error) {
	endpoint := fmt.Sprintf("/api/%s/chats/%s",
		url.PathEscape(sessionID), url.PathEscape(raw.From))

	var chat models.Chat
	if err := c.get(ctx, endpoint, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// DownloadMedia fetches the media payload referenced by a message and
// returns it base64-encoded
func (c *Client) DownloadMedia(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.Media, error) {
	if raw.MediaURL == "" {
		return nil, fmt.Errorf("message %s has no media URL", raw.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw.MediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}

	return &models.Media{
		MimeType: raw.MediaMimeType,
		Filename: raw.MediaFilename,
		Data:     base64.StdEncoding.EncodeToString(data),
		Size:     int64(len(data)),
	}, nil
}

// ResolveQuotedMessage fetches the message a reply refers to
func (c *Client) ResolveQuotedMessage(ctx context.Context, sessionID string, raw *models.RawMessage) (*models.QuotedMessage, error) {
	endpoint := fmt.Sprintf("/api/%s/chats/%s/messages/%s",
		url.PathEscape(sessionID), url.PathEscape(raw.From), url.PathEscape(raw.QuotedMessageID))

	var quoted models.QuotedMessage
	if err := c.get(ctx, endpoint, &quoted); err != nil {
		return nil, err
	}
	return &quoted, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload, result interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	return c.do(req, result)
}

func (c *Client) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}
