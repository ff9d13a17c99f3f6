package linebot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no channel access token was
// provided.
var ErrNotConfigured = errors.New("messaging channel is not configured")

const (
	replyEndpoint   = "https://api.line.me/v2/bot/message/reply"
	contentEndpoint = "https://api-data.line.me/v2/bot/message/%s/content"
)

// Client covers the two platform calls the bot needs: replying into a
// chat thread and fetching uploaded message content.
type Client struct {
	channelToken string
	httpc        *http.Client
}

func NewClient(channelToken string) *Client {
	return &Client{
		channelToken: channelToken,
		httpc:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Reply delivers one text message against a reply token.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	if c.channelToken == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{
		"replyToken": replyToken,
		"messages": []map[string]string{
			{"type": "text", "text": text},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, replyEndpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("reply request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("reply request: %s: %s", resp.Status, string(body))
	}
	return nil
}

// FetchContent downloads the raw bytes of an uploaded message (voice,
// image) from the platform's content endpoint.
func (c *Client) FetchContent(ctx context.Context, messageID string) ([]byte, error) {
	if c.channelToken == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(contentEndpoint, messageID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("content request: %s: %s", resp.Status, string(body))
	}
	return io.ReadAll(resp.Body)
}
