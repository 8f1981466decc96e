package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const contentMaxBytes int64 = 10 << 20 // 10 MiB

// Client talks to the messaging platform REST API: replying to events and
// downloading message content (images).
type Client struct {
	apiBase     string
	accessToken string
	httpClient  *http.Client
}

func NewClient(apiBase, accessToken string) *Client {
	return &Client{
		apiBase:     apiBase,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type replyRequest struct {
	ReplyToken string       `json:"replyToken"`
	Messages   []OutMessage `json:"messages"`
}

// Reply sends the final message set for one event. Reply tokens are
// single-use and expire quickly: call at most once per token, and do not
// retry on failure.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []OutMessage) error {
	payload, err := json.Marshal(replyRequest{ReplyToken: replyToken, Messages: messages})
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/v2/bot/message/reply", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("reply rejected: status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// GetContent downloads the binary content of a message (e.g. an image the
// user sent).
func (c *Client) GetContent(ctx context.Context, messageID string) ([]byte, error) {
	url := fmt.Sprintf("%s/v2/bot/message/%s/content", c.apiBase, messageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build content request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content fetch rejected: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, contentMaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}
