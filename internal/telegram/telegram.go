// Package telegram is the chat transport: a long-polling Bot API client.
//
// Inbound, Updates blocks on getUpdates and delivers text messages with
// their chat id. Outbound, SendMessage sends one plain-text message of at
// most MaxMessageLen bytes; callers chunk longer text before handing it
// over. Sends pass through a token-bucket limiter because Telegram
// throttles bots that burst messages.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/roteirista/roteirista/internal/log"
)

const (
	// DefaultBaseURL is the Bot API base URL.
	DefaultBaseURL = "https://api.telegram.org"

	// MaxMessageLen is the byte limit for one outbound message. The
	// controller must never hand SendMessage a longer string.
	MaxMessageLen = 4000

	// pollTimeoutSeconds is the long-poll timeout sent to getUpdates.
	pollTimeoutSeconds = 30

	// Outbound send throttle. Telegram allows roughly 30 messages per
	// second bot-wide.
	sendRate  = 25
	sendBurst = 5
)

// Update is one inbound event from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound chat message. Non-text messages have empty Text
// and are skipped by the dispatcher.
type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// apiResponse is the Bot API envelope wrapping every result.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// Client is a long-polling Bot API client.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     log.Logger
}

// New creates a Telegram client.
func New(token string, logger log.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			// Must outlive the server-side long-poll timeout.
			Timeout: (pollTimeoutSeconds + 10) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		logger:  logger,
	}, nil
}

// getUpdatesRequest is the getUpdates request body.
type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout"`
}

// Updates long-polls for inbound updates with update_id >= offset.
// Returns an empty slice when the poll times out without traffic.
func (c *Client) Updates(ctx context.Context, offset int64) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:  offset,
		Timeout: pollTimeoutSeconds,
	}, &updates)
	if err != nil {
		return nil, fmt.Errorf("polling updates: %w", err)
	}
	if len(updates) > 0 {
		c.logger.Debug("received updates", "count", len(updates))
	}
	return updates, nil
}

// sendMessageRequest is the sendMessage request body.
type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// SendMessage sends one plain-text message to a chat.
// text must be nonempty and at most MaxMessageLen bytes.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if text == "" {
		return fmt.Errorf("refusing to send empty message to chat %d", chatID)
	}
	if len(text) > MaxMessageLen {
		return fmt.Errorf("message of %d bytes exceeds transport limit %d", len(text), MaxMessageLen)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for send slot: %w", err)
	}

	if err := c.call(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text}, nil); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// call performs one Bot API method call and decodes the envelope.
func (c *Client) call(ctx context.Context, method string, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal response (status %d): %w", resp.StatusCode, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram API error (code %d): %s", envelope.ErrorCode, envelope.Description)
	}

	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	return nil
}
