// Package groq sends script-generation requests to the Groq
// chat-completions API (OpenAI-compatible).
//
// One user message produces exactly one outbound API call with a fixed
// 30-second timeout. Failures are classified, never retried: the caller
// turns each class into a single user-facing message and moves on.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roteirista/roteirista/internal/log"
)

const (
	// DefaultBaseURL is the Groq OpenAI-compatible API base.
	DefaultBaseURL = "https://api.groq.com"

	completionsPath = "/openai/v1/chat/completions"

	// requestTimeout bounds one generation call.
	requestTimeout = 30 * time.Second
)

// ErrEmptyResponse indicates the API answered 200 but produced no usable
// text. Check with errors.Is().
var ErrEmptyResponse = errors.New("model returned no text")

// ProviderError reports a non-2xx answer from the API.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("groq API error (status %d): %s", e.StatusCode, e.Message)
}

// Client is a minimal Groq chat-completions client.
type Client struct {
	apiKey     string
	model      string
	maxTokens  int
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// New creates a Groq client.
//
// Returns an error if apiKey or model is empty; maxTokens <= 0 is a
// configuration bug caught earlier by config validation.
func New(apiKey, model string, maxTokens int, logger log.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("groq model is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Client{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		baseURL:   DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}, nil
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the chat-completions response we read.
// Typed access replaces path-probing into raw JSON: an absent field
// decodes to its zero value and is handled explicitly.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the user's message through the fixed script prompt and
// returns the generated script text.
//
// Error classes:
//   - *ProviderError: non-2xx HTTP status
//   - ErrEmptyResponse: 2xx but no text in choices[0].message.content
//   - anything else: transport, encoding or decoding failure, wrapped
func (c *Client) Generate(ctx context.Context, userMessage string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: BuildPrompt(userMessage)},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling groq API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := parsed.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("generation completed",
		"model", c.model,
		"elapsed", time.Since(start),
		"response_bytes", len(text))

	return text, nil
}
