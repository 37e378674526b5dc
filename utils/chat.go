package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const assistantPrompt = `You are XportConnect Assistant, a friendly chatbot for exporters, buyers and shippers on the XportConnect platform.
- Help with product listings, orders and shippers
- Guide users through the platform
- Never guess answers; escalate if unsure`

// ChatService proxies questions to an OpenAI-compatible chat-completion API
type ChatService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewChatService initializes a ChatService. An empty apiKey leaves the service disabled.
func NewChatService(apiKey, baseURL, model string) *ChatService {
	return &ChatService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether an upstream key is configured.
func (cs *ChatService) Enabled() bool {
	return cs != nil && cs.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Ask sends message with the assistant system prompt and returns the first reply.
func (cs *ChatService) Ask(ctx context.Context, message string) (string, error) {
	if !cs.Enabled() {
		return "", fmt.Errorf("%w: chat assistant is not configured", ErrUnavailable)
	}

	body, err := json.Marshal(chatRequest{
		Model: cs.model,
		Messages: []chatMessage{
			{Role: "system", Content: assistantPrompt},
			{Role: "user", Content: message},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cs.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cs.apiKey)

	resp, err := cs.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
