package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// LLMClient calls an OpenAI-compatible chat completions endpoint to turn
// recognized invoice text into a structured draft record. When no API key
// is configured and stub mode is allowed, it answers with a canned draft so
// the pipeline stays runnable offline.
type LLMClient struct {
	apiBase    string
	apiKey     string
	model      string
	allowStub  bool
	httpClient *http.Client
}

// ChatMessage is one turn of the chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []ChatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const maxChatAttempts = 4

func NewLLMClient(apiBase, apiKey, model string, allowStub bool) *LLMClient {
	if apiBase == "" {
		apiBase = "https://api.groq.com/openai/v1"
	}
	return &LLMClient{
		apiBase:    strings.TrimRight(apiBase, "/"),
		apiKey:     apiKey,
		model:      model,
		allowStub:  allowStub,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Chat sends the messages and returns the assistant content. Throttling and
// transient upstream failures are retried with a linear backoff.
func (c *LLMClient) Chat(ctx context.Context, messages []ChatMessage, temperature float64, maxTokens int) (string, error) {
	if c.apiKey == "" {
		if c.allowStub {
			log.Println("LLM API key missing; returning stub response")
			return stubDraftResponse, nil
		}
		return "", fmt.Errorf("LLM API key not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	url := c.apiBase + "/chat/completions"
	var lastErr error
	for attempt := 1; attempt <= maxChatAttempts; attempt++ {
		content, retryable, err := c.post(ctx, url, body)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		log.Printf("LLM call attempt %d/%d failed: %v", attempt, maxChatAttempts, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return "", fmt.Errorf("LLM call failed after %d attempts: %w", maxChatAttempts, lastErr)
}

func (c *LLMClient) post(ctx context.Context, url string, body []byte) (content string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("chat endpoint returned status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", false, fmt.Errorf("invalid chat response JSON: %w", err)
	}
	if parsed.Error != nil {
		return "", false, fmt.Errorf("chat endpoint error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("chat response contained no choices")
	}
	return parsed.Choices[0].Message.Content, false, nil
}

// stubDraftResponse is a minimal invoice_v1 payload for offline runs.
const stubDraftResponse = `{
  "schema_version": "invoice_v1",
  "invoice": {
    "invoice_number": "STUB-0001",
    "invoice_date": "2024-01-01",
    "vendor_name": "Stub Vendor",
    "currency_code": "USD",
    "subtotal_cents": 10000,
    "tax_cents": 800,
    "total_cents": 10800,
    "discount_cents": 0
  },
  "items": [
    {"idx": 1, "description": "Stubbed line item", "qty": 1.0, "unit_price_cents": 10000, "line_total_cents": 10000}
  ],
  "notes": {"warnings": ["stub response: no LLM API key configured"], "confidence": 0.0}
}`
