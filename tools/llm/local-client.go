package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LocalClient implements the Client interface for OpenAI-compatible local
// servers (llama.cpp, Ollama, LM Studio).
type LocalClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewLocalClient creates a client for an OpenAI-compatible endpoint
func NewLocalClient(baseURL, model string) *LocalClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &LocalClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

type openaiRequest struct {
	Model     string      `json:"model"`
	MaxTokens int         `json:"max_tokens,omitempty"`
	Messages  []openaiMsg `json:"messages"`
	Stream    bool        `json:"stream,omitempty"`
}

type openaiMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type openaiChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *LocalClient) newRequest(ctx context.Context, systemPrompt string, messages []Message, opts *RequestOptions, stream bool) (*http.Request, error) {
	msgs := make([]openaiMsg, 0, len(messages)+1)
	if systemPrompt != "" {
		msgs = append(msgs, openaiMsg{Role: "system", Content: systemPrompt})
	}
	for _, m := range messages {
		msgs = append(msgs, openaiMsg{Role: m.Role, Content: m.Content})
	}

	maxTokens := 0
	if opts != nil {
		maxTokens = opts.MaxTokens
	}

	jsonBody, err := json.Marshal(openaiRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  msgs,
		Stream:    stream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Complete sends a prompt to the local server and returns the response
func (c *LocalClient) Complete(ctx context.Context, systemPrompt string, messages []Message, opts *RequestOptions) (*Response, error) {
	start := time.Now()

	req, err := c.newRequest(ctx, systemPrompt, messages, opts, false)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("local API error (%d): %s", resp.StatusCode, string(body))
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from local server")
	}

	stopReason := "end_turn"
	if apiResp.Choices[0].FinishReason == "length" {
		stopReason = "max_tokens"
	}

	return &Response{
		Content:      apiResp.Choices[0].Message.Content,
		InputTokens:  apiResp.Usage.PromptTokens,
		OutputTokens: apiResp.Usage.CompletionTokens,
		Duration:     time.Since(start),
		Model:        apiResp.Model,
		StopReason:   stopReason,
	}, nil
}

// Stream sends a prompt with streaming enabled and feeds content deltas to
// onText as they arrive.
func (c *LocalClient) Stream(ctx context.Context, systemPrompt string, messages []Message, opts *RequestOptions, onText func(string)) (*Response, error) {
	start := time.Now()

	req, err := c.newRequest(ctx, systemPrompt, messages, opts, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("local API error (%d): %s", resp.StatusCode, string(body))
	}

	out := &Response{Model: c.model, StopReason: "end_turn"}
	var content strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk openaiChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			content.WriteString(text)
			if onText != nil {
				onText(text)
			}
		}
		if chunk.Choices[0].FinishReason == "length" {
			out.StopReason = "max_tokens"
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stream read failed: %w", err)
	}

	out.Content = content.String()
	out.Duration = time.Since(start)
	return out, nil
}

// CompleteWithRetry attempts completion with retries on failure
func (c *LocalClient) CompleteWithRetry(ctx context.Context, systemPrompt string, messages []Message, maxRetries int, opts *RequestOptions) (*Response, error) {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		resp, err := c.Complete(ctx, systemPrompt, messages, opts)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		backoff := time.Duration(1<<uint(i)) * time.Second
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
