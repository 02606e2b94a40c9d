package ai

import (
	"bufio"
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

// chat-completions wire types (OpenAI-compatible)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// BaseProvider implements common functionality for OpenAI-compatible APIs
type BaseProvider struct {
	config ProviderConfig
	client *http.Client
}

// NewBaseProvider creates a new base provider
func NewBaseProvider(config ProviderConfig) *BaseProvider {
	return &BaseProvider{
		config: config,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (p *BaseProvider) Name() string {
	return p.config.Name
}

func (p *BaseProvider) newRequest(ctx context.Context, reqBody chatRequest) (*http.Request, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.config.BaseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	return req, nil
}

// Complete sends a single-turn chat completion and returns the text
func (p *BaseProvider) Complete(ctx context.Context, prompt string) (string, error) {
	log.Printf("[%s.Complete] Sending request...", p.config.Name)

	reqBody := chatRequest{
		Model:    p.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	req, err := p.newRequest(ctx, reqBody)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[%s.Complete] Response status: %d", p.config.Name, resp.StatusCode)

	if resp.StatusCode != 200 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error: %d %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	log.Printf("[%s.Complete] Success, response length: %d", p.config.Name, len(content))
	return content, nil
}

// CompleteStream sends a streaming chat completion, invoking onToken for each
// delta as it arrives, and returns the assembled text
func (p *BaseProvider) CompleteStream(ctx context.Context, prompt string, onToken func(token string)) (string, error) {
	log.Printf("[%s.Stream] Sending streaming request...", p.config.Name)

	reqBody := chatRequest{
		Model:    p.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   true,
	}

	req, err := p.newRequest(ctx, reqBody)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error: %d %s", resp.StatusCode, string(bodyBytes))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			log.Printf("[%s.Stream] Skipping malformed chunk: %v", p.config.Name, err)
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		token := chunk.Choices[0].Delta.Content
		if token != "" {
			full.WriteString(token)
			onToken(token)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("stream read failed: %w", err)
	}

	log.Printf("[%s.Stream] Done, response length: %d", p.config.Name, full.Len())
	return full.String(), nil
}

// CompleteJSON completes a prompt that requests raw JSON and parses the result
func (p *BaseProvider) CompleteJSON(ctx context.Context, prompt string, out any) error {
	rawContent, err := p.Complete(ctx, prompt)
	if err != nil {
		return err
	}

	rawContent = cleanJSON(rawContent)
	if err := json.Unmarshal([]byte(rawContent), out); err != nil {
		return fmt.Errorf("failed to parse json: %w", err)
	}
	return nil
}

// cleanJSON strips markdown code fences some models wrap around JSON output
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
