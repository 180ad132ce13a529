package ai

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deskos/deskos-api/internal/config"
)

var ErrNoAPIKey = errors.New("anthropic api key is not configured")

// prefillToken is sent as the start of the assistant turn so the model
// begins its reply mid-statement. It has to be prepended to the first
// streamed token and to sync completions to reconstruct the full text.
const prefillToken = "function"

const (
	metadataStart = "---METADATA---"
	metadataEnd   = "---END-METADATA---"
)

//go:embed prompts/app-renderer.txt
var appRendererPrompt string

//go:embed prompts/code-modifier.txt
var codeModifierPrompt string

// AppMetadata is the model-produced descriptor for a generated app.
type AppMetadata struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Version     string  `json:"version"`
	Price       float64 `json:"price"`
	Icon        string  `json:"icon"`
}

// GenerationResult is the final payload of a streamed generation: the
// assembled source with the metadata trailer stripped out.
type GenerationResult struct {
	SourceCode string       `json:"source_code"`
	Metadata   *AppMetadata `json:"metadata,omitempty"`
}

// StreamEvent is one unit of generation progress.
type StreamEvent struct {
	Type         string
	Text         string
	InputTokens  int
	OutputTokens int
	Result       *GenerationResult
}

const (
	EventStatus = "status"
	EventToken  = "token"
	EventUsage  = "usage"
	EventResult = "result"
	EventError  = "error"
)

type StreamFunc func(StreamEvent)

// Client talks to the Anthropic messages API.
type Client struct {
	cfg    config.AnthropicConfig
	client *http.Client
}

func NewClient(cfg config.AnthropicConfig) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Stream      bool      `json:"stream,omitempty"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type usageInfo struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type streamingEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Usage   *usageInfo `json:"usage"`
	Message *struct {
		Usage *usageInfo `json:"usage"`
	} `json:"message"`
}

func (c *Client) model(override *string) string {
	if override != nil && *override != "" {
		return *override
	}
	return c.cfg.DefaultModel
}

func (c *Client) do(ctx context.Context, path string, body any) (*http.Response, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode anthropic request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", c.cfg.APIVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("anthropic api error: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	return resp, nil
}

// GenerateMetadata derives an app descriptor from a plain-language prompt
// with a cheap sync completion. Used when a project is created, before any
// code exists.
func (c *Client) GenerateMetadata(ctx context.Context, prompt string, model *string) (*AppMetadata, error) {
	metadataPrompt := fmt.Sprintf(`Generate metadata for an app based on this prompt: %q

Return a JSON object with these exact fields:
- id: kebab-case identifier (e.g., "todo-list")
- name: App display name
- description: Brief description (under 100 chars)
- version: Semantic version (e.g., "1.0.0")
- price: Price in USD (0.00 for free apps)
- icon: Single emoji that represents the app

Respond with only valid JSON, no other text.`, prompt)

	resp, err := c.do(ctx, "/v1/messages", messagesRequest{
		Model:       c.model(model),
		MaxTokens:   1024,
		Temperature: 0.3,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: metadataPrompt}},
		}},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(decoded.Content) == 0 {
		return nil, errors.New("no content in anthropic response")
	}

	var metadata AppMetadata
	if err := json.Unmarshal([]byte(strings.TrimSpace(decoded.Content[0].Text)), &metadata); err != nil {
		return nil, fmt.Errorf("parse metadata json: %w", err)
	}
	return &metadata, nil
}

// StreamApp generates an app component from a prompt, emitting progress
// events as upstream tokens arrive.
func (c *Client) StreamApp(ctx context.Context, prompt string, model *string, emit StreamFunc) error {
	emit(StreamEvent{Type: EventStatus, Text: "Starting generation..."})
	return c.stream(ctx, appRendererPrompt, prompt, model, emit)
}

// StreamModification rewrites existing component code per the modification
// prompt, with the same event flow as StreamApp.
func (c *Client) StreamModification(ctx context.Context, existingCode, modification string, model *string, emit StreamFunc) error {
	emit(StreamEvent{Type: EventStatus, Text: "Starting code modification..."})

	combined := fmt.Sprintf(
		"Here is the existing React component code that needs to be modified:\n\n```javascript\n%s\n```\n\nModification request: %s\n\nPlease output the complete modified component code.",
		existingCode, modification,
	)
	return c.stream(ctx, codeModifierPrompt, combined, model, emit)
}

func (c *Client) stream(ctx context.Context, system, userText string, model *string, emit StreamFunc) error {
	resp, err := c.do(ctx, "/v1/messages", messagesRequest{
		Model:       c.model(model),
		MaxTokens:   4096,
		Temperature: 1.0,
		System:      system,
		Messages: []message{
			{Role: "user", Content: []contentBlock{{Type: "text", Text: userText}}},
			{Role: "assistant", Content: []contentBlock{{Type: "text", Text: prefillToken}}},
		},
		Stream: true,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	emit(StreamEvent{Type: EventStatus, Text: "Streaming response..."})

	var (
		full       strings.Builder
		firstToken = true
		usage      *usageInfo
	)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

stream:
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var event streamingEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Unknown frames are skipped, the stream itself is fine.
			continue
		}

		if event.Usage != nil {
			usage = event.Usage
		}
		if event.Message != nil && event.Message.Usage != nil {
			usage = event.Message.Usage
		}

		switch event.Type {
		case "content_block_delta":
			text := event.Delta.Text
			if text == "" {
				continue
			}
			if firstToken {
				text = prefillToken + text
				firstToken = false
			}
			full.WriteString(text)
			emit(StreamEvent{Type: EventToken, Text: text})

		case "message_stop":
			break stream
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read anthropic stream: %w", err)
	}

	if usage != nil {
		emit(StreamEvent{
			Type:         EventUsage,
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
		})
	}

	source, metadata := extractMetadata(full.String())
	emit(StreamEvent{
		Type:   EventResult,
		Result: &GenerationResult{SourceCode: source, Metadata: metadata},
	})
	emit(StreamEvent{Type: EventStatus, Text: "Generation complete!"})
	return nil
}

// extractMetadata splits the metadata trailer off the generated source. A
// missing or malformed trailer leaves the source as-is with nil metadata.
func extractMetadata(text string) (string, *AppMetadata) {
	start := strings.Index(text, metadataStart)
	if start < 0 {
		return strings.TrimSpace(text), nil
	}

	source := strings.TrimSpace(text[:start])
	rest := text[start+len(metadataStart):]

	end := strings.Index(rest, metadataEnd)
	if end < 0 {
		return source, nil
	}

	var metadata AppMetadata
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &metadata); err != nil {
		return source, nil
	}
	return source, &metadata
}
