package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider implements the generative chat provider on top of the OpenAI
// chat completions API. It also serves as the chat completer for the
// enrichment stage, so a single client and credential cover both uses.
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *resty.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIProvider creates a new OpenAI chat provider
func NewOpenAIProvider(apiKey, model string, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: openAIBaseURL,
		client:  resty.New().SetTimeout(timeout),
	}
}

func (p *OpenAIProvider) Name() string {
	return "gpt-4"
}

func (p *OpenAIProvider) Kind() Kind {
	return KindChat
}

func (p *OpenAIProvider) IsEnabled() bool {
	return p.apiKey != ""
}

func (p *OpenAIProvider) Fetch(ctx context.Context, query string) (Result, error) {
	text, err := p.Complete(ctx, query, 0.3, 1024)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: ResultText, Text: text}, nil
}

// Complete sends a single-turn prompt and returns the assistant's reply text.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant. Follow the user's instructions exactly."},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(p.baseURL + "/chat/completions")

	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("openai API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse openai response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
