package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const perplexityBaseURL = "https://api.perplexity.ai"

var thinkBlockPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// PerplexityProvider implements the conversational-search provider on top of
// the Perplexity online models.
type PerplexityProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *resty.Client
}

// NewPerplexityProvider creates a new Perplexity provider
func NewPerplexityProvider(apiKey, model string, timeout time.Duration) *PerplexityProvider {
	return &PerplexityProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: perplexityBaseURL,
		client:  resty.New().SetTimeout(timeout),
	}
}

func (p *PerplexityProvider) Name() string {
	return "pplx-7b-chat"
}

func (p *PerplexityProvider) Kind() Kind {
	return KindConversationalSearch
}

func (p *PerplexityProvider) IsEnabled() bool {
	return p.apiKey != ""
}

func (p *PerplexityProvider) Fetch(ctx context.Context, query string) (Result, error) {
	body := chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: query}},
		Temperature: 0.3,
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(p.baseURL + "/chat/completions")

	if err != nil {
		return Result{}, fmt.Errorf("perplexity request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return Result{}, fmt.Errorf("perplexity API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to parse perplexity response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return Result{}, fmt.Errorf("perplexity response contained no choices")
	}

	return Result{Kind: ResultText, Text: cleanResponse(parsed.Choices[0].Message.Content)}, nil
}

// cleanResponse removes <think>...</think> blocks some online models emit
// before the actual answer.
func cleanResponse(text string) string {
	return strings.TrimSpace(thinkBlockPattern.ReplaceAllString(text, ""))
}
