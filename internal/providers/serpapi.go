package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const serpAPIBaseURL = "https://serpapi.com"

// SerpAPIProvider implements the web-search-results provider on top of
// SerpAPI's Google search endpoint.
type SerpAPIProvider struct {
	apiKey    string
	resultCap int
	baseURL   string
	client    *resty.Client
}

type serpAPIResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
		Source  string `json:"source"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// NewSerpAPIProvider creates a new SerpAPI provider
func NewSerpAPIProvider(apiKey string, resultCap int, timeout time.Duration) *SerpAPIProvider {
	return &SerpAPIProvider{
		apiKey:    apiKey,
		resultCap: resultCap,
		baseURL:   serpAPIBaseURL,
		client:    resty.New().SetTimeout(timeout),
	}
}

func (p *SerpAPIProvider) Name() string {
	return "serpapi"
}

func (p *SerpAPIProvider) Kind() Kind {
	return KindWebSearch
}

func (p *SerpAPIProvider) IsEnabled() bool {
	return p.apiKey != ""
}

func (p *SerpAPIProvider) Fetch(ctx context.Context, query string) (Result, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":       query,
			"api_key": p.apiKey,
		}).
		Get(p.baseURL + "/search.json")

	if err != nil {
		return Result{}, fmt.Errorf("serpapi request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return Result{}, fmt.Errorf("serpapi returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var parsed serpAPIResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return Result{}, fmt.Errorf("failed to parse serpapi response: %w", err)
	}

	if parsed.Error != "" {
		return Result{}, fmt.Errorf("serpapi error: %s", parsed.Error)
	}

	// No organic results is an ordinary outcome, returned as an empty list.
	items := make([]SearchItem, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		items = append(items, SearchItem{
			Title:   r.Title,
			Snippet: r.Snippet,
			URL:     r.Link,
			Source:  r.Source,
		})
	}

	return Result{Kind: ResultRankedList, Items: items, Cap: p.resultCap}, nil
}
