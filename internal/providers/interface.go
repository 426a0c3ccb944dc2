package providers

import "context"

// Kind identifies the closed set of provider kinds the pipeline knows about.
type Kind string

const (
	// KindChat is a generative chat model answering from its own knowledge.
	KindChat Kind = "chat"
	// KindConversationalSearch is a chat model grounded in live web search.
	KindConversationalSearch Kind = "conversational_search"
	// KindWebSearch is a classic ranked-results search service.
	KindWebSearch Kind = "web_search"
)

// ResultKind tags the two shapes a provider result can take.
type ResultKind string

const (
	ResultText       ResultKind = "text"
	ResultRankedList ResultKind = "ranked_list"
)

// SearchItem is one entry of a ranked-list result.
type SearchItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// Result is the raw reply of one provider for one query. Exactly one of Text
// or Items is meaningful, selected by Kind. An empty Text or Items slice means
// "no results", which is an ordinary outcome, not an error.
type Result struct {
	Kind  ResultKind   `json:"kind"`
	Text  string       `json:"text,omitempty"`
	Items []SearchItem `json:"items,omitempty"`
	Cap   int          `json:"cap,omitempty"`
}

// Provider interface defines the contract for all information sources.
// Implementations must not retry and must not fail for empty results; they
// return an error only for network, auth, quota or timeout conditions.
type Provider interface {
	Name() string
	Kind() Kind
	IsEnabled() bool
	Fetch(ctx context.Context, query string) (Result, error)
}
