package enrichment

import (
	"context"

	"github.com/rquegea/ai-visibility-mvp/internal/models"
	"github.com/rquegea/ai-visibility-mvp/internal/providers"
)

// ChatCompleter is the language-model capability the enrichment stage runs on.
type ChatCompleter interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// Enricher defines the contract for the enrichment stage. Sentiment and
// summary never fail: they degrade to defined fallback values. Insight
// extraction returns nil when the model output does not conform to the
// payload schema; callers treat a missing insight as a normal outcome.
type Enricher interface {
	AnalyzeSentiment(ctx context.Context, text string) models.SentimentScore
	Summarize(ctx context.Context, text string) models.Summary
	ExtractInsights(ctx context.Context, text string) (*models.InsightPayload, error)
	ShouldExtractInsights(kind providers.Kind, textLength int) bool
}
