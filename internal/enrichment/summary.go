package enrichment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rquegea/ai-visibility-mvp/internal/models"
	"github.com/sirupsen/logrus"
)

// Summarize produces a one-sentence summary plus 3-5 key topics. On failure
// the fallback is the truncated source text with no topics.
func (s *Service) Summarize(ctx context.Context, text string) models.Summary {
	prompt := fmt.Sprintf(`Analyze the following text and return a JSON object with two keys:
1. "summary": A concise, engaging one-sentence summary of the text (25 words maximum).
2. "key_topics": A list of the 3 to 5 most important topics, brands or concepts mentioned.

Text to analyze:
"""%s"""

Respond only with the JSON.`, truncate(text, maxPromptChars))

	raw, err := s.completer.Complete(ctx, prompt, 0.2, 300)
	if err != nil {
		logrus.Errorf("Summarization failed, using truncation fallback: %v", err)
		return fallbackSummary(text)
	}

	var parsed models.Summary
	if err := json.Unmarshal([]byte(stripJSONFence(raw)), &parsed); err != nil {
		logrus.Errorf("Failed to parse summary JSON, using truncation fallback: %v", err)
		return fallbackSummary(text)
	}

	if parsed.Text == "" {
		return fallbackSummary(text)
	}

	return parsed
}

func fallbackSummary(text string) models.Summary {
	return models.Summary{Text: truncate(text, 150) + "…", KeyTopics: []string{}}
}
