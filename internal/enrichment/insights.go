package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rquegea/ai-visibility-mvp/internal/models"
	"github.com/rquegea/ai-visibility-mvp/internal/providers"
	"github.com/xeipuuv/gojsonschema"
)

// insightPayloadSchema is the contract the model output must satisfy before
// anything is written to the insights table. Output that fails validation is
// discarded, never persisted partially.
const insightPayloadSchema = `{
	"type": "object",
	"required": ["brands"],
	"properties": {
		"brands": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "mentions", "sentiment_avg"],
				"properties": {
					"name": {"type": "string"},
					"mentions": {"type": "integer"},
					"sentiment_avg": {"type": "number"}
				}
			}
		},
		"competitors": {"type": "array", "items": {"type": "string"}},
		"opportunities": {"type": "array", "items": {"type": "string"}},
		"risks": {"type": "array", "items": {"type": "string"}},
		"pain_points": {"type": "array", "items": {"type": "string"}},
		"trends": {"type": "array", "items": {"type": "string"}},
		"quotes": {"type": "array", "items": {"type": "string"}},
		"top_themes": {"type": "array", "items": {"type": "string"}},
		"topic_frequency": {"type": "object", "additionalProperties": {"type": "integer"}},
		"source_mentions": {"type": "object", "additionalProperties": {"type": "integer"}},
		"calls_to_action": {"type": "array", "items": {"type": "string"}},
		"audience_targeting": {"type": "array", "items": {"type": "string"}},
		"products_or_features": {"type": "array", "items": {"type": "string"}}
	}
}`

// ShouldExtractInsights is the policy deciding when the expensive extraction
// call runs: always for language-model kinds, and for web search results only
// when the normalized text is long enough to carry real signal.
func (s *Service) ShouldExtractInsights(kind providers.Kind, textLength int) bool {
	switch kind {
	case providers.KindChat, providers.KindConversationalSearch:
		return true
	case providers.KindWebSearch:
		return textLength > s.insightMinLength
	default:
		return false
	}
}

// ExtractInsights runs the structured market-intelligence analysis over a
// response. It returns nil (and the reason) when the model output does not
// conform to the payload schema.
func (s *Service) ExtractInsights(ctx context.Context, text string) (*models.InsightPayload, error) {
	prompt := fmt.Sprintf(`You are a senior market intelligence analyst.

1. Read the CONTENT carefully.
2. Identify every BRAND or product cited.
3. Count how many times each brand appears.
4. Rate the average sentiment toward each brand (-1 ... 1).
5. Detect relevant competitors.
6. Extract actionable insights grouped into:
   - opportunities: growth, favorable trends
   - risks: threats, criticism, recurring complaints
   - pain_points: friction (logistics, price, taste...)
   - trends: emerging behaviors (healthy, vegan, premium...)
7. Add up to 3 literal QUOTES (max 200 characters) that represent the tone.
8. Identify the most important themes discussed (top themes).
9. Count frequent keywords (2 or more repetitions).
10. If domains are cited (e.g. forbes.com, builtin.com), count how often.
11. If there are phrases like "companies should...", store them as calls_to_action.
12. If a clear target audience can be inferred (e.g. CFOs, startups), note it.
13. List highlighted products or features (e.g. Corporate Cards, AP Automation).

Return ONLY a JSON object with this EXACT format:

{
  "brands": [{"name": "...", "mentions": 1, "sentiment_avg": 0.5}],
  "competitors": ["..."],
  "opportunities": ["..."],
  "risks": ["..."],
  "pain_points": ["..."],
  "trends": ["..."],
  "quotes": ["..."],
  "top_themes": ["..."],
  "topic_frequency": {"keyword": 2},
  "source_mentions": {"domain": 1},
  "calls_to_action": ["..."],
  "audience_targeting": ["..."],
  "products_or_features": ["..."]
}

Do not add any text outside the JSON.
----------
CONTENT:
%s
----------`, text)

	raw, err := s.completer.Complete(ctx, prompt, 0.2, 1800)
	if err != nil {
		return nil, fmt.Errorf("insight extraction call failed: %w", err)
	}

	cleaned := stripJSONFence(raw)

	validation, err := s.insightSchema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("insight output is not valid JSON: %w", err)
	}
	if !validation.Valid() {
		var reasons []string
		for _, desc := range validation.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, fmt.Errorf("insight output rejected by schema: %s", strings.Join(reasons, "; "))
	}

	var payload models.InsightPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode insight payload: %w", err)
	}

	return &payload, nil
}
