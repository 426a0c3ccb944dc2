package enrichment

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// maxPromptChars caps how much response text is embedded in an enrichment
// prompt, to stay inside model token limits.
const maxPromptChars = 4000

// Service implements Enricher on top of a chat-capable language model.
type Service struct {
	completer        ChatCompleter
	insightMinLength int
	insightSchema    *gojsonschema.Schema
}

// Ensure Service implements Enricher
var _ Enricher = (*Service)(nil)

// NewService creates a new enrichment service. insightMinLength is the
// normalized-text length above which web-search results qualify for insight
// extraction.
func NewService(completer ChatCompleter, insightMinLength int) (*Service, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(insightPayloadSchema))
	if err != nil {
		return nil, err
	}

	return &Service{
		completer:        completer,
		insightMinLength: insightMinLength,
		insightSchema:    schema,
	}, nil
}

// stripJSONFence removes a ```json ... ``` markdown fence some models wrap
// around their output.
func stripJSONFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
