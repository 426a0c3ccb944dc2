package pipeline

import (
	"fmt"
	"strings"

	"github.com/rquegea/ai-visibility-mvp/internal/models"
	"github.com/rquegea/ai-visibility-mvp/internal/providers"
)

// Normalize converts a raw provider result into the flat text shape the
// enrichment stage consumes. It is side effect free and deterministic; the
// only error case is a result kind the pipeline does not know, which is a
// programming error rather than a runtime condition.
func Normalize(result providers.Result) (models.NormalizedText, error) {
	switch result.Kind {
	case providers.ResultText:
		return models.NormalizedText{Body: strings.TrimSpace(result.Text)}, nil

	case providers.ResultRankedList:
		if len(result.Items) == 0 {
			return models.NormalizedText{}, nil
		}

		limit := result.Cap
		if limit <= 0 || limit > len(result.Items) {
			limit = len(result.Items)
		}

		blocks := make([]string, 0, limit)
		for _, item := range result.Items[:limit] {
			blocks = append(blocks, fmt.Sprintf("Source: %s\nTitle: %s\nSummary: %s",
				item.Source, item.Title, item.Snippet))
		}

		return models.NormalizedText{
			Body:        strings.Join(blocks, "\n\n"),
			SourceTitle: result.Items[0].Title,
			SourceURL:   result.Items[0].URL,
		}, nil

	default:
		return models.NormalizedText{}, fmt.Errorf("unknown provider result kind %q", result.Kind)
	}
}
