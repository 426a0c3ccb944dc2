package storage

import (
	"context"

	"github.com/rquegea/ai-visibility-mvp/internal/models"
)

// Store defines the contract for the mention/insight persistence gateway.
// SaveMention writes the mention and, when insight is non-nil, its insight in
// one unit of work: the insight row goes in first so the mention's
// back-reference always points at an existing row, and a failure anywhere
// rolls both back.
type Store interface {
	ListEnabledQueries(ctx context.Context) ([]models.Query, error)
	SaveMention(ctx context.Context, mention *models.Mention, insight *models.InsightPayload) (mentionID int64, insightID *int64, err error)
	Close() error
}
