package notifications

import "github.com/rquegea/ai-visibility-mvp/internal/models"

// Notifier defines the contract for the alert delivery channel. Delivery is
// fire-and-forget from the pipeline's perspective: errors are reported for
// logging but never affect persisted state.
type Notifier interface {
	SendAlert(alert *models.AlertEvent) error
}
