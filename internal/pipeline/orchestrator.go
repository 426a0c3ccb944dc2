package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rquegea/ai-visibility-mvp/internal/config"
	"github.com/rquegea/ai-visibility-mvp/internal/enrichment"
	"github.com/rquegea/ai-visibility-mvp/internal/models"
	"github.com/rquegea/ai-visibility-mvp/internal/notifications"
	"github.com/rquegea/ai-visibility-mvp/internal/providers"
	"github.com/rquegea/ai-visibility-mvp/internal/storage"
	"github.com/sirupsen/logrus"
)

// Orchestrator drives one poll cycle: for every enabled query it fans out to
// all configured providers, runs each (query, provider) pair through
// normalize, enrich, persist and alert decision, and isolates failures per
// pair so one broken provider never loses the others' results.
type Orchestrator struct {
	cfg       *config.Config
	store     storage.Store
	providers []providers.Provider
	enricher  enrichment.Enricher
	notifier  notifications.Notifier
	metrics   *Metrics
	mu        sync.RWMutex
}

// Metrics holds the outcome of the most recent poll cycle.
type Metrics struct {
	CycleID         string         `json:"cycle_id"`
	LastRun         time.Time      `json:"last_run"`
	LastRunDuration string         `json:"last_run_duration"`
	QueriesPolled   int            `json:"queries_polled"`
	MentionsWritten int            `json:"mentions_written"`
	InsightsWritten int            `json:"insights_written"`
	AlertsSent      int            `json:"alerts_sent"`
	ProviderErrors  map[string]int `json:"provider_errors"`
}

type unitResult struct {
	provider     string
	mentionSaved bool
	insightSaved bool
	alertSent    bool
	err          error
}

// NewOrchestrator creates a new poll orchestrator
func NewOrchestrator(cfg *config.Config, store storage.Store, provs []providers.Provider, enricher enrichment.Enricher, notifier notifications.Notifier) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		providers: provs,
		enricher:  enricher,
		notifier:  notifier,
		metrics: &Metrics{
			ProviderErrors: make(map[string]int),
		},
	}
}

// Run executes one full poll cycle over all enabled queries.
func (o *Orchestrator) Run(ctx context.Context) error {
	start := time.Now()
	cycleID := uuid.NewString()
	log := logrus.WithField("cycle_id", cycleID)
	log.Info("Starting poll cycle")

	queries, err := o.store.ListEnabledQueries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled queries: %w", err)
	}

	log.Infof("Polling %d enabled queries across %d providers", len(queries), len(o.providers))

	metrics := Metrics{
		CycleID:        cycleID,
		ProviderErrors: make(map[string]int),
		QueriesPolled:  len(queries),
	}

	for _, query := range queries {
		for _, result := range o.pollQuery(ctx, query) {
			if result.err != nil {
				metrics.ProviderErrors[result.provider]++
			}
			if result.mentionSaved {
				metrics.MentionsWritten++
			}
			if result.insightSaved {
				metrics.InsightsWritten++
			}
			if result.alertSent {
				metrics.AlertsSent++
			}
		}
	}

	metrics.LastRun = time.Now()
	metrics.LastRunDuration = time.Since(start).String()

	o.mu.Lock()
	o.metrics = &metrics
	o.mu.Unlock()

	log.Infof("Poll cycle finished in %v: %d mentions, %d insights, %d alerts",
		time.Since(start), metrics.MentionsWritten, metrics.InsightsWritten, metrics.AlertsSent)
	return nil
}

// pollQuery runs all providers for a single query concurrently. Each
// (query, provider) pair persists independently; pairs share no state.
func (o *Orchestrator) pollQuery(ctx context.Context, query models.Query) []unitResult {
	resultsChan := make(chan unitResult, len(o.providers))
	var wg sync.WaitGroup

	for _, provider := range o.providers {
		if !provider.IsEnabled() {
			logrus.Debugf("Provider %s disabled - missing credentials", provider.Name())
			continue
		}

		wg.Add(1)
		go func(p providers.Provider) {
			defer wg.Done()
			resultsChan <- o.runUnit(ctx, query, p)
		}(provider)
	}

	wg.Wait()
	close(resultsChan)

	var results []unitResult
	for result := range resultsChan {
		results = append(results, result)
	}
	return results
}

// runUnit processes one (query, provider) pair end to end. Any failure is
// logged with query and provider context and abandons the unit without a row.
func (o *Orchestrator) runUnit(ctx context.Context, query models.Query, p providers.Provider) unitResult {
	res := unitResult{provider: p.Name()}
	log := logrus.WithFields(logrus.Fields{
		"query_id": query.ID,
		"provider": p.Name(),
	})

	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.ProviderTimeout)
	defer cancel()

	raw, err := p.Fetch(fetchCtx, query.Text)
	if err != nil {
		log.Errorf("Provider fetch failed: %v", err)
		res.err = err
		return res
	}

	normalized, err := Normalize(raw)
	if err != nil {
		log.Errorf("Failed to normalize provider result: %v", err)
		res.err = err
		return res
	}

	if normalized.Body == "" {
		log.Warnf("Provider returned no usable text for query %q, skipping", query.Text)
		return res
	}

	score := o.enricher.AnalyzeSentiment(ctx, normalized.Body)
	summary := o.enricher.Summarize(ctx, normalized.Body)

	var insight *models.InsightPayload
	if o.enricher.ShouldExtractInsights(p.Kind(), len(normalized.Body)) {
		insight, err = o.enricher.ExtractInsights(ctx, normalized.Body)
		if err != nil {
			// A rejected payload means no insight row, not a failed unit.
			log.Warnf("Insight payload discarded: %v", err)
			insight = nil
		}
	}

	mention := &models.Mention{
		QueryID:     query.ID,
		Engine:      p.Name(),
		Source:      strings.ToLower(p.Name()),
		Response:    normalized.Body,
		Sentiment:   score.Sentiment,
		Emotion:     score.Emotion,
		Confidence:  score.Confidence,
		SourceTitle: normalized.SourceTitle,
		SourceURL:   normalized.SourceURL,
		Language:    "auto",
		Summary:     summary.Text,
		KeyTopics:   summary.KeyTopics,
		CreatedAt:   time.Now().UTC(),
	}

	mentionID, insightID, err := o.store.SaveMention(ctx, mention, insight)
	if err != nil {
		log.Errorf("Failed to persist mention: %v", err)
		res.err = err
		return res
	}
	res.mentionSaved = true
	res.insightSaved = insightID != nil

	if ShouldAlert(score.Sentiment, o.cfg.AlertThreshold) {
		alert := &models.AlertEvent{
			QueryText: query.Text,
			Sentiment: score.Sentiment,
			Summary:   summary.Text,
			CreatedAt: time.Now().UTC(),
		}
		if err := o.notifier.SendAlert(alert); err != nil {
			// Delivery failures are logged only; the mention stays committed.
			log.Errorf("Failed to deliver alert: %v", err)
		} else {
			res.alertSent = true
		}
	}

	log.Infof("Saved mention (mention_id=%d, has_insight=%t)", mentionID, insightID != nil)
	return res
}

// GetMetrics returns the latest cycle metrics as JSON.
func (o *Orchestrator) GetMetrics() string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	data, _ := json.MarshalIndent(o.metrics, "", "  ")
	return string(data)
}
