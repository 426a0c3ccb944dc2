package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rquegea/ai-visibility-mvp/internal/config"
	"github.com/rquegea/ai-visibility-mvp/internal/models"
	"github.com/rquegea/ai-visibility-mvp/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a configurable stand-in for a real provider.
type fakeProvider struct {
	name    string
	kind    providers.Kind
	enabled bool
	result  providers.Result
	err     error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Kind() providers.Kind { return f.kind }

func (f *fakeProvider) IsEnabled() bool { return f.enabled }

func (f *fakeProvider) Fetch(ctx context.Context, query string) (providers.Result, error) {
	return f.result, f.err
}

// MockStore is a mock implementation of the storage interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListEnabledQueries(ctx context.Context) ([]models.Query, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Query), args.Error(1)
}

func (m *MockStore) SaveMention(ctx context.Context, mention *models.Mention, insight *models.InsightPayload) (int64, *int64, error) {
	args := m.Called(ctx, mention, insight)
	var insightID *int64
	if args.Get(1) != nil {
		insightID = args.Get(1).(*int64)
	}
	return args.Get(0).(int64), insightID, args.Error(2)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockNotifier is a mock implementation of the notification channel
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendAlert(alert *models.AlertEvent) error {
	args := m.Called(alert)
	return args.Error(0)
}

// MockEnricher is a mock implementation of the enrichment stage
type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) AnalyzeSentiment(ctx context.Context, text string) models.SentimentScore {
	args := m.Called(ctx, text)
	return args.Get(0).(models.SentimentScore)
}

func (m *MockEnricher) Summarize(ctx context.Context, text string) models.Summary {
	args := m.Called(ctx, text)
	return args.Get(0).(models.Summary)
}

func (m *MockEnricher) ExtractInsights(ctx context.Context, text string) (*models.InsightPayload, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InsightPayload), args.Error(1)
}

func (m *MockEnricher) ShouldExtractInsights(kind providers.Kind, textLength int) bool {
	args := m.Called(kind, textLength)
	return args.Bool(0)
}

func testConfig() *config.Config {
	return &config.Config{
		AlertThreshold:  -0.3,
		ProviderTimeout: 5 * time.Second,
	}
}

func neutralEnricher() *MockEnricher {
	enricher := &MockEnricher{}
	enricher.On("AnalyzeSentiment", mock.Anything, mock.Anything).
		Return(models.SentimentScore{Sentiment: 0.1, Emotion: "neutral", Confidence: 0.8})
	enricher.On("Summarize", mock.Anything, mock.Anything).
		Return(models.Summary{Text: "a short summary", KeyTopics: []string{"topic"}})
	enricher.On("ShouldExtractInsights", mock.Anything, mock.Anything).Return(false)
	return enricher
}

func TestOrchestrator_ProviderFailureIsIsolated(t *testing.T) {
	chat := &fakeProvider{
		name:    "gpt-4",
		kind:    providers.KindChat,
		enabled: true,
		err:     errors.New("quota exceeded"),
	}
	search := &fakeProvider{
		name:    "serpapi",
		kind:    providers.KindWebSearch,
		enabled: true,
		result: providers.Result{
			Kind: providers.ResultRankedList,
			Cap:  3,
			Items: []providers.SearchItem{
				{Title: "Top Cookies", Snippet: "ranking", URL: "https://example.com", Source: "example.com"},
			},
		},
	}

	store := &MockStore{}
	store.On("ListEnabledQueries", mock.Anything).
		Return([]models.Query{{ID: 1, Text: "best cookie brands", Enabled: true}}, nil)
	store.On("SaveMention", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(1), nil, nil)

	notifier := &MockNotifier{}
	orchestrator := NewOrchestrator(testConfig(), store, []providers.Provider{chat, search}, neutralEnricher(), notifier)

	err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	// Exactly one mention is written, for the provider that succeeded.
	store.AssertNumberOfCalls(t, "SaveMention", 1)
	saved := store.Calls[1].Arguments.Get(1).(*models.Mention)
	assert.Equal(t, "serpapi", saved.Engine)
	notifier.AssertNotCalled(t, "SendAlert", mock.Anything)
}

func TestOrchestrator_PersistenceFailureDoesNotStopOtherQueries(t *testing.T) {
	chat := &fakeProvider{
		name:    "gpt-4",
		kind:    providers.KindChat,
		enabled: true,
		result:  providers.Result{Kind: providers.ResultText, Text: "some answer"},
	}

	store := &MockStore{}
	store.On("ListEnabledQueries", mock.Anything).
		Return([]models.Query{
			{ID: 1, Text: "first query", Enabled: true},
			{ID: 2, Text: "second query", Enabled: true},
		}, nil)
	store.On("SaveMention", mock.Anything, mock.MatchedBy(func(m *models.Mention) bool { return m.QueryID == 1 }), mock.Anything).
		Return(int64(0), nil, errors.New("db unavailable"))
	store.On("SaveMention", mock.Anything, mock.MatchedBy(func(m *models.Mention) bool { return m.QueryID == 2 }), mock.Anything).
		Return(int64(5), nil, nil)

	notifier := &MockNotifier{}
	orchestrator := NewOrchestrator(testConfig(), store, []providers.Provider{chat}, neutralEnricher(), notifier)

	err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	store.AssertNumberOfCalls(t, "SaveMention", 2)
}

func TestOrchestrator_DisabledProviderIsSkipped(t *testing.T) {
	disabled := &fakeProvider{name: "pplx-7b-chat", kind: providers.KindConversationalSearch, enabled: false}

	store := &MockStore{}
	store.On("ListEnabledQueries", mock.Anything).
		Return([]models.Query{{ID: 1, Text: "best cookie brands", Enabled: true}}, nil)

	orchestrator := NewOrchestrator(testConfig(), store, []providers.Provider{disabled}, neutralEnricher(), &MockNotifier{})

	err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	store.AssertNotCalled(t, "SaveMention", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_EmptyResultWritesNoRow(t *testing.T) {
	search := &fakeProvider{
		name:    "serpapi",
		kind:    providers.KindWebSearch,
		enabled: true,
		result:  providers.Result{Kind: providers.ResultRankedList, Cap: 3},
	}

	store := &MockStore{}
	store.On("ListEnabledQueries", mock.Anything).
		Return([]models.Query{{ID: 1, Text: "obscure query", Enabled: true}}, nil)

	orchestrator := NewOrchestrator(testConfig(), store, []providers.Provider{search}, neutralEnricher(), &MockNotifier{})

	err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	store.AssertNotCalled(t, "SaveMention", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_EndToEndWithInsightAndAlert(t *testing.T) {
	responseText := strings.Repeat("Brand X cookies disappoint loyal customers. ", 12)
	require.Greater(t, len(responseText), 500)

	chat := &fakeProvider{
		name:    "gpt-4",
		kind:    providers.KindChat,
		enabled: true,
		result:  providers.Result{Kind: providers.ResultText, Text: responseText},
	}

	payload := &models.InsightPayload{
		Brands: []models.BrandMention{{Name: "Brand X", Mentions: 12, SentimentAvg: -0.5}},
	}

	enricher := &MockEnricher{}
	enricher.On("AnalyzeSentiment", mock.Anything, mock.Anything).
		Return(models.SentimentScore{Sentiment: -0.5, Emotion: "sadness", Confidence: 0.9})
	enricher.On("Summarize", mock.Anything, mock.Anything).
		Return(models.Summary{Text: "Brand X disappoints customers.", KeyTopics: []string{"Brand X", "cookies"}})
	enricher.On("ShouldExtractInsights", providers.KindChat, len(strings.TrimSpace(responseText))).Return(true)
	enricher.On("ExtractInsights", mock.Anything, mock.Anything).Return(payload, nil)

	insightID := int64(7)
	store := &MockStore{}
	store.On("ListEnabledQueries", mock.Anything).
		Return([]models.Query{{ID: 1, Text: "best cookie brands", Enabled: true}}, nil)
	store.On("SaveMention", mock.Anything, mock.Anything, payload).
		Return(int64(42), &insightID, nil)

	notifier := &MockNotifier{}
	notifier.On("SendAlert", mock.MatchedBy(func(alert *models.AlertEvent) bool {
		return alert.QueryText == "best cookie brands" && alert.Sentiment == -0.5
	})).Return(nil)

	orchestrator := NewOrchestrator(testConfig(), store, []providers.Provider{chat}, enricher, notifier)

	err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	store.AssertNumberOfCalls(t, "SaveMention", 1)
	saved := store.Calls[1].Arguments.Get(1).(*models.Mention)
	assert.Equal(t, "gpt-4", saved.Engine)
	assert.Equal(t, -0.5, saved.Sentiment)
	assert.Equal(t, "sadness", saved.Emotion)
	notifier.AssertNumberOfCalls(t, "SendAlert", 1)
}

func TestOrchestrator_RejectedInsightStillWritesMention(t *testing.T) {
	chat := &fakeProvider{
		name:    "gpt-4",
		kind:    providers.KindChat,
		enabled: true,
		result:  providers.Result{Kind: providers.ResultText, Text: "a brand discussion"},
	}

	enricher := &MockEnricher{}
	enricher.On("AnalyzeSentiment", mock.Anything, mock.Anything).
		Return(models.SentimentScore{Sentiment: 0.2, Emotion: "joy", Confidence: 0.7})
	enricher.On("Summarize", mock.Anything, mock.Anything).
		Return(models.Summary{Text: "summary", KeyTopics: []string{}})
	enricher.On("ShouldExtractInsights", mock.Anything, mock.Anything).Return(true)
	enricher.On("ExtractInsights", mock.Anything, mock.Anything).
		Return(nil, errors.New("insight output rejected by schema"))

	store := &MockStore{}
	store.On("ListEnabledQueries", mock.Anything).
		Return([]models.Query{{ID: 1, Text: "best cookie brands", Enabled: true}}, nil)
	store.On("SaveMention", mock.Anything, mock.Anything, (*models.InsightPayload)(nil)).
		Return(int64(9), nil, nil)

	orchestrator := NewOrchestrator(testConfig(), store, []providers.Provider{chat}, enricher, &MockNotifier{})

	err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	store.AssertNumberOfCalls(t, "SaveMention", 1)
}

func TestOrchestrator_AlertDeliveryFailureIsLoggedOnly(t *testing.T) {
	chat := &fakeProvider{
		name:    "gpt-4",
		kind:    providers.KindChat,
		enabled: true,
		result:  providers.Result{Kind: providers.ResultText, Text: "very negative coverage"},
	}

	enricher := &MockEnricher{}
	enricher.On("AnalyzeSentiment", mock.Anything, mock.Anything).
		Return(models.SentimentScore{Sentiment: -0.8, Emotion: "anger", Confidence: 0.9})
	enricher.On("Summarize", mock.Anything, mock.Anything).
		Return(models.Summary{Text: "bad news", KeyTopics: []string{}})
	enricher.On("ShouldExtractInsights", mock.Anything, mock.Anything).Return(false)

	store := &MockStore{}
	store.On("ListEnabledQueries", mock.Anything).
		Return([]models.Query{{ID: 1, Text: "best cookie brands", Enabled: true}}, nil)
	store.On("SaveMention", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(3), nil, nil)

	notifier := &MockNotifier{}
	notifier.On("SendAlert", mock.Anything).Return(errors.New("webhook unreachable"))

	orchestrator := NewOrchestrator(testConfig(), store, []providers.Provider{chat}, enricher, notifier)

	err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	// The mention stays persisted even though delivery failed.
	store.AssertNumberOfCalls(t, "SaveMention", 1)
}
