package models

import "time"

// Query is a monitored search phrase. Queries are created and toggled by the
// reporting API; the poller only ever reads them.
type Query struct {
	ID       int    `json:"id"`
	Text     string `json:"query"`
	Brand    string `json:"brand,omitempty"`
	Topic    string `json:"topic,omitempty"`
	Language string `json:"language,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// Mention is one provider's enriched answer to one query at one point in time.
type Mention struct {
	ID                 int64     `json:"id"`
	QueryID            int       `json:"query_id"`
	Engine             string    `json:"engine"`
	Source             string    `json:"source"`
	Response           string    `json:"response"`
	Sentiment          float64   `json:"sentiment"`
	Emotion            string    `json:"emotion"`
	Confidence         float64   `json:"confidence_score"`
	SourceTitle        string    `json:"source_title,omitempty"`
	SourceURL          string    `json:"source_url,omitempty"`
	Language           string    `json:"language"`
	Summary            string    `json:"summary"`
	KeyTopics          []string  `json:"key_topics"`
	GeneratedInsightID *int64    `json:"generated_insight_id,omitempty"`
	Status             string    `json:"status"` // "active" or "archived", mutated only by the reporting API
	CreatedAt          time.Time `json:"created_at"`
}

// Insight is a structured analysis payload derived from one mention's text.
// Rows are immutable once written.
type Insight struct {
	ID        int64          `json:"id"`
	QueryID   int            `json:"query_id"`
	Payload   InsightPayload `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// BrandMention is one brand spotted in a response, with how often it appears
// and the average sentiment toward it.
type BrandMention struct {
	Name         string  `json:"name"`
	Mentions     int     `json:"mentions"`
	SentimentAvg float64 `json:"sentiment_avg"`
}

// InsightPayload is the schema-shaped document stored in the insights table.
type InsightPayload struct {
	Brands             []BrandMention `json:"brands"`
	Competitors        []string       `json:"competitors"`
	Opportunities      []string       `json:"opportunities"`
	Risks              []string       `json:"risks"`
	PainPoints         []string       `json:"pain_points"`
	Trends             []string       `json:"trends"`
	Quotes             []string       `json:"quotes"`
	TopThemes          []string       `json:"top_themes"`
	TopicFrequency     map[string]int `json:"topic_frequency"`
	SourceMentions     map[string]int `json:"source_mentions"`
	CallsToAction      []string       `json:"calls_to_action"`
	AudienceTargeting  []string       `json:"audience_targeting"`
	ProductsOrFeatures []string       `json:"products_or_features"`
}

// SentimentScore is the result of scoring a block of text.
type SentimentScore struct {
	Sentiment  float64 `json:"sentiment"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Summary is a one-sentence digest of a response plus its key topics.
type Summary struct {
	Text      string   `json:"summary"`
	KeyTopics []string `json:"key_topics"`
}

// NormalizedText is the provider-independent shape every raw result is
// reduced to before enrichment.
type NormalizedText struct {
	Body        string `json:"body"`
	SourceTitle string `json:"source_title,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
}

// AlertEvent is handed to the notification channel when a mention's sentiment
// crosses the alert threshold. It is never persisted.
type AlertEvent struct {
	QueryText string    `json:"query_text"`
	Sentiment float64   `json:"sentiment"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
