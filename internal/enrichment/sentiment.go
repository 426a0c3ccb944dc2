package enrichment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rquegea/ai-visibility-mvp/internal/models"
	"github.com/sirupsen/logrus"
)

var validEmotions = map[string]bool{
	"joy":      true,
	"sadness":  true,
	"anger":    true,
	"fear":     true,
	"surprise": true,
	"neutral":  true,
}

// neutralScore is the degraded-but-valid result used when scoring fails.
var neutralScore = models.SentimentScore{Sentiment: 0, Emotion: "neutral", Confidence: 0}

// AnalyzeSentiment scores a block of text. It never returns an error: on any
// failure or malformed model output the neutral fallback is returned instead.
func (s *Service) AnalyzeSentiment(ctx context.Context, text string) models.SentimentScore {
	prompt := fmt.Sprintf(`Analyze the following text and return the result as exact JSON.

Text to analyze:
"""%s"""

Respond ONLY with this JSON format (no additional text):
{"sentiment": 0.8, "emotion": "joy", "confidence": 0.9}

Where:
- sentiment: number between -1 (very negative) and 1 (very positive)
- emotion: one of [joy, sadness, anger, fear, surprise, neutral]
- confidence: number between 0 and 1`, truncate(text, maxPromptChars))

	raw, err := s.completer.Complete(ctx, prompt, 0.1, 150)
	if err != nil {
		logrus.Errorf("Sentiment analysis failed, using neutral fallback: %v", err)
		return neutralScore
	}

	var parsed models.SentimentScore
	if err := json.Unmarshal([]byte(stripJSONFence(raw)), &parsed); err != nil {
		logrus.Errorf("Failed to parse sentiment JSON, using neutral fallback: %v", err)
		return neutralScore
	}

	// Out-of-range model output is clamped, never persisted verbatim.
	parsed.Sentiment = clamp(parsed.Sentiment, -1, 1)
	parsed.Confidence = clamp(parsed.Confidence, 0, 1)
	if !validEmotions[parsed.Emotion] {
		parsed.Emotion = "neutral"
	}

	return parsed
}
