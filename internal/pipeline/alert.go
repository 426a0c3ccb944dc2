package pipeline

// DefaultAlertThreshold is the sentiment below which an alert is raised.
const DefaultAlertThreshold = -0.3

// ShouldAlert decides whether a mention's sentiment warrants a notification.
// The comparison is strict: a sentiment exactly at the threshold does not
// alert.
func ShouldAlert(sentiment, threshold float64) bool {
	return sentiment < threshold
}
