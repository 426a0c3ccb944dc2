package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rquegea/ai-visibility-mvp/internal/config"
	"github.com/rquegea/ai-visibility-mvp/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service delivers alerts via the configured channels (Slack webhook and/or
// email). Channels that are not configured are skipped silently.
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

type slackMessage struct {
	Text string `json:"text"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendAlert sends a negative-sentiment alert via all configured channels.
func (s *Service) SendAlert(alert *models.AlertEvent) error {
	var errors []string

	if s.config.SlackWebhookURL != "" {
		if err := s.sendToSlack(alert); err != nil {
			logrus.Errorf("Failed to send Slack alert: %v", err)
			errors = append(errors, fmt.Sprintf("Slack: %v", err))
		} else {
			logrus.Info("Successfully sent alert to Slack")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(alert); err != nil {
			logrus.Errorf("Failed to send email alert: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent alert via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToSlack(alert *models.AlertEvent) error {
	message := slackMessage{
		Text: fmt.Sprintf(":rotating_light: Negative sentiment detected for query %q (sentiment %.2f)\n%s",
			alert.QueryText, alert.Sentiment, alert.Summary),
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.SlackWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Slack webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(alert *models.AlertEvent) error {
	subject := fmt.Sprintf("Sentiment alert: %q at %.2f", alert.QueryText, alert.Sentiment)

	body := fmt.Sprintf(
		"Negative sentiment was detected for monitored query %q.\n\nSentiment: %.2f\nSummary: %s\nDetected at: %s\n",
		alert.QueryText, alert.Sentiment, alert.Summary, alert.CreatedAt.Format(time.RFC3339))

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
