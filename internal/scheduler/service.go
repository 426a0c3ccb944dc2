package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rquegea/ai-visibility-mvp/internal/config"
	"github.com/rquegea/ai-visibility-mvp/internal/pipeline"
	"github.com/sirupsen/logrus"
)

// Service runs the poll orchestrator on a fixed interval in loop mode.
type Service struct {
	config       *config.Config
	orchestrator *pipeline.Orchestrator
	cron         *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, orchestrator *pipeline.Orchestrator) *Service {
	return &Service{
		config:       cfg,
		orchestrator: orchestrator,
		cron:         cron.New(),
	}
}

// Start begins the scheduled polling
func (s *Service) Start() error {
	spec := fmt.Sprintf("@every %s", s.config.PollInterval)

	_, err := s.cron.AddFunc(spec, func() {
		logrus.Info("Starting scheduled poll cycle")
		if err := s.orchestrator.Run(context.Background()); err != nil {
			logrus.Errorf("Scheduled poll cycle failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started, polling every %s", s.config.PollInterval)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
