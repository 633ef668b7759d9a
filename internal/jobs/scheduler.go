package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler gerencia os jobs do cron.
type Scheduler struct {
	cron     *cron.Cron
	jobs     *Jobs
	logger   *slog.Logger
	schedule string
}

func NewScheduler(jobs *Jobs, logger *slog.Logger, schedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		jobs:     jobs,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registra os jobs, roda a primeira atualização e inicia o cron.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.jobs.RefreshAssinaturasAtivas); err != nil {
		s.logger.Error("Falha ao agendar o job de métricas de assinaturas", "schedule", s.schedule, "error", err)
		return err
	}
	s.logger.Info("⏰ Job de métricas de assinaturas agendado", "schedule", s.schedule)

	s.jobs.RefreshAssinaturasAtivas()
	s.cron.Start()
	return nil
}

// Stop para o cron; o contexto devolvido termina quando os jobs em andamento acabarem.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
