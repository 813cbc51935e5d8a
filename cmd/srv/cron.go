package main

import (
	"os/signal"
	"syscall"

	"github.com/soundtrail/backend/internal/domain/cron"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	if err := s.loadService(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewListeningHistoryCronJob(
		s.userRepo,
		s.listeningHistoryRepo,
		s.caller,
		s.spotifyEndpoint,
		s.configs.Cron,
	))
	cronJobManager.Start(ctx)

	return nil
}
