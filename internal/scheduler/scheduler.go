package scheduler

import (
	"context"
	"fmt"
	"time"

	"docmatch/internal/config"
	"docmatch/internal/logger"
	"docmatch/internal/repository"
	"docmatch/internal/service"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single scheduled run.
const jobTimeout = 30 * time.Minute

type matchRunner interface {
	Run(ctx context.Context, req service.MatchRequest) (*repository.MatchRun, error)
}

// Scheduler periodically matches two configured collections.
type Scheduler struct {
	cron         *cron.Cron
	matchService matchRunner
	cfg          config.ScheduleConfig
}

func NewScheduler(matchService matchRunner, cfg config.ScheduleConfig) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(logger.Printf{Component: "cron"})

	// Specs may omit the seconds field.
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:         c,
		matchService: matchService,
		cfg:          cfg,
	}
}

// Start registers the match job and starts the cron loop. It does nothing
// when no schedule is configured.
func (s *Scheduler) Start() error {
	if s.cfg.Cron == "" {
		logger.Info().Msg("scheduled matching disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Cron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := s.RunNow(ctx); err != nil {
			logger.Error().Err(err).Str("cron", s.cfg.Cron).Msg("scheduled match run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.cfg.Cron, err)
	}

	s.cron.Start()
	logger.Info().
		Str("cron", s.cfg.Cron).
		Str("source", s.cfg.Source).
		Str("first", s.cfg.First).
		Str("second", s.cfg.Second).
		Msg("scheduler started")

	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	logger.Info().Msg("stopping scheduler")
	<-s.cron.Stop().Done()
	logger.Info().Msg("scheduler stopped")
}

// RunNow runs the configured match immediately.
func (s *Scheduler) RunNow(ctx context.Context) (*repository.MatchRun, error) {
	logger.Info().Str("source", s.cfg.Source).Msg("running scheduled match")

	run, err := s.matchService.Run(ctx, service.MatchRequest{
		Source: s.cfg.Source,
		First:  s.cfg.First,
		Second: s.cfg.Second,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("run_id", run.ID.String()).
		Int("matches", run.MatchCount).
		Msg("scheduled match finished")
	return run, nil
}

// GetScheduledJobs returns information about scheduled jobs
func (s *Scheduler) GetScheduledJobs() []cron.Entry {
	return s.cron.Entries()
}
