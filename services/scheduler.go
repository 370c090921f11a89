package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bellapacxx/inzo-lotto/utils/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DrawRunner runs an unattended draw for one guild and announces it there.
type DrawRunner interface {
	Guilds() []string
	RunScheduledDraw(ctx context.Context, guildID string)
}

// Scheduler checks on a fixed cron schedule whether the round is due and, if
// so, asks the runner to draw for every guild it serves.
type Scheduler struct {
	lottery *Lottery
	runner  DrawRunner
	spec    string
	timeout time.Duration
	cron    *cron.Cron
	job     cron.Job // run wrapped in the recover/skip chain
	first   sync.WaitGroup
	log     *zap.SugaredLogger
}

func NewScheduler(lottery *Lottery, runner DrawRunner, spec string) *Scheduler {
	s := &Scheduler{
		lottery: lottery,
		runner:  runner,
		spec:    spec,
		timeout: 5 * time.Minute,
		cron:    cron.New(),
		log:     logger.Named("scheduler"),
	}
	s.job = cron.NewChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	).Then(cron.FuncJob(s.run))
	return s
}

// Start runs one check right away and then one per schedule tick.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddJob(s.spec, s.job); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.first.Add(1)
	go func() {
		defer s.first.Done()
		s.job.Run()
	}()
	s.log.Infow("scheduler started", "spec", s.spec)
	return nil
}

// Stop waits for a running check to finish, including the one Start began.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.first.Wait()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.Tick(ctx); err != nil {
		s.log.Errorw("scheduled check failed", "error", err)
	}
}

// Tick performs one check and returns how many guilds were asked to draw.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	due, err := s.lottery.DueForDraw(ctx)
	if err != nil {
		return 0, err
	}
	if !due {
		s.log.Debug("draw not due")
		return 0, nil
	}

	guilds := s.runner.Guilds()
	s.log.Infow("draw due", "guilds", len(guilds))
	for _, guildID := range guilds {
		s.runner.RunScheduledDraw(ctx, guildID)
	}
	return len(guilds), nil
}
