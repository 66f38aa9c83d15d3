package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lactacare/internal/clock"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled pass; it receives the tick time from the scheduler's clock
type Job func(ctx context.Context, now time.Time)

// Scheduler runs fixed-interval jobs on their own tickers and cron-expression
// jobs on a robfig/cron runner. Stop waits for in-flight runs.
type Scheduler struct {
	mu      sync.Mutex
	clock   clock.Clock
	logger  *zap.Logger
	cron    *cron.Cron
	wg      sync.WaitGroup
	stop    chan struct{}
	cancel  context.CancelFunc
	ctx     context.Context
	stopped bool
}

func New(c clock.Clock, logger *zap.Logger) *Scheduler {
	if c == nil {
		c = clock.System()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:  c,
		logger: logger,
		cron:   cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		stop:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every runs job every interval until Stop. Runs never overlap: a run that
// outlasts the interval delays the next one.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return fmt.Errorf("job %s: scheduler stopped", name)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Info("⏱️ Scheduled job started", zap.String("job", name), zap.Duration("interval", interval))
		for {
			select {
			case <-s.stop:
				s.logger.Info("Scheduled job stopped", zap.String("job", name))
				return
			case <-ticker.C:
				s.run(name, job)
			}
		}
	}()
	return nil
}

// Cron registers job under a cron expression (UTC, five fields)
func (s *Scheduler) Cron(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return fmt.Errorf("job %s: scheduler stopped", name)
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("job %s: invalid cron spec %q: %w", name, spec, err)
	}
	s.logger.Info("⏱️ Cron job registered", zap.String("job", name), zap.String("spec", spec))
	return nil
}

// Start begins firing cron jobs; interval jobs start as soon as they are added
func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) run(name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduled job panicked", zap.String("job", name), zap.Any("panic", r))
		}
	}()
	select {
	case <-s.stop:
		return
	default:
	}
	job(s.ctx, s.clock.Now())
}

// Stop prevents further runs and lets in-flight runs finish. If ctx ends
// first, the context handed to running jobs is cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stop)
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		s.logger.Info("✅ Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}
