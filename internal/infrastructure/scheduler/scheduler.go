package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrSchedulerNotRunning is returned when a manual trigger hits a stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// Job is one recurring unit of background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// Scheduler drives recurring jobs on fixed intervals. Each job gets its
// own goroutine and ticker; a panicking job is logged and retried on the
// next tick rather than taking the process down.
type Scheduler struct {
	logger     *zap.Logger
	jobTimeout time.Duration
	jobs       []scheduledJob

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a scheduler. jobTimeout bounds a single job run.
func NewScheduler(logger *zap.Logger, jobTimeout time.Duration) *Scheduler {
	return &Scheduler{
		logger:     logger.Named("scheduler"),
		jobTimeout: jobTimeout,
	}
}

// Register adds a job to run on the given interval. Must be called
// before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, scheduledJob{job: job, interval: interval})
}

// Start launches one loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	jobs := s.jobs
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, sj := range jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, sj)
	}

	s.logger.Info("Scheduler started", zap.Int("jobs", len(jobs)))
	return nil
}

// Stop cancels all job loops and waits for them to finish, bounded by ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs one registered job immediately, outside its schedule
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	jobs := s.jobs
	s.mu.Unlock()

	for _, sj := range jobs {
		if sj.job.Name() == name {
			s.execute(ctx, sj.job)
			return nil
		}
	}
	return errors.New("unknown job: " + name)
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Scheduler) runLoop(ctx context.Context, sj scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	s.logger.Info("Job scheduled",
		zap.String("job", sj.job.Name()),
		zap.Duration("interval", sj.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Job loop stopping", zap.String("job", sj.job.Name()))
			return
		case <-ticker.C:
			s.execute(ctx, sj.job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panicked",
				zap.String("job", job.Name()),
				zap.Any("panic", r),
			)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Run(runCtx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", job.Name()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Job completed",
		zap.String("job", job.Name()),
		zap.Duration("duration", duration),
	)
}
