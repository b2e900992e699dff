package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	JobLowStockScan = "low_stock_scan"
	JobWagePublish  = "wage_publish"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Func is the body of a job. The returned details are stored with the run.
type Func func(ctx context.Context) (any, error)

type Service struct {
	recorder Recorder
	logger   *zap.Logger
	cron     *cron.Cron
	queue    chan string
	timeout  time.Duration

	mu    sync.RWMutex
	funcs map[string]Func
}

func New(recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = NewMemoryRecorder(100)
	}
	return &Service{
		recorder: recorder,
		logger:   logger,
		cron:     cron.New(),
		queue:    make(chan string, 128),
		timeout:  2 * time.Minute,
		funcs:    map[string]Func{},
	}
}

// Register adds a job. A non-empty spec also schedules it with a standard
// five field cron expression.
func (s *Service) Register(jobType, spec string, run Func) error {
	s.mu.Lock()
	s.funcs[jobType] = run
	s.mu.Unlock()

	if spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.Enqueue(jobType); err != nil {
			s.logger.Warn("scheduled job not queued", zap.String("jobType", jobType), zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule %s with %q: %w", jobType, spec, err)
	}
	s.logger.Info("job scheduled", zap.String("jobType", jobType), zap.String("spec", spec))
	return nil
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	s.cron.Start()
}

// Stop halts the scheduler and waits for a cron tick that is mid-enqueue.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Service) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.funcs))
	for jobType := range s.funcs {
		out = append(out, jobType)
	}
	sort.Strings(out)
	return out
}

func (s *Service) lookup(jobType string) (Func, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.funcs[jobType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, jobType)
	}
	return run, nil
}

func (s *Service) Enqueue(jobType string) error {
	if _, err := s.lookup(jobType); err != nil {
		return err
	}
	select {
	case s.queue <- jobType:
		return nil
	default:
		return ErrQueueFull
	}
}

// RunNow executes the job on the calling goroutine and records the run.
func (s *Service) RunNow(ctx context.Context, jobType string) (any, error) {
	run, err := s.lookup(jobType)
	if err != nil {
		return nil, err
	}
	return s.runJob(ctx, jobType, run)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Run, error) {
	return s.recorder.Recent(ctx, limit)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case jobType := <-s.queue:
			run, err := s.lookup(jobType)
			if err != nil {
				continue
			}
			jobCtx, cancel := context.WithTimeout(ctx, s.timeout)
			if _, err := s.runJob(jobCtx, jobType, run); err != nil {
				s.logger.Warn("job run failed", zap.String("jobType", jobType), zap.Error(err))
			}
			cancel()
		}
	}
}

func (s *Service) runJob(ctx context.Context, jobType string, run Func) (any, error) {
	runID, err := s.recorder.Start(ctx, jobType)
	if err != nil {
		s.logger.Warn("job run insert failed", zap.String("jobType", jobType), zap.Error(err))
	}

	started := time.Now()
	details, err := run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		s.logger.Warn("job details marshal failed", zap.String("jobType", jobType), zap.Error(marshalErr))
		detailsJSON = []byte("{}")
	}
	if runID != 0 {
		if updErr := s.recorder.Finish(ctx, runID, status, detailsJSON); updErr != nil {
			s.logger.Warn("job run update failed", zap.String("jobType", jobType), zap.Error(updErr))
		}
	}
	s.logger.Info("job finished",
		zap.String("jobType", jobType),
		zap.String("status", status),
		zap.Duration("duration", time.Since(started)),
	)
	return details, err
}
