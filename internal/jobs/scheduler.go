package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler is responsible for running background maintenance jobs.
// Dashboard reads are computed on demand, so nothing here touches event data.
type Scheduler struct {
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	enabled   bool
	isRunning bool
	interval  time.Duration

	// Mutex to prevent concurrent job executions
	processingMutex sync.Mutex
	isProcessing    bool

	checkpointJob    *CheckpointJob
	checkpointTicker *time.Ticker
	done             chan struct{}
}

// NewScheduler creates a scheduler checkpointing every interval.
// A non-positive interval disables the scheduler.
func NewScheduler(checkpointer Checkpointer, logger *slog.Logger, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		enabled:       interval > 0,
		interval:      interval,
		checkpointJob: NewCheckpointJob(checkpointer, logger),
	}
}

// executeJobSafely runs a job only if no other job is currently executing
func (s *Scheduler) executeJobSafely(jobName string, jobFunc func() error) {
	s.processingMutex.Lock()
	if s.isProcessing {
		s.logger.Debug("Skipping job execution - previous job still running", slog.String("job", jobName))
		s.processingMutex.Unlock()
		return
	}
	s.isProcessing = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", jobName),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.isProcessing = false
		s.processingMutex.Unlock()
	}()

	if err := jobFunc(); err != nil {
		s.logger.Error("Error executing job", slog.String("job", jobName), slog.Any("error", err))
	}
}

// Start begins all background jobs.
// Implements cartridge.BackgroundWorker interface.
func (s *Scheduler) Start() error {
	if !s.enabled {
		s.logger.Info("Background jobs are disabled.")
		return nil
	}

	if s.isRunning {
		s.logger.Info("Background jobs already running.")
		return nil
	}

	s.isRunning = true
	s.startCheckpointJob()

	s.logger.Info("Background jobs started", slog.Duration("checkpointInterval", s.interval))
	return nil
}

func (s *Scheduler) startCheckpointJob() {
	s.checkpointTicker = time.NewTicker(s.interval)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.checkpointTicker.C:
				s.executeJobSafely("wal_checkpoint", s.checkpointJob.Run)
			case <-s.ctx.Done():
				s.logger.Info("Checkpoint job stopped")
				return
			}
		}
	}()
}

// Stop halts all background jobs and waits for the running one to finish.
// Implements cartridge.BackgroundWorker interface.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background jobs...")
	s.enabled = false

	if s.checkpointTicker != nil {
		s.checkpointTicker.Stop()
	}

	s.cancel()
	if s.done != nil {
		<-s.done
	}
	s.isRunning = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning returns whether jobs are currently running
func (s *Scheduler) IsRunning() bool {
	return s.isRunning
}

// Checkpoint triggers a checkpoint outside the schedule, e.g. before a backup.
func (s *Scheduler) Checkpoint() error {
	return s.checkpointJob.Run()
}
