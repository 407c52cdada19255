package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// Checkpointer flushes the SQLite write-ahead log into the main database file.
type Checkpointer interface {
	CheckpointWAL(mode string) error
}

// CheckpointJob keeps the WAL file from growing without bound between restarts.
// Events are only ever appended, so the log grows steadily under ingestion load.
type CheckpointJob struct {
	checkpointer Checkpointer
	logger       *slog.Logger
	mode         string
}

func NewCheckpointJob(checkpointer Checkpointer, logger *slog.Logger) *CheckpointJob {
	return &CheckpointJob{
		checkpointer: checkpointer,
		logger:       logger,
		mode:         "PASSIVE",
	}
}

// Run performs a passive checkpoint, which never blocks readers or writers.
func (j *CheckpointJob) Run() error {
	start := time.Now()
	if err := j.checkpointer.CheckpointWAL(j.mode); err != nil {
		return fmt.Errorf("wal checkpoint failed: %w", err)
	}
	j.logger.Debug("WAL checkpoint completed",
		slog.String("mode", j.mode),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
