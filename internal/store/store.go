package store

import (
	"context"
	"errors"
	"time"

	"olap-graph-datagen-go/internal/models"
)

// Sentinel errors shared across all manifest implementations.
var (
	ErrRunNotFound        = errors.New("run not found")
	ErrRunFinished        = errors.New("run already finished")
	ErrDuplicateBatchFile = errors.New("duplicate batch file")
)

// ManifestStore records generator runs and the batch files they publish.
type ManifestStore interface {
	// --- Runs ---
	CreateRun(ctx context.Context, run models.Run) error
	FinishRun(ctx context.Context, runId string, status models.RunStatus, elapsed time.Duration, runErr error) error
	GetRun(ctx context.Context, runId string) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)

	// --- Batch files ---
	RecordBatchFile(ctx context.Context, file models.BatchFile) error
	GetBatchFiles(ctx context.Context, runId string) ([]models.BatchFile, error)
	GetTableCounts(ctx context.Context, runId string) ([]models.TableCount, error)

	Close()
}
