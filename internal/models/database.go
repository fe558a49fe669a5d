package models

import (
	"time"
)

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run represents one generator invocation recorded in the manifest
type Run struct {
	Id            string    `db:"id"`
	Seed          uint64    `db:"seed"`
	CustomerScale int       `db:"customer_scale"`
	UseCase       UseCase   `db:"use_case"`
	OutputDir     string    `db:"output_dir"`
	Compression   Codec     `db:"compression"`
	Status        RunStatus `db:"status"`
	Error         string    `db:"error"`
	ElapsedMs     int64     `db:"elapsed_ms"`
	StartedAt     time.Time `db:"started_at"`
	FinishedAt    time.Time `db:"finished_at"`
}

// BatchFile represents a published Parquet file (immutable once written)
type BatchFile struct {
	Id        int64     `db:"id"`
	RunId     string    `db:"run_id"`
	Dataset   UseCase   `db:"dataset"`
	Table     string    `db:"table_name"`
	Path      string    `db:"path"`
	Shard     int       `db:"shard"`
	Sequence  int       `db:"sequence"`
	Rows      int64     `db:"rows"`
	Bytes     int64     `db:"bytes"`
	Checksum  string    `db:"checksum"`
	CreatedAt time.Time `db:"created_at"`
}

// TableCount aggregates the batch files of one table within a run
type TableCount struct {
	Dataset UseCase
	Table   string
	Files   int
	Rows    int64
	Bytes   int64
}
