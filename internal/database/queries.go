/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

const (
	schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		customer_scale INTEGER NOT NULL,
		use_case TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		compression TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS batch_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		dataset TEXT NOT NULL,
		table_name TEXT NOT NULL,
		path TEXT NOT NULL,
		shard INTEGER NOT NULL,
		sequence INTEGER NOT NULL,
		rows INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		checksum TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (run_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_batch_files_run_table ON batch_files(run_id, dataset, table_name);
	`

	// Run queries
	queryInsertRun = `
		INSERT INTO runs (id, seed, customer_scale, use_case, output_dir, compression, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryFinishRun = `
		UPDATE runs
		SET status = ?, error = ?, elapsed_ms = ?, finished_at = ?
		WHERE id = ? AND status = 'running'`

	queryGetRun = `
		SELECT id, seed, customer_scale, use_case, output_dir, compression, status, error, elapsed_ms, started_at, finished_at
		FROM runs
		WHERE id = ?`

	queryListRuns = `
		SELECT id, seed, customer_scale, use_case, output_dir, compression, status, error, elapsed_ms, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?`

	queryRunExists = `
		SELECT status FROM runs WHERE id = ?`

	// Batch file queries
	queryInsertBatchFile = `
		INSERT INTO batch_files (run_id, dataset, table_name, path, shard, sequence, rows, bytes, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetBatchFiles = `
		SELECT id, run_id, dataset, table_name, path, shard, sequence, rows, bytes, checksum, created_at
		FROM batch_files
		WHERE run_id = ?
		ORDER BY dataset, table_name, shard, sequence`

	queryGetTableCounts = `
		SELECT dataset, table_name, COUNT(*), COALESCE(SUM(rows), 0), COALESCE(SUM(bytes), 0)
		FROM batch_files
		WHERE run_id = ?
		GROUP BY dataset, table_name
		ORDER BY dataset, table_name`
)
