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

package metrics

import (
	"time"

	"olap-graph-datagen-go/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the generator's Prometheus registry. It is written to a
// node-exporter textfile at the end of a run rather than served.
type Metrics struct {
	registry      *prometheus.Registry
	rowsWritten   *prometheus.CounterVec
	filesWritten  *prometheus.CounterVec
	bytesWritten  *prometheus.CounterVec
	shardDuration *prometheus.HistogramVec
	patterns      *prometheus.CounterVec
	runDuration   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datagen",
			Name:      "rows_written_total",
			Help:      "Rows published to Parquet batch files.",
		}, []string{"dataset", "table"}),
		filesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datagen",
			Name:      "files_written_total",
			Help:      "Parquet batch files published.",
		}, []string{"dataset", "table"}),
		bytesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datagen",
			Name:      "bytes_written_total",
			Help:      "Bytes of Parquet data published.",
		}, []string{"dataset", "table"}),
		shardDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "datagen",
			Name:      "shard_duration_seconds",
			Help:      "Wall time spent generating and writing one shard.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"dataset"}),
		patterns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datagen",
			Name:      "fraud_pattern_instances_total",
			Help:      "Injected fraud topologies by pattern.",
		}, []string{"pattern"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "datagen",
			Name:      "run_duration_seconds",
			Help:      "Elapsed time of the last run.",
		}),
	}
	m.registry.MustRegister(m.rowsWritten, m.filesWritten, m.bytesWritten, m.shardDuration, m.patterns, m.runDuration)
	return m
}

// ObserveFile records one published batch file.
func (m *Metrics) ObserveFile(f models.BatchFile) {
	labels := prometheus.Labels{"dataset": string(f.Dataset), "table": f.Table}
	m.rowsWritten.With(labels).Add(float64(f.Rows))
	m.filesWritten.With(labels).Inc()
	m.bytesWritten.With(labels).Add(float64(f.Bytes))
}

func (m *Metrics) ObserveShard(dataset models.UseCase, elapsed time.Duration) {
	m.shardDuration.WithLabelValues(string(dataset)).Observe(elapsed.Seconds())
}

func (m *Metrics) ObservePatterns(instances map[models.FraudPattern]int) {
	for p, n := range instances {
		m.patterns.WithLabelValues(string(p)).Add(float64(n))
	}
}

func (m *Metrics) ObserveRun(elapsed time.Duration) {
	m.runDuration.Set(elapsed.Seconds())
}

// Registry exposes the underlying registry for tests and exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile atomically writes the registry in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
