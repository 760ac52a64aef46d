// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsIngestion holds Prometheus metrics for the ingestion subsystem.
type metricsIngestion struct {
	once sync.Once

	// Loader
	rowsInserted   *prometheus.CounterVec
	chunksSkipped  *prometheus.CounterVec
	sourcesMissing *prometheus.CounterVec

	// Derived relations
	hierarchyEntries prometheus.Gauge
	predicateRows    prometheus.Gauge

	// Durations
	writeDuration prometheus.Histogram
	stageDuration *prometheus.HistogramVec
}

var ingMetrics metricsIngestion

func (m *metricsIngestion) init() {
	m.once.Do(func() {
		m.rowsInserted = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "kgraph_ing_rows_inserted_total", Help: "Rows newly inserted, by table"}, []string{"table"})
		m.chunksSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "kgraph_ing_chunks_skipped_total", Help: "Chunks dropped because of a malformed row, by table"}, []string{"table"})
		m.sourcesMissing = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "kgraph_ing_sources_missing_total", Help: "Source files that did not exist, by table"}, []string{"table"})

		m.hierarchyEntries = prometheus.NewGauge(prometheus.GaugeOpts{Name: "kgraph_ing_hierarchy_entries", Help: "Rows in the hierarchy relation after the last materialization"})
		m.predicateRows = prometheus.NewGauge(prometheus.GaugeOpts{Name: "kgraph_ing_predicate_index_rows", Help: "Rows in the predicate index after the last rebuild"})

		buckets := []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300}
		m.writeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "kgraph_ing_chunk_write_seconds", Help: "Time to insert one chunk", Buckets: buckets})
		m.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "kgraph_ing_stage_seconds", Help: "Duration of pipeline stages", Buckets: buckets}, []string{"stage"})

		prometheus.MustRegister(
			m.rowsInserted, m.chunksSkipped, m.sourcesMissing,
			m.hierarchyEntries, m.predicateRows,
			m.writeDuration, m.stageDuration,
		)
	})
}

// record helpers - used by the loader and pipeline for metrics tracking
func recordRowsInserted(table string, n int64) {
	ingMetrics.init()
	ingMetrics.rowsInserted.WithLabelValues(table).Add(float64(n))
}
func recordChunkSkipped(table string) {
	ingMetrics.init()
	ingMetrics.chunksSkipped.WithLabelValues(table).Inc()
}
func recordSourceMissing(table string) {
	ingMetrics.init()
	ingMetrics.sourcesMissing.WithLabelValues(table).Inc()
}
func observeWrite(d time.Duration) { ingMetrics.init(); ingMetrics.writeDuration.Observe(d.Seconds()) }
func observeStage(stage string, d time.Duration) {
	ingMetrics.init()
	ingMetrics.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
func setHierarchyEntries(n int64) { ingMetrics.init(); ingMetrics.hierarchyEntries.Set(float64(n)) }
func setPredicateRows(n int) { ingMetrics.init(); ingMetrics.predicateRows.Set(float64(n)) }
