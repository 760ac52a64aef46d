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

package analysis

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsAnalysis struct {
	once sync.Once

	builds          *prometheus.CounterVec
	buildDuration   *prometheus.HistogramVec
	cleanupFailures prometheus.Counter
}

var anMetrics metricsAnalysis

func (m *metricsAnalysis) init() {
	m.once.Do(func() {
		m.builds = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "kgraph_graph_builds_total", Help: "Graph builds by strategy, engine and outcome"}, []string{"strategy", "engine", "outcome"})
		m.buildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "kgraph_graph_load_seconds", Help: "Engine load time of successful builds", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300}}, []string{"strategy"})
		m.cleanupFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "kgraph_graph_tempfiles_cleanup_failures_total", Help: "Temporary export directories that could not be removed"})
		prometheus.MustRegister(m.builds, m.buildDuration, m.cleanupFailures)
	})
}

func recordBuild(strategy, engine, outcome string) {
	anMetrics.init()
	if engine == "" {
		engine = DefaultEngine
	}
	anMetrics.builds.WithLabelValues(strategy, engine, outcome).Inc()
}

func observeBuild(strategy string, d time.Duration) {
	anMetrics.init()
	anMetrics.buildDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func recordCleanupFailure() {
	anMetrics.init()
	anMetrics.cleanupFailures.Inc()
}
