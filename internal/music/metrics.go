// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package music

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AdapterCalls counts adapter calls by adapter, role (primary or search)
// and outcome.
var AdapterCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "onebot_music_adapter_calls_total",
		Help: "Total number of music adapter calls",
	},
	[]string{"adapter", "role", "outcome"},
)

// PipelineDuration observes the time from link detection to final render.
var PipelineDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "onebot_music_pipeline_duration_seconds",
		Help:    "Music link pipeline duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
)

// RegisterMetrics registers music metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AdapterCalls)
	reg.MustRegister(PipelineDuration)
}

func recordAdapterCall(adapter, role, outcome string) {
	AdapterCalls.WithLabelValues(adapter, role, outcome).Inc()
}

func recordPipeline(d time.Duration) {
	PipelineDuration.Observe(d.Seconds())
}
