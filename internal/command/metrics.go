// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for command metrics.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
)

// CommandExecutions is the counter for command executions.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "onebot_command_executions_total",
		Help: "Total number of command executions",
	},
	[]string{"command", "module", "status"},
)

// CommandDuration is the histogram for command execution duration.
var CommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "onebot_command_duration_seconds",
		Help:    "Command execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"command", "module"},
)

// CatalogPublishes counts remote catalog publishes by operation and outcome.
var CatalogPublishes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "onebot_catalog_publishes_total",
		Help: "Total number of command catalog publishes",
	},
	[]string{"operation", "status"},
)

// RegisteredCommands is the number of commands currently in the registry.
var RegisteredCommands = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "onebot_registered_commands",
		Help: "Number of commands currently registered",
	},
)

// RegisterMetrics registers command package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandExecutions)
	reg.MustRegister(CommandDuration)
	reg.MustRegister(CatalogPublishes)
	reg.MustRegister(RegisteredCommands)
}

// RecordCommandExecution increments the command execution counter.
func RecordCommandExecution(command, module, status string) {
	CommandExecutions.WithLabelValues(command, module, status).Inc()
}

// RecordCommandDuration records how long a command took.
func RecordCommandDuration(command, module string, d time.Duration) {
	CommandDuration.WithLabelValues(command, module).Observe(d.Seconds())
}

// RecordCatalogPublish increments the catalog publish counter.
func RecordCatalogPublish(op, status string) {
	CatalogPublishes.WithLabelValues(op, status).Inc()
}
