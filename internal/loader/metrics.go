// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package loader

import "github.com/prometheus/client_golang/prometheus"

// Activation outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ModuleActivations counts OnLoad outcomes per module.
var ModuleActivations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "onebot_module_activations_total",
		Help: "Total number of module activations by outcome",
	},
	[]string{"module", "outcome"},
)

// LoadedModules is the number of modules in the loaded map.
var LoadedModules = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "onebot_loaded_modules",
		Help: "Number of modules currently loaded",
	},
)

// RegisterMetrics registers loader metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ModuleActivations)
	reg.MustRegister(LoadedModules)
}
