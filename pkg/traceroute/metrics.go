// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import "github.com/prometheus/client_golang/prometheus"

const (
	statusSuccess = "success"
	statusFailure = "failure"
	statusAborted = "aborted"
)

// metrics defines the metric collectors of the traceroute service
type metrics struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	running  prometheus.Gauge
	updates  prometheus.Counter
}

// newMetrics initializes the metric collectors of the traceroute service
func newMetrics() metrics {
	return metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracerelay_traceroute_runs_total",
				Help: "Total number of traceroute runs by outcome.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tracerelay_traceroute_duration_seconds",
				Help:    "Duration of traceroute engine executions in seconds.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		running: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracerelay_traceroute_running",
				Help: "Is 1 while a traceroute run holds the execution gate.",
			},
		),
		updates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tracerelay_traceroute_updates_total",
				Help: "Total number of progress fragments reported by the engine.",
			},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.runs,
		m.duration,
		m.running,
		m.updates,
	}
}

// observe records the outcome of a finished run
func (m *metrics) observe(res Result) {
	switch {
	case res.Succeeded():
		m.runs.WithLabelValues(statusSuccess).Inc()
	case res.Code == CodeAborted:
		m.runs.WithLabelValues(statusAborted).Inc()
	default:
		m.runs.WithLabelValues(statusFailure).Inc()
	}
}
