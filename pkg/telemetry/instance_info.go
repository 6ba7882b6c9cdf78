// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

const buildInfoMetricName = "tracerelay_build_info"

// RegisterBuildInfo registers an info-style gauge set to 1 carrying the
// version, the go version and the configured engine kind as labels.
func RegisterBuildInfo(registry prometheus.Registerer, version, engine string) error {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: buildInfoMetricName,
			Help: "Build and engine metadata of this tracerelay instance.",
		},
		[]string{"version", "go_version", "engine"},
	)
	info.WithLabelValues(version, runtime.Version(), engine).Set(1)
	return registry.Register(info)
}
