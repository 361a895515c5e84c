package cmd

import (
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
)

// Namespace is the namespace to be used for Prometheus
// metrics throughout elasticsearch-charm.
const Namespace = "elasticsearchcharm"

// BuildPromFQName joins a subsystem and name into a metric
// name in Namespace.
func BuildPromFQName(subsystem, name string) string {
	return prometheus.BuildFQName(Namespace, subsystem, name)
}
