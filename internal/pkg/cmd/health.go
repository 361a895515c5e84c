package cmd

import (
	"context"
	"time"

	"github.com/mintel/healthcheck"                  // Healthchecks framework.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
)

// CheckTimeout bounds how long a single healthcheck may take.
const CheckTimeout = 30 * time.Second

// NewHealthchecksHandler returns a new healthcheck.Handler that
// exports the status of each check as a Prometheus gauge,
// named after appName.
func NewHealthchecksHandler(r prometheus.Registerer, appName string) healthcheck.Handler {
	return healthcheck.NewMetricsHandler(r, BuildPromFQName("", appName))
}

// TimeoutCheck returns a healthcheck.Check that runs f with a
// Context derived from ctx which is canceled after CheckTimeout.
func TimeoutCheck(ctx context.Context, f func(ctx context.Context) error) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
		defer cancel()
		return f(ctx)
	}
}
