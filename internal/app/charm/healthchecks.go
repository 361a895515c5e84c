package charm

import (
	"context"

	"github.com/mintel/healthcheck"                  // Healthchecks framework.
	"github.com/pkg/errors"                          // Wrap errors with stacktrace.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.

	"github.com/mintel/elasticsearch-charm/internal/pkg/cmd" // Common command line app tools.
)

// NewHealthchecks returns a healthcheck.Handler that reports
// Elasticsearch as live if it answers requests, and ready if
// the service is running and the cluster is healthy.
func NewHealthchecks(ctx context.Context, r prometheus.Registerer, c *Charm) healthcheck.Handler {
	h := cmd.NewHealthchecksHandler(r, "serve")

	h.AddLivenessCheck("elasticsearch-HEAD", cmd.TimeoutCheck(ctx, c.Prober.Ping))

	h.AddReadinessCheck("elasticsearch-status", cmd.TimeoutCheck(ctx, func(ctx context.Context) error {
		if s := c.AssessStatus(ctx); s.Message != MessageReady {
			return errors.New(s.Message)
		}
		return nil
	}))

	return h
}
