package charm

import (
	"context"

	"go.uber.org/zap" // Logging.

	"github.com/mintel/elasticsearch-charm/internal/pkg/hookenv" // Juju hook tools.
)

// Workload status messages.
const (
	MessageNotRunning   = "service not running"
	MessageCheckFailed  = "health check failed"
	MessageReady        = "ready"
	MessageInstalling   = "installing"
	MessageMigrating    = "migrating data to storage"
	MessageNoMountpoint = "waiting for storage"
)

// WorkloadStatus is a status to publish with status-set.
type WorkloadStatus struct {
	Status  hookenv.Status
	Message string
}

// AssessStatus derives the workload status from whether the service
// is running and the cluster health. A service that can't be
// inspected counts as not running.
func (c *Charm) AssessStatus(ctx context.Context) WorkloadStatus {
	running, err := c.Service().Running(ctx)
	if err != nil {
		c.Logger.Warn("error checking if service is running",
			zap.String("service", c.ServiceName),
			zap.Error(err))
	}
	if err != nil || !running {
		return WorkloadStatus{hookenv.StatusBlocked, MessageNotRunning}
	}

	v := c.Prober.Check(ctx)
	c.instrumentation().ObserveVerdict(v)
	if !v.Healthy {
		c.Logger.Info("health check failed", zap.String("reason", v.Reason))
		return WorkloadStatus{hookenv.StatusBlocked, MessageCheckFailed}
	}
	return WorkloadStatus{hookenv.StatusActive, MessageReady}
}

// UpdateStatus assesses and publishes the workload status.
func (c *Charm) UpdateStatus(ctx context.Context) error {
	s := c.AssessStatus(ctx)
	return c.Tools.StatusSet(ctx, s.Status, s.Message)
}
