package charm

import (
	"context"
	"sort"

	"github.com/pkg/errors"                          // Wrap errors with stacktrace.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	"go.uber.org/zap"                                // Logging.

	"github.com/mintel/elasticsearch-charm/internal/pkg/hookenv" // Juju hook tools.
	"github.com/mintel/elasticsearch-charm/internal/pkg/metrics"
	"github.com/mintel/elasticsearch-charm/pkg/storage" // Data directory migration.
)

// ErrUnknownHook is returned when dispatching a hook without a handler.
var ErrUnknownHook = errors.New("unknown hook")

// Handler handles a hook before the playbook is applied.
type Handler func(ctx context.Context) error

// Dispatcher runs hooks.
type Dispatcher struct {
	charm    *Charm
	handlers map[string]Handler
}

// NewDispatcher returns a new Dispatcher for the hooks of c.
func NewDispatcher(c *Charm) *Dispatcher {
	noop := func(context.Context) error { return nil }
	return &Dispatcher{
		charm: c,
		handlers: map[string]Handler{
			"install":       c.Install,
			"upgrade-charm": c.Install,

			"config-changed": noop,
			"start":          noop,
			"stop":           noop,
			"update-status":  c.UpdateStatus,

			"data-relation-joined":   c.DataRelationChanged,
			"data-relation-changed":  c.DataRelationChanged,
			"data-relation-departed": c.StopService,
			"data-relation-broken":   c.StopService,

			"data-storage-attached":  c.StorageAttached,
			"data-storage-detaching": c.StopService,

			"nrpe-external-master-relation-joined":  c.RegisterMonitors,
			"nrpe-external-master-relation-changed": c.RegisterMonitors,

			"cluster-relation-joined":  noop,
			"logs-relation-joined":     noop,
			"rest-relation-joined":     noop,
			"peer-relation-joined":     noop,
			"peer-relation-changed":    noop,
			"peer-relation-departed":   noop,
			"client-relation-joined":   noop,
			"client-relation-departed": noop,
		},
	}
}

// Hooks returns the names of all hooks, sorted.
func (d *Dispatcher) Hooks() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler of hook, then applies the
// playbook tasks tagged with the hook name.
func (d *Dispatcher) Dispatch(ctx context.Context, hook string) (err error) {
	h, ok := d.handlers[hook]
	if !ok {
		return errors.Wrap(ErrUnknownHook, hook)
	}

	logger := d.charm.Logger.With(zap.String("hook", hook))
	timer := metrics.NewVecTimer(d.charm.instrumentation().HookDuration)
	defer func() { timer.ObserveErr(err, prometheus.Labels{metrics.LabelHook: hook}) }()

	logger.Info("running hook")
	if err := h(ctx); err != nil {
		return errors.Wrapf(err, "error running %s hook", hook)
	}

	vars, err := d.charm.HostVars(ctx)
	if err != nil {
		return err
	}
	if err := d.charm.Playbook.Apply(ctx, []string{hook}, vars); err != nil {
		return err
	}
	logger.Info("hook complete")
	return nil
}

// DataRelationChanged migrates the data directory once the storage
// charm on the other side of the data relation has mounted the
// requested mountpoint. Until then, it asks for the mountpoint.
func (c *Charm) DataRelationChanged(ctx context.Context) error {
	mountpoint, err := c.Tools.RelationGet(ctx, "mountpoint")
	if err != nil {
		return err
	}
	if mountpoint == c.Paths.Mountpoint {
		return c.Migrate(ctx, mountpoint)
	}

	c.Logger.Info("requesting storage", zap.String("mountpoint", c.Paths.Mountpoint))
	if err := c.Tools.StatusSet(ctx, hookenv.StatusWaiting, MessageNoMountpoint); err != nil {
		return err
	}
	return c.Tools.RelationSet(ctx, map[string]string{"mountpoint": c.Paths.Mountpoint})
}

// StorageAttached migrates the data directory to Juju storage.
func (c *Charm) StorageAttached(ctx context.Context) error {
	location, err := c.Tools.StorageLocation(ctx)
	if err != nil {
		return err
	}
	return c.Migrate(ctx, location)
}

// Migrate moves the data directory to path. If the migration fails,
// the unit is blocked with the error as the status message.
func (c *Charm) Migrate(ctx context.Context, path string) error {
	if err := c.Tools.StatusSet(ctx, hookenv.StatusMaintenance, MessageMigrating); err != nil {
		return err
	}
	err := c.Migrator.Migrate(ctx, path)
	c.instrumentation().ObserveMigration(err)
	if err == nil {
		// Replace the maintenance status, including when nothing was migrated.
		if err := c.UpdateStatus(ctx); err != nil {
			c.Logger.Warn("error setting status after migration", zap.Error(err))
		}
		return nil
	}

	var merr *storage.MigrationError
	if errors.As(err, &merr) && merr.RollbackErr != nil {
		c.Logger.Error("rollback after failed migration also failed, manual intervention needed",
			zap.Error(merr.RollbackErr))
	}
	if serr := c.Tools.StatusSet(ctx, hookenv.StatusBlocked, err.Error()); serr != nil {
		c.Logger.Error("error setting status", zap.Error(serr))
	}
	return err
}

// StopService stops Elasticsearch, e.g. because its storage is going away.
func (c *Charm) StopService(ctx context.Context) error {
	c.Logger.Info("stopping service", zap.String("service", c.ServiceName))
	return c.Service().Stop(ctx)
}
