package charm

import (
	"context"

	"github.com/spf13/afero" // Filesystem abstraction.
	"go.uber.org/zap"        // Logging.

	"github.com/mintel/elasticsearch-charm/internal/pkg/hookenv"  // Juju hook tools.
	"github.com/mintel/elasticsearch-charm/internal/pkg/playbook" // Ansible playbook runs.
	"github.com/mintel/elasticsearch-charm/internal/pkg/service"  // Init system services.
	"github.com/mintel/elasticsearch-charm/internal/pkg/shell"    // Subprocesses.
	"github.com/mintel/elasticsearch-charm/pkg/es/health"         // Cluster health probing.
	"github.com/mintel/elasticsearch-charm/pkg/storage"           // Data directory migration.
)

// Default paths and names.
const (
	DefaultMountpoint    = "/srv/elasticsearch"
	DefaultServiceName   = "elasticsearch"
	DefaultNRPEConfigDir = "/etc/nagios/nrpe.d"
	DefaultAnsibleHosts  = "/etc/ansible/hosts"
	DefaultModulesDir    = "/usr/share/ansible"

	// NRPEServiceName is the service that runs NRPE checks.
	NRPEServiceName = "nagios-nrpe-server"
)

// Prober checks the health of Elasticsearch.
type Prober interface {
	Check(ctx context.Context) health.Verdict
	Ping(ctx context.Context) error
}

// Paths are the filesystem locations the charm works with.
type Paths struct {
	// Root of the unpacked charm.
	CharmDir string

	// Where the data directory is migrated to when storage is attached.
	Mountpoint string

	// Ansible inventory file.
	AnsibleHosts string

	// Where the backported Ansible modules shipped with
	// the charm are installed.
	ModulesDir string

	// Where NRPE check commands are written.
	NRPEConfigDir string

	// This binary, as run by NRPE.
	Executable string
}

// Charm operates the Elasticsearch node of the unit.
type Charm struct {
	Env   hookenv.Env
	Tools *hookenv.Tools
	Paths Paths

	// Services on the host, and the name of the Elasticsearch one.
	Services    service.Manager
	ServiceName string

	Migrator *storage.Migrator
	Prober   Prober
	Playbook *playbook.Runner

	FS     afero.Fs
	Shell  shell.Runner
	Logger *zap.Logger

	inst *Instrumentation
}

// Service returns the Elasticsearch service.
func (c *Charm) Service() *service.Unit {
	return service.NewUnit(c.Services, c.ServiceName)
}

func (c *Charm) instrumentation() *Instrumentation {
	if c.inst == nil {
		c.inst = NewInstrumentation("")
	}
	return c.inst
}
