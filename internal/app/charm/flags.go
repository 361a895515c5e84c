package charm

import (
	"time"

	kingpin "gopkg.in/alecthomas/kingpin.v2" // Command line flag parsing.

	"github.com/mintel/elasticsearch-charm/internal/pkg/cmd"      // Common command line app tools.
	"github.com/mintel/elasticsearch-charm/internal/pkg/playbook" // Ansible playbook runs.
	"github.com/mintel/elasticsearch-charm/pkg/storage"           // Data directory migration.
)

const (
	defaultPort                   = 9201
	defaultLogLevel               = "INFO"
	defaultElasticsearchRetries   = 3
	defaultElasticsearchRetryInit = 500 * time.Millisecond
	defaultElasticsearchRetryMax  = 5 * time.Second
)

// Flags holds command line flags for the charm App.
type Flags struct {
	// Root of the charm. Defaults to $CHARM_DIR.
	CharmDir string

	// Where to migrate the data directory to when the
	// data relation is ready.
	Mountpoint string

	// Elasticsearch data directory.
	DataDir string

	// Name of the Elasticsearch service.
	ServiceName string

	// Max duration of copying data to storage.
	CopyTimeout time.Duration

	// Refuse to migrate to directories that aren't mountpoints.
	RequireMount bool

	// Fail health checks unless the node holds shards.
	RequireLocalShards bool

	// Ansible locations.
	HostVarsPath string
	AnsibleHosts string
	ModulesDir   string

	NRPEConfigDir string

	*cmd.ElasticsearchFlags
	*cmd.LoggingFlags
}

// NewFlags returns a new Flags.
func NewFlags(app *kingpin.Application) *Flags {
	var f Flags

	cmd.Flag(app, "charm-dir", "Root directory of the charm. Defaults to $CHARM_DIR.").
		PlaceHolder("DIR").
		StringVar(&f.CharmDir)

	cmd.Flag(app, "mountpoint", "Where storage is mounted for the data directory.").
		Default(DefaultMountpoint).
		StringVar(&f.Mountpoint)

	cmd.Flag(app, "data-dir", "Elasticsearch data directory.").
		Default(storage.DefaultDataDir).
		StringVar(&f.DataDir)

	cmd.Flag(app, "service", "Name of the Elasticsearch service.").
		Default(DefaultServiceName).
		StringVar(&f.ServiceName)

	cmd.Flag(app, "copy-timeout", "Max duration of copying data to storage.").
		Default(storage.DefaultCopyTimeout.String()).
		DurationVar(&f.CopyTimeout)

	cmd.Flag(app, "require-mount", "Refuse to migrate data to a directory that isn't a mountpoint.").
		BoolVar(&f.RequireMount)

	cmd.Flag(app, "require-local-shards", "Fail health checks unless the local node holds at least one shard.").
		BoolVar(&f.RequireLocalShards)

	cmd.Flag(app, "ansible.host-vars", "Path of the Ansible host vars file.").
		Hidden().
		Default(playbook.DefaultHostVarsPath).
		StringVar(&f.HostVarsPath)

	cmd.Flag(app, "ansible.hosts", "Path of the Ansible inventory.").
		Hidden().
		Default(DefaultAnsibleHosts).
		StringVar(&f.AnsibleHosts)

	cmd.Flag(app, "ansible.modules", "Where to install the Ansible modules shipped with the charm.").
		Hidden().
		Default(DefaultModulesDir).
		StringVar(&f.ModulesDir)

	cmd.Flag(app, "nrpe.config-dir", "Where to write NRPE check commands.").
		Hidden().
		Default(DefaultNRPEConfigDir).
		StringVar(&f.NRPEConfigDir)

	f.ElasticsearchFlags = cmd.NewElasticsearchFlags(app, defaultElasticsearchRetries, defaultElasticsearchRetryInit, defaultElasticsearchRetryMax)
	f.LoggingFlags = cmd.NewLoggingFlags(app, defaultLogLevel)

	return &f
}
