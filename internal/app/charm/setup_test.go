package charm

import (
	"context"
	"testing"

	"github.com/spf13/afero"           // Filesystem abstraction.
	"github.com/stretchr/testify/mock" // Mocking for tests.

	"github.com/mintel/elasticsearch-charm/internal/pkg/hookenv"  // Juju hook tools.
	"github.com/mintel/elasticsearch-charm/internal/pkg/playbook" // Ansible playbook runs.
	"github.com/mintel/elasticsearch-charm/internal/pkg/service"
	servicemocks "github.com/mintel/elasticsearch-charm/internal/pkg/service/mocks"
	shellmocks "github.com/mintel/elasticsearch-charm/internal/pkg/shell/mocks"
	"github.com/mintel/elasticsearch-charm/internal/pkg/testutil" // Testing utilities.
	"github.com/mintel/elasticsearch-charm/pkg/es/health"         // Cluster health probing.
	"github.com/mintel/elasticsearch-charm/pkg/storage"           // Data directory migration.
)

const (
	testCharmDir   = "/var/lib/juju/agents/unit-elasticsearch-0/charm"
	testExecutable = "/usr/local/bin/elasticsearch-charm"
	testHostVars   = "/etc/ansible/host_vars/localhost"
)

type mockProber struct {
	mock.Mock
}

func (m *mockProber) Check(ctx context.Context) health.Verdict {
	return m.Called(ctx).Get(0).(health.Verdict)
}

func (m *mockProber) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ Prober = (*mockProber)(nil)

type fixture struct {
	charm    *Charm
	shell    *shellmocks.Runner
	services *servicemocks.Manager
	prober   *mockProber
	fs       afero.Fs
}

// expectRun sets up an expected run of a program by the charm.
func (f *fixture) expectRun(out string, err error, name string, args ...string) *mock.Call {
	if args == nil {
		args = []string{}
	}
	var b []byte
	if out != "" {
		b = []byte(out)
	}
	return f.shell.On("Run", mock.Anything, name, args).Return(b, err).Once()
}

// expectHostVars sets up the hook tool runs of Charm.HostVars.
func (f *fixture) expectHostVars(config string) {
	f.expectRun(config, nil, "config-get", "--all", "--format=json")
	f.expectRun(`"10.0.0.1"`, nil, "unit-get", "--format=json", "private-address")
	f.expectRun(`"203.0.113.1"`, nil, "unit-get", "--format=json", "public-address")
}

// expectReady sets up the checks and status-set of Charm.UpdateStatus
// for a running, healthy service.
func (f *fixture) expectReady() {
	f.services.On("Running", mock.Anything, DefaultServiceName).Return(true, nil).Once()
	f.prober.On("Check", mock.Anything).Return(health.Verdict{Healthy: true, Status: health.StatusGreen}).Once()
	f.expectRun("", nil, "status-set", "active", MessageReady)
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.shell.AssertExpectations(t)
	f.services.AssertExpectations(t)
	f.prober.AssertExpectations(t)
}

// setup returns a Charm operating on an in-memory filesystem,
// with all programs and services mocked.
func setup(t *testing.T) (*fixture, func()) {
	logger, teardown := testutil.TestLogger(t)

	f := &fixture{
		shell:    &shellmocks.Runner{},
		services: &servicemocks.Manager{},
		prober:   &mockProber{},
		fs:       afero.NewMemMapFs(),
	}

	pb := playbook.New(testCharmDir+"/playbook.yaml", f.fs, f.shell, logger)
	pb.HostVarsPath = testHostVars

	f.charm = &Charm{
		Env: hookenv.Env{
			UnitName: "elasticsearch/0",
			CharmDir: testCharmDir,
		},
		Tools: hookenv.New(f.shell),
		Paths: Paths{
			CharmDir:      testCharmDir,
			Mountpoint:    DefaultMountpoint,
			AnsibleHosts:  DefaultAnsibleHosts,
			ModulesDir:    DefaultModulesDir,
			NRPEConfigDir: DefaultNRPEConfigDir,
			Executable:    testExecutable,
		},
		Services:    f.services,
		ServiceName: DefaultServiceName,
		Migrator:    storage.NewMigrator(f.fs, service.NewUnit(f.services, DefaultServiceName), logger),
		Prober:      f.prober,
		Playbook:    pb,
		FS:          f.fs,
		Shell:       f.shell,
		Logger:      logger,
		inst:        NewInstrumentation(""),
	}
	return f, teardown
}
