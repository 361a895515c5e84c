// Package charm implements the elasticsearch-charm command: the hooks
// of a Juju charm operating an Elasticsearch node, plus commands for
// NRPE checks and a healthcheck server.
package charm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"                          // Wrap errors with stacktrace.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	"github.com/spf13/afero"                         // Filesystem abstraction.
	"go.uber.org/zap"                                // Logging.
	"go.uber.org/zap/zapcore"
	kingpin "gopkg.in/alecthomas/kingpin.v2" // Command line flag parsing.

	"github.com/mintel/elasticsearch-charm/internal/pkg/cmd"      // Common command line app tools.
	"github.com/mintel/elasticsearch-charm/internal/pkg/hookenv"  // Juju hook tools.
	"github.com/mintel/elasticsearch-charm/internal/pkg/metrics"  // Prometheus metrics utilities.
	"github.com/mintel/elasticsearch-charm/internal/pkg/playbook" // Ansible playbook runs.
	"github.com/mintel/elasticsearch-charm/internal/pkg/service"  // Init system services.
	"github.com/mintel/elasticsearch-charm/internal/pkg/shell"    // Subprocesses.
	"github.com/mintel/elasticsearch-charm/pkg/storage"           // Data directory migration.
)

const (
	Name  = "elasticsearch-charm"
	Usage = "Operate an Elasticsearch node as a Juju charm."
)

// Commands.
const (
	commandHook         = "hook"
	commandMigrate      = "migrate"
	commandCheckHealth  = "check health"
	commandCheckService = "check service"
	commandStatus       = "status"
	commandServe        = "serve"
	commandListHooks    = "list-hooks"
)

// Files in the charm directory.
const (
	hooksDir             = "hooks"
	playbookName         = "playbook.yaml"
	modulesBackportsName = "ansible_module_backports"
)

// App holds application state.
type App struct {
	*kingpin.Application

	flags       *Flags           // Command line flags
	serverFlags *cmd.ServerFlags // Flags of the serve command
	inst        *Instrumentation // App-specific Prometheus metrics
	registerer  prometheus.Registerer

	command string
	args    struct {
		Hook        string
		MigratePath string
	}
}

// NewApp returns a new App.
func NewApp(r prometheus.Registerer) (*App, error) {
	m := NewInstrumentation(cmd.Namespace)
	if err := r.Register(m); err != nil {
		return nil, err
	}

	app := &App{
		Application: kingpin.New(Name, Usage),
		inst:        m,
		registerer:  r,
	}
	app.flags = NewFlags(app.Application)

	hook := app.Command(commandHook, "Run a Juju hook.").Default()
	hook.Arg("name", "Name of the hook. Defaults to $JUJU_HOOK_NAME.").
		StringVar(&app.args.Hook)

	migrate := app.Command(commandMigrate, "Migrate the data directory to a new location.")
	migrate.Arg("path", "Where to move the data directory. Defaults to --mountpoint.").
		StringVar(&app.args.MigratePath)

	check := app.Command("check", "Run a Nagios check. Exits 0 if OK, 2 if CRITICAL, 3 if UNKNOWN.")
	check.Command("health", "Check the cluster health is green.")
	check.Command("service", "Check the Elasticsearch service is running.")

	app.Command(commandStatus, "Print the workload status of the unit.")
	app.Command(commandListHooks, "List the hooks the charm handles.")

	serve := app.Command(commandServe, "Serve liveness and readiness checks and Prometheus metrics.")
	app.serverFlags = cmd.NewServerFlags(serve, defaultPort)

	return app, nil
}

// Parse parses command line args and records the selected command.
func (app *App) Parse(args []string) (string, error) {
	command, err := app.Application.Parse(args)
	app.command = command
	return command, err
}

// HookArgs rewrites the args of the process when it was run
// as hooks/<name>, e.g. through a symlink in the hooks directory
// of the charm, so the hook command runs.
func HookArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	dir, base := filepath.Split(args[0])
	if filepath.Base(filepath.Clean(dir)) != hooksDir || base == Name {
		return args
	}
	out := []string{args[0], commandHook, base}
	return append(out, args[1:]...)
}

// Main is the main method of App and should be called
// in main.main() after flag parsing. It returns the exit
// code of the process.
func (app *App) Main(g prometheus.Gatherer) int {
	ctx, cancel := cmd.WithInterrupt(context.Background())
	defer cancel()

	env := hookenv.OSEnv()

	// In hooks, also send logs to the unit's log. juju-log
	// itself is run with a silent logger.
	var cores []zapcore.Core
	if env.InHook() {
		logTools := hookenv.New(&shell.ExecRunner{Logger: zap.NewNop()})
		cores = append(cores, hookenv.NewLogCore(logTools, app.flags.LogLevel))
	}
	logger := app.flags.NewLogger(cores...)
	defer func() { _ = logger.Sync() }()
	defer cmd.SetGlobalLogger(logger)()

	c, err := app.NewCharm(env, logger)
	if err != nil {
		logger.Error("error setting up charm", zap.Error(err))
		return 1
	}

	switch app.command {
	case commandHook:
		hook := app.args.Hook
		if hook == "" {
			hook = env.HookName
		}
		if hook == "" {
			logger.Error("no hook given and $JUJU_HOOK_NAME isn't set")
			return 1
		}
		if err := NewDispatcher(c).Dispatch(ctx, hook); err != nil {
			logger.Error("hook failed", zap.String("hook", hook), zap.Error(err))
			return 1
		}

	case commandMigrate:
		path := app.args.MigratePath
		if path == "" {
			path = app.flags.Mountpoint
		}
		err := c.Migrator.Migrate(ctx, path)
		c.instrumentation().ObserveMigration(err)
		if err != nil {
			logger.Error("migration failed", zap.Error(err))
			return 1
		}

	case commandCheckHealth, commandCheckService:
		var res CheckResult
		if app.command == commandCheckHealth {
			res = c.CheckHealth(ctx)
		} else {
			res = c.CheckService(ctx)
		}
		fmt.Println(res)
		return res.Code

	case commandStatus:
		s := c.AssessStatus(ctx)
		fmt.Printf("%s: %s\n", s.Status, s.Message)
		if env.InHook() {
			if err := c.Tools.StatusSet(ctx, s.Status, s.Message); err != nil {
				logger.Error("error setting status", zap.Error(err))
				return 1
			}
		}

	case commandListHooks:
		for _, hook := range NewDispatcher(c).Hooks() {
			fmt.Println(hook)
		}

	case commandServe:
		h := NewHealthchecks(ctx, app.registerer, c)
		mux := app.serverFlags.ConfigureMux(nil, h, g)
		srv := app.serverFlags.NewServer(mux)
		logger.Info("serving healthchecks and metrics", zap.String("addr", srv.Addr))
		if err := cmd.Serve(ctx, srv); err != nil {
			logger.Error("error serving healthchecks/metrics", zap.Error(err))
			return 1
		}

	default:
		logger.Error("unknown command", zap.String("command", app.command))
		return 1
	}
	return 0
}

// NewCharm returns a Charm configured from flags, operating
// on the local host.
func (app *App) NewCharm(env hookenv.Env, logger *zap.Logger) (*Charm, error) {
	f := app.flags
	charmDir := f.CharmDir
	if charmDir == "" {
		charmDir = env.CharmDir
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "error finding executable")
	}

	sh := &shell.ExecRunner{Dir: charmDir, Logger: logger.Named("shell")}
	tools := hookenv.New(sh)
	fs := afero.NewOsFs()
	systemd := service.NewSystemd(logger.Named("systemd"))

	constLabels := map[string]string{"recipient": "elasticsearch"}
	httpClient, err := metrics.InstrumentHTTP(nil, app.registerer, cmd.Namespace, constLabels)
	if err != nil {
		return nil, err
	}
	client, err := f.NewElasticsearchClient(httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "error creating Elasticsearch client")
	}
	prober := f.NewProber(client, logger.Named("prober"))
	prober.RequireLocalShards = f.RequireLocalShards
	prober.LocalAddress = tools.PrivateAddress

	migrator := storage.NewMigrator(fs, service.NewUnit(systemd, f.ServiceName), logger.Named("migrator"))
	migrator.DataDir = f.DataDir
	migrator.CopyTimeout = f.CopyTimeout
	migrator.RequireMount = f.RequireMount

	pb := playbook.New(filepath.Join(charmDir, playbookName), fs, sh, logger.Named("playbook"))
	pb.HostVarsPath = f.HostVarsPath

	return &Charm{
		Env:   env,
		Tools: tools,
		Paths: Paths{
			CharmDir:      charmDir,
			Mountpoint:    f.Mountpoint,
			AnsibleHosts:  f.AnsibleHosts,
			ModulesDir:    f.ModulesDir,
			NRPEConfigDir: f.NRPEConfigDir,
			Executable:    exe,
		},
		Services:    systemd,
		ServiceName: f.ServiceName,
		Migrator:    migrator,
		Prober:      prober,
		Playbook:    pb,
		FS:          fs,
		Shell:       sh,
		Logger:      logger,
		inst:        app.inst,
	}, nil
}
