package charm

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"  // Wrap errors with stacktrace.
	"github.com/spf13/afero" // Filesystem abstraction.
	"go.uber.org/zap"        // Logging.
	"gopkg.in/yaml.v3"       // YAML encoding.
)

// MonitorCheck is a check run by NRPE on behalf of Nagios.
type MonitorCheck struct {
	Name        string
	Description string
	Args        []string // Arguments to the charm binary.
}

// Command returns the NRPE command name of the check.
func (m MonitorCheck) Command() string {
	return "check_" + m.Name
}

// MonitorChecks returns the checks registered with NRPE.
func MonitorChecks() []MonitorCheck {
	return []MonitorCheck{
		{
			Name:        "elasticsearch_cluster_health",
			Description: "Verify the cluster health is green.",
			Args:        []string{"check", "health"},
		},
		{
			Name:        "elasticsearch_service",
			Description: "Verify the Elasticsearch service is running.",
			Args:        []string{"check", "service"},
		},
	}
}

// nrpeConfig returns the NRPE config defining the command of m.
func (c *Charm) nrpeConfig(m MonitorCheck) string {
	cmdline := c.Paths.Executable
	for _, a := range m.Args {
		cmdline += " " + a
	}
	return fmt.Sprintf("# check %s\n# Generated by elasticsearch-charm\n# %s\ncommand[%s]=%s\n",
		m.Name, m.Description, m.Command(), cmdline)
}

// monitors is published on the nrpe-external-master
// relation so the Nagios side knows which checks exist.
type monitors struct {
	Monitors struct {
		Remote struct {
			NRPE map[string]nrpeMonitor `yaml:"nrpe"`
		} `yaml:"remote"`
	} `yaml:"monitors"`
}

type nrpeMonitor struct {
	Command string `yaml:"command"`
}

// RegisterMonitors writes the NRPE commands of the charm's checks,
// publishes them on the relation, and reloads NRPE.
func (c *Charm) RegisterMonitors(ctx context.Context) error {
	if err := c.FS.MkdirAll(c.Paths.NRPEConfigDir, 0755); err != nil {
		return errors.Wrap(err, "error creating NRPE config directory")
	}

	var m monitors
	m.Monitors.Remote.NRPE = make(map[string]nrpeMonitor)
	for _, check := range MonitorChecks() {
		path := filepath.Join(c.Paths.NRPEConfigDir, check.Command()+".cfg")
		if err := afero.WriteFile(c.FS, path, []byte(c.nrpeConfig(check)), 0644); err != nil {
			return errors.Wrapf(err, "error writing %s", path)
		}
		c.Logger.Debug("wrote NRPE check", zap.String("path", path))
		m.Monitors.Remote.NRPE[check.Name] = nrpeMonitor{Command: check.Command()}
	}

	b, err := yaml.Marshal(&m)
	if err != nil {
		return errors.Wrap(err, "error encoding monitors")
	}
	if err := c.Tools.RelationSet(ctx, map[string]string{"monitors": string(b)}); err != nil {
		return err
	}

	// NRPE may not be installed yet; it reads the config when it starts.
	if err := c.Services.Restart(ctx, NRPEServiceName); err != nil {
		c.Logger.Warn("error restarting NRPE",
			zap.String("service", NRPEServiceName),
			zap.Error(err))
	}
	return nil
}
