package charm

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"  // Wrap errors with stacktrace.
	"github.com/spf13/afero" // Filesystem abstraction.
	"go.uber.org/zap"        // Logging.

	"github.com/mintel/elasticsearch-charm/internal/pkg/hookenv" // Juju hook tools.
	"github.com/mintel/elasticsearch-charm/pkg/storage"          // Data directory migration.
)

// ansibleInventory makes Ansible run the playbook against the
// local machine without SSH.
const ansibleInventory = "localhost ansible_connection=local ansible_remote_tmp=/root/.ansible/tmp\n"

// Install runs the exec.d pre-install scripts, installs
// Ansible, and installs the Ansible modules shipped with
// the charm. The modules need to be in place before any
// playbook run.
func (c *Charm) Install(ctx context.Context) error {
	if err := c.Tools.StatusSet(ctx, hookenv.StatusMaintenance, MessageInstalling); err != nil {
		return err
	}
	if err := c.runPreInstall(ctx); err != nil {
		return err
	}
	if err := c.installAnsible(ctx); err != nil {
		return err
	}

	src := filepath.Join(c.Paths.CharmDir, modulesBackportsName)
	if ok, _ := afero.DirExists(c.FS, src); !ok {
		c.Logger.Debug("no Ansible modules to install", zap.String("path", src))
		return nil
	}
	if err := c.FS.MkdirAll(c.Paths.ModulesDir, 0755); err != nil {
		return errors.Wrap(err, "error creating Ansible modules directory")
	}
	return storage.CopyTree(ctx, c.FS, src, c.Paths.ModulesDir)
}

// runPreInstall runs exec.d/*/charm-pre-install, which lets
// operators adapt the host before anything is installed.
func (c *Charm) runPreInstall(ctx context.Context) error {
	scripts, err := afero.Glob(c.FS, filepath.Join(c.Paths.CharmDir, "exec.d", "*", "charm-pre-install"))
	if err != nil {
		return errors.Wrap(err, "error listing pre-install scripts")
	}
	for _, script := range scripts {
		info, err := c.FS.Stat(script)
		if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
			c.Logger.Debug("skipping non-executable pre-install script", zap.String("path", script))
			continue
		}
		c.Logger.Info("running pre-install script", zap.String("path", script))
		if _, err := c.Shell.Run(ctx, script); err != nil {
			return errors.Wrapf(err, "error running %s", script)
		}
	}
	return nil
}

func (c *Charm) installAnsible(ctx context.Context) error {
	c.Logger.Info("installing ansible")
	if _, err := c.Shell.Run(ctx, "apt-get", "update", "--quiet"); err != nil {
		return errors.Wrap(err, "error updating package lists")
	}
	if _, err := c.Shell.Run(ctx, "env", "DEBIAN_FRONTEND=noninteractive",
		"apt-get", "install", "--assume-yes", "--option=Dpkg::Options::=--force-confold", "ansible",
	); err != nil {
		return errors.Wrap(err, "error installing ansible")
	}
	if err := c.FS.MkdirAll(filepath.Dir(c.Paths.AnsibleHosts), 0755); err != nil {
		return errors.Wrap(err, "error creating Ansible config directory")
	}
	return errors.Wrap(
		afero.WriteFile(c.FS, c.Paths.AnsibleHosts, []byte(ansibleInventory), 0644),
		"error writing Ansible inventory",
	)
}
