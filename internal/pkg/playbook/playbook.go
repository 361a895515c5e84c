// Package playbook hands hooks off to an Ansible playbook run
// against the local machine.
package playbook

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"  // Wrap errors with stacktrace.
	"github.com/spf13/afero" // Filesystem abstraction.
	"go.uber.org/zap"        // Logging.
	"gopkg.in/yaml.v3"       // YAML encoding.

	"github.com/mintel/elasticsearch-charm/internal/pkg/shell"
)

const (
	// DefaultHostVarsPath is where Ansible picks up variables for localhost.
	DefaultHostVarsPath = "/etc/ansible/host_vars/localhost"

	// NamespaceSeparator separates a relation name from the
	// key of a relation setting in host vars.
	NamespaceSeparator = "__"
)

// Runner applies a playbook.
type Runner struct {
	// Path of the playbook.
	Playbook string

	// Path of the host vars file. Defaults to DefaultHostVarsPath.
	HostVarsPath string

	FS     afero.Fs
	Shell  shell.Runner
	Logger *zap.Logger
}

// New returns a new Runner for the playbook at path.
func New(path string, fs afero.Fs, sh shell.Runner, logger *zap.Logger) *Runner {
	return &Runner{
		Playbook:     path,
		HostVarsPath: DefaultHostVarsPath,
		FS:           fs,
		Shell:        sh,
		Logger:       logger,
	}
}

// Apply merges vars into the host vars file and runs the
// tasks of the playbook tagged with any of tags.
func (r *Runner) Apply(ctx context.Context, tags []string, vars map[string]interface{}) error {
	if err := r.WriteHostVars(vars); err != nil {
		return err
	}
	logger := r.Logger.With(zap.String("playbook", r.Playbook), zap.Strings("tags", tags))
	logger.Info("applying playbook")
	out, err := r.Shell.Run(ctx, "ansible-playbook",
		"-c", "local",
		r.Playbook,
		"--tags", strings.Join(tags, ","),
	)
	if err != nil {
		return errors.Wrapf(err, "error applying playbook %s", r.Playbook)
	}
	logger.Debug("playbook applied", zap.ByteString("output", out))
	return nil
}

// WriteHostVars merges vars into the existing host vars file.
// Hyphens in keys are replaced with underscores, since Ansible
// variable names can't contain them. The file is only readable
// by its owner as it may hold secrets from relations.
func (r *Runner) WriteHostVars(vars map[string]interface{}) error {
	path := r.hostVarsPath()
	merged, err := r.ReadHostVars()
	if err != nil {
		return err
	}
	for k, v := range vars {
		merged[NormalizeKey(k)] = v
	}

	b, err := yaml.Marshal(merged)
	if err != nil {
		return errors.Wrap(err, "error encoding host vars")
	}
	if err := r.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "error creating host vars directory")
	}
	if err := afero.WriteFile(r.FS, path, b, 0600); err != nil {
		return errors.Wrap(err, "error writing host vars")
	}
	// WriteFile doesn't change the mode of existing files.
	return errors.Wrap(r.FS.Chmod(path, 0600), "error setting host vars mode")
}

// ReadHostVars returns the contents of the host vars file, or
// an empty map if it doesn't exist.
func (r *Runner) ReadHostVars() (map[string]interface{}, error) {
	vars := make(map[string]interface{})
	b, err := afero.ReadFile(r.FS, r.hostVarsPath())
	if os.IsNotExist(err) {
		return vars, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "error reading host vars")
	}
	if err := yaml.Unmarshal(b, &vars); err != nil {
		return nil, errors.Wrap(err, "error decoding host vars")
	}
	if vars == nil {
		vars = make(map[string]interface{})
	}
	return vars, nil
}

func (r *Runner) hostVarsPath() string {
	if r.HostVarsPath == "" {
		return DefaultHostVarsPath
	}
	return r.HostVarsPath
}

// NormalizeKey turns a Juju config or relation key into
// an Ansible variable name.
func NormalizeKey(k string) string {
	return strings.ReplaceAll(k, "-", "_")
}

// RelationVars namespaces relation settings with the relation name
// so they don't clash with config options.
func RelationVars(relation string, settings map[string]string) map[string]interface{} {
	vars := make(map[string]interface{}, len(settings))
	for k, v := range settings {
		vars[NormalizeKey(relation)+NamespaceSeparator+NormalizeKey(k)] = v
	}
	return vars
}
