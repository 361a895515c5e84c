// Package hookenv wraps the Juju hook tools (juju-log, relation-get,
// status-set...) that are on the PATH while a hook runs.
package hookenv

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"    // Wrap errors with stacktrace.
	"github.com/tidwall/gjson" // Dynamic JSON parsing.

	"github.com/mintel/elasticsearch-charm/internal/pkg/shell"
)

// Status is a workload status understood by status-set.
type Status string

const (
	StatusActive      Status = "active"
	StatusBlocked     Status = "blocked"
	StatusMaintenance Status = "maintenance"
	StatusWaiting     Status = "waiting"
)

// Level is a juju-log level.
type Level string

const (
	LevelDebug   Level = "DEBUG"
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Tools runs hook tools.
type Tools struct {
	runner shell.Runner
}

// New returns a new Tools that runs hook tools with r.
func New(r shell.Runner) *Tools {
	return &Tools{runner: r}
}

// Log writes msg to the unit's log.
func (t *Tools) Log(ctx context.Context, level Level, msg string) error {
	_, err := t.runner.Run(ctx, "juju-log", "-l", string(level), "--", msg)
	return errors.Wrap(err, "juju-log")
}

// StatusSet sets the workload status of the unit.
func (t *Tools) StatusSet(ctx context.Context, status Status, msg string) error {
	_, err := t.runner.Run(ctx, "status-set", string(status), msg)
	return errors.Wrap(err, "status-set")
}

// RelationGet returns the value of key set by the remote unit of
// the current relation. It returns "" if key isn't set.
func (t *Tools) RelationGet(ctx context.Context, key string) (string, error) {
	out, err := t.runner.Run(ctx, "relation-get", "--format=json", key)
	if err != nil {
		return "", errors.Wrap(err, "relation-get")
	}
	return gjson.ParseBytes(out).String(), nil
}

// RelationGetAll returns all settings of the remote unit of the current relation.
func (t *Tools) RelationGetAll(ctx context.Context) (map[string]string, error) {
	out, err := t.runner.Run(ctx, "relation-get", "--format=json", "-")
	if err != nil {
		return nil, errors.Wrap(err, "relation-get")
	}
	settings := make(map[string]string)
	gjson.ParseBytes(out).ForEach(func(k, v gjson.Result) bool {
		settings[k.String()] = v.String()
		return true
	})
	return settings, nil
}

// RelationSet publishes settings on the current relation.
func (t *Tools) RelationSet(ctx context.Context, settings map[string]string) error {
	if len(settings) == 0 {
		return nil
	}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, k+"="+settings[k])
	}
	_, err := t.runner.Run(ctx, "relation-set", args...)
	return errors.Wrap(err, "relation-set")
}

// Config returns the charm's configuration.
func (t *Tools) Config(ctx context.Context) (map[string]interface{}, error) {
	out, err := t.runner.Run(ctx, "config-get", "--all", "--format=json")
	if err != nil {
		return nil, errors.Wrap(err, "config-get")
	}
	res := gjson.ParseBytes(out)
	if !res.IsObject() {
		return map[string]interface{}{}, nil
	}
	cfg, _ := res.Value().(map[string]interface{})
	return cfg, nil
}

// PrivateAddress returns the private address of the unit.
func (t *Tools) PrivateAddress(ctx context.Context) (string, error) {
	return t.unitGet(ctx, "private-address")
}

// PublicAddress returns the public address of the unit.
func (t *Tools) PublicAddress(ctx context.Context) (string, error) {
	return t.unitGet(ctx, "public-address")
}

func (t *Tools) unitGet(ctx context.Context, key string) (string, error) {
	out, err := t.runner.Run(ctx, "unit-get", "--format=json", key)
	if err != nil {
		return "", errors.Wrap(err, "unit-get")
	}
	return gjson.ParseBytes(out).String(), nil
}

// StorageLocation returns the mount location of the storage
// instance of the current storage hook.
func (t *Tools) StorageLocation(ctx context.Context) (string, error) {
	out, err := t.runner.Run(ctx, "storage-get", "--format=json", "location")
	if err != nil {
		return "", errors.Wrap(err, "storage-get")
	}
	loc := strings.TrimSpace(gjson.ParseBytes(out).String())
	if loc == "" {
		return "", errors.New("storage-get returned no location")
	}
	return loc, nil
}
