package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/looplab/fsm"        // Finite state machine.
	"github.com/moby/sys/mountinfo" // Mountpoint detection.
	"github.com/pkg/errors"         // Wrap errors with stacktrace.
	"github.com/spf13/afero"        // Filesystem abstraction.
	"go.uber.org/zap"               // Logging.
)

const (
	// DefaultDataDir is where the Elasticsearch package keeps its data.
	DefaultDataDir = "/var/lib/elasticsearch"

	// DefaultCopyTimeout bounds how long copying data may take.
	DefaultCopyTimeout = time.Hour

	// LostAndFound is created by mkfs at the root of a new
	// ext filesystem. It doesn't count as data.
	LostAndFound = "lost+found"

	// backupSuffix is appended to the old data directory while
	// the symlink replacing it is created.
	backupSuffix = ".pre-migration"
)

// Migration phases. Each state is reached once the step
// of the same name has completed.
const (
	PhaseIdle    = "idle"
	PhaseStopped = "stopped"
	PhaseCopied  = "copied"
	PhaseSwapped = "swapped"
	PhaseStarted = "started"

	eventStop  = "stop"
	eventCopy  = "copy"
	eventSwap  = "swap"
	eventStart = "start"
)

// Service is the service that writes to the data directory.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Migrator moves a data directory to a new location.
type Migrator struct {
	// Filesystem to operate on. Must implement afero.Symlinker.
	FS afero.Fs

	// Service writing to DataDir. It's stopped while data is copied.
	Service Service

	// The data directory to migrate. Defaults to DefaultDataDir.
	DataDir string

	// Max duration of the data copy. Defaults to DefaultCopyTimeout.
	CopyTimeout time.Duration

	// If true, refuse to migrate to a path that isn't a mountpoint.
	RequireMount bool

	Logger *zap.Logger

	// mounted is replaced in tests.
	mounted func(path string) (bool, error)
}

// NewMigrator returns a new Migrator with default settings.
func NewMigrator(fs afero.Fs, svc Service, logger *zap.Logger) *Migrator {
	return &Migrator{
		FS:          fs,
		Service:     svc,
		DataDir:     DefaultDataDir,
		CopyTimeout: DefaultCopyTimeout,
		Logger:      logger,
		mounted:     mountinfo.Mounted,
	}
}

// Migrate moves the contents of DataDir into newPath and replaces DataDir
// with a symlink to newPath. It does nothing if DataDir is already a symlink.
//
// newPath must be empty apart from a lost+found directory. The service
// is stopped while data is copied and started again afterwards.
// If a step fails after the service was stopped, the completed steps
// are undone and the service is started again before returning.
// Errors are of type *MigrationError.
func (m *Migrator) Migrate(ctx context.Context, newPath string) error {
	newPath = filepath.Clean(newPath)
	oldPath := filepath.Clean(m.DataDir)
	logger := m.Logger.With(zap.String("from", oldPath), zap.String("to", newPath))

	linker, ok := m.FS.(afero.Symlinker)
	if !ok {
		return &MigrationError{Phase: "check", Path: newPath, Err: errors.New("filesystem doesn't support symlinks")}
	}

	oldInfo, _, err := linker.LstatIfPossible(oldPath)
	oldExists := true
	switch {
	case os.IsNotExist(err):
		oldExists = false
	case err != nil:
		return &MigrationError{Phase: "check", Path: newPath, Err: err}
	case oldInfo.Mode()&os.ModeSymlink != 0:
		logger.Info("data directory is already a symlink, skipping migration")
		return nil
	}

	if err := m.checkDestination(newPath); err != nil {
		return &MigrationError{Phase: "check", Path: newPath, Err: err}
	}

	if err := m.FS.Chmod(newPath, 0700); err != nil {
		return &MigrationError{Phase: "check", Path: newPath, Err: err}
	}

	state := newMigrationFSM()
	backup := oldPath + backupSuffix

	fail := func(err error) error {
		logger.Error("migration failed, rolling back",
			zap.String("phase", state.Current()),
			zap.Error(err))
		rerr := m.rollback(context.WithoutCancel(ctx), state.Current(), oldPath, newPath, backup)
		return &MigrationError{
			Phase:       nextPhase(state.Current()),
			Path:        newPath,
			Err:         err,
			RollbackErr: rerr,
		}
	}

	logger.Info("stopping service for migration")
	if err := m.Service.Stop(ctx); err != nil {
		return &MigrationError{Phase: eventStop, Path: newPath, Err: err}
	}
	if err := state.Event(eventStop); err != nil {
		return fail(errors.Wrap(err, "error entering stopped phase"))
	}

	if oldExists {
		logger.Info("copying data")
		copyCtx, cancel := context.WithTimeout(ctx, m.copyTimeout())
		err := CopyTree(copyCtx, m.FS, oldPath, newPath)
		cancel()
		if err != nil {
			return fail(err)
		}
	} else {
		logger.Warn("data directory doesn't exist, nothing to copy")
	}
	if err := state.Event(eventCopy); err != nil {
		return fail(errors.Wrap(err, "error entering copied phase"))
	}

	if oldExists {
		if err := m.FS.Rename(oldPath, backup); err != nil {
			return fail(err)
		}
	}
	if err := linker.SymlinkIfPossible(newPath, oldPath); err != nil {
		return fail(err)
	}
	if err := state.Event(eventSwap); err != nil {
		return fail(errors.Wrap(err, "error entering swapped phase"))
	}
	if oldExists {
		if err := m.FS.RemoveAll(backup); err != nil {
			// The data is safe at this point.
			logger.Warn("error removing old data directory",
				zap.String("path", backup),
				zap.Error(err))
		}
	}

	logger.Info("starting service after migration")
	if err := m.Service.Start(ctx); err != nil {
		// Data has been migrated; nothing to roll back.
		return &MigrationError{Phase: eventStart, Path: newPath, Err: err}
	}
	if err := state.Event(eventStart); err != nil {
		return &MigrationError{Phase: eventStart, Path: newPath, Err: errors.Wrap(err, "error entering started phase")}
	}

	logger.Info("migration complete")
	return nil
}

func (m *Migrator) copyTimeout() time.Duration {
	if m.CopyTimeout <= 0 {
		return DefaultCopyTimeout
	}
	return m.CopyTimeout
}

// checkDestination returns an error if path shouldn't be migrated to.
func (m *Migrator) checkDestination(path string) error {
	entries, err := afero.ReadDir(m.FS, path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name() != LostAndFound {
			return errors.Wrapf(ErrDestinationNotEmpty,
				"found %q; investigate and migrate data manually", e.Name())
		}
	}
	if m.RequireMount {
		ok, err := m.mounted(path)
		if err != nil {
			return errors.Wrap(err, "error checking mountpoint")
		}
		if !ok {
			return ErrNotMountpoint
		}
	}
	return nil
}

// rollback undoes the steps that completed before phase was left,
// then starts the service.
func (m *Migrator) rollback(ctx context.Context, phase, oldPath, newPath, backup string) error {
	var errs []error
	record := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	switch phase {
	case PhaseCopied:
		// The old directory may have been renamed, and a
		// symlink may be half in place.
		if lstater, ok := m.FS.(afero.Lstater); ok {
			if info, _, err := lstater.LstatIfPossible(oldPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
				record(m.FS.Remove(oldPath))
			}
		}
		if _, err := m.FS.Stat(backup); err == nil {
			record(m.FS.Rename(backup, oldPath))
		}
		record(m.clearDestination(newPath))
	case PhaseStopped:
		record(m.clearDestination(newPath))
	}

	record(m.Service.Start(ctx))

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// clearDestination removes everything copied into path.
func (m *Migrator) clearDestination(path string) error {
	entries, err := afero.ReadDir(m.FS, path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name() == LostAndFound {
			continue
		}
		if err := m.FS.RemoveAll(filepath.Join(path, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func newMigrationFSM() *fsm.FSM {
	return fsm.NewFSM(
		PhaseIdle,
		fsm.Events{
			{Name: eventStop, Src: []string{PhaseIdle}, Dst: PhaseStopped},
			{Name: eventCopy, Src: []string{PhaseStopped}, Dst: PhaseCopied},
			{Name: eventSwap, Src: []string{PhaseCopied}, Dst: PhaseSwapped},
			{Name: eventStart, Src: []string{PhaseSwapped}, Dst: PhaseStarted},
		},
		fsm.Callbacks{},
	)
}

// nextPhase returns the name of the step that follows state.
func nextPhase(state string) string {
	switch state {
	case PhaseIdle:
		return eventStop
	case PhaseStopped:
		return eventCopy
	case PhaseCopied:
		return eventSwap
	default:
		return eventStart
	}
}
