package storage

import (
	"fmt"

	"github.com/pkg/errors" // Wrap errors with stacktrace.
)

var (
	// ErrDestinationNotEmpty means the new mountpoint already holds data.
	// The operator has to resolve this by hand.
	ErrDestinationNotEmpty = errors.New("destination not empty")

	// ErrNotMountpoint means the new path isn't a mounted filesystem.
	ErrNotMountpoint = errors.New("destination is not a mountpoint")
)

// MigrationError is returned by Migrator.Migrate.
type MigrationError struct {
	// Phase of the migration that failed.
	Phase string

	// Path being migrated to.
	Path string

	Err error

	// Error encountered while rolling back, if any.
	// If non-nil the host may be left with the service stopped
	// or a partial copy in Path.
	RollbackErr error
}

func (e *MigrationError) Error() string {
	msg := fmt.Sprintf("migration to %s failed during %s: %s", e.Path, e.Phase, e.Err)
	if e.RollbackErr != nil {
		msg += fmt.Sprintf(" (rollback failed: %s)", e.RollbackErr)
	}
	return msg
}

func (e *MigrationError) Unwrap() error { return e.Err }
