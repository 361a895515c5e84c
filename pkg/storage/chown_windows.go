package storage

import (
	"os"

	"github.com/spf13/afero" // Filesystem abstraction.
)

func chown(afero.Fs, string, os.FileInfo) error { return nil }
