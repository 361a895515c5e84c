//go:build !windows

package storage

import (
	"os"
	"syscall"

	"github.com/spf13/afero" // Filesystem abstraction.
)

// chown copies the owner of info to name. It only does so when
// running as root, since nobody else can give files away.
func chown(fs afero.Fs, name string, info os.FileInfo) error {
	if os.Geteuid() != 0 {
		return nil
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	return fs.Chown(name, int(st.Uid), int(st.Gid))
}
