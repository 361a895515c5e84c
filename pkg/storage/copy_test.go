package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"             // Filesystem abstraction.
	"github.com/stretchr/testify/assert" // Test assertions e.g. equality.
	"github.com/stretchr/testify/require"
)

func TestCopyTree(t *testing.T) {
	t.Run("preserves-attributes", func(t *testing.T) {
		root := t.TempDir()
		src := filepath.Join(root, "src")
		dst := filepath.Join(root, "dst")
		require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0750))
		require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "script.sh"), []byte("#!/bin/sh"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(src, "secret"), []byte("s3cret"), 0600))
		require.NoError(t, os.Symlink("sub/script.sh", filepath.Join(src, "link")))
		mtime := time.Date(2016, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(filepath.Join(src, "secret"), mtime, mtime))
		require.NoError(t, os.Chtimes(filepath.Join(src, "sub"), mtime, mtime))

		require.NoError(t, CopyTree(context.Background(), afero.NewOsFs(), src, dst))

		info, err := os.Stat(filepath.Join(dst, "sub", "script.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

		info, err = os.Stat(filepath.Join(dst, "secret"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
		assert.True(t, mtime.Equal(info.ModTime()), "mtime not preserved: %s", info.ModTime())

		info, err = os.Stat(filepath.Join(dst, "sub"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0750), info.Mode().Perm())
		assert.True(t, mtime.Equal(info.ModTime()), "directory mtime not preserved: %s", info.ModTime())

		link, err := os.Readlink(filepath.Join(dst, "link"))
		require.NoError(t, err)
		assert.Equal(t, "sub/script.sh", link)
	})

	t.Run("existing-destination", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/charm/ansible_module_backports/modules", 0755))
		require.NoError(t, afero.WriteFile(fs, "/charm/ansible_module_backports/modules/a.py", []byte("new"), 0644))
		require.NoError(t, fs.MkdirAll("/usr/share/ansible", 0700))
		require.NoError(t, fs.MkdirAll("/usr/share/ansible/modules", 0755))
		require.NoError(t, afero.WriteFile(fs, "/usr/share/ansible/modules/a.py", []byte("old"), 0644))
		require.NoError(t, afero.WriteFile(fs, "/usr/share/ansible/other.py", []byte("keep"), 0644))

		require.NoError(t, CopyTree(context.Background(), fs, "/charm/ansible_module_backports", "/usr/share/ansible"))

		b, err := afero.ReadFile(fs, "/usr/share/ansible/modules/a.py")
		require.NoError(t, err)
		assert.Equal(t, "new", string(b))
		b, err = afero.ReadFile(fs, "/usr/share/ansible/other.py")
		require.NoError(t, err)
		assert.Equal(t, "keep", string(b))

		// Existing destination keeps its mode.
		info, err := fs.Stat("/usr/share/ansible")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	})

	t.Run("missing-source", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		assert.Error(t, CopyTree(context.Background(), fs, "/nope", "/dst"))
	})

	t.Run("cancelled", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/src", 0755))
		require.NoError(t, afero.WriteFile(fs, "/src/a", []byte("a"), 0644))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, CopyTree(ctx, fs, "/src", "/dst"))
		_, err := fs.Stat("/dst/a")
		assert.True(t, os.IsNotExist(err))
	})
}
