package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"  // Wrap errors with stacktrace.
	"github.com/spf13/afero" // Filesystem abstraction.
	"go.uber.org/zap"        // Logging.
)

// CopyTree copies the contents of directory src into directory dst,
// preserving permissions, modification times, symlinks and (when running
// as root) ownership. dst is created with the mode of src if it doesn't
// exist; an existing dst keeps its own mode but gets the owner and
// modification time of src. Existing files in dst are overwritten.
//
// Symlinks are copied as symlinks if fs implements afero.Symlinker,
// and reported as an error otherwise. Sockets, pipes, and devices are skipped.
//
// ctx is checked between files.
func CopyTree(ctx context.Context, fs afero.Fs, src, dst string) error {
	src = filepath.Clean(src)
	dst = filepath.Clean(dst)

	type dirTimes struct {
		path  string
		mtime time.Time
	}
	var dirs []dirTimes

	err := afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		mode := info.Mode()
		switch {
		case mode.IsDir():
			if rel == "." {
				if _, err := fs.Stat(dst); err == nil {
					// Keep the mode of dst, but hand it to the owner of src.
					if err := chown(fs, dst, info); err != nil {
						return err
					}
					dirs = append(dirs, dirTimes{dst, info.ModTime()})
					return nil
				}
			}
			if err := fs.MkdirAll(target, mode.Perm()); err != nil {
				return err
			}
			if err := fs.Chmod(target, mode.Perm()); err != nil {
				return err
			}
			if err := chown(fs, target, info); err != nil {
				return err
			}
			dirs = append(dirs, dirTimes{target, info.ModTime()})
			return nil

		case mode&os.ModeSymlink != 0:
			return copySymlink(fs, path, target)

		case mode.IsRegular():
			return copyFile(fs, path, target, info)

		default:
			zap.L().Warn("skipping special file",
				zap.String("path", path),
				zap.Stringer("mode", mode))
			return nil
		}
	})
	if err != nil {
		return errors.Wrapf(err, "error copying %s to %s", src, dst)
	}

	// Directory mtimes change as entries are added, so set them
	// last, deepest first.
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		if err := fs.Chtimes(d.path, d.mtime, d.mtime); err != nil {
			return errors.Wrapf(err, "error setting times of %s", d.path)
		}
	}
	return nil
}

func copyFile(fs afero.Fs, src, dst string, info os.FileInfo) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	if err := chown(fs, dst, info); err != nil {
		return err
	}
	return fs.Chtimes(dst, info.ModTime(), info.ModTime())
}

func copySymlink(fs afero.Fs, src, dst string) error {
	linker, ok := fs.(afero.Symlinker)
	if !ok {
		return errors.Errorf("cannot copy symlink %s: filesystem doesn't support symlinks", src)
	}
	target, err := linker.ReadlinkIfPossible(src)
	if err != nil {
		return err
	}
	if _, _, err := linker.LstatIfPossible(dst); err == nil {
		if err := fs.Remove(dst); err != nil {
			return err
		}
	}
	return linker.SymlinkIfPossible(target, dst)
}
