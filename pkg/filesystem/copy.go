package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotmod/pkg/types"
)

// CopyOptions controls how Copy materializes a source
type CopyOptions struct {
	// FollowRoot copies what src points to when src itself is a symlink.
	// Nested symlinks are always recreated as symlinks.
	FollowRoot bool

	// HardLink hard-links regular files instead of copying their bytes
	HardLink bool

	// OnCreate is called once for every entry Copy creates, parents
	// before children. Returning an error stops the copy.
	OnCreate func(path string, mode fs.FileMode) error
}

// Copy recreates the file, symlink or directory tree at src under dst.
// dst must not exist.
func Copy(fsys types.FS, src, dst string, opts CopyOptions) error {
	var info fs.FileInfo
	var err error
	if opts.FollowRoot {
		info, err = fsys.Stat(src)
	} else {
		info, err = fsys.Lstat(src)
	}
	if err != nil {
		return err
	}
	return copyEntry(fsys, src, dst, info, opts)
}

func copyEntry(fsys types.FS, src, dst string, info fs.FileInfo, opts CopyOptions) error {
	mode := info.Mode()
	switch {
	case mode&fs.ModeSymlink != 0:
		target, err := fsys.Readlink(src)
		if err != nil {
			return err
		}
		if err := fsys.Symlink(target, dst); err != nil {
			return err
		}
		return notify(opts, dst, fs.ModeSymlink)

	case mode.IsDir():
		if err := fsys.Mkdir(dst, mode.Perm()|0700); err != nil {
			return err
		}
		if err := notify(opts, dst, fs.ModeDir|mode.Perm()); err != nil {
			return err
		}
		entries, err := fsys.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			childInfo, err := entry.Info()
			if err != nil {
				return err
			}
			name := entry.Name()
			if err := copyEntry(fsys, filepath.Join(src, name), filepath.Join(dst, name), childInfo, opts); err != nil {
				return err
			}
		}
		return nil

	case mode.IsRegular():
		if opts.HardLink {
			if err := fsys.Link(src, dst); err != nil {
				return err
			}
		} else if err := copyFile(fsys, src, dst, mode.Perm()); err != nil {
			return err
		}
		return notify(opts, dst, mode.Perm())

	default:
		return fmt.Errorf("cannot copy %s: unsupported file type %s", src, mode.Type())
	}
}

func copyFile(fsys types.FS, src, dst string, perm fs.FileMode) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = fsys.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = fsys.Remove(dst)
		return err
	}
	return nil
}

func notify(opts CopyOptions, path string, mode fs.FileMode) error {
	if opts.OnCreate == nil {
		return nil
	}
	return opts.OnCreate(path, mode)
}
