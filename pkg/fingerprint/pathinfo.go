package fingerprint

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/dotmod/pkg/types"
)

// Kind is the type of filesystem entry a PathInfo describes
type Kind string

const (
	KindDirectory Kind = "directory"
	KindFile      Kind = "file"
	KindHardLink  Kind = "hardlink"
	KindSymlink   Kind = "symlink"
)

// PathInfo is the fingerprint recorded for an owned path. Directories are
// tracked by existence only; files and hard links by size and content
// digest; symlinks by their literal target.
type PathInfo struct {
	Kind   Kind
	Size   int64
	Digest string
	Target string
}

func (p PathInfo) String() string {
	switch p.Kind {
	case KindFile, KindHardLink:
		return fmt.Sprintf("%s %d bytes %s", p.Kind, p.Size, p.Digest)
	case KindSymlink:
		return fmt.Sprintf("symlink -> %s", p.Target)
	default:
		return string(p.Kind)
	}
}

// KindForMode maps a created entry's mode to the kind recorded for it
func KindForMode(mode fs.FileMode, hardLinked bool) Kind {
	switch {
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDirectory
	case hardLinked:
		return KindHardLink
	default:
		return KindFile
	}
}

// Derive computes the fingerprint of the live entry at path, expecting an
// entry of the given kind.
func Derive(fsys types.FS, path string, kind Kind) (PathInfo, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return PathInfo{}, err
	}
	mode := info.Mode()

	switch kind {
	case KindDirectory:
		if !mode.IsDir() {
			return PathInfo{}, fmt.Errorf("%s is not a directory", path)
		}
		return PathInfo{Kind: KindDirectory}, nil

	case KindFile, KindHardLink:
		if !mode.IsRegular() {
			return PathInfo{}, fmt.Errorf("%s is not a regular file", path)
		}
		digest, err := HashFile(fsys, path)
		if err != nil {
			return PathInfo{}, err
		}
		return PathInfo{Kind: kind, Size: info.Size(), Digest: digest.String()}, nil

	case KindSymlink:
		if mode&fs.ModeSymlink == 0 {
			return PathInfo{}, fmt.Errorf("%s is not a symlink", path)
		}
		target, err := fsys.Readlink(path)
		if err != nil {
			return PathInfo{}, err
		}
		return PathInfo{Kind: KindSymlink, Target: target}, nil

	default:
		return PathInfo{}, fmt.Errorf("unknown path kind %q", kind)
	}
}

// Status classifies a recorded path against the live filesystem
type Status int

const (
	// Owned means the live entry still matches its recorded fingerprint
	Owned Status = iota
	// Changed means the entry exists but no longer matches
	Changed
	// Missing means nothing exists at the path
	Missing
)

func (s Status) String() string {
	switch s {
	case Owned:
		return "owned"
	case Changed:
		return "changed"
	case Missing:
		return "missing"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Check compares the live entry at path with its recorded fingerprint. It
// never modifies the filesystem. Entries that cannot be inspected are
// reported as Changed so they are never deleted.
func Check(fsys types.FS, path string, recorded PathInfo) Status {
	if _, err := fsys.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Missing
		}
		return Changed
	}
	live, err := Derive(fsys, path, recorded.Kind)
	if err != nil {
		return Changed
	}
	if live != recorded {
		return Changed
	}
	return Owned
}
