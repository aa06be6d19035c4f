package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotmod/pkg/types"
	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest
type Digest [32]byte

// digestPrefix is accepted, but not required, in front of hex digests
const digestPrefix = "blake3:"

// String returns the lowercase hex encoding of the digest
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses a 64-character hex digest, optionally prefixed with
// "blake3:".
func ParseDigest(s string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), digestPrefix))
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// Sum digests a byte slice
func Sum(data []byte) Digest {
	return blake3.Sum256(data)
}

// Key digests a sequence of identifying strings. Parts are NUL separated
// so ("ab", "c") and ("a", "bc") yield different keys.
func Key(parts ...string) Digest {
	return Sum([]byte(strings.Join(parts, "\x00")))
}

// HashFile digests the byte stream of the regular file at path
func HashFile(fsys types.FS, path string) (Digest, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return sumOf(hasher), nil
}

// Of digests whatever lives at path without following it: a file's bytes,
// a symlink's target string, or a directory's whole tree.
func Of(fsys types.FS, path string) (Digest, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return Digest{}, err
	}
	switch mode := info.Mode(); {
	case mode&fs.ModeSymlink != 0:
		target, err := fsys.Readlink(path)
		if err != nil {
			return Digest{}, err
		}
		return Sum([]byte(target)), nil
	case mode.IsDir():
		return HashTree(fsys, path)
	case mode.IsRegular():
		return HashFile(fsys, path)
	default:
		return Digest{}, fmt.Errorf("cannot fingerprint %s: unsupported file type %s", path, mode.Type())
	}
}

// Matches reports whether the content at path has the expected hex digest.
// The actual digest is returned either way.
func Matches(fsys types.FS, path, expected string) (bool, Digest, error) {
	want, err := ParseDigest(expected)
	if err != nil {
		return false, Digest{}, err
	}
	got, err := Of(fsys, path)
	if err != nil {
		return false, Digest{}, err
	}
	return got == want, got, nil
}

// HashTree digests a directory tree. Entries are visited in lexical order;
// each contributes its slash-separated relative path, a type tag and its
// length-prefixed content (file bytes or symlink target). A directory's
// own record precedes its children.
func HashTree(fsys types.FS, root string) (Digest, error) {
	hasher := blake3.New()
	writeRecord(hasher, ".", 'd')
	if err := writeTree(fsys, hasher, root, ""); err != nil {
		return Digest{}, err
	}
	return sumOf(hasher), nil
}

func writeTree(fsys types.FS, w io.Writer, root, rel string) error {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		full := filepath.Join(root, filepath.FromSlash(childRel))
		info, err := fsys.Lstat(full)
		if err != nil {
			return err
		}

		switch mode := info.Mode(); {
		case mode&fs.ModeSymlink != 0:
			target, err := fsys.Readlink(full)
			if err != nil {
				return err
			}
			writeRecord(w, childRel, 'l')
			writeLength(w, int64(len(target)))
			_, _ = io.WriteString(w, target)
		case mode.IsDir():
			writeRecord(w, childRel, 'd')
			if err := writeTree(fsys, w, root, childRel); err != nil {
				return err
			}
		case mode.IsRegular():
			writeRecord(w, childRel, 'f')
			writeLength(w, info.Size())
			if err := copyFile(fsys, w, full); err != nil {
				return err
			}
		default:
			return fmt.Errorf("cannot fingerprint %s: unsupported file type %s", full, mode.Type())
		}
	}
	return nil
}

func copyFile(fsys types.FS, w io.Writer, path string) error {
	file, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()
	_, err = io.Copy(w, file)
	return err
}

func writeRecord(w io.Writer, rel string, tag byte) {
	_, _ = io.WriteString(w, rel)
	_, _ = w.Write([]byte{0, tag})
}

func writeLength(w io.Writer, n int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	_, _ = w.Write(buf[:])
}

func sumOf(hasher *blake3.Hasher) Digest {
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}
