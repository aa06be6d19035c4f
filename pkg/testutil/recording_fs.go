package testutil

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/arthur-debert/dotmod/pkg/types"
)

// Chown is one recorded Lchown call
type Chown struct {
	Path     string
	UID, GID int
}

// RecordingFS wraps a types.FS. Lchown calls are recorded instead of
// executed so ownership changes can be tested without privileges, and
// individual paths can be made to fail on creation.
type RecordingFS struct {
	types.FS

	mu         sync.Mutex
	chowns     []Chown
	fail       map[string]error
	failRemove map[string]error
	failClose  map[string]error
}

// NewRecordingFS wraps base
func NewRecordingFS(base types.FS) *RecordingFS {
	return &RecordingFS{
		FS:         base,
		fail:       map[string]error{},
		failRemove: map[string]error{},
		failClose:  map[string]error{},
	}
}

// FailOn makes creating anything at path fail with err
func (r *RecordingFS) FailOn(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[path] = err
}

// FailRemove makes removing path fail with err
func (r *RecordingFS) FailRemove(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failRemove[path] = err
}

// FailClose makes closing a file opened at path fail with err. The
// underlying file is still closed.
func (r *RecordingFS) FailClose(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failClose[path] = err
}

// Chowns returns the recorded Lchown calls
func (r *RecordingFS) Chowns() []Chown {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Chown(nil), r.chowns...)
}

func (r *RecordingFS) injected(op, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	failures := r.fail
	switch op {
	case "remove":
		failures = r.failRemove
	case "close":
		failures = r.failClose
	}
	if err, ok := failures[path]; ok {
		return &fs.PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

func (r *RecordingFS) Lchown(name string, uid, gid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chowns = append(r.chowns, Chown{Path: name, UID: uid, GID: gid})
	return nil
}

func (r *RecordingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := r.injected("write", name); err != nil {
		return err
	}
	return r.FS.WriteFile(name, data, perm)
}

func (r *RecordingFS) OpenFile(name string, flag int, perm fs.FileMode) (types.File, error) {
	if err := r.injected("open", name); err != nil {
		return nil, err
	}
	f, err := r.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if closeErr := r.injected("close", name); closeErr != nil {
		return &failingCloseFile{File: f, err: closeErr}, nil
	}
	return f, nil
}

type failingCloseFile struct {
	types.File
	err error
}

func (f *failingCloseFile) Close() error {
	_ = f.File.Close()
	return f.err
}

func (r *RecordingFS) Symlink(oldname, newname string) error {
	if err := r.injected("symlink", newname); err != nil {
		return err
	}
	return r.FS.Symlink(oldname, newname)
}

func (r *RecordingFS) Link(oldname, newname string) error {
	if err := r.injected("link", newname); err != nil {
		return err
	}
	return r.FS.Link(oldname, newname)
}

func (r *RecordingFS) Mkdir(name string, perm fs.FileMode) error {
	if err := r.injected("mkdir", name); err != nil {
		return err
	}
	return r.FS.Mkdir(name, perm)
}

func (r *RecordingFS) Remove(name string) error {
	if err := r.injected("remove", name); err != nil {
		return err
	}
	return r.FS.Remove(name)
}

func (r *RecordingFS) String() string {
	return fmt.Sprintf("RecordingFS(%d chowns)", len(r.Chowns()))
}
