// Test Type: Integration Test
// Dependencies: real filesystem (t.TempDir), in-memory afero filesystem
// Purpose: Tests tolerant loading and atomic saving of the state file

package state

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotmod/pkg/filesystem"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
)

func sample(t *testing.T) *State {
	t.Helper()
	s := New()
	require.NoError(t, s.Record("shell", "/h/.config/zsh", dirInfo))
	require.NoError(t, s.Record("shell", "/h/.config/zsh/.zshrc", fileInfo))
	require.NoError(t, s.Record("git", "/h/.gitconfig", linkInfo))
	s.Track("empty")
	return s
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	fsys := filesystem.NewOS()
	file := filepath.Join(t.TempDir(), "nested", "state.toml")

	s := sample(t)
	require.NoError(t, s.Save(fsys, file))

	loaded := Load(fsys, file)
	assert.True(t, s.Equal(loaded))
	assert.True(t, loaded.IsEnabled("empty"))

	owner, ok := loaded.Owner("/h/.config/zsh/.zshrc")
	assert.True(t, ok)
	assert.Equal(t, "shell", owner)

	// no temporaries left behind
	entries, err := os.ReadDir(filepath.Dir(file))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.toml", entries[0].Name())
}

func TestSave_ReplacesPreviousFile(t *testing.T) {
	fsys := filesystem.NewOS()
	file := filepath.Join(t.TempDir(), "state.toml")

	require.NoError(t, sample(t).Save(fsys, file))
	require.NoError(t, New().Save(fsys, file))

	assert.True(t, New().Equal(Load(fsys, file)))
}

func TestSave_MemMapFs(t *testing.T) {
	fsys := filesystem.NewAferoFS(afero.NewMemMapFs())

	s := sample(t)
	require.NoError(t, s.Save(fsys, "/state/state.toml"))
	assert.True(t, s.Equal(Load(fsys, "/state/state.toml")))
}

func TestLoad_MissingFile(t *testing.T) {
	s := Load(filesystem.NewOS(), filepath.Join(t.TempDir(), "absent.toml"))
	assert.Empty(t, s.Modules())
}

func TestLoad_CorruptFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(file, []byte("modules = [[[ not toml"), 0644))

	s := Load(filesystem.NewOS(), file)
	assert.Empty(t, s.Modules())
}

func TestLoad_DropsDuplicateOwners(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.toml")
	content := `version = 1

[[modules]]
name = "a"
[[modules.entries]]
path = "/x"
kind = "directory"

[[modules]]
name = "b"
[[modules.entries]]
path = "/x"
kind = "directory"
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	s := Load(filesystem.NewOS(), file)
	owner, ok := s.Owner("/x")
	require.True(t, ok)
	assert.Equal(t, "a", owner)
	assert.True(t, s.IsEnabled("b"))
	assert.Empty(t, s.Entries("b"))
}

func TestSaveLoad_NonUTF8Names(t *testing.T) {
	fsys := filesystem.NewOS()
	file := filepath.Join(t.TempDir(), "state.toml")

	s := New()
	require.NoError(t, s.Record("keep", "/h/.keep", fileInfo))
	require.NoError(t, s.Record("odd", "/h/caf\xe9", fileInfo))
	require.NoError(t, s.Record("odd", "/h/link", fingerprint.PathInfo{Kind: fingerprint.KindSymlink, Target: "/src/na\xefve"}))
	require.NoError(t, s.Save(fsys, file))

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, utf8.Valid(raw), "state file must be valid TOML text")
	assert.Contains(t, string(raw), "path_hex")
	assert.Contains(t, string(raw), "target_hex")
	assert.Contains(t, string(raw), "/h/.keep")

	loaded := Load(fsys, file)
	assert.True(t, s.Equal(loaded))
	assert.True(t, loaded.IsEnabled("keep"))

	owner, ok := loaded.Owner("/h/caf\xe9")
	require.True(t, ok)
	assert.Equal(t, "odd", owner)

	_, info, ok := loaded.Lookup("/h/link")
	require.True(t, ok)
	assert.Equal(t, "/src/na\xefve", info.Target)
}

func TestLoad_VersionOneFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.toml")
	content := `version = 1

[[modules]]
name = "git"
[[modules.entries]]
path = "/h/.gitconfig"
kind = "symlink"
target = "/src/gitconfig"
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	s := Load(filesystem.NewOS(), file)
	_, info, ok := s.Lookup("/h/.gitconfig")
	require.True(t, ok)
	assert.Equal(t, "/src/gitconfig", info.Target)
}

func TestLoad_NewerVersionStartsEmpty(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(file, []byte("version = 99\n"), 0644))

	assert.Empty(t, Load(filesystem.NewOS(), file).Modules())
}

func TestLoad_DropsUndecodableEntry(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state.toml")
	content := `version = 2

[[modules]]
name = "m"
[[modules.entries]]
path_hex = "zz"
kind = "file"
[[modules.entries]]
path = "/h/ok"
kind = "directory"
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	s := Load(filesystem.NewOS(), file)
	require.Len(t, s.Entries("m"), 1)
	assert.Equal(t, "/h/ok", s.Entries("m")[0].Path)
}
