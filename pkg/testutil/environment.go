// pkg/testutil/environment.go
// DEPENDENCIES: pkg/paths, pkg/filesystem, pkg/registry
// PURPOSE: Isolated real-filesystem environments for engine and CLI tests

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotmod/pkg/engine"
	"github.com/arthur-debert/dotmod/pkg/filesystem"
	"github.com/arthur-debert/dotmod/pkg/paths"
	"github.com/arthur-debert/dotmod/pkg/registry"
	"github.com/arthur-debert/dotmod/pkg/types"
)

// TestEnvironment is a temporary home plus config, cache and state roots.
// The DOTMOD_*_DIR variables and HOME point into it for the duration of
// the test.
type TestEnvironment struct {
	Root     string
	HomeDir  string
	Paths    paths.Paths
	FS       *RecordingFS
	Users    *FakeUsers
	Fetcher  *MemoryFetcher
	Registry *registry.Catalog

	t *testing.T
}

// NewTestEnvironment creates an isolated environment rooted in t.TempDir()
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	// Resolve symlinked temp dirs (macOS /var -> /private/var) so paths
	// compare equal to what the engine computes.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	env := &TestEnvironment{
		Root:     root,
		HomeDir:  filepath.Join(root, "home"),
		FS:       NewRecordingFS(filesystem.NewOS()),
		Fetcher:  NewMemoryFetcher(),
		Registry: registry.NewCatalog(),
		t:        t,
	}
	configDir := filepath.Join(root, "config")
	cacheDir := filepath.Join(root, "cache")
	stateDir := filepath.Join(root, "state")

	for _, dir := range []string{env.HomeDir, configDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv(paths.EnvConfigDir, configDir)
	t.Setenv(paths.EnvCacheDir, cacheDir)
	t.Setenv(paths.EnvStateDir, stateDir)

	env.Paths = paths.NewWithRoots(configDir, cacheDir, stateDir)
	env.Users = NewFakeUsers(env.HomeDir)
	return env
}

// Context returns an engine context wired to the environment
func (env *TestEnvironment) Context() engine.Context {
	return engine.Context{
		FS:       env.FS,
		Paths:    env.Paths,
		Users:    env.Users,
		Fetcher:  env.Fetcher,
		Registry: env.Registry,
	}
}

// Engine creates a fresh engine, loading the state file from disk
func (env *TestEnvironment) Engine() *engine.Engine {
	return engine.New(env.Context())
}

// Home joins path elements onto the home directory
func (env *TestEnvironment) Home(elem ...string) string {
	return filepath.Join(append([]string{env.HomeDir}, elem...)...)
}

// AddModule registers a module, failing the test on error
func (env *TestEnvironment) AddModule(m *types.Module) {
	env.t.Helper()
	if err := env.Registry.AddModule(m); err != nil {
		env.t.Fatalf("failed to add module %s: %v", m.Name, err)
	}
}

// AddSource registers a named source, failing the test on error
func (env *TestEnvironment) AddSource(s *types.NamedSource) {
	env.t.Helper()
	if err := env.Registry.AddSource(s); err != nil {
		env.t.Fatalf("failed to add source %s: %v", s.Name, err)
	}
}

// WriteFile writes content at path, creating parents
func (env *TestEnvironment) WriteFile(path, content string) {
	env.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		env.t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		env.t.Fatalf("failed to write %s: %v", path, err)
	}
}

// ReadFile returns the content at path, failing the test on error
func (env *TestEnvironment) ReadFile(path string) string {
	env.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		env.t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// Exists reports whether anything, including a dangling symlink, is at path
func (env *TestEnvironment) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
