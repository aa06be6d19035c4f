// Test Type: Integration Test
// Dependencies: real filesystem (t.TempDir)
// Purpose: Tests slot reuse, refetching and digest verification

package sources

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/filesystem"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
	"github.com/arthur-debert/dotmod/pkg/paths"
	"github.com/arthur-debert/dotmod/pkg/types"
	"github.com/arthur-debert/dotmod/pkg/users"
)

type fakeUsers struct{ home string }

func (f fakeUsers) Current() (*users.User, error) {
	return &users.User{Name: "me", HomeDir: f.home}, nil
}

func (f fakeUsers) Lookup(name string) (*users.User, error) {
	return nil, errors.Newf(errors.ErrUserResolution, "unknown user %q", name)
}

func (f fakeUsers) LookupGroup(name string) (int, error) {
	return 0, errors.Newf(errors.ErrUserResolution, "unknown group %q", name)
}

type mapFetcher struct {
	bodies map[string]string
	calls  int
}

func (m *mapFetcher) Fetch(url string) (io.ReadCloser, error) {
	m.calls++
	body, ok := m.bodies[url]
	if !ok {
		return nil, fmt.Errorf("404 for %s", url)
	}
	return io.NopCloser(bytes.NewBufferString(body)), nil
}

type fixture struct {
	root     string
	home     string
	paths    paths.Paths
	fetcher  *mapFetcher
	resolver *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:    root,
		home:    filepath.Join(root, "home"),
		paths:   paths.NewWithRoots(filepath.Join(root, "config"), filepath.Join(root, "cache"), filepath.Join(root, "state")),
		fetcher: &mapFetcher{bodies: map[string]string{}},
	}
	require.NoError(t, os.MkdirAll(f.home, 0755))
	f.resolver = NewResolver(filesystem.NewOS(), f.paths, paths.NewExpander(fakeUsers{home: f.home}), f.fetcher)
	return f
}

// closeFailFS makes closing files opened at one path fail
type closeFailFS struct {
	types.FS
	path string
}

func (c closeFailFS) OpenFile(name string, flag int, perm os.FileMode) (types.File, error) {
	f, err := c.FS.OpenFile(name, flag, perm)
	if err != nil || name != c.path {
		return f, err
	}
	return closeFailFile{File: f}, nil
}

type closeFailFile struct{ types.File }

func (f closeFailFile) Close() error {
	_ = f.File.Close()
	return fmt.Errorf("close %s: input/output error", f.Name())
}

func digestOf(s string) string {
	return fingerprint.Sum([]byte(s)).String()
}

func TestResolve_TextReusesSlot(t *testing.T) {
	f := newFixture(t)
	spec := &types.SourceSpec{Kind: types.SourceText, Text: "hello\n"}
	slot := f.paths.AnonymousSlot("m", "/h/.x")

	got, err := f.resolver.Resolve(Request{Spec: spec, Slot: slot})
	require.NoError(t, err)
	assert.Equal(t, slot, got)

	_, err = f.resolver.Resolve(Request{Spec: spec, Slot: slot})
	require.NoError(t, err)
	assert.Equal(t, 1, f.resolver.Fetches())

	content, err := os.ReadFile(slot)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))
}

func TestResolve_URLFetchedOnce(t *testing.T) {
	f := newFixture(t)
	f.fetcher.bodies["https://example.com/a"] = "remote"
	spec := &types.SourceSpec{Kind: types.SourceURL, URL: "https://example.com/a"}
	slot := f.paths.AnonymousSlot("m", "/h/.a")

	for i := 0; i < 3; i++ {
		_, err := f.resolver.Resolve(Request{Spec: spec, Slot: slot, Digest: digestOf("remote")})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.fetcher.calls)
	assert.Equal(t, 1, f.resolver.Fetches())
}

func TestResolve_ForceRefetches(t *testing.T) {
	f := newFixture(t)
	spec := &types.SourceSpec{Kind: types.SourceText, Text: "v"}
	slot := f.paths.NamedSlot("s")

	_, err := f.resolver.Resolve(Request{Spec: spec, Slot: slot})
	require.NoError(t, err)
	_, err = f.resolver.Resolve(Request{Spec: spec, Slot: slot, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, f.resolver.Fetches())
}

func TestResolve_ChangedDefinitionRefetches(t *testing.T) {
	f := newFixture(t)
	slot := f.paths.NamedSlot("s")

	_, err := f.resolver.Resolve(Request{Spec: &types.SourceSpec{Kind: types.SourceText, Text: "one"}, Slot: slot})
	require.NoError(t, err)
	_, err = f.resolver.Resolve(Request{Spec: &types.SourceSpec{Kind: types.SourceText, Text: "two"}, Slot: slot})
	require.NoError(t, err)

	content, err := os.ReadFile(slot)
	require.NoError(t, err)
	assert.Equal(t, "two", string(content))
	assert.Equal(t, 2, f.resolver.Fetches())
}

func TestResolve_TamperedSlotRefetched(t *testing.T) {
	f := newFixture(t)
	spec := &types.SourceSpec{Kind: types.SourceText, Text: "good"}
	slot := f.paths.NamedSlot("s")

	_, err := f.resolver.Resolve(Request{Spec: spec, Slot: slot, Digest: digestOf("good")})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(slot, []byte("evil"), 0644))

	_, err = f.resolver.Resolve(Request{Spec: spec, Slot: slot, Digest: digestOf("good")})
	require.NoError(t, err)
	assert.Equal(t, 2, f.resolver.Fetches())
}

func TestResolve_HashMismatchLeavesContentWithoutMarker(t *testing.T) {
	f := newFixture(t)
	f.fetcher.bodies["https://example.com/a"] = "unexpected"
	spec := &types.SourceSpec{Kind: types.SourceURL, URL: "https://example.com/a"}
	slot := f.paths.AnonymousSlot("m", "/h/.a")

	_, err := f.resolver.Resolve(Request{Spec: spec, Slot: slot, Digest: digestOf("expected")})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrHashMismatch))
	assert.Equal(t, digestOf("unexpected"), errors.GetErrorDetails(err)["actual"])

	content, err := os.ReadFile(slot)
	require.NoError(t, err)
	assert.Equal(t, "unexpected", string(content))
	_, err = os.Stat(f.paths.MarkerPath(slot))
	assert.True(t, os.IsNotExist(err))

	// retried on the next run
	_, err = f.resolver.Resolve(Request{Spec: spec, Slot: slot, Digest: digestOf("expected")})
	require.Error(t, err)
	assert.Equal(t, 2, f.fetcher.calls)
}

func TestResolve_FetchFailure(t *testing.T) {
	f := newFixture(t)
	spec := &types.SourceSpec{Kind: types.SourceURL, URL: "https://example.com/missing"}
	slot := f.paths.AnonymousSlot("m", "/h/.a")

	_, err := f.resolver.Resolve(Request{Spec: spec, Slot: slot})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetchFailure))
	_, err = os.Lstat(slot)
	assert.True(t, os.IsNotExist(err))
}

func TestResolve_DownloadCloseFailureLeavesNoFile(t *testing.T) {
	f := newFixture(t)
	url := "https://example.com/rc"
	f.fetcher.bodies[url] = "body"
	spec := &types.SourceSpec{Kind: types.SourceURL, URL: url}
	slot := f.paths.AnonymousSlot("m", "/h/.a")

	r := NewResolver(closeFailFS{FS: filesystem.NewOS(), path: slot}, f.paths, paths.NewExpander(fakeUsers{home: f.home}), f.fetcher)
	require.NoError(t, os.MkdirAll(filepath.Dir(slot), 0755))
	err := r.download(spec, slot)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetchFailure))
	_, err = os.Lstat(slot)
	assert.True(t, os.IsNotExist(err))
}

func TestResolve_LocalPathCopiesTree(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.home, "dots", "nvim")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "lua"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "init.lua"), []byte("require('x')"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "lua", "x.lua"), []byte("return {}"), 0644))
	require.NoError(t, os.Symlink("init.lua", filepath.Join(src, "alias.lua")))

	spec := &types.SourceSpec{Kind: types.SourcePath, Path: "~/dots/nvim"}
	slot := f.paths.NamedSlot("nvim")

	want, err := fingerprint.HashTree(filesystem.NewOS(), src)
	require.NoError(t, err)

	_, err = f.resolver.Resolve(Request{Spec: spec, Slot: slot, Digest: want.String()})
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(slot, "alias.lua"))
	require.NoError(t, err)
	assert.Equal(t, "init.lua", target)
}

func TestResolve_LocalPathUnknownUser(t *testing.T) {
	f := newFixture(t)
	spec := &types.SourceSpec{Kind: types.SourcePath, Path: "~ghost/x"}

	_, err := f.resolver.Resolve(Request{Spec: spec, Slot: f.paths.NamedSlot("g")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUserResolution))
}

func TestResolve_Symlink(t *testing.T) {
	f := newFixture(t)
	spec := &types.SourceSpec{Kind: types.SourceSymlink, Target: "/usr/share/doc"}
	slot := f.paths.NamedSlot("docs")

	_, err := f.resolver.Resolve(Request{Spec: spec, Slot: slot, Digest: digestOf("/usr/share/doc")})
	require.NoError(t, err)

	target, err := os.Readlink(slot)
	require.NoError(t, err)
	assert.Equal(t, "/usr/share/doc", target)
}

func TestResolve_Static(t *testing.T) {
	f := newFixture(t)
	slot := f.paths.NamedSlot("static")

	_, err := f.resolver.Resolve(Request{Slot: slot})
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetchFailure))

	require.NoError(t, os.MkdirAll(filepath.Dir(slot), 0755))
	require.NoError(t, os.WriteFile(slot, []byte("shipped"), 0644))

	got, err := f.resolver.Resolve(Request{Slot: slot, Digest: digestOf("shipped")})
	require.NoError(t, err)
	assert.Equal(t, slot, got)

	_, err = f.resolver.Resolve(Request{Slot: slot, Digest: digestOf("other")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrHashMismatch))

	content, err := os.ReadFile(slot)
	require.NoError(t, err)
	assert.Equal(t, "shipped", string(content))
	assert.Equal(t, 0, f.resolver.Fetches())
}

func TestResolve_InvalidDigest(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.Resolve(Request{
		Spec:   &types.SourceSpec{Kind: types.SourceText, Text: "x"},
		Slot:   f.paths.NamedSlot("x"),
		Digest: "zz",
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
}
