// Test Type: Integration Test
// Dependencies: real filesystem (t.TempDir), pkg/testutil
// Purpose: Tests the read-only list, owned and hash operations

package engine_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotmod/pkg/engine"
	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
	"github.com/arthur-debert/dotmod/pkg/registry"
	"github.com/arthur-debert/dotmod/pkg/testutil"
	"github.com/arthur-debert/dotmod/pkg/types"
)

func TestList(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.AddModule(&types.Module{Name: "base", Links: []types.LinkSpec{link(".profile", text("p"))}})
	env.AddModule(&types.Module{Name: "shell", Imports: []string{"base"}})
	require.NoError(t, env.Registry.AddInvalidModule("broken", stderrors.New("bad link kind")))

	e := env.Engine()
	single(t)(e.Enable([]string{"base"}, engine.EnableOptions{}))
	require.NoError(t, e.Commit())

	// a module that left the registry is still listed while enabled
	env.Registry = registry.NewCatalog()
	env.AddModule(&types.Module{Name: "shell"})
	statuses := env.Engine().List()

	require.Len(t, statuses, 2)
	assert.Equal(t, engine.ModuleStatus{Name: "base", Enabled: true, Owned: 1}, statuses[0])
	assert.Equal(t, "shell", statuses[1].Name)
	assert.True(t, statuses[1].InRegistry)
	assert.False(t, statuses[1].Enabled)

	statuses = e.List()
	require.Len(t, statuses, 3)
	assert.Equal(t, "base", statuses[0].Name)
	assert.Equal(t, "broken", statuses[1].Name)
	assert.True(t, errors.IsErrorCode(statuses[1].Err, errors.ErrConfiguration))
	assert.Equal(t, []string{"base"}, statuses[2].Imports)
}

func TestOwnedPaths(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.AddModule(&types.Module{Name: "a", Links: []types.LinkSpec{link("d/x", text("x"))}})
	env.AddModule(&types.Module{Name: "b", Links: []types.LinkSpec{link(".y", text("y"))}})

	e := env.Engine()
	_, err := e.Enable([]string{"a", "b"}, engine.EnableOptions{})
	require.NoError(t, err)
	env.WriteFile(env.Home("d", "x"), "drift")

	owned, err := e.OwnedPaths(nil)
	require.NoError(t, err)
	require.Len(t, owned, 3)
	assert.Equal(t, env.Home("d"), owned[0].Path)
	assert.Equal(t, fingerprint.Owned, owned[0].Status)
	assert.Equal(t, env.Home("d", "x"), owned[1].Path)
	assert.Equal(t, fingerprint.Changed, owned[1].Status)
	assert.Equal(t, "b", owned[2].Module)

	owned, err = e.OwnedPaths([]string{"b"})
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestHash_ReportsMismatchWithoutTouchingSlot(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	slot := env.Paths.NamedSlot("S")
	env.WriteFile(slot, "tampered")
	env.AddSource(&types.NamedSource{Name: "S", Digest: fingerprint.Sum([]byte("original")).String()})

	results, err := env.Engine().Hash(nil, engine.HashOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, engine.DigestMismatch, r.Status)
	assert.True(t, errors.IsErrorCode(r.Err, errors.ErrHashMismatch))
	assert.Equal(t, fingerprint.Sum([]byte("tampered")).String(), r.Digest)
	assert.Equal(t, "tampered", env.ReadFile(slot))
}

func TestHash_Statuses(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteFile(env.Paths.NamedSlot("good"), "g")
	env.WriteFile(env.Paths.NamedSlot("loose"), "l")
	env.AddSource(&types.NamedSource{Name: "good", Digest: fingerprint.Sum([]byte("g")).String()})
	env.AddSource(&types.NamedSource{Name: "absent", Spec: &types.SourceSpec{Kind: types.SourceText, Text: "a"}})

	e := env.Engine()
	results, err := e.Hash(nil, engine.HashOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byName := map[string]engine.SourceDigest{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.Equal(t, engine.DigestMissing, byName["absent"].Status)
	assert.Equal(t, engine.DigestMatch, byName["good"].Status)
	assert.Equal(t, engine.DigestUnverified, byName["loose"].Status)

	results, err = e.Hash([]string{"abs*"}, engine.HashOptions{Fetch: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, engine.DigestUnverified, results[0].Status)
	assert.Equal(t, "a", env.ReadFile(env.Paths.NamedSlot("absent")))
}
