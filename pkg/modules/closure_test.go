// Test Type: Unit Test
// Description: Tests for import closure ordering and error reporting

package modules

import (
	"testing"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/registry"
	"github.com/arthur-debert/dotmod/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog(t *testing.T, graph map[string][]string) *registry.Catalog {
	t.Helper()
	c := registry.NewCatalog()
	for name, imports := range graph {
		require.NoError(t, c.AddModule(&types.Module{Name: name, Imports: imports}))
	}
	return c
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func TestClosure_DependenciesFirst(t *testing.T) {
	c := catalog(t, map[string][]string{
		"desktop": {"shell", "editor"},
		"shell":   {"base"},
		"editor":  {"base"},
		"base":    nil,
	})

	closure, err := Closure("desktop", c)
	require.NoError(t, err)

	names := Names(closure)
	assert.Equal(t, []string{"base", "shell", "editor", "desktop"}, names)

	// every module appears after what it imports
	for _, m := range closure {
		for _, dep := range m.Imports {
			assert.Less(t, indexOf(names, dep), indexOf(names, m.Name))
		}
	}
}

func TestClosure_SingleModule(t *testing.T) {
	c := catalog(t, map[string][]string{"git": nil})

	closure, err := Closure("git", c)
	require.NoError(t, err)
	assert.Equal(t, []string{"git"}, Names(closure))
}

func TestClosure_UnknownImport(t *testing.T) {
	c := catalog(t, map[string][]string{"a": {"ghost"}})

	_, err := Closure("a", c)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
	assert.Equal(t, "a", errors.GetErrorDetails(err)["module"])
	assert.Equal(t, "ghost", errors.GetErrorDetails(err)["import"])
}

func TestClosure_UnknownRoot(t *testing.T) {
	c := catalog(t, nil)

	_, err := Closure("nope", c)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestClosure_CycleRejected(t *testing.T) {
	c := catalog(t, map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	})

	_, err := Closure("a", c)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
	assert.Equal(t, []string{"a", "b", "c", "a"}, errors.GetErrorDetails(err)["cycle"])
}

func TestClosure_SelfImport(t *testing.T) {
	c := catalog(t, map[string][]string{"a": {"a"}})

	_, err := Closure("a", c)
	require.Error(t, err)
	assert.Equal(t, []string{"a", "a"}, errors.GetErrorDetails(err)["cycle"])
}
