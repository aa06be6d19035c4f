// Package modules computes the import closure of a module.
package modules

import (
	"strings"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/types"
)

type mark int

const (
	unvisited mark = iota
	visiting
	visited
)

// Closure returns root and every module it transitively imports, each
// once, with every module placed after all of the modules it imports.
// Unknown imports and import cycles are CONFIGURATION errors.
func Closure(root string, registry types.Registry) ([]*types.Module, error) {
	w := &walker{
		registry: registry,
		marks:    make(map[string]mark),
	}
	if err := w.visit(root, ""); err != nil {
		return nil, err
	}
	return w.order, nil
}

type walker struct {
	registry types.Registry
	marks    map[string]mark
	stack    []string
	order    []*types.Module
}

func (w *walker) visit(name, importer string) error {
	switch w.marks[name] {
	case visited:
		return nil
	case visiting:
		return cycleError(append(w.cycleFrom(name), name))
	}

	module, err := w.registry.Module(name)
	if err != nil {
		if importer == "" {
			return err
		}
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			return errors.Newf(errors.ErrConfiguration, "module %q imports unknown module %q", importer, name).
				WithDetail("module", importer).
				WithDetail("import", name)
		}
		return errors.Wrapf(err, errors.ErrConfiguration, "module %q imports %q", importer, name).
			WithDetail("module", importer).
			WithDetail("import", name)
	}

	w.marks[name] = visiting
	w.stack = append(w.stack, name)

	for _, dep := range module.Imports {
		if err := w.visit(dep, name); err != nil {
			return err
		}
	}

	w.stack = w.stack[:len(w.stack)-1]
	w.marks[name] = visited
	w.order = append(w.order, module)
	return nil
}

// cycleFrom returns the part of the current DFS path starting at name
func (w *walker) cycleFrom(name string) []string {
	for i, n := range w.stack {
		if n == name {
			return append([]string(nil), w.stack[i:]...)
		}
	}
	return []string{name}
}

func cycleError(cycle []string) error {
	return errors.Newf(errors.ErrConfiguration, "import cycle: %s", strings.Join(cycle, " -> ")).
		WithDetail("cycle", cycle)
}

// Names returns the module names of a closure in order
func Names(closure []*types.Module) []string {
	names := make([]string, len(closure))
	for i, m := range closure {
		names[i] = m.Name
	}
	return names
}
