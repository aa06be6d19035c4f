package registry

import (
	"sort"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/types"
)

// Catalog is the in-memory types.Registry. Modules whose definition could
// not be parsed are kept as errors so they surface only when requested.
type Catalog struct {
	modules *Table[*types.Module]
	sources *Table[*types.NamedSource]
	invalid *Table[error]
}

var _ types.Registry = (*Catalog)(nil)

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		modules: NewTable[*types.Module]("module"),
		sources: NewTable[*types.NamedSource]("source"),
		invalid: NewTable[error]("module"),
	}
}

// AddModule registers a module definition
func (c *Catalog) AddModule(m *types.Module) error {
	if c.invalid.Has(m.Name) {
		return errors.Newf(errors.ErrAlreadyExists, "module %q is already defined", m.Name).
			WithDetail("module", m.Name)
	}
	return c.modules.Add(m.Name, m)
}

// AddInvalidModule records a module whose definition is malformed. The
// cause is returned, wrapped as CONFIGURATION, whenever it is requested.
func (c *Catalog) AddInvalidModule(name string, cause error) error {
	if c.modules.Has(name) {
		return errors.Newf(errors.ErrAlreadyExists, "module %q is already defined", name).
			WithDetail("module", name)
	}
	return c.invalid.Add(name, cause)
}

// AddSource registers a named source
func (c *Catalog) AddSource(s *types.NamedSource) error {
	return c.sources.Add(s.Name, s)
}

func (c *Catalog) Module(name string) (*types.Module, error) {
	if cause, err := c.invalid.Get(name); err == nil {
		return nil, errors.Wrapf(cause, errors.ErrConfiguration, "module %q is malformed", name).
			WithDetail("module", name)
	}
	return c.modules.Get(name)
}

// Modules includes malformed modules so they can be listed and selected
func (c *Catalog) Modules() []string {
	names := append(c.modules.Names(), c.invalid.Names()...)
	sort.Strings(names)
	return names
}

func (c *Catalog) Source(name string) (*types.NamedSource, error) {
	return c.sources.Get(name)
}

func (c *Catalog) Sources() []string {
	return c.sources.Names()
}
