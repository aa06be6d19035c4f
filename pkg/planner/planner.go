// Package planner turns a module closure into the ordered list of links
// an enable would create. Planning never touches the filesystem.
package planner

import (
	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/paths"
	"github.com/arthur-debert/dotmod/pkg/types"
)

// Link is one planned destination. It is recomputed on every run and
// never persisted.
type Link struct {
	// Module is the module that declared the link
	Module string

	// Path is the absolute, cleaned destination
	Path   string
	Kind   types.LinkKind
	Source types.SourceRef

	// User and Group are the owner requested by the declaring module
	User  string
	Group string
}

// HasOwner reports whether the declaring module asked for a specific owner
func (l Link) HasOwner() bool {
	return l.User != "" || l.Group != ""
}

// Planner expands declared destinations
type Planner struct {
	expander *paths.Expander
}

// New creates a planner
func New(expander *paths.Expander) *Planner {
	return &Planner{expander: expander}
}

// Plan returns the links of every module in closure order, each module's
// links in declaration order. Two links with the same destination are a
// PATH_CONFLICT.
func (p *Planner) Plan(closure []*types.Module) ([]Link, error) {
	var links []Link
	seen := make(map[string]string)

	for _, module := range closure {
		for i, spec := range module.Links {
			dest, err := p.expander.Expand(spec.Path)
			if err != nil {
				return nil, errors.Wrapf(err, errors.GetErrorCode(err), "module %q link %d: expanding %q", module.Name, i, spec.Path).
					WithDetail("module", module.Name)
			}
			if !spec.Source.Named() && spec.Source.Spec == nil {
				return nil, errors.Newf(errors.ErrConfiguration, "module %q link %s has no source", module.Name, dest).
					WithDetail("module", module.Name).
					WithDetail("path", dest)
			}

			if other, exists := seen[dest]; exists {
				return nil, errors.Newf(errors.ErrPathConflict, "path %s is declared by both %q and %q", dest, other, module.Name).
					WithDetail("path", dest).
					WithDetail("module", module.Name).
					WithDetail("owner", other)
			}
			seen[dest] = module.Name

			links = append(links, Link{
				Module: module.Name,
				Path:   dest,
				Kind:   spec.Kind,
				Source: spec.Source,
				User:   module.User,
				Group:  module.Group,
			})
		}
	}
	return links, nil
}
