package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/registry"
	"github.com/arthur-debert/dotmod/pkg/types"
)

// BuildCatalog converts the decoded definitions into a registry. Malformed
// modules are registered as invalid and fail only when requested; a
// malformed named source fails the whole build.
func (c *Config) BuildCatalog() (*registry.Catalog, error) {
	catalog := registry.NewCatalog()

	for _, name := range sortedKeys(c.Sources) {
		source, err := c.Sources[name].toNamedSource(name)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfiguration, "source %q is malformed", name).
				WithDetail("source", name)
		}
		if err := catalog.AddSource(source); err != nil {
			return nil, err
		}
	}

	for _, name := range sortedKeys(c.Modules) {
		module, err := c.Modules[name].toModule(name)
		if err != nil {
			err = catalog.AddInvalidModule(name, err)
		} else {
			err = catalog.AddModule(module)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(c.Invalid) {
		if err := catalog.AddInvalidModule(name, c.Invalid[name]); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func (s SourceConfig) toNamedSource(name string) (*types.NamedSource, error) {
	spec, err := inlineSpec(s.Text, s.File, s.Symlink, s.URL)
	if err != nil {
		return nil, err
	}
	return &types.NamedSource{Name: name, Spec: spec, Digest: s.Digest}, nil
}

func (m ModuleConfig) toModule(name string) (*types.Module, error) {
	if strings.ContainsAny(name, "/.") {
		return nil, fmt.Errorf("module names may not contain '.' or '/'")
	}
	module := &types.Module{
		Name:    name,
		Imports: append([]string(nil), m.Imports...),
		User:    m.User,
		Group:   m.Group,
	}
	for i, l := range m.Links {
		spec, err := l.toLinkSpec()
		if err != nil {
			return nil, fmt.Errorf("links[%d]: %w", i, err)
		}
		module.Links = append(module.Links, spec)
	}
	return module, nil
}

func (l LinkConfig) toLinkSpec() (types.LinkSpec, error) {
	if l.Path == "" {
		return types.LinkSpec{}, fmt.Errorf("missing path")
	}

	kind := types.LinkFile
	if l.Kind != "" {
		parsed, err := types.ParseLinkKind(l.Kind)
		if err != nil {
			return types.LinkSpec{}, err
		}
		kind = parsed
	}

	spec, err := inlineSpec(l.Text, l.File, l.Symlink, l.URL)
	if err != nil {
		return types.LinkSpec{}, err
	}

	link := types.LinkSpec{Path: l.Path, Kind: kind}
	switch {
	case l.Source != "" && spec != nil:
		return types.LinkSpec{}, fmt.Errorf("%s: source and an inline definition are mutually exclusive", l.Path)
	case l.Source != "":
		if l.Digest != "" {
			return types.LinkSpec{}, fmt.Errorf("%s: digest belongs on the named source %q", l.Path, l.Source)
		}
		link.Source = types.SourceRef{Name: l.Source}
	case spec != nil:
		spec.Digest = l.Digest
		link.Source = types.SourceRef{Spec: spec}
	default:
		return types.LinkSpec{}, fmt.Errorf("%s: one of source, text, file, symlink or url is required", l.Path)
	}
	return link, nil
}

// inlineSpec builds a SourceSpec from the one populated field, or nil
// when none is set
func inlineSpec(text, file, symlink, url string) (*types.SourceSpec, error) {
	var specs []*types.SourceSpec
	if text != "" {
		specs = append(specs, &types.SourceSpec{Kind: types.SourceText, Text: text})
	}
	if file != "" {
		specs = append(specs, &types.SourceSpec{Kind: types.SourcePath, Path: file})
	}
	if symlink != "" {
		specs = append(specs, &types.SourceSpec{Kind: types.SourceSymlink, Target: symlink})
	}
	if url != "" {
		specs = append(specs, &types.SourceSpec{Kind: types.SourceURL, URL: url})
	}
	switch len(specs) {
	case 0:
		return nil, nil
	case 1:
		return specs[0], nil
	default:
		return nil, fmt.Errorf("text, file, symlink and url are mutually exclusive")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
