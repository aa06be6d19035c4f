package engine

import (
	"sort"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
	"github.com/arthur-debert/dotmod/pkg/matchers"
	"github.com/arthur-debert/dotmod/pkg/sources"
)

// List returns every registry module and every module known only to the
// state, sorted by name
func (e *Engine) List() []ModuleStatus {
	names := unionSorted(e.registry.Modules(), e.state.Modules())
	defined := make(map[string]bool)
	for _, name := range e.registry.Modules() {
		defined[name] = true
	}

	statuses := make([]ModuleStatus, 0, len(names))
	for _, name := range names {
		status := ModuleStatus{
			Name:       name,
			Enabled:    e.state.IsEnabled(name),
			InRegistry: defined[name],
			Owned:      len(e.state.Entries(name)),
		}
		if status.InRegistry {
			module, err := e.registry.Module(name)
			if err != nil {
				status.Err = err
			} else {
				status.Imports = append([]string(nil), module.Imports...)
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// OwnedPaths returns every owned path of the enabled modules matching
// patterns (all when empty), by module and then creation order, with its
// live status
func (e *Engine) OwnedPaths(patterns []string) ([]OwnedPath, error) {
	m, err := matchers.Permissive(patterns)
	if err != nil {
		return nil, err
	}

	var owned []OwnedPath
	for _, module := range m.Filter(e.state.Modules()) {
		for _, entry := range e.state.Entries(module) {
			owned = append(owned, OwnedPath{
				Module: module,
				Path:   entry.Path,
				Info:   entry.Info,
				Status: fingerprint.Check(e.fs, entry.Path, entry.Info),
			})
		}
	}
	return owned, nil
}

// HashOptions tunes Hash
type HashOptions struct {
	// Fetch resolves each source first, refreshing stale slots
	Fetch bool
}

// Hash digests the slot of every named source matching patterns (all
// when empty) and compares it with the declared digest. Sources known
// only from their slot directory are included. Slots are never modified
// unless opts.Fetch is set.
func (e *Engine) Hash(patterns []string, opts HashOptions) ([]SourceDigest, error) {
	m, err := matchers.Permissive(patterns)
	if err != nil {
		return nil, err
	}
	e.beginOperation()

	var results []SourceDigest
	for _, name := range m.Filter(unionSorted(e.registry.Sources(), e.slotNames())) {
		results = append(results, e.hashSource(name, opts))
	}
	return results, nil
}

func (e *Engine) hashSource(name string, opts HashOptions) SourceDigest {
	result := SourceDigest{Name: name, Slot: e.paths.NamedSlot(name)}

	named, err := e.registry.Source(name)
	if err == nil {
		result.Expected = named.ExpectedDigest()
	}

	if opts.Fetch && named != nil && !named.Static() {
		_, err := e.resolver.Resolve(sources.Request{Spec: named.Spec, Slot: result.Slot, Digest: result.Expected})
		if err != nil && !errors.IsErrorCode(err, errors.ErrHashMismatch) {
			result.Err = err
		}
	}

	if _, err := e.fs.Lstat(result.Slot); err != nil {
		result.Status = DigestMissing
		return result
	}
	digest, err := fingerprint.Of(e.fs, result.Slot)
	if err != nil {
		result.Status = DigestMissing
		result.Err = errors.Wrapf(err, errors.ErrFilesystem, "failed to digest %s", result.Slot)
		return result
	}
	result.Digest = digest.String()

	if result.Expected == "" {
		result.Status = DigestUnverified
		return result
	}
	expected, err := fingerprint.ParseDigest(result.Expected)
	if err != nil {
		result.Status = DigestUnverified
		result.Err = errors.Wrapf(err, errors.ErrConfiguration, "source %q has an invalid digest", name)
		return result
	}
	if digest == expected {
		result.Status = DigestMatch
		return result
	}
	result.Status = DigestMismatch
	result.Err = errors.Newf(errors.ErrHashMismatch, "source %q does not match its declared digest", name).
		WithDetail("source", name).
		WithDetail("expected", expected.String()).
		WithDetail("actual", digest.String())
	return result
}

// slotNames lists the named source slots present on disk
func (e *Engine) slotNames() []string {
	entries, err := e.fs.ReadDir(e.paths.NamedSourceDir())
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}
