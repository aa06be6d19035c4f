package engine

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/filesystem"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
	"github.com/arthur-debert/dotmod/pkg/logging"
	"github.com/arthur-debert/dotmod/pkg/matchers"
	"github.com/arthur-debert/dotmod/pkg/modules"
	"github.com/arthur-debert/dotmod/pkg/planner"
	"github.com/arthur-debert/dotmod/pkg/sources"
	"github.com/arthur-debert/dotmod/pkg/types"
)

// EnableOptions tunes Enable
type EnableOptions struct {
	// Force replaces existing unowned files and symlinks at planned paths.
	// Directories are never replaced.
	Force bool

	// Refetch realizes every source again even when its slot is current
	Refetch bool
}

// Enable enables every registry module matching patterns. Only an
// invalid pattern fails the whole call; everything else is reported per
// module.
func (e *Engine) Enable(patterns []string, opts EnableOptions) ([]ModuleResult, error) {
	defer logging.LogOperationStart(e.logger, "enable")()
	e.beginOperation()

	m, err := matchers.Strict(patterns)
	if err != nil {
		return nil, err
	}
	names := e.registry.Modules()

	var results []ModuleResult
	for _, name := range m.Filter(names) {
		results = append(results, e.enableModule(name, opts))
	}
	for _, missing := range m.Unmatched(names) {
		results = append(results, unknownModule(missing))
	}
	return results, nil
}

func unknownModule(name string) ModuleResult {
	return ModuleResult{
		Module:  name,
		Outcome: OutcomeFailed,
		Err: errors.Newf(errors.ErrNotFound, "unknown module %q", name).
			WithDetail("module", name),
	}
}

// enableModule runs NotEnabled -> Planning -> Creating -> Enabled, rolling
// back to NotEnabled when creation fails
func (e *Engine) enableModule(name string, opts EnableOptions) ModuleResult {
	logger := e.logger.With().Str("module", name).Logger()
	result := ModuleResult{Module: name}

	if e.state.IsEnabled(name) {
		logger.Debug().Msg("module already enabled")
		result.Outcome = OutcomeAlreadyEnabled
		return result
	}

	links, owners, err := e.prepare(name, opts.Force, false)
	if err != nil {
		logger.Warn().Err(err).Msg("enable rejected before touching the filesystem")
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	e.state.Track(name)
	for _, link := range links {
		err := e.createLink(name, link, owners[link.Module], opts, &result.Created)
		if err == nil {
			continue
		}

		logger.Error().Err(err).Str("path", link.Path).Msg("enable failed, rolling back")
		_, result.Warnings = e.removeEntries(name, e.entriesAt(name, result.Created), false)
		e.state.Untrack(name)
		result.Created = nil
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	logger.Info().Int("paths", len(result.Created)).Msg("module enabled")
	result.Outcome = OutcomeEnabled
	return result
}

// prepare computes the plan of name and checks it against the state and
// the filesystem. Nothing is modified. When replacing is set, paths
// already owned by name itself are not conflicts; every other path still
// has to be free.
func (e *Engine) prepare(name string, force, replacing bool) ([]planner.Link, map[string]ownership, error) {
	closure, err := modules.Closure(name, e.registry)
	if err != nil {
		return nil, nil, err
	}
	links, err := e.planner.Plan(closure)
	if err != nil {
		return nil, nil, err
	}

	for _, link := range links {
		if owner, ok := e.state.Owner(link.Path); ok {
			if replacing && owner == name {
				continue
			}
			return nil, nil, errors.Newf(errors.ErrPathConflict, "%s is already owned by module %q", link.Path, owner).
				WithDetail("path", link.Path).
				WithDetail("owner", owner).
				WithDetail("module", name)
		}
		info, err := e.fs.Lstat(link.Path)
		if err != nil {
			continue
		}
		if info.IsDir() || !force {
			return nil, nil, errors.Newf(errors.ErrPathExists, "%s already exists and is not owned by any module", link.Path).
				WithDetail("path", link.Path).
				WithDetail("module", name)
		}
	}

	owners := make(map[string]ownership)
	for _, module := range closure {
		own, err := e.resolveOwnership(module.User, module.Group)
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrUserResolution, "module %q", module.Name).
				WithDetail("module", module.Name)
		}
		owners[module.Name] = own
	}
	return links, owners, nil
}

// createLink materializes one link, recording every entry it creates
// under module
func (e *Engine) createLink(module string, link planner.Link, own ownership, opts EnableOptions, created *[]string) error {
	slot, err := e.resolveSource(link, opts.Refetch)
	if err != nil {
		return err
	}

	if err := e.createParents(module, filepath.Dir(link.Path), own, created); err != nil {
		return err
	}

	if opts.Force {
		if err := e.clearUnowned(link.Path); err != nil {
			return err
		}
	}

	record := func(path string, mode fs.FileMode) error {
		kind := fingerprint.KindForMode(mode, link.Kind == types.LinkHardLink)
		info, err := fingerprint.Derive(e.fs, path, kind)
		if err != nil {
			_ = e.fs.Remove(path)
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to fingerprint %s", path).
				WithDetail("path", path)
		}
		if err := e.state.Record(module, path, info); err != nil {
			_ = e.fs.Remove(path)
			return err
		}
		*created = append(*created, path)
		return e.chown(path, own)
	}

	switch link.Kind {
	case types.LinkSymlink:
		if err := e.fs.Symlink(slot, link.Path); err != nil {
			return createFailure(err, link.Path)
		}
		return record(link.Path, fs.ModeSymlink)

	case types.LinkFile, types.LinkHardLink:
		err := filesystem.Copy(e.fs, slot, link.Path, filesystem.CopyOptions{
			HardLink: link.Kind == types.LinkHardLink,
			OnCreate: record,
		})
		if err != nil {
			return createFailure(err, link.Path)
		}
		return nil

	default:
		return errors.Newf(errors.ErrConfiguration, "unknown link kind %s", link.Kind).
			WithDetail("path", link.Path)
	}
}

func createFailure(err error, path string) error {
	var dotmodErr *errors.DotmodError
	if stderrors.As(err, &dotmodErr) {
		return err
	}
	return errors.Wrapf(err, errors.ErrFilesystem, "failed to create %s", path).
		WithDetail("path", path)
}

// resolveSource returns the populated slot backing a link
func (e *Engine) resolveSource(link planner.Link, refetch bool) (string, error) {
	req, err := e.sourceRequest(link)
	if err != nil {
		return "", err
	}
	req.Force = refetch && !e.refreshed[req.Slot]

	slot, err := e.resolver.Resolve(req)
	if err != nil {
		return "", err
	}
	e.refreshed[req.Slot] = true
	return slot, nil
}

func (e *Engine) sourceRequest(link planner.Link) (sources.Request, error) {
	if !link.Source.Named() {
		return sources.Request{
			Spec:   link.Source.Spec,
			Slot:   e.paths.AnonymousSlot(link.Module, link.Path),
			Digest: link.Source.Spec.Digest,
		}, nil
	}

	name := link.Source.Name
	slot := e.paths.NamedSlot(name)
	named, err := e.registry.Source(name)
	if err != nil {
		if !errors.IsErrorCode(err, errors.ErrNotFound) {
			return sources.Request{}, err
		}
		// An undeclared name is a static source if its slot was
		// provisioned by hand.
		if _, statErr := e.fs.Lstat(slot); statErr != nil {
			return sources.Request{}, errors.Newf(errors.ErrConfiguration, "module %q uses unknown source %q", link.Module, name).
				WithDetail("module", link.Module).
				WithDetail("source", name)
		}
		return sources.Request{Slot: slot}, nil
	}
	return sources.Request{Spec: named.Spec, Slot: slot, Digest: named.ExpectedDigest()}, nil
}

// createParents creates the missing ancestors of dir top-down, recording
// each one as owned by module
func (e *Engine) createParents(module, dir string, own ownership, created *[]string) error {
	var missing []string
	for current := dir; ; current = filepath.Dir(current) {
		info, err := e.fs.Lstat(current)
		if err == nil {
			if !info.IsDir() {
				return errors.Newf(errors.ErrFilesystem, "%s is not a directory", current).
					WithDetail("path", current)
			}
			break
		}
		if !stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to inspect %s", current).
				WithDetail("path", current)
		}
		missing = append(missing, current)
		if parent := filepath.Dir(current); parent == current {
			break
		}
	}

	for i := len(missing) - 1; i >= 0; i-- {
		path := missing[i]
		if err := e.fs.Mkdir(path, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to create directory %s", path).
				WithDetail("path", path)
		}
		if err := e.state.Record(module, path, fingerprint.PathInfo{Kind: fingerprint.KindDirectory}); err != nil {
			_ = e.fs.Remove(path)
			return err
		}
		*created = append(*created, path)
		if err := e.chown(path, own); err != nil {
			return err
		}
	}
	return nil
}

// clearUnowned removes an unowned non-directory entry at path. Pre-flight
// already refused directories and owned paths; this guards against
// entries created earlier in the same enable.
func (e *Engine) clearUnowned(path string) error {
	info, err := e.fs.Lstat(path)
	if err != nil {
		return nil
	}
	if owner, ok := e.state.Owner(path); ok {
		return errors.Newf(errors.ErrPathConflict, "%s is already owned by module %q", path, owner).
			WithDetail("path", path).
			WithDetail("owner", owner)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrPathExists, "%s is an existing directory", path).
			WithDetail("path", path)
	}
	e.logger.Info().Str("path", path).Msg("replacing existing entry")
	if err := e.fs.Remove(path); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to replace %s", path).
			WithDetail("path", path)
	}
	return nil
}

// entriesAt returns module's recorded entries whose path is in paths, in
// creation order
func (e *Engine) entriesAt(module string, paths []string) []stateEntry {
	wanted := make(map[string]bool, len(paths))
	for _, p := range paths {
		wanted[p] = true
	}
	var entries []stateEntry
	for _, entry := range e.state.Entries(module) {
		if wanted[entry.Path] {
			entries = append(entries, entry)
		}
	}
	return entries
}
