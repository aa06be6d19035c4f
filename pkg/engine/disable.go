package engine

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
	"github.com/arthur-debert/dotmod/pkg/logging"
	"github.com/arthur-debert/dotmod/pkg/matchers"
	"github.com/arthur-debert/dotmod/pkg/state"
)

type stateEntry = state.Entry

// DisableOptions tunes Disable
type DisableOptions struct {
	// Prune forgets recorded paths that no longer exist instead of
	// keeping them as residue
	Prune bool
}

// Disable disables every enabled module matching patterns
func (e *Engine) Disable(patterns []string, opts DisableOptions) ([]ModuleResult, error) {
	defer logging.LogOperationStart(e.logger, "disable")()
	e.beginOperation()

	m, err := matchers.Strict(patterns)
	if err != nil {
		return nil, err
	}
	enabled := e.state.Modules()

	var results []ModuleResult
	for _, name := range m.Filter(enabled) {
		results = append(results, e.disableModule(name, opts))
	}
	results = append(results, e.notEnabled(m.Unmatched(enabled))...)
	return results, nil
}

// notEnabled reports literal names that matched no enabled module
func (e *Engine) notEnabled(names []string) []ModuleResult {
	var results []ModuleResult
	for _, name := range names {
		if e.inRegistry(name) {
			results = append(results, ModuleResult{Module: name, Outcome: OutcomeNotEnabled})
			continue
		}
		results = append(results, unknownModule(name))
	}
	return results
}

func (e *Engine) inRegistry(name string) bool {
	for _, n := range e.registry.Modules() {
		if n == name {
			return true
		}
	}
	return false
}

func (e *Engine) disableModule(name string, opts DisableOptions) ModuleResult {
	logger := e.logger.With().Str("module", name).Logger()
	result := ModuleResult{Module: name}

	result.Removed, result.Warnings = e.removeEntries(name, e.state.Entries(name), opts.Prune)

	if e.state.Untrack(name) {
		logger.Info().Int("paths", len(result.Removed)).Msg("module disabled")
		result.Outcome = OutcomeDisabled
		return result
	}
	logger.Warn().Int("residue", len(e.state.Entries(name))).Msg("module partially disabled")
	result.Outcome = OutcomePartial
	return result
}

// removeEntries walks entries backwards, deleting and forgetting those
// whose live state still matches the recorded fingerprint. Everything
// else stays recorded and is returned as a warning. A directory is only
// removed when nothing retained lies beneath it and it is empty.
func (e *Engine) removeEntries(module string, entries []stateEntry, prune bool) ([]string, []Warning) {
	var (
		removed  []string
		warnings []Warning
		retained []string
	)
	keep := func(entry stateEntry, reason Reason, err error) {
		retained = append(retained, entry.Path)
		warnings = append(warnings, Warning{Path: entry.Path, Kind: entry.Info.Kind, Reason: reason, Err: err})
	}

	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		logger := e.logger.With().Str("module", module).Str("path", entry.Path).Logger()

		switch fingerprint.Check(e.fs, entry.Path, entry.Info) {
		case fingerprint.Missing:
			if prune {
				logger.Info().Msg("forgetting missing path")
				_ = e.state.Forget(module, entry.Path)
				continue
			}
			logger.Warn().Msg("recorded path is missing, keeping record")
			keep(entry, ReasonMissing, nil)
			continue

		case fingerprint.Changed:
			logger.Warn().Msg("path changed since it was created, leaving it in place")
			keep(entry, ReasonChanged, nil)
			continue
		}

		isDir := entry.Info.Kind == fingerprint.KindDirectory
		if isDir && holdsAny(entry.Path, retained) {
			logger.Warn().Msg("directory still holds retained entries")
			keep(entry, ReasonBlocked, nil)
			continue
		}

		if err := e.fs.Remove(entry.Path); err != nil {
			wrapped := errors.Wrapf(err, errors.ErrFilesystem, "failed to remove %s", entry.Path).
				WithDetail("path", entry.Path)
			if isDir {
				logger.Warn().Err(err).Msg("directory not removed")
				keep(entry, ReasonBlocked, wrapped)
			} else {
				logger.Error().Err(err).Msg("failed to remove path")
				keep(entry, ReasonFailed, wrapped)
			}
			continue
		}

		_ = e.state.Forget(module, entry.Path)
		removed = append(removed, entry.Path)
		logger.Debug().Msg("removed")
	}
	return removed, warnings
}

// holdsAny reports whether any of paths lies strictly beneath dir
func holdsAny(dir string, paths []string) bool {
	prefix := dir + string(filepath.Separator)
	if dir == string(filepath.Separator) {
		prefix = dir
	}
	for _, p := range paths {
		if p != dir && strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
