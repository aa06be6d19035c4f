package engine

import (
	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/logging"
	"github.com/arthur-debert/dotmod/pkg/matchers"
)

// UpdateOptions tunes Update
type UpdateOptions struct {
	// Refetch realizes every source again
	Refetch bool

	// Force is passed to the re-enable
	Force bool
}

// Update re-applies the current definition of every enabled module
// matching patterns, or of every enabled module when all is set. Each
// module is disabled and then enabled again; a module that left the
// registry is only disabled.
func (e *Engine) Update(patterns []string, all bool, opts UpdateOptions) ([]ModuleResult, error) {
	defer logging.LogOperationStart(e.logger, "update")()
	e.beginOperation()

	var (
		m   *matchers.Matcher
		err error
	)
	if all {
		m, err = matchers.Permissive(patterns)
	} else {
		m, err = matchers.Strict(patterns)
	}
	if err != nil {
		return nil, err
	}
	enabled := e.state.Modules()

	var results []ModuleResult
	for _, name := range m.Filter(enabled) {
		results = append(results, e.updateModule(name, opts))
	}
	if !all {
		results = append(results, e.notEnabled(m.Unmatched(enabled))...)
	}
	return results, nil
}

func (e *Engine) updateModule(name string, opts UpdateOptions) ModuleResult {
	logger := e.logger.With().Str("module", name).Logger()

	_, err := e.registry.Module(name)
	removed := errors.IsErrorCode(err, errors.ErrNotFound)
	if err != nil && !removed {
		return ModuleResult{Module: name, Outcome: OutcomeFailed, Err: err}
	}

	// Reject definitions that cannot be enabled while the old version is
	// still in place.
	if !removed {
		if _, _, err := e.prepare(name, opts.Force, true); err != nil {
			logger.Warn().Err(err).Msg("new definition rejected, keeping current state")
			return ModuleResult{Module: name, Outcome: OutcomeFailed, Err: err}
		}
	}

	result := e.disableModule(name, DisableOptions{})
	if result.Outcome == OutcomePartial {
		logger.Warn().Msg("residue left after disable, not re-enabling")
		return result
	}
	if removed {
		logger.Info().Msg("module no longer defined, disabled only")
		return result
	}

	enabled := e.enableModule(name, EnableOptions{Force: opts.Force, Refetch: opts.Refetch})
	enabled.Removed = result.Removed
	if enabled.Outcome == OutcomeEnabled {
		enabled.Outcome = OutcomeUpdated
	}
	return enabled
}
