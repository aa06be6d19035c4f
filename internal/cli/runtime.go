package cli

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotmod/pkg/config"
	"github.com/arthur-debert/dotmod/pkg/engine"
	"github.com/arthur-debert/dotmod/pkg/filesystem"
	"github.com/arthur-debert/dotmod/pkg/logging"
	"github.com/arthur-debert/dotmod/pkg/output"
	"github.com/arthur-debert/dotmod/pkg/paths"
	"github.com/arthur-debert/dotmod/pkg/sources"
	"github.com/arthur-debert/dotmod/pkg/users"
)

var (
	errModulesFailed  = stderrors.New("one or more modules failed")
	errDigestMismatch = stderrors.New("one or more sources do not match their digest")
)

// runtime holds the global flags and, once setup has run, the collaborators
// shared by every command
type runtime struct {
	verbosity int
	noColor   bool
	format    string

	paths    paths.Paths
	config   *config.Config
	engine   *engine.Engine
	renderer *output.Renderer
}

// setup loads configuration and builds the engine and renderer
func (rt *runtime) setup(cmd *cobra.Command) error {
	format, err := output.ParseFormat(rt.format)
	if err != nil {
		return err
	}

	p, err := paths.New()
	if err != nil {
		return fmt.Errorf("failed to initialize paths: %w", err)
	}
	rt.paths = p

	cfg, err := config.Load(p, nil)
	if err != nil {
		return err
	}
	rt.config = cfg

	if cfg.Log.File {
		logging.SetupLoggerTo(cmd.ErrOrStderr(), rt.verbosity, p.LogFilePath())
	}

	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return err
	}

	rt.engine = engine.New(engine.Context{
		FS:       filesystem.NewOS(),
		Paths:    p,
		Users:    users.NewSystem(),
		Fetcher:  sources.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent),
		Registry: catalog,
	})

	rt.renderer, err = output.NewRenderer(cmd.OutOrStdout(), format, rt.noColor)
	return err
}

// finish renders the results of a mutating command and commits the state.
// The state is committed even when some modules failed so the ones that
// succeeded are recorded.
func (rt *runtime) finish(results []engine.ModuleResult, opErr error) error {
	if opErr != nil {
		return opErr
	}
	if err := rt.renderer.RenderResults(results); err != nil {
		return err
	}
	if err := rt.engine.Commit(); err != nil {
		return err
	}
	if engine.Failed(results) {
		return errModulesFailed
	}
	return nil
}
