package engine

import (
	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotmod/pkg/logging"
	"github.com/arthur-debert/dotmod/pkg/paths"
	"github.com/arthur-debert/dotmod/pkg/planner"
	"github.com/arthur-debert/dotmod/pkg/sources"
	"github.com/arthur-debert/dotmod/pkg/state"
	"github.com/arthur-debert/dotmod/pkg/types"
	"github.com/arthur-debert/dotmod/pkg/users"
)

// Context carries every collaborator the engine needs. It is built once
// at startup and passed explicitly; nothing is read from globals.
type Context struct {
	FS       types.FS
	Paths    paths.Paths
	Users    users.Resolver
	Fetcher  sources.Fetcher
	Registry types.Registry

	// Logger defaults to the "engine" component logger
	Logger *zerolog.Logger
}

// Engine enables, disables and updates modules against one state
type Engine struct {
	fs       types.FS
	paths    paths.Paths
	users    users.Resolver
	registry types.Registry
	logger   zerolog.Logger

	state    *state.State
	planner  *planner.Planner
	resolver *sources.Resolver

	current *users.User

	// refreshed holds the slots already refetched during the current
	// operation so a source shared by several links is fetched once
	refreshed map[string]bool
}

// New creates an engine and loads the state file
func New(ctx Context) *Engine {
	logger := logging.GetLogger("engine")
	if ctx.Logger != nil {
		logger = *ctx.Logger
	}
	expander := paths.NewExpander(ctx.Users)

	return &Engine{
		fs:        ctx.FS,
		paths:     ctx.Paths,
		users:     ctx.Users,
		registry:  ctx.Registry,
		logger:    logger,
		state:     state.Load(ctx.FS, ctx.Paths.StateFile()),
		planner:   planner.New(expander),
		resolver:  sources.NewResolver(ctx.FS, ctx.Paths, expander, ctx.Fetcher),
		refreshed: make(map[string]bool),
	}
}

// State exposes the in-memory ownership state
func (e *Engine) State() *state.State {
	return e.state
}

// Resolver exposes the source resolver
func (e *Engine) Resolver() *sources.Resolver {
	return e.resolver
}

// Commit persists the state atomically
func (e *Engine) Commit() error {
	file := e.paths.StateFile()
	if err := e.state.Save(e.fs, file); err != nil {
		return err
	}
	e.logger.Debug().Str("file", file).Int("modules", len(e.state.Modules())).Msg("state saved")
	return nil
}

// beginOperation resets per-operation bookkeeping
func (e *Engine) beginOperation() {
	e.refreshed = make(map[string]bool)
}
