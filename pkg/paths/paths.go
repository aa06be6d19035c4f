// Package paths provides centralized path handling for dotmod.
// It implements XDG Base Directory specification compliance and
// derives every cache, slot and state location from three roots.
package paths

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for dotmod
	EnvConfigDir = "DOTMOD_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for dotmod
	EnvCacheDir = "DOTMOD_CACHE_DIR"

	// EnvStateDir overrides the XDG state directory for dotmod
	EnvStateDir = "DOTMOD_STATE_DIR"
)

// Fixed layout below the three roots. These are not user-configurable.
const (
	// AppDirName is the directory created under each XDG root
	AppDirName = "dotmod"

	// ConfigFileName is the main configuration file in the config dir
	ConfigFileName = "dotmod.toml"

	// ModulesDirName holds one registry fragment per file
	ModulesDirName = "modules.d"

	// SourcesDirName holds named source slots, under the config dir
	SourcesDirName = "sources"

	// AnonymousDirName holds anonymous source slots, under the cache dir
	AnonymousDirName = "anonymous"

	// MarkersDirName holds fetch success markers, under the cache dir
	MarkersDirName = "markers"

	// StateFileName is the ownership state file
	StateFileName = "state.toml"

	// LogFileName is the name of the log file
	LogFileName = "dotmod.log"
)

// Paths provides centralized path management for dotmod
type Paths interface {
	ConfigDir() string
	CacheDir() string
	StateDir() string
	ConfigFile() string
	ModulesDir() string
	StateFile() string
	LogFilePath() string
	NamedSourceDir() string
	AnonymousSourceDir() string
	MarkerDir() string
	NamedSlot(name string) string
	AnonymousSlot(module, path string) string
	MarkerPath(slot string) string
}

type paths struct {
	configDir string
	cacheDir  string
	stateDir  string
}

// New resolves the three roots from the environment overrides, falling
// back to the XDG base directories.
func New() (Paths, error) {
	p := &paths{
		configDir: dirFromEnv(EnvConfigDir, xdg.ConfigHome),
		cacheDir:  dirFromEnv(EnvCacheDir, xdg.CacheHome),
		stateDir:  dirFromEnv(EnvStateDir, xdg.StateHome),
	}

	for _, dir := range []*string{&p.configDir, &p.cacheDir, &p.stateDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to get absolute path for %s", *dir)
		}
		*dir = abs
	}
	return p, nil
}

// NewWithRoots builds Paths from explicit roots. Used by tests and by the
// --config-dir flag.
func NewWithRoots(configDir, cacheDir, stateDir string) Paths {
	return &paths{
		configDir: filepath.Clean(configDir),
		cacheDir:  filepath.Clean(cacheDir),
		stateDir:  filepath.Clean(stateDir),
	}
}

func dirFromEnv(env, xdgBase string) string {
	if dir := os.Getenv(env); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(xdgBase, AppDirName)
}

// expandHome expands a leading ~/ using $HOME. Used only for the
// environment overrides; link destinations go through Expander.
func expandHome(path string) string {
	if path == "~" || (len(path) > 1 && path[0] == '~' && path[1] == '/') {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func (p *paths) ConfigDir() string { return p.configDir }
func (p *paths) CacheDir() string  { return p.cacheDir }
func (p *paths) StateDir() string  { return p.stateDir }

// ConfigFile returns the main configuration file path
func (p *paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// ModulesDir returns the directory scanned for registry fragments
func (p *paths) ModulesDir() string {
	return filepath.Join(p.configDir, ModulesDirName)
}

func (p *paths) StateFile() string {
	return filepath.Join(p.stateDir, StateFileName)
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

func (p *paths) NamedSourceDir() string {
	return filepath.Join(p.configDir, SourcesDirName)
}

func (p *paths) AnonymousSourceDir() string {
	return filepath.Join(p.cacheDir, AnonymousDirName)
}

func (p *paths) MarkerDir() string {
	return filepath.Join(p.cacheDir, MarkersDirName)
}

// NamedSlot is stable across definition changes: it is keyed by name only
func (p *paths) NamedSlot(name string) string {
	return filepath.Join(p.NamedSourceDir(), name)
}

// AnonymousSlot is keyed by the declaring module and the absolute
// destination path of the link
func (p *paths) AnonymousSlot(module, path string) string {
	key := fingerprint.Key(module, path)
	return filepath.Join(p.AnonymousSourceDir(), hex.EncodeToString(key[:]))
}

// MarkerPath returns the success marker location for a slot
func (p *paths) MarkerPath(slot string) string {
	key := fingerprint.Key(slot)
	return filepath.Join(p.MarkerDir(), hex.EncodeToString(key[:])+".cbor")
}
