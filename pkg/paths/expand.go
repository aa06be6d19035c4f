package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/users"
)

// Expander turns declared paths into absolute ones
type Expander struct {
	users users.Resolver
}

// NewExpander creates an Expander resolving ~user through resolver
func NewExpander(resolver users.Resolver) *Expander {
	return &Expander{users: resolver}
}

// Expand resolves ~ and ~user prefixes; any other relative path is taken
// relative to the current user's home. The result is cleaned.
func (e *Expander) Expand(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	if strings.HasPrefix(path, "~") {
		name, rest, _ := strings.Cut(path[1:], "/")
		home, err := e.home(name)
		if err != nil {
			return "", err
		}
		return filepath.Join(home, rest), nil
	}

	home, err := e.home("")
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path), nil
}

// home returns the home directory of the named user, or of the current
// user when name is empty
func (e *Expander) home(name string) (string, error) {
	var (
		u   *users.User
		err error
	)
	if name == "" {
		u, err = e.users.Current()
	} else {
		u, err = e.users.Lookup(name)
	}
	if err != nil {
		return "", err
	}
	if u.HomeDir == "" {
		return "", errors.Newf(errors.ErrUserResolution, "user %q has no home directory", u.Name).
			WithDetail("user", u.Name)
	}
	return u.HomeDir, nil
}
