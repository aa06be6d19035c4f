// Package users resolves user and group names against the system user
// database. It backs ~user path expansion and ownership changes.
package users

import (
	"os"
	"os/user"
	"strconv"

	"github.com/arthur-debert/dotmod/pkg/errors"
)

// User is a resolved account
type User struct {
	Name    string
	UID     int
	GID     int
	HomeDir string
}

// Resolver looks up users and groups
type Resolver interface {
	// Current returns the identity of this process. Its HomeDir honors $HOME.
	Current() (*User, error)

	// Lookup resolves a user name
	Lookup(name string) (*User, error)

	// LookupGroup resolves a group name to its gid
	LookupGroup(name string) (int, error)
}

type systemResolver struct{}

// NewSystem returns a Resolver backed by the system user database
func NewSystem() Resolver {
	return systemResolver{}
}

func (systemResolver) Current() (*User, error) {
	current := &User{UID: os.Getuid(), GID: os.Getgid()}

	if u, err := user.Current(); err == nil {
		current.Name = u.Username
		current.HomeDir = u.HomeDir
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		current.HomeDir = home
	}
	if current.HomeDir == "" {
		return nil, errors.New(errors.ErrUserResolution,
			"unable to determine home directory: neither the user database nor HOME provide one")
	}
	return current, nil
}

func (systemResolver) Lookup(name string) (*User, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUserResolution, "unknown user %q", name).
			WithDetail("user", name)
	}
	return fromOSUser(u)
}

func (systemResolver) LookupGroup(name string) (int, error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrUserResolution, "unknown group %q", name).
			WithDetail("group", name)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrUserResolution, "group %q has non-numeric gid %q", name, g.Gid)
	}
	return gid, nil
}

func fromOSUser(u *user.User) (*User, error) {
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUserResolution, "user %q has non-numeric uid %q", u.Username, u.Uid)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUserResolution, "user %q has non-numeric gid %q", u.Username, u.Gid)
	}
	return &User{Name: u.Username, UID: uid, GID: gid, HomeDir: u.HomeDir}, nil
}
