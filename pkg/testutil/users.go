package testutil

import (
	"os"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/users"
)

// FakeUsers is an in-memory users.Resolver. The current user carries the
// real process ids so entries created by tests need no chown.
type FakeUsers struct {
	current *users.User
	users   map[string]*users.User
	groups  map[string]int
}

var _ users.Resolver = (*FakeUsers)(nil)

// NewFakeUsers creates a resolver whose current user "me" lives in home
func NewFakeUsers(home string) *FakeUsers {
	me := &users.User{Name: "me", UID: os.Getuid(), GID: os.Getgid(), HomeDir: home}
	return &FakeUsers{
		current: me,
		users:   map[string]*users.User{"me": me},
		groups:  map[string]int{"me": me.GID},
	}
}

// AddUser registers another account
func (f *FakeUsers) AddUser(u *users.User) {
	f.users[u.Name] = u
}

// AddGroup registers a group
func (f *FakeUsers) AddGroup(name string, gid int) {
	f.groups[name] = gid
}

func (f *FakeUsers) Current() (*users.User, error) {
	return f.current, nil
}

func (f *FakeUsers) Lookup(name string) (*users.User, error) {
	if u, ok := f.users[name]; ok {
		return u, nil
	}
	return nil, errors.Newf(errors.ErrUserResolution, "unknown user %q", name).WithDetail("user", name)
}

func (f *FakeUsers) LookupGroup(name string) (int, error) {
	if gid, ok := f.groups[name]; ok {
		return gid, nil
	}
	return 0, errors.Newf(errors.ErrUserResolution, "unknown group %q", name).WithDetail("group", name)
}
