package engine

import (
	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/users"
)

// ownership is the chown to apply to created entries. -1 leaves an id
// unchanged, as with os.Lchown.
type ownership struct {
	uid, gid int
}

func (o ownership) needed() bool {
	return o.uid != -1 || o.gid != -1
}

var noChown = ownership{uid: -1, gid: -1}

func (e *Engine) currentUser() (*users.User, error) {
	if e.current == nil {
		u, err := e.users.Current()
		if err != nil {
			return nil, err
		}
		e.current = u
	}
	return e.current, nil
}

// resolveOwnership maps a module's User/Group to the ids that differ
// from the process identity
func (e *Engine) resolveOwnership(user, group string) (ownership, error) {
	if user == "" && group == "" {
		return noChown, nil
	}
	current, err := e.currentUser()
	if err != nil {
		return noChown, err
	}

	own := noChown
	if user != "" {
		u, err := e.users.Lookup(user)
		if err != nil {
			return noChown, err
		}
		if u.UID != current.UID {
			own.uid = u.UID
		}
		if group == "" && u.GID != current.GID {
			own.gid = u.GID
		}
	}
	if group != "" {
		gid, err := e.users.LookupGroup(group)
		if err != nil {
			return noChown, err
		}
		if gid != current.GID {
			own.gid = gid
		}
	}
	return own, nil
}

func (e *Engine) chown(path string, own ownership) error {
	if !own.needed() {
		return nil
	}
	if err := e.fs.Lchown(path, own.uid, own.gid); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to change owner of %s", path).
			WithDetail("path", path)
	}
	return nil
}
