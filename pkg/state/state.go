package state

import (
	"sort"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
)

// Entry is one owned path with the fingerprint recorded at creation
type Entry struct {
	Path string
	Info fingerprint.PathInfo
}

type owner struct {
	module string
	info   fingerprint.PathInfo
}

// State maps each enabled module to the ordered log of paths it created,
// with a reverse index from path to owner. A path has at most one owner.
type State struct {
	modules map[string][]Entry
	owners  map[string]owner
}

// New returns an empty state
func New() *State {
	return &State{
		modules: make(map[string][]Entry),
		owners:  make(map[string]owner),
	}
}

// Owner returns the module owning path
func (s *State) Owner(path string) (string, bool) {
	o, ok := s.owners[path]
	return o.module, ok
}

// Lookup returns the owner and recorded fingerprint of path
func (s *State) Lookup(path string) (string, fingerprint.PathInfo, bool) {
	o, ok := s.owners[path]
	return o.module, o.info, ok
}

// Record appends path to module's log. Recording a path owned by any
// module, including module itself, is refused.
func (s *State) Record(module, path string, info fingerprint.PathInfo) error {
	if o, ok := s.owners[path]; ok {
		if o.module == module {
			return errors.Newf(errors.ErrAlreadyExists, "%s is already recorded for %q", path, module).
				WithDetail("path", path)
		}
		return errors.Newf(errors.ErrPathConflict, "%s is owned by %q", path, o.module).
			WithDetail("path", path).
			WithDetail("owner", o.module)
	}
	s.modules[module] = append(s.modules[module], Entry{Path: path, Info: info})
	s.owners[path] = owner{module: module, info: info}
	return nil
}

// Forget drops path from module's log and from the reverse index
func (s *State) Forget(module, path string) error {
	o, ok := s.owners[path]
	if !ok || o.module != module {
		return errors.Newf(errors.ErrNotFound, "%s is not owned by %q", path, module).
			WithDetail("path", path)
	}
	entries := s.modules[module]
	for i, e := range entries {
		if e.Path == path {
			s.modules[module] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	delete(s.owners, path)
	return nil
}

// Track marks module as enabled even while it owns nothing
func (s *State) Track(module string) {
	if _, ok := s.modules[module]; !ok {
		s.modules[module] = []Entry{}
	}
}

// Untrack removes module if it owns nothing. It reports whether the
// module is gone.
func (s *State) Untrack(module string) bool {
	if len(s.modules[module]) > 0 {
		return false
	}
	delete(s.modules, module)
	return true
}

// IsEnabled reports whether module is tracked
func (s *State) IsEnabled(module string) bool {
	_, ok := s.modules[module]
	return ok
}

// Entries returns a copy of module's log in creation order
func (s *State) Entries(module string) []Entry {
	return append([]Entry(nil), s.modules[module]...)
}

// Modules returns the tracked module names, sorted
func (s *State) Modules() []string {
	names := make([]string, 0, len(s.modules))
	for name := range s.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of owned paths across all modules
func (s *State) Len() int {
	return len(s.owners)
}

// Equal reports whether both states track the same modules with the same
// logs in the same order. A nil state equals an empty one.
func (s *State) Equal(other *State) bool {
	a, b := s.modulesOrEmpty(), other.modulesOrEmpty()
	if len(a) != len(b) {
		return false
	}
	for name, entries := range a {
		theirs, ok := b[name]
		if !ok || len(theirs) != len(entries) {
			return false
		}
		for i := range entries {
			if entries[i] != theirs[i] {
				return false
			}
		}
	}
	return true
}

func (s *State) modulesOrEmpty() map[string][]Entry {
	if s == nil {
		return nil
	}
	return s.modules
}
