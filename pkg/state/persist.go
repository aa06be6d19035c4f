package state

import (
	"bytes"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
	"github.com/arthur-debert/dotmod/pkg/logging"
	"github.com/arthur-debert/dotmod/pkg/types"
)

// Version 2 added path_hex and target_hex for names that are not valid
// UTF-8. Version 1 files load unchanged.
const fileVersion = 2

type fileRecord struct {
	Version int            `toml:"version"`
	Modules []moduleRecord `toml:"modules"`
}

type moduleRecord struct {
	Name    string        `toml:"name"`
	Entries []entryRecord `toml:"entries"`
}

// entryRecord stores Path and Target as TOML strings when they are valid
// UTF-8 and hex encoded in PathHex and TargetHex otherwise. TOML strings
// cannot hold arbitrary bytes.
type entryRecord struct {
	Path      string `toml:"path,omitempty"`
	PathHex   string `toml:"path_hex,omitempty"`
	Kind      string `toml:"kind"`
	Size      int64  `toml:"size,omitempty"`
	Digest    string `toml:"digest,omitempty"`
	Target    string `toml:"target,omitempty"`
	TargetHex string `toml:"target_hex,omitempty"`
}

func encodeName(name string) (plain, encoded string) {
	if utf8.ValidString(name) {
		return name, ""
	}
	return "", hex.EncodeToString([]byte(name))
}

func decodeName(plain, encoded string) (string, error) {
	if encoded == "" {
		return plain, nil
	}
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Load reads the state file. A missing or unreadable file yields an empty
// state so a first run needs no special case; unparseable content is
// logged and ignored.
func Load(fsys types.FS, file string) *State {
	logger := logging.GetLogger("state")

	data, err := fsys.ReadFile(file)
	if err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).Str("file", file).Msg("state file unreadable, starting empty")
		}
		return New()
	}

	s, err := decode(data, func(module, path string, err error) {
		logger.Warn().Err(err).Str("module", module).Str("path", path).Msg("dropping inconsistent state entry")
	})
	if err != nil {
		logger.Warn().Err(err).Str("file", file).Msg("state file unusable, starting empty")
		return New()
	}
	logger.Debug().Int("modules", len(s.modules)).Int("paths", s.Len()).Msg("state loaded")
	return s
}

// decode parses a state file. Entries that cannot be recorded are passed
// to drop and skipped.
func decode(data []byte, drop func(module, path string, err error)) (*State, error) {
	var record fileRecord
	if err := toml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("state file corrupt: %w", err)
	}
	if record.Version > fileVersion {
		return nil, fmt.Errorf("state file version %d is newer than %d", record.Version, fileVersion)
	}

	s := New()
	for _, m := range record.Modules {
		if m.Name == "" {
			continue
		}
		s.Track(m.Name)
		for _, e := range m.Entries {
			path, err := decodeName(e.Path, e.PathHex)
			if err == nil && path == "" {
				err = stderrors.New("entry has no path")
			}
			if err != nil {
				drop(m.Name, e.Path, err)
				continue
			}
			target, err := decodeName(e.Target, e.TargetHex)
			if err != nil {
				drop(m.Name, path, err)
				continue
			}
			info := fingerprint.PathInfo{
				Kind:   fingerprint.Kind(e.Kind),
				Size:   e.Size,
				Digest: e.Digest,
				Target: target,
			}
			if err := s.Record(m.Name, path, info); err != nil {
				drop(m.Name, path, err)
			}
		}
	}
	return s, nil
}

// Save writes the state to file atomically: the content goes to a
// temporary file in the same directory, is synced, and is renamed over
// the previous file.
func (s *State) Save(fsys types.FS, file string) error {
	data, err := s.marshal()
	if err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "failed to encode state")
	}
	// The previous file stays in place unless the new one reads back as
	// this exact state.
	decoded, err := decode(data, func(string, string, error) {})
	if err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "encoded state does not decode")
	}
	if !decoded.Equal(s) {
		return errors.New(errors.ErrStateSave, "encoded state does not round-trip")
	}

	dir := filepath.Dir(file)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "failed to create state directory %s", dir)
	}

	tmp, err := fsys.CreateTemp(dir, ".state-*.toml")
	if err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "failed to create temporary state file in %s", dir)
	}
	tmpName := tmp.Name()

	// Write, sync, close, then rename. Any failure removes the temporary.
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return errors.Wrap(err, errors.ErrStateSave, "failed to write temporary state file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return errors.Wrap(err, errors.ErrStateSave, "failed to sync temporary state file")
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return errors.Wrap(err, errors.ErrStateSave, "failed to close temporary state file")
	}
	if err := fsys.Rename(tmpName, file); err != nil {
		_ = fsys.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrStateSave, "failed to move state file into place at %s", file)
	}

	// Make the rename durable; not every filesystem supports syncing a
	// directory handle.
	if parent, err := fsys.Open(dir); err == nil {
		_ = parent.Sync()
		_ = parent.Close()
	}
	return nil
}

func (s *State) marshal() ([]byte, error) {
	record := fileRecord{Version: fileVersion}
	for _, name := range s.Modules() {
		m := moduleRecord{Name: name, Entries: []entryRecord{}}
		for _, e := range s.modules[name] {
			r := entryRecord{
				Kind:   string(e.Info.Kind),
				Size:   e.Info.Size,
				Digest: e.Info.Digest,
			}
			r.Path, r.PathHex = encodeName(e.Path)
			r.Target, r.TargetHex = encodeName(e.Info.Target)
			m.Entries = append(m.Entries, r)
		}
		record.Modules = append(record.Modules, m)
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
